package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type serviceFixture struct {
	*submitFixture
	store   *memoryStore
	catalog *MockCatalog
	users   *MockUsers
	svc     *Service
}

func newServiceFixture() *serviceFixture {
	sf := newSubmitFixture()
	a := product("a", 500, "S", "M")
	b := product("b", 1200)
	f := &serviceFixture{
		submitFixture: sf,
		store:         newMemoryStore(),
		catalog:       &MockCatalog{Products: map[string]*domain.Product{"a": &a, "b": &b}},
		users:         &MockUsers{},
	}
	f.svc = NewService(f.store, NewReconciler(f.catalog, 0, nil), sf.submitter, f.users, nil)
	return f
}

func TestService_StartFromProductID(t *testing.T) {
	f := newServiceFixture()

	v, err := f.svc.Start(context.Background(), StartRequest{ProductID: "a"})

	require.NoError(t, err)
	assert.Equal(t, StepSelection, v.Step)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "S", v.Items[0].SelectedSize)
	assert.False(t, v.Authenticated)

	got, err := f.svc.Get(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
}

func TestService_StartHydrationFailureOpensNothing(t *testing.T) {
	f := newServiceFixture()

	v, err := f.svc.Start(context.Background(), StartRequest{ProductID: "missing"})

	assert.Nil(t, v)
	var herr *HydrationError
	assert.ErrorAs(t, err, &herr)
	assert.Empty(t, f.store.sessions)
}

func TestService_StartLoadsSignedInUser(t *testing.T) {
	f := newServiceFixture()
	f.users.User = &domain.User{ID: "u1", Name: "Asha", Mobile: "9000000001",
		Addresses: []domain.Address{{Address: "saved", IsDefault: true}}}
	ctx := WithOwner(context.Background(), "u1")

	v, err := f.svc.Start(ctx, StartRequest{ProductID: "b"})

	require.NoError(t, err)
	assert.True(t, v.Authenticated)
	assert.Len(t, v.SavedAddresses, 1)
	assert.Equal(t, "saved", v.ResolvedAddress.Address)
}

func TestService_StartUserLookupFailureIsGuest(t *testing.T) {
	f := newServiceFixture()
	f.users.Err = errors.New("401")
	ctx := WithOwner(context.Background(), "u1")

	v, err := f.svc.Start(ctx, StartRequest{ProductID: "b"})

	require.NoError(t, err)
	assert.False(t, v.Authenticated)
}

func TestService_OtherOwnerCannotSeeSession(t *testing.T) {
	f := newServiceFixture()
	v, err := f.svc.Start(WithOwner(context.Background(), "u1"), StartRequest{ProductID: "b"})
	require.NoError(t, err)

	_, err = f.svc.Get(WithOwner(context.Background(), "u2"), v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Get(context.Background(), v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_ItemEditsOnlyOnSelection(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "a"})
	require.NoError(t, err)

	v, err = f.svc.ChangeQuantity(ctx, v.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 10, v.Items[0].Quantity)

	v, err = f.svc.ChangeSize(ctx, v.ID, 0, "M")
	require.NoError(t, err)
	assert.Equal(t, "M", v.Items[0].SelectedSize)

	v, err = f.svc.Navigate(ctx, v.ID, StepShipping)
	require.NoError(t, err)
	assert.True(t, v.ScrollToTop)

	_, err = f.svc.ChangeQuantity(ctx, v.ID, 0, -1)
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestService_DeselectLastItemBlocksContinue(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "a"})
	require.NoError(t, err)

	v, err = f.svc.Deselect(ctx, v.ID, 0)
	require.NoError(t, err)

	assert.Empty(t, v.Items)
	assert.False(t, v.CanContinue)
	_, err = f.svc.Navigate(ctx, v.ID, StepShipping)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_UpdateShippingValidates(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "b"})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, v.ID, StepShipping)
	require.NoError(t, err)

	_, err = f.svc.UpdateShipping(ctx, v.ID, Shipping{Option: "overnight"})
	assert.ErrorIs(t, err, ErrShippingOption)

	_, err = f.svc.UpdateShipping(ctx, v.ID, Shipping{Address: AddressSelection{SelectedIndex: intPtr(0)}})
	assert.ErrorIs(t, err, ErrAddressIndex)

	v, err = f.svc.UpdateShipping(ctx, v.ID, Shipping{
		Address:  AddressSelection{NewAddress: completeAddress()},
		Receiver: domain.Receiver{Phone: "9999999999"},
		Option:   domain.ShippingExpress,
	})
	require.NoError(t, err)
	assert.Equal(t, "1443", v.Pricing.Total.String())
	assert.True(t, v.CanContinue)
}

func TestService_FullCODFlow(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{Items: []domain.LineItem{
		{Product: domain.Product{MongoID: "a"}, SelectedSize: "M", Quantity: 2},
		{Product: domain.Product{MongoID: "b"}, Quantity: 1},
	}})
	require.NoError(t, err)
	id := v.ID

	_, err = f.svc.Navigate(ctx, id, StepShipping)
	require.NoError(t, err)
	_, err = f.svc.UpdateShipping(ctx, id, Shipping{
		Address:  AddressSelection{NewAddress: completeAddress()},
		Receiver: domain.Receiver{Phone: "9999999999"},
	})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, id, StepPayment)
	require.NoError(t, err)
	v, err = f.svc.SelectPayment(ctx, id, domain.PaymentCOD)
	require.NoError(t, err)
	assert.Equal(t, "2464", v.Pricing.Total.String())

	v, conf, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "order-1", conf.OrderID)
	assert.True(t, v.ShowConfirmation)
	assert.Equal(t, StepSubmitted, v.Step)
	assert.Zero(t, f.gateway.BeginCalls)

	v, err = f.svc.CloseConfirmation(ctx, id)
	require.NoError(t, err)
	assert.False(t, v.ShowConfirmation)
	assert.Equal(t, "/", v.RedirectTo)

	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// toPayment starts a checkout of product a and walks it to step 3 with a
// complete guest address.
func toPayment(t *testing.T, f *serviceFixture, method domain.PaymentMethod) string {
	t.Helper()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "a"})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, v.ID, StepShipping)
	require.NoError(t, err)
	_, err = f.svc.UpdateShipping(ctx, v.ID, Shipping{
		Address:  AddressSelection{NewAddress: completeAddress()},
		Receiver: domain.Receiver{Phone: "9999999999"},
	})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, v.ID, StepPayment)
	require.NoError(t, err)
	_, err = f.svc.SelectPayment(ctx, v.ID, method)
	require.NoError(t, err)
	return v.ID
}

func TestService_PlacedOrderLocksCheckout(t *testing.T) {
	f := newServiceFixture()
	f.gateway.BeginErr = errors.New("gateway down")
	ctx := context.Background()
	id := toPayment(t, f, domain.PaymentUPI)

	v, _, err := f.svc.Submit(ctx, id)
	require.ErrorIs(t, err, ErrPaymentHandoff)
	assert.Equal(t, "order-1", v.OrderID)
	assert.Equal(t, "560", f.orders.Payload.TotalPrice.String())

	_, err = f.svc.Navigate(ctx, id, StepSelection)
	assert.ErrorIs(t, err, ErrOrderPlaced)
	_, err = f.svc.SelectPayment(ctx, id, domain.PaymentCOD)
	assert.ErrorIs(t, err, ErrOrderPlaced)
	_, err = f.svc.ChangeQuantity(ctx, id, 0, 5)
	assert.Error(t, err)
	_, err = f.svc.UpdateShipping(ctx, id, Shipping{Option: domain.ShippingExpress})
	assert.Error(t, err)

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, got.Step)
	assert.Equal(t, domain.PaymentUPI, got.PaymentMethod)
	assert.Equal(t, 1, got.Items[0].Quantity)

	f.gateway.BeginErr = nil
	v, conf, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "560", f.gateway.BeginAmount.String())
	assert.Equal(t, "560", conf.Total.String())
	assert.Equal(t, domain.PaymentUPI, conf.PaymentMethod)
	assert.Equal(t, PaymentPending, v.PaymentStatus)
	assert.False(t, v.ShowConfirmation)
	assert.Equal(t, 1, f.orders.Calls)
}

func TestService_PlacedOrderEditsAreRejectedOnEveryStep(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	id := toPayment(t, f, domain.PaymentCard)

	// place the order, then put the stored session back on step 1 as a stale
	// writer would
	_, _, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	sess, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	sess.Step = StepSelection
	require.NoError(t, f.store.Save(ctx, sess))

	_, err = f.svc.ChangeQuantity(ctx, id, 0, 5)
	assert.ErrorIs(t, err, ErrOrderPlaced)
	_, err = f.svc.ChangeSize(ctx, id, 0, "M")
	assert.ErrorIs(t, err, ErrOrderPlaced)
	_, err = f.svc.Deselect(ctx, id, 0)
	assert.ErrorIs(t, err, ErrOrderPlaced)
	_, err = f.svc.Navigate(ctx, id, StepShipping)
	assert.ErrorIs(t, err, ErrOrderPlaced)

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, "S", got.Items[0].SelectedSize)
}

func TestService_CloseConfirmationKeepsOpenSession(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "b"})
	require.NoError(t, err)

	v, err = f.svc.CloseConfirmation(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "/", v.RedirectTo)

	_, err = f.svc.Get(ctx, v.ID)
	assert.NoError(t, err)
}

func TestService_FailedSubmitKeepsMessage(t *testing.T) {
	f := newServiceFixture()
	f.orders.Err = errors.New("boom")
	ctx := context.Background()
	v, err := f.svc.Start(ctx, StartRequest{ProductID: "b"})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, v.ID, StepShipping)
	require.NoError(t, err)
	_, err = f.svc.UpdateShipping(ctx, v.ID, Shipping{
		Address:  AddressSelection{NewAddress: completeAddress()},
		Receiver: domain.Receiver{Phone: "9999999999"},
	})
	require.NoError(t, err)
	_, err = f.svc.Navigate(ctx, v.ID, StepPayment)
	require.NoError(t, err)

	v, _, err = f.svc.Submit(ctx, v.ID)
	assert.ErrorIs(t, err, ErrOrderPlacement)
	require.NotNil(t, v)
	assert.Equal(t, "Failed to place order. Please try again.", v.Error)

	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Failed to place order. Please try again.", got.Error)
	assert.Equal(t, StepPayment, got.Step)
}

func TestService_UnknownSession(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Navigate(context.Background(), "nope", StepShipping)

	assert.ErrorIs(t, err, ErrSessionNotFound)
}
