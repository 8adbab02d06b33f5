package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestStartCheckout_ProductID(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView()}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{"product_id":"p1"}`))
	handler.Start(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "p1", svc.lastStart.ProductID)

	var view checkout.View
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&view))
	assert.Equal(t, "sess-1", view.ID)
	assert.Equal(t, "SELECTION", view.StepName)
}

func TestStartCheckout_EmptyBody(t *testing.T) {
	svc := &CheckoutServiceMock{view: &checkout.View{ID: "sess-1", Step: checkout.StepSelection}}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Start(recorder, httptest.NewRequest("POST", "/api/v1/checkout", nil))

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Empty(t, svc.lastStart.Items)
}

func TestStartCheckout_InvalidJSON(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Start(recorder, httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{`)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_request", decodeError(t, recorder).Code)
}

func TestStartCheckout_FromCart(t *testing.T) {
	p := shirt()
	cart := &CartServiceMock{cart: &domain.Cart{Products: []domain.CartItem{
		{Product: &p, Size: "M", Quantity: 3, Price: p.Price},
	}}}
	svc := &CheckoutServiceMock{view: stepOneView()}
	handler := NewCheckoutHandler(svc, cart, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{"from_cart":true}`)), "u1")
	handler.Start(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "u1", cart.lastUser)
	require.Len(t, svc.lastStart.Items, 1)
	assert.Equal(t, "M", svc.lastStart.Items[0].SelectedSize)
	assert.Equal(t, 3, svc.lastStart.Items[0].Quantity)
}

func TestStartCheckout_FromCartRequiresSignIn(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Start(recorder, httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{"from_cart":true}`)))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStartCheckout_FromEmptyCart(t *testing.T) {
	cart := &CartServiceMock{cart: &domain.Cart{}}
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, cart, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withOwner(httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{"from_cart":true}`)), "u1")
	handler.Start(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestStartCheckout_HydrationFailure(t *testing.T) {
	svc := &CheckoutServiceMock{err: &checkout.HydrationError{
		ProductID:     "p9",
		RedirectTo:    checkout.HomePath,
		RedirectAfter: 2 * time.Second,
		Err:           errors.New("boom"),
	}}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Start(recorder, httptest.NewRequest("POST", "/api/v1/checkout", bytes.NewBufferString(`{"product_id":"p9"}`)))

	require.Equal(t, http.StatusBadGateway, recorder.Code)
	resp := decodeError(t, recorder)
	assert.Equal(t, "hydration_failed", resp.Code)
	assert.Equal(t, "Failed to load product details. Please try again.", resp.Error)
	require.NotNil(t, resp.Redirect)
	assert.Equal(t, "/", resp.Redirect.To)
	assert.Equal(t, int64(2000), resp.Redirect.AfterMs)
}

func TestChangeQuantity_PassesIndexAndDelta(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView()}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"delta":-1}`))
	request = withURLParams(request, "session_id", "sess-1", "index", "0")
	handler.ChangeQuantity(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "sess-1", svc.lastID)
	assert.Equal(t, 0, svc.lastIndex)
	assert.Equal(t, -1, svc.lastDelta)
}

func TestChangeQuantity_BadIndex(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"delta":1}`))
	request = withURLParams(request, "session_id", "sess-1", "index", "first")
	handler.ChangeQuantity(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_item_index", decodeError(t, recorder).Code)
}

func TestChangeSize_UnknownSize(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView(), err: checkout.ErrUnknownSize}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"size":"XXL"}`))
	request = withURLParams(request, "session_id", "sess-1", "index", "0")
	handler.ChangeSize(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "XXL", svc.lastSize)
	assert.Equal(t, "invalid_argument", decodeError(t, recorder).Code)
}

func TestNavigate_IllegalTransition(t *testing.T) {
	svc := &CheckoutServiceMock{
		view: stepOneView(),
		err:  fmt.Errorf("%w: SELECTION -> PAYMENT", checkout.ErrIllegalTransition),
	}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParams(httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"step":3}`)), "session_id", "sess-1")
	handler.Navigate(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, checkout.StepPayment, svc.lastStep)
	assert.Equal(t, "illegal_transition", decodeError(t, recorder).Code)
}

func TestUpdateShipping_DecodesForm(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView()}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	body := `{"firstName":"Asha","address":{"useNewAddress":true,"newAddress":{"city":"Pune"}},"receiver":{"phone":"9876543210"},"option":"express"}`
	recorder := httptest.NewRecorder()
	request := withURLParams(httptest.NewRequest("PUT", "/", bytes.NewBufferString(body)), "session_id", "sess-1")
	handler.UpdateShipping(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Asha", svc.lastShipping.FirstName)
	assert.True(t, svc.lastShipping.Address.UseNewAddress)
	assert.Equal(t, "Pune", svc.lastShipping.Address.NewAddress.City)
	assert.Equal(t, domain.ShippingExpress, svc.lastShipping.Option)
}

func TestSelectPayment(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView()}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParams(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"method":"cod"}`)), "session_id", "sess-1")
	handler.SelectPayment(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, domain.PaymentCOD, svc.lastMethod)
}

func TestSelectPayment_AfterOrderPlaced(t *testing.T) {
	svc := &CheckoutServiceMock{view: stepOneView(), err: checkout.ErrOrderPlaced}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParams(httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"method":"cod"}`)), "session_id", "sess-1")
	handler.SelectPayment(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "order_placed", decodeError(t, recorder).Code)
}

func TestSubmit_Success(t *testing.T) {
	svc := &CheckoutServiceMock{
		view: &checkout.View{ID: "sess-1", Step: checkout.StepSubmitted, OrderID: "o1", ShowConfirmation: true},
		conf: &checkout.Confirmation{OrderID: "o1", PaymentMethod: domain.PaymentCOD, ShowConfirmation: true},
	}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Submit(recorder, withURLParams(httptest.NewRequest("POST", "/", nil), "session_id", "sess-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp SubmitResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.NotNil(t, resp.Confirmation)
	assert.Equal(t, "o1", resp.Confirmation.OrderID)
	assert.True(t, resp.Session.ShowConfirmation)
}

func TestSubmit_PlacementFailureCarriesSessionMessage(t *testing.T) {
	svc := &CheckoutServiceMock{
		view: &checkout.View{ID: "sess-1", Step: checkout.StepPayment, Error: "Failed to place order. Please try again."},
		err:  fmt.Errorf("%w: api error 500", checkout.ErrOrderPlacement),
	}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Submit(recorder, withURLParams(httptest.NewRequest("POST", "/", nil), "session_id", "sess-1"))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	resp := decodeError(t, recorder)
	assert.Equal(t, "upstream_failed", resp.Code)
	assert.Equal(t, "Failed to place order. Please try again.", resp.Details)
}

func TestPaymentCallback_VerificationFailed(t *testing.T) {
	svc := &CheckoutServiceMock{
		view: &checkout.View{ID: "sess-1", Error: "Payment verification failed"},
		err:  fmt.Errorf("%w: bad signature", checkout.ErrPaymentVerification),
	}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	body := `{"razorpay_order_id":"g1","razorpay_payment_id":"pay1","razorpay_signature":"sig"}`
	recorder := httptest.NewRecorder()
	handler.PaymentCallback(recorder, withURLParams(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "session_id", "sess-1"))

	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
	assert.Equal(t, "pay1", svc.lastResult.PaymentID)
	assert.Equal(t, "Payment verification failed", decodeError(t, recorder).Details)
}

func TestCloseConfirmation(t *testing.T) {
	svc := &CheckoutServiceMock{view: &checkout.View{ID: "sess-1", RedirectTo: "/"}}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.CloseConfirmation(recorder, withURLParams(httptest.NewRequest("POST", "/", nil), "session_id", "sess-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var view checkout.View
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&view))
	assert.Equal(t, "/", view.RedirectTo)
}

func TestGetCheckout_NotFound(t *testing.T) {
	svc := &CheckoutServiceMock{err: checkout.ErrSessionNotFound}
	handler := NewCheckoutHandler(svc, &CartServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Get(recorder, withURLParams(httptest.NewRequest("GET", "/", nil), "session_id", "missing"))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "missing", svc.lastID)
}
