package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Step of the three-step checkout wizard.
type Step int

const (
	StepSelection Step = 1
	StepShipping  Step = 2
	StepPayment   Step = 3
	// StepSubmitted is terminal: the order was placed and the shopper has
	// left the wizard.
	StepSubmitted Step = 4
)

var ErrWrongStep = errors.New("operation not available on the current step")

func (s Step) String() string {
	switch s {
	case StepSelection:
		return "SELECTION"
	case StepShipping:
		return "SHIPPING"
	case StepPayment:
		return "PAYMENT"
	case StepSubmitted:
		return "SUBMITTED"
	default:
		return "UNKNOWN"
	}
}

func (s Step) IsTerminal() bool {
	return s == StepSubmitted
}

// CanTransitionTo is the structural transition table: one step forward, any
// number of steps back, and into Submitted only from Payment. Guards on the
// session contents are checked separately.
func CanTransitionTo(from, to Step) bool {
	if from.IsTerminal() || to < StepSelection || to > StepSubmitted {
		return false
	}
	switch {
	case to == StepSubmitted:
		return from == StepPayment
	case to <= from:
		return true
	default:
		return to == from+1
	}
}

// Navigate moves the wizard. Going back keeps everything entered so far.
func (s *Session) Navigate(target Step) error {
	if s.Step.IsTerminal() {
		return ErrSessionClosed
	}
	if s.OrderPlaced() {
		return ErrOrderPlaced
	}
	if target == StepSubmitted || !CanTransitionTo(s.Step, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Step, target)
	}
	if target > s.Step {
		if err := s.guard(target); err != nil {
			return err
		}
	}
	s.Step = target
	return nil
}

// CanContinue reports whether the forward action of the current step is
// enabled.
func (s *Session) CanContinue() bool {
	switch s.Step {
	case StepSelection, StepShipping:
		return s.guard(s.Step+1) == nil
	case StepPayment:
		return len(s.Items) > 0
	default:
		return false
	}
}

func (s *Session) guard(target Step) error {
	if len(s.Items) == 0 {
		return ErrEmptyCart
	}
	if target == StepPayment {
		return s.validateShipping()
	}
	return nil
}

// validateShipping blocks the payment step until there is a deliverable
// address and a receiver phone.
func (s *Session) validateShipping() error {
	resolved := s.ResolvedAddress()
	if !resolved.FromSaved() {
		if missing := resolved.Fields.Missing(); len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrShippingIncomplete, strings.Join(missing, ", "))
		}
	} else if idx := s.Shipping.Address.SelectedIndex; idx != nil && *idx != resolved.SavedIndex {
		return ErrAddressIndex
	} else if resolved.Address == "" {
		return fmt.Errorf("%w: saved address is empty", ErrShippingIncomplete)
	}
	if _, err := ResolveReceiverPhone(s.User, s.Shipping.Receiver); err != nil {
		return err
	}
	return nil
}

// MarkSubmitted moves the wizard into its terminal state.
func (s *Session) MarkSubmitted() error {
	if !CanTransitionTo(s.Step, StepSubmitted) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Step, StepSubmitted)
	}
	s.Step = StepSubmitted
	return nil
}

// requireEditable is requireStep for changes to what the order is placed
// with.
func (s *Session) requireEditable(step Step) error {
	if err := s.requireStep(step); err != nil {
		return err
	}
	if s.OrderPlaced() {
		return ErrOrderPlaced
	}
	return nil
}

func (s *Session) requireStep(step Step) error {
	if s.Step.IsTerminal() {
		return ErrSessionClosed
	}
	if s.Step != step {
		return fmt.Errorf("%w: on %s, need %s", ErrWrongStep, s.Step, step)
	}
	return nil
}
