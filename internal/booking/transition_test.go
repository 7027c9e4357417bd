package booking

import (
	"errors"
	"testing"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
)

var abcStops = []models.Stop{{Name: "C", Sequence: 3}, {Name: "A", Sequence: 1}, {Name: "B", Sequence: 2}}

func mustTransition(t *testing.T, s State, e Event) State {
	t.Helper()
	next, err := Transition(s, e)
	if err != nil {
		t.Fatalf("%s from %s: %v", e.Name(), s.Phase, err)
	}
	return next
}

// selecting returns a browse-mode state with route R1 and stops A,B,C loaded.
func selecting(t *testing.T) State {
	t.Helper()
	s := NewState(domain.EntryParams{})
	s = mustTransition(t, s, RoutesRequested{})
	s = mustTransition(t, s, RoutesLoaded{Seq: s.RoutesSeq, Routes: []models.Route{{ID: "R1"}, {ID: "R2"}}})
	s = mustTransition(t, s, RouteSelected{RouteID: "R1"})
	s = mustTransition(t, s, StopsLoaded{Seq: s.StopsSeq, RouteID: "R1", Stops: abcStops})
	return s
}

func quoted(t *testing.T) State {
	t.Helper()
	s := selecting(t)
	s = mustTransition(t, s, OriginSelected{Stop: "A"})
	s = mustTransition(t, s, DestinationSelected{Stop: "C"})
	s = mustTransition(t, s, QuoteRequested{})
	return mustTransition(t, s, QuoteReceived{Seq: s.QuoteSeq, Quote: quoteAC})
}

var quoteAC = models.FareQuote{ID: "ord_1", Amount: 5000, Currency: "INR", RouteID: "R1", From: "A", To: "C"}

func TestStopsAreSortedBySequence(t *testing.T) {
	s := selecting(t)
	if s.Phase != PhaseSelecting {
		t.Fatalf("phase = %s", s.Phase)
	}
	if s.Stops[0].Name != "A" || s.Stops[1].Name != "B" || s.Stops[2].Name != "C" {
		t.Fatalf("stops not ordered: %+v", s.Stops)
	}
	if abcStops[0].Name != "C" {
		t.Fatalf("input slice was reordered")
	}
}

func TestStaleStopsAreDropped(t *testing.T) {
	s := NewState(domain.EntryParams{})
	s = mustTransition(t, s, RoutesRequested{})
	s = mustTransition(t, s, RoutesLoaded{Seq: s.RoutesSeq})
	s = mustTransition(t, s, RouteSelected{RouteID: "R1"})
	r1Seq := s.StopsSeq
	s = mustTransition(t, s, RouteSelected{RouteID: "R2"})
	s = mustTransition(t, s, StopsLoaded{Seq: s.StopsSeq, RouteID: "R2", Stops: []models.Stop{{Name: "X", Sequence: 1}}})

	next, err := Transition(s, StopsLoaded{Seq: r1Seq, RouteID: "R1", Stops: abcStops})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if next.RouteID != "R2" || len(next.Stops) != 1 || next.Stops[0].Name != "X" {
		t.Fatalf("stale stops leaked into state: %+v", next)
	}
}

func TestSameOriginAndDestinationRejected(t *testing.T) {
	s := selecting(t)
	s = mustTransition(t, s, OriginSelected{Stop: "B"})
	s = mustTransition(t, s, DestinationSelected{Stop: "B"})

	next, err := Transition(s, QuoteRequested{})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if next.QuotePending || next.Phase != PhaseSelecting {
		t.Fatalf("quote should not be requested: %+v", next)
	}
	if next.ErrMsg != "Start and destination cannot be the same." {
		t.Fatalf("error slot = %q", next.ErrMsg)
	}
}

func TestQuoteRequiresLoadedStops(t *testing.T) {
	s := NewState(domain.EntryParams{RouteID: "R1"})
	s = mustTransition(t, s, RouteSelected{RouteID: "R1"})
	if s.Phase != PhaseDiscovering {
		t.Fatalf("phase = %s", s.Phase)
	}
	if _, err := Transition(s, QuoteRequested{}); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError while stops load, got %v", err)
	}
}

func TestSelectionChangeDropsQuote(t *testing.T) {
	s := quoted(t)
	if s.Phase != PhaseQuoted || s.Quote == nil {
		t.Fatalf("not quoted: %+v", s)
	}
	s = mustTransition(t, s, DestinationSelected{Stop: "B"})
	if s.Quote != nil || s.Phase != PhaseSelecting {
		t.Fatalf("quote survived selection change: %+v", s)
	}
	if _, err := Transition(s, PaymentStarted{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("payment without quote: %v", err)
	}
}

func TestQuoteForOldSelectionIsStale(t *testing.T) {
	s := selecting(t)
	s = mustTransition(t, s, OriginSelected{Stop: "A"})
	s = mustTransition(t, s, DestinationSelected{Stop: "C"})
	s = mustTransition(t, s, QuoteRequested{})
	seq := s.QuoteSeq
	s = mustTransition(t, s, DestinationSelected{Stop: "B"})

	next, err := Transition(s, QuoteReceived{Seq: seq, Quote: quoteAC})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if next.Quote != nil {
		t.Fatalf("stale quote stored")
	}
}

func TestQuoteAndTicketAreExclusive(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, PaymentStarted{})
	s = mustTransition(t, s, PaymentCompleted{Result: models.PaymentResult{PaymentID: "pay_1", OrderID: "ord_1", Signature: "sig"}})
	s = mustTransition(t, s, TicketIssued{Ticket: models.Ticket{ID: "tkt_1", Amount: "50.00"}})
	if s.Phase != PhaseTicketed || s.Quote != nil || s.Ticket == nil {
		t.Fatalf("unexpected ticketed state: %+v", s)
	}
	if s.Ticket.From != "A" || s.Ticket.To != "C" {
		t.Fatalf("ticket journey not taken from quote: %+v", s.Ticket)
	}

	// a new quote after reset clears the ticket
	s = mustTransition(t, s, Reset{})
	if s.Ticket != nil {
		t.Fatalf("ticket survived reset")
	}
}

func TestCancelledPaymentKeepsQuote(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, PaymentStarted{})
	if s.Phase != PhaseAwaitingPayment {
		t.Fatalf("phase = %s", s.Phase)
	}
	if _, err := Transition(s, PaymentStarted{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("second checkout allowed: %v", err)
	}
	s = mustTransition(t, s, PaymentCancelled{})
	if s.Phase != PhaseQuoted || s.Quote == nil || s.Quote.ID != "ord_1" {
		t.Fatalf("quote lost on cancel: %+v", s)
	}
	mustTransition(t, s, PaymentStarted{})
}

func TestVerificationFailureDiscardsQuote(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, PaymentStarted{})
	s = mustTransition(t, s, PaymentCompleted{Result: models.PaymentResult{PaymentID: "pay_1"}})
	s = mustTransition(t, s, VerificationFailed{Err: domain.VerificationFailedError{}})
	if s.Quote != nil || s.Payment != nil || s.Phase != PhaseSelecting {
		t.Fatalf("failed verification kept state: %+v", s)
	}
	if s.ErrKind != "verification_failed" {
		t.Fatalf("error kind = %q", s.ErrKind)
	}
	if s.From != "A" || s.To != "C" {
		t.Fatalf("selection should survive a failed verification")
	}
}

func TestInterruptedVerificationAllowsOnlyRetry(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, PaymentStarted{})
	s = mustTransition(t, s, PaymentCompleted{Result: models.PaymentResult{PaymentID: "pay_1"}})
	s = mustTransition(t, s, VerificationInterrupted{Err: domain.NetworkError{Op: "verify payment"}})

	if !s.AwaitingVerification() || s.Quote == nil {
		t.Fatalf("payment not retained: %+v", s)
	}
	if _, err := Transition(s, PaymentStarted{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("new checkout allowed over unverified payment: %v", err)
	}
	if _, err := Transition(s, Reset{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("reset allowed over unverified payment: %v", err)
	}
	if _, err := Transition(s, OriginSelected{Stop: "B"}); !domain.IsInvalidTransition(err) {
		t.Fatalf("selection change allowed over unverified payment: %v", err)
	}

	s = mustTransition(t, s, VerificationRetried{})
	if s.Phase != PhaseVerifying {
		t.Fatalf("phase = %s", s.Phase)
	}
	if _, err := Transition(s, VerificationRetried{}); !domain.IsAlreadyInProgress(err) {
		t.Fatalf("expected AlreadyInProgressError, got %v", err)
	}
}

func TestFixedRouteMode(t *testing.T) {
	s := NewState(domain.EntryParams{RouteID: "R1", CurrentStop: "B"})
	if s.Mode != domain.ModeFixedRoute {
		t.Fatalf("mode = %s", s.Mode)
	}
	if _, err := Transition(s, RoutesRequested{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("route discovery allowed in fixed mode: %v", err)
	}
	s = mustTransition(t, s, RouteSelected{RouteID: "R1"})
	s = mustTransition(t, s, StopsLoaded{Seq: s.StopsSeq, RouteID: "R1", Stops: abcStops})
	if s.From != "B" {
		t.Fatalf("current stop not preselected: %q", s.From)
	}
	if _, err := Transition(s, RouteSelected{RouteID: "R2"}); !domain.IsValidation(err) {
		t.Fatalf("route change allowed in fixed mode: %v", err)
	}

	s = mustTransition(t, s, Reset{})
	if s.RouteID != "R1" || len(s.Stops) != 3 || s.From != "" || s.Phase != PhaseSelecting {
		t.Fatalf("fixed reset: %+v", s)
	}
}

func TestUnknownCurrentStopIgnored(t *testing.T) {
	s := NewState(domain.EntryParams{RouteID: "R1", CurrentStop: "Z"})
	s = mustTransition(t, s, RouteSelected{RouteID: "R1"})
	s = mustTransition(t, s, StopsLoaded{Seq: s.StopsSeq, RouteID: "R1", Stops: abcStops})
	if s.From != "" {
		t.Fatalf("unknown stop preselected: %q", s.From)
	}
}

func TestBrowseResetClearsSelection(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, Reset{})
	if s.RouteID != "" || s.Routes != nil || s.Stops != nil || s.Quote != nil {
		t.Fatalf("browse reset kept selection: %+v", s)
	}
	if s.Phase != PhaseSelecting {
		t.Fatalf("phase = %s", s.Phase)
	}
}

func TestErrorSlotClearedOnNextSuccess(t *testing.T) {
	s := selecting(t)
	s = mustTransition(t, s, OriginSelected{Stop: "A"})
	s, _ = Transition(s, QuoteRequested{})
	if s.ErrMsg == "" {
		t.Fatalf("expected a validation message")
	}
	s = mustTransition(t, s, DestinationSelected{Stop: "C"})
	if s.ErrMsg != "" || s.ErrKind != "" {
		t.Fatalf("error slot not cleared: %q", s.ErrMsg)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := quoted(t)
	before := *s.Quote
	_ = mustTransition(t, s, DestinationSelected{Stop: "B"})
	if s.Quote == nil || *s.Quote != before || s.Phase != PhaseQuoted {
		t.Fatalf("input state mutated")
	}
}

func TestRouteRefreshDropsHeldQuote(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, RoutesRequested{})
	s = mustTransition(t, s, RoutesLoaded{Seq: s.RoutesSeq, Routes: []models.Route{{ID: "R1"}, {ID: "R2"}}})

	if s.Phase != PhaseSelecting || s.Quote != nil || s.Loading() {
		t.Fatalf("state after refresh: phase=%s quote=%v loading=%v", s.Phase, s.Quote, s.Loading())
	}
	if s.RouteID != "R1" || s.From != "A" || s.To != "C" {
		t.Fatalf("selection lost: %+v", s.Selection())
	}
	if _, err := Transition(s, PaymentStarted{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("payment without quote: %v", err)
	}
	s = mustTransition(t, s, QuoteRequested{})
	s = mustTransition(t, s, QuoteReceived{Seq: s.QuoteSeq, Quote: quoteAC})
	if s.Phase != PhaseQuoted {
		t.Fatalf("requote phase = %s", s.Phase)
	}
}

func TestRouteRefreshCancelsQuoteInFlight(t *testing.T) {
	s := selecting(t)
	s = mustTransition(t, s, OriginSelected{Stop: "A"})
	s = mustTransition(t, s, DestinationSelected{Stop: "C"})
	s = mustTransition(t, s, QuoteRequested{})
	seq := s.QuoteSeq

	s = mustTransition(t, s, RoutesRequested{})
	s = mustTransition(t, s, RoutesLoaded{Seq: s.RoutesSeq})
	if s.Loading() {
		t.Fatalf("still loading after refresh: %+v", s)
	}

	next, err := Transition(s, QuoteReceived{Seq: seq, Quote: quoteAC})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if next.Quote != nil || next.Loading() || next.Phase != PhaseSelecting {
		t.Fatalf("state after late quote: %+v", next)
	}
}

func TestRouteRefreshRejectedWithPendingPayment(t *testing.T) {
	s := quoted(t)
	s = mustTransition(t, s, PaymentStarted{})
	s = mustTransition(t, s, PaymentCompleted{Result: models.PaymentResult{PaymentID: "p1", OrderID: "ord_1", Signature: "s"}})
	s = mustTransition(t, s, VerificationInterrupted{Err: domain.NetworkError{Op: "verify payment"}})

	next, err := Transition(s, RoutesRequested{})
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if next.Quote == nil || next.Payment == nil {
		t.Fatalf("pending payment lost: %+v", next)
	}
}
