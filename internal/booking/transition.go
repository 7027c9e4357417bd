package booking

import (
	"errors"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
)

// ErrStale is returned for a response that no longer matches the selection.
// The state is left untouched; callers drop the response silently.
var ErrStale = errors.New("stale response")

// Event is an input to the state machine.
type Event interface {
	Name() string
}

type (
	RoutesRequested struct{}
	RoutesLoaded    struct {
		Seq    uint64
		Routes []models.Route
	}
	RoutesFailed struct {
		Seq uint64
		Err error
	}

	RouteSelected struct{ RouteID string }
	StopsLoaded   struct {
		Seq     uint64
		RouteID string
		Stops   []models.Stop
	}
	StopsFailed struct {
		Seq     uint64
		RouteID string
		Err     error
	}

	OriginSelected      struct{ Stop string }
	DestinationSelected struct{ Stop string }

	QuoteRequested struct{}
	QuoteReceived  struct {
		Seq   uint64
		Quote models.FareQuote
	}
	QuoteFailed struct {
		Seq uint64
		Err error
	}

	PaymentStarted     struct{}
	PaymentUnavailable struct{ Err error }
	PaymentCompleted   struct{ Result models.PaymentResult }
	PaymentCancelled   struct{}

	VerificationRetried     struct{}
	TicketIssued            struct{ Ticket models.Ticket }
	VerificationFailed      struct{ Err error }
	VerificationInterrupted struct{ Err error }

	Reset struct{}
)

func (RoutesRequested) Name() string         { return "routes_requested" }
func (RoutesLoaded) Name() string            { return "routes_loaded" }
func (RoutesFailed) Name() string            { return "routes_failed" }
func (RouteSelected) Name() string           { return "route_selected" }
func (StopsLoaded) Name() string             { return "stops_loaded" }
func (StopsFailed) Name() string             { return "stops_failed" }
func (OriginSelected) Name() string          { return "origin_selected" }
func (DestinationSelected) Name() string     { return "destination_selected" }
func (QuoteRequested) Name() string          { return "quote_requested" }
func (QuoteReceived) Name() string           { return "quote_received" }
func (QuoteFailed) Name() string             { return "quote_failed" }
func (PaymentStarted) Name() string          { return "payment_started" }
func (PaymentUnavailable) Name() string      { return "payment_unavailable" }
func (PaymentCompleted) Name() string        { return "payment_completed" }
func (PaymentCancelled) Name() string        { return "payment_cancelled" }
func (VerificationRetried) Name() string     { return "verification_retried" }
func (TicketIssued) Name() string            { return "ticket_issued" }
func (VerificationFailed) Name() string      { return "verification_failed" }
func (VerificationInterrupted) Name() string { return "verification_interrupted" }
func (Reset) Name() string                   { return "reset" }

// Transition applies e to s. On a rejected event it returns s annotated with
// the error together with the error; on a stale response it returns s
// unchanged with ErrStale.
func Transition(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case RoutesRequested:
		if s.Mode == domain.ModeFixedRoute {
			return reject(s, e, "the route is fixed by the scanned QR code")
		}
		if !s.editable() {
			return reject(s, e, "")
		}
		s = s.dropQuote()
		s.RoutesPending = true
		s.RoutesSeq++
		s.Phase = PhaseDiscovering
		return s.clearError(), nil

	case RoutesLoaded:
		if !s.RoutesPending || ev.Seq != s.RoutesSeq {
			return s, ErrStale
		}
		s.RoutesPending = false
		s.Routes = ev.Routes
		return s.settle().clearError(), nil

	case RoutesFailed:
		if !s.RoutesPending || ev.Seq != s.RoutesSeq {
			return s, ErrStale
		}
		s.RoutesPending = false
		return s.settle().withError(ev.Err), nil

	case RouteSelected:
		if !s.editable() {
			return reject(s, e, "")
		}
		if s.Mode == domain.ModeFixedRoute && ev.RouteID != s.RouteID {
			err := domain.ValidationError{Field: "routeId", Msg: "the route is fixed by the scanned QR code"}
			return s.withError(err), err
		}
		s = s.dropQuote()
		s.RouteID = ev.RouteID
		s.Stops = nil
		s.From, s.To = "", ""
		s.StopsSeq++
		s.StopsPending = ev.RouteID != ""
		s.Phase = PhaseSelecting
		return s.settle().clearError(), nil

	case StopsLoaded:
		if !s.StopsPending || ev.Seq != s.StopsSeq || ev.RouteID != s.RouteID {
			return s, ErrStale
		}
		s.StopsPending = false
		s.Stops = models.SortStops(ev.Stops)
		if s.From == "" && s.PreferredOrigin != "" && models.HasStop(s.Stops, s.PreferredOrigin) {
			s.From = s.PreferredOrigin
		}
		return s.settle().clearError(), nil

	case StopsFailed:
		if !s.StopsPending || ev.Seq != s.StopsSeq || ev.RouteID != s.RouteID {
			return s, ErrStale
		}
		s.StopsPending = false
		return s.settle().withError(ev.Err), nil

	case OriginSelected:
		if !s.editable() {
			return reject(s, e, "")
		}
		if ev.Stop == s.From {
			return s, nil
		}
		s.From = ev.Stop
		return s.selectionChanged(), nil

	case DestinationSelected:
		if !s.editable() {
			return reject(s, e, "")
		}
		if ev.Stop == s.To {
			return s, nil
		}
		s.To = ev.Stop
		return s.selectionChanged(), nil

	case QuoteRequested:
		if s.Phase == PhaseDiscovering {
			err := domain.ValidationError{Field: "stops", Msg: "Stops for this route are still loading."}
			return s.withError(err), err
		}
		if !s.editable() {
			return reject(s, e, "")
		}
		if err := s.Selection().Validate(); err != nil {
			return s.withError(err), err
		}
		s = s.dropQuote()
		s.Ticket = nil
		s.QuotePending = true
		s.Phase = PhaseSelecting
		return s.clearError(), nil

	case QuoteReceived:
		q := ev.Quote
		if !s.QuotePending || ev.Seq != s.QuoteSeq || s.Phase != PhaseSelecting ||
			q.RouteID != s.RouteID || q.Journey() != (models.Journey{From: s.From, To: s.To}) {
			return s, ErrStale
		}
		s.QuotePending = false
		s.Quote = &q
		s.Ticket = nil
		s.Phase = PhaseQuoted
		return s.clearError(), nil

	case QuoteFailed:
		if !s.QuotePending || ev.Seq != s.QuoteSeq {
			return s, ErrStale
		}
		s.QuotePending = false
		return s.withError(ev.Err), nil

	case PaymentStarted:
		if s.Phase != PhaseQuoted || s.Quote == nil {
			return reject(s, e, "")
		}
		if s.Payment != nil {
			return reject(s, e, "a payment is already awaiting verification; retry the verification instead")
		}
		s.Phase = PhaseAwaitingPayment
		return s.clearError(), nil

	case PaymentUnavailable:
		if s.Phase != PhaseAwaitingPayment {
			return reject(s, e, "")
		}
		s.Phase = PhaseQuoted
		return s.withError(ev.Err), nil

	case PaymentCompleted:
		if s.Phase != PhaseAwaitingPayment {
			return reject(s, e, "")
		}
		r := ev.Result
		s.Payment = &r
		s.Phase = PhaseVerifying
		return s.clearError(), nil

	case PaymentCancelled:
		if s.Phase != PhaseAwaitingPayment {
			return reject(s, e, "")
		}
		s.Phase = PhaseQuoted
		return s.clearError(), nil

	case VerificationRetried:
		if s.Phase == PhaseVerifying {
			err := domain.AlreadyInProgressError{Op: "payment verification"}
			return s, err
		}
		if !s.AwaitingVerification() {
			return reject(s, e, "there is no payment awaiting verification")
		}
		s.Phase = PhaseVerifying
		return s.clearError(), nil

	case TicketIssued:
		if s.Phase != PhaseVerifying || s.Quote == nil {
			return reject(s, e, "")
		}
		t := ev.Ticket
		t.From, t.To = s.Quote.From, s.Quote.To
		s.Ticket = &t
		s.Quote = nil
		s.Payment = nil
		s.Phase = PhaseTicketed
		return s.clearError(), nil

	case VerificationFailed:
		if s.Phase != PhaseVerifying {
			return reject(s, e, "")
		}
		s = s.dropQuote()
		s.Payment = nil
		s.Phase = PhaseSelecting
		return s.withError(ev.Err), nil

	case VerificationInterrupted:
		if s.Phase != PhaseVerifying {
			return reject(s, e, "")
		}
		s.Phase = PhaseQuoted
		return s.withError(ev.Err), nil

	case Reset:
		switch {
		case s.Phase == PhaseAwaitingPayment || s.Phase == PhaseVerifying:
			return reject(s, e, "a payment is in progress")
		case s.Payment != nil:
			return reject(s, e, "a completed payment is still awaiting verification")
		}
		s = s.dropQuote()
		s.Ticket = nil
		s.From, s.To = "", ""
		s.PreferredOrigin = ""
		if s.Mode == domain.ModeBrowse {
			s.Routes = nil
			s.RouteID = ""
			s.Stops = nil
			s.StopsSeq++
			s.StopsPending = false
		}
		s.Phase = PhaseSelecting
		return s.settle().clearError(), nil
	}

	err := domain.InvalidTransitionError{From: string(s.Phase), Event: e.Name(), Msg: "unknown event"}
	return s.withError(err), err
}

// editable reports whether route and stop choices may change.
func (s State) editable() bool {
	switch s.Phase {
	case PhaseDiscovering, PhaseSelecting:
		return true
	case PhaseQuoted:
		return s.Payment == nil
	default:
		return false
	}
}

// selectionChanged drops any quote for the old selection and returns to Selecting.
func (s State) selectionChanged() State {
	s = s.dropQuote()
	if s.Phase == PhaseQuoted {
		s.Phase = PhaseSelecting
	}
	return s.settle().clearError()
}

func reject(s State, e Event, msg string) (State, error) {
	err := domain.InvalidTransitionError{From: string(s.Phase), Event: e.Name(), Msg: msg}
	return s.withError(err), err
}
