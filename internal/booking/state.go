// Package booking holds the booking-and-payment state machine: a pure
// transition function over State and a Session that drives it with the
// catalog, quote, checkout and verification components.
package booking

import (
	"eticket/internal/domain"
	"eticket/internal/domain/models"
)

type Phase string

const (
	PhaseDiscovering     Phase = "discovering"
	PhaseSelecting       Phase = "selecting"
	PhaseQuoted          Phase = "quoted"
	PhaseAwaitingPayment Phase = "awaiting_payment"
	PhaseVerifying       Phase = "verifying"
	PhaseTicketed        Phase = "ticketed"
)

// State is everything the passenger currently sees. It is a value: Transition
// never mutates the State (or the slices and pointers) it is given.
type State struct {
	Phase Phase
	Mode  domain.Mode

	Routes  []models.Route
	RouteID string
	Stops   []models.Stop
	From    string
	To      string

	// PreferredOrigin pre-selects the origin once stops arrive (QR currentStop).
	PreferredOrigin string

	Quote *models.FareQuote
	// Payment is a checkout result that has not been verified yet.
	Payment *models.PaymentResult
	Ticket  *models.Ticket

	RoutesPending bool
	StopsPending  bool
	QuotePending  bool

	// Sequence numbers tag outstanding requests; responses carrying an older
	// number are dropped on arrival.
	RoutesSeq uint64
	StopsSeq  uint64
	QuoteSeq  uint64

	ErrKind string
	ErrMsg  string
}

// NewState returns the initial state for a page opened with params.
func NewState(params domain.EntryParams) State {
	return State{
		Phase:           PhaseDiscovering,
		Mode:            params.Mode(),
		RouteID:         params.RouteID,
		PreferredOrigin: params.CurrentStop,
	}
}

// Loading reports whether any backend request is outstanding.
func (s State) Loading() bool {
	return s.RoutesPending || s.StopsPending || s.QuotePending
}

// Selection is the current route/stop choice with the stops it is checked against.
func (s State) Selection() models.Selection {
	return models.Selection{RouteID: s.RouteID, From: s.From, To: s.To, Stops: s.Stops}
}

// AwaitingVerification reports a completed payment whose verification must be retried.
func (s State) AwaitingVerification() bool {
	return s.Phase == PhaseQuoted && s.Payment != nil
}

func (s State) withError(err error) State {
	s.ErrKind = domain.Kind(err)
	s.ErrMsg = err.Error()
	return s
}

func (s State) clearError() State {
	s.ErrKind, s.ErrMsg = "", ""
	return s
}

// settle recomputes Discovering/Selecting from the outstanding catalog fetches.
func (s State) settle() State {
	if s.Phase != PhaseDiscovering && s.Phase != PhaseSelecting {
		return s
	}
	if s.RoutesPending || s.StopsPending {
		s.Phase = PhaseDiscovering
	} else {
		s.Phase = PhaseSelecting
	}
	return s
}

// dropQuote discards the held quote and invalidates any quote in flight.
func (s State) dropQuote() State {
	s.Quote = nil
	s.QuotePending = false
	s.QuoteSeq++
	return s
}
