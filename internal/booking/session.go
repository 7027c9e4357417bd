package booking

import (
	"context"
	"errors"
	"sync"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/metrics"
	"eticket/internal/services"
	"eticket/internal/utils"
)

type RouteCatalog interface {
	ListRoutes(ctx context.Context) ([]models.Route, error)
	ListStops(ctx context.Context, routeID string) ([]models.Stop, error)
}

type QuoteRequester interface {
	RequestQuote(ctx context.Context, sel models.Selection) (models.FareQuote, error)
}

type PaymentInitiator interface {
	Initiate(quote models.FareQuote, description string, onResult func(context.Context, models.PaymentResult), onCancel func()) (*services.CheckoutAttempt, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, result models.PaymentResult) (models.Ticket, error)
}

// TicketHook runs once for every ticket the session issues.
type TicketHook func(ctx context.Context, t models.Ticket, quote models.FareQuote, result models.PaymentResult)

// Deps are the components a Session drives.
type Deps struct {
	Catalog  RouteCatalog
	Quotes   QuoteRequester
	Checkout PaymentInitiator
	Verifier PaymentVerifier
	OnTicket TicketHook
}

// Session is one passenger's booking. It is safe for concurrent use: state
// changes are serialized, backend calls run outside the lock and their
// results are fed back as events that are dropped if they went stale.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	deps     Deps
	checkout *openCheckout
}

// openCheckout ties a checkout attempt to the outcome of its callback.
// The callbacks run on the goroutine that completes or cancels the attempt.
type openCheckout struct {
	attempt *services.CheckoutAttempt
	outcome error
}

func NewSession(id string, params domain.EntryParams, deps Deps) *Session {
	return &Session{ID: id, state: NewState(params), deps: deps}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start loads what the page needs: the stops of the scanned route, or the
// route list when browsing.
func (s *Session) Start(ctx context.Context) (View, error) {
	st := s.Snapshot()
	if st.Mode == domain.ModeFixedRoute {
		return s.SelectRoute(ctx, st.RouteID)
	}
	return s.DiscoverRoutes(ctx)
}

func (s *Session) DiscoverRoutes(ctx context.Context) (View, error) {
	st, err := s.apply(RoutesRequested{})
	if err != nil {
		return s.View(), err
	}
	seq := st.RoutesSeq

	routes, err := s.deps.Catalog.ListRoutes(ctx)
	if err != nil {
		return s.fail(RoutesFailed{Seq: seq, Err: err}, err)
	}
	return s.deliver(RoutesLoaded{Seq: seq, Routes: routes})
}

func (s *Session) SelectRoute(ctx context.Context, routeID string) (View, error) {
	routeID = utils.TrimOrEmpty(routeID)
	st, err := s.apply(RouteSelected{RouteID: routeID})
	if err != nil || routeID == "" {
		return s.View(), err
	}
	seq := st.StopsSeq

	stops, err := s.deps.Catalog.ListStops(ctx, routeID)
	if err != nil {
		return s.fail(StopsFailed{Seq: seq, RouteID: routeID, Err: err}, err)
	}
	return s.deliver(StopsLoaded{Seq: seq, RouteID: routeID, Stops: stops})
}

func (s *Session) SelectOrigin(stop string) (View, error) {
	_, err := s.apply(OriginSelected{Stop: utils.TrimOrEmpty(stop)})
	return s.View(), err
}

func (s *Session) SelectDestination(stop string) (View, error) {
	_, err := s.apply(DestinationSelected{Stop: utils.TrimOrEmpty(stop)})
	return s.View(), err
}

// RequestQuote prices the current selection. An invalid selection is
// rejected before any backend call.
func (s *Session) RequestQuote(ctx context.Context) (View, error) {
	st, err := s.apply(QuoteRequested{})
	if err != nil {
		return s.View(), err
	}
	seq := st.QuoteSeq

	quote, err := s.deps.Quotes.RequestQuote(ctx, st.Selection())
	if err != nil {
		return s.fail(QuoteFailed{Seq: seq, Err: err}, err)
	}
	return s.deliver(QuoteReceived{Seq: seq, Quote: quote})
}

// StartPayment opens a checkout for the held quote and returns the options
// the checkout widget is opened with.
func (s *Session) StartPayment(ctx context.Context) (services.CheckoutOptions, View, error) {
	st, err := s.apply(PaymentStarted{})
	if err != nil {
		return services.CheckoutOptions{}, s.View(), err
	}
	quote := *st.Quote

	oc := &openCheckout{}
	attempt, err := s.deps.Checkout.Initiate(quote, quote.Description(),
		func(ctx context.Context, result models.PaymentResult) {
			oc.outcome = s.paymentCompleted(ctx, quote, result)
		},
		func() {
			_, oc.outcome = s.apply(PaymentCancelled{})
		},
	)
	if err != nil {
		s.apply(PaymentUnavailable{Err: err})
		return services.CheckoutOptions{}, s.View(), err
	}
	oc.attempt = attempt

	s.mu.Lock()
	s.checkout = oc
	s.mu.Unlock()

	utils.LogEventf(s.ID, "booking", "start_payment", "order_id=%s amount=%d", quote.ID, quote.Amount)
	return attempt.Options, s.View(), nil
}

// CompletePayment delivers the checkout widget's success result and verifies it.
func (s *Session) CompletePayment(ctx context.Context, result models.PaymentResult) (View, error) {
	oc, err := s.currentCheckout(PaymentCompleted{Result: result})
	if err != nil {
		return s.View(), err
	}
	if err := oc.attempt.Complete(ctx, result); err != nil {
		return s.View(), err
	}
	s.closeCheckout(oc)
	return s.View(), oc.outcome
}

// CancelPayment reports that the passenger dismissed the checkout widget.
func (s *Session) CancelPayment() (View, error) {
	oc, err := s.currentCheckout(PaymentCancelled{})
	if err != nil {
		return s.View(), err
	}
	if err := oc.attempt.Cancel(); err != nil {
		return s.View(), err
	}
	s.closeCheckout(oc)
	return s.View(), oc.outcome
}

// RetryVerification resubmits a payment whose verification was interrupted.
func (s *Session) RetryVerification(ctx context.Context) (View, error) {
	st, err := s.apply(VerificationRetried{})
	if err != nil {
		return s.View(), err
	}
	err = s.verify(ctx, *st.Quote, *st.Payment)
	return s.View(), err
}

// Reset starts a new booking. Browsing sessions reload the route list; a
// scanned route keeps its stops, reloading them only if they never arrived.
func (s *Session) Reset(ctx context.Context) (View, error) {
	st, err := s.apply(Reset{})
	if err != nil {
		return s.View(), err
	}
	s.mu.Lock()
	s.checkout = nil
	s.mu.Unlock()

	switch {
	case st.Mode == domain.ModeBrowse:
		return s.DiscoverRoutes(ctx)
	case st.RouteID != "" && len(st.Stops) == 0:
		return s.SelectRoute(ctx, st.RouteID)
	}
	return s.View(), nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newView(s.state)
}

func (s *Session) paymentCompleted(ctx context.Context, quote models.FareQuote, result models.PaymentResult) error {
	if _, err := s.apply(PaymentCompleted{Result: result}); err != nil {
		return err
	}
	return s.verify(ctx, quote, result)
}

// verify runs the verification and applies its outcome. A network failure
// keeps the payment for a retry; any other failure discards the quote.
func (s *Session) verify(ctx context.Context, quote models.FareQuote, result models.PaymentResult) error {
	// The passenger has paid; a dropped client connection must not abort it.
	ctx = context.WithoutCancel(ctx)

	ticket, err := s.deps.Verifier.Verify(ctx, result)
	switch {
	case err == nil:
		st, aerr := s.apply(TicketIssued{Ticket: ticket})
		if aerr != nil {
			return aerr
		}
		utils.LogEventf(s.ID, "booking", "ticket_issued", "ticket_id=%s order_id=%s", st.Ticket.ID, quote.ID)
		if s.deps.OnTicket != nil {
			s.deps.OnTicket(ctx, *st.Ticket, quote, result)
		}
		return nil
	case domain.IsAlreadyInProgress(err):
		return err
	case domain.IsNetwork(err):
		s.apply(VerificationInterrupted{Err: err})
		return err
	default:
		s.apply(VerificationFailed{Err: err})
		return err
	}
}

func (s *Session) currentCheckout(e Event) (*openCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == PhaseVerifying {
		err := domain.AlreadyInProgressError{Op: "payment verification"}
		metrics.ObserveRejected(e.Name(), domain.Kind(err))
		return nil, err
	}
	if s.checkout == nil || s.state.Phase != PhaseAwaitingPayment {
		next, err := reject(s.state, e, "no checkout is open")
		s.state = next
		metrics.ObserveRejected(e.Name(), domain.Kind(err))
		return nil, err
	}
	return s.checkout, nil
}

func (s *Session) closeCheckout(oc *openCheckout) {
	s.mu.Lock()
	if s.checkout == oc {
		s.checkout = nil
	}
	s.mu.Unlock()
}

// fail applies a failure event and returns cause, unless the failure
// belonged to a request the passenger has already moved past.
func (s *Session) fail(e Event, cause error) (View, error) {
	if _, err := s.apply(e); errors.Is(err, ErrStale) {
		return s.View(), nil
	}
	return s.View(), cause
}

// deliver applies a backend response; stale responses are dropped silently.
func (s *Session) deliver(e Event) (View, error) {
	if _, err := s.apply(e); err != nil && !errors.Is(err, ErrStale) {
		return s.View(), err
	}
	return s.View(), nil
}

func (s *Session) apply(e Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next, err := Transition(prev, e)
	switch {
	case errors.Is(err, ErrStale):
		metrics.ObserveStale(e.Name())
		utils.LogEvent(s.ID, "booking", e.Name(), "stale response dropped")
		return prev, err
	case err != nil:
		metrics.ObserveRejected(e.Name(), domain.Kind(err))
		utils.LogEventf(s.ID, "booking", e.Name(), "rejected in %s: %v", prev.Phase, err)
	default:
		metrics.ObserveTransition(e.Name(), string(prev.Phase), string(next.Phase))
	}
	s.state = next
	return next, err
}
