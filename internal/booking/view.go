package booking

import (
	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

// View is the presentation snapshot of a session. It shares no memory with
// the session state.
type View struct {
	Phase   Phase          `json:"phase"`
	Mode    domain.Mode    `json:"mode"`
	Routes  []models.Route `json:"routes"`
	RouteID string         `json:"routeId,omitempty"`
	Stops   []models.Stop  `json:"stops"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`

	Quote  *QuoteView     `json:"quote,omitempty"`
	Ticket *models.Ticket `json:"ticket,omitempty"`

	Loading              bool `json:"loading"`
	AwaitingVerification bool `json:"awaitingVerification"`

	Error   *ViewError `json:"error,omitempty"`
	Actions []string   `json:"actions"`
}

type QuoteView struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type ViewError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Actions a passenger can take, as listed in View.Actions.
const (
	ActionSelectRoute       = "select_route"
	ActionSelectStops       = "select_stops"
	ActionRequestQuote      = "request_quote"
	ActionPay               = "pay"
	ActionCompletePayment   = "complete_payment"
	ActionCancelPayment     = "cancel_payment"
	ActionRetryVerification = "retry_verification"
	ActionReset             = "reset"
)

func newView(s State) View {
	v := View{
		Phase:                s.Phase,
		Mode:                 s.Mode,
		Routes:               append([]models.Route{}, s.Routes...),
		RouteID:              s.RouteID,
		Stops:                append([]models.Stop{}, s.Stops...),
		From:                 s.From,
		To:                   s.To,
		Loading:              s.Loading(),
		AwaitingVerification: s.AwaitingVerification(),
		Actions:              actions(s),
	}
	if q := s.Quote; q != nil {
		v.Quote = &QuoteView{
			ID:       q.ID,
			Amount:   q.Amount,
			Currency: q.Currency,
			Display:  utils.CurrencySymbol(q.Currency) + utils.FormatMinor(q.Amount),
			From:     q.From,
			To:       q.To,
		}
	}
	if s.Ticket != nil {
		t := *s.Ticket
		v.Ticket = &t
	}
	if s.ErrMsg != "" {
		v.Error = &ViewError{Code: s.ErrKind, Message: s.ErrMsg}
	}
	return v
}

func actions(s State) []string {
	out := []string{}
	if s.editable() {
		if s.Mode == domain.ModeBrowse {
			out = append(out, ActionSelectRoute)
		}
		if len(s.Stops) > 0 {
			out = append(out, ActionSelectStops)
		}
		if s.Phase != PhaseDiscovering && s.Selection().Validate() == nil {
			out = append(out, ActionRequestQuote)
		}
	}
	switch {
	case s.Phase == PhaseQuoted && s.Payment == nil:
		out = append(out, ActionPay)
	case s.AwaitingVerification():
		out = append(out, ActionRetryVerification)
	case s.Phase == PhaseAwaitingPayment:
		out = append(out, ActionCompletePayment, ActionCancelPayment)
	}
	if s.Phase != PhaseAwaitingPayment && s.Phase != PhaseVerifying && s.Payment == nil {
		out = append(out, ActionReset)
	}
	return out
}
