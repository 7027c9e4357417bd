package services

import (
	"context"
	"time"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/events"
	"eticket/internal/metrics"
	"eticket/internal/utils"
)

// TicketLedger stores issued tickets.
type TicketLedger interface {
	Save(ctx context.Context, t models.IssuedTicket) error
	GetByID(ctx context.Context, id string) (models.IssuedTicket, error)
}

// TicketPublisher announces issued tickets.
type TicketPublisher interface {
	PublishTicketIssued(ctx context.Context, event events.TicketIssuedEvent) error
}

// TicketService records issued tickets and answers inspections of scanned codes.
type TicketService struct {
	Ledger    TicketLedger
	Publisher TicketPublisher
	RequestID string
}

// Record stores and announces a freshly issued ticket. Failures are logged;
// the passenger already holds a valid ticket either way.
func (s TicketService) Record(ctx context.Context, t models.Ticket, quote models.FareQuote, result models.PaymentResult) {
	metrics.TicketIssued()
	if s.Ledger != nil {
		err := s.Ledger.Save(ctx, models.IssuedTicket{
			Ticket:             t,
			RouteID:            quote.RouteID,
			OrderID:            quote.ID,
			PaymentFingerprint: result.Fingerprint(),
		})
		if err != nil {
			utils.LogEvent(s.RequestID, "ticket", "record", "ledger warning: "+err.Error())
		}
	}
	if s.Publisher != nil {
		err := s.Publisher.PublishTicketIssued(ctx, events.TicketIssuedEvent{
			TicketID:   t.ID,
			OrderID:    quote.ID,
			RouteID:    quote.RouteID,
			From:       t.From,
			To:         t.To,
			Amount:     string(t.Amount),
			Currency:   quote.Currency,
			AmountPaid: quote.Amount,
			CreatedAt:  t.CreatedAt,
			IssuedAt:   utils.NowUTC().Format(time.RFC3339),
		})
		if err != nil {
			utils.LogEvent(s.RequestID, "ticket", "record", "publish warning: "+err.Error())
		}
	}
	utils.LogEventf(s.RequestID, "ticket", "record", "ticket_id=%s order_id=%s", t.ID, quote.ID)
}

// Inspection is the outcome of checking a scanned payload against the ledger.
type Inspection struct {
	Valid    bool          `json:"valid"`
	Reason   string        `json:"reason,omitempty"`
	Ticket   models.Ticket `json:"ticket"`
	Recorded bool          `json:"recorded"`
}

// Inspect checks that a scanned payload matches the ledger entry for its ticket id.
func (s TicketService) Inspect(ctx context.Context, payload string) (Inspection, error) {
	p, err := ParsePayload(payload)
	if err != nil {
		return Inspection{}, err
	}
	if s.Ledger == nil {
		return Inspection{}, domain.UnavailableError{Resource: "ticket ledger"}
	}
	rec, err := s.Ledger.GetByID(ctx, p.TicketID)
	if err != nil {
		if domain.IsNotFound(err) {
			return Inspection{Valid: false, Reason: "unknown ticket"}, nil
		}
		return Inspection{}, err
	}

	out := Inspection{Ticket: rec.Ticket, Recorded: true, Valid: true}
	switch {
	case (models.Journey{From: p.From, To: p.To}) != rec.Journey():
		out.Valid, out.Reason = false, "journey does not match"
	case p.Amount != string(rec.Amount):
		out.Valid, out.Reason = false, "amount does not match"
	case p.Timestamp != rec.CreatedAt:
		out.Valid, out.Reason = false, "timestamp does not match"
	}
	utils.LogEventf(s.RequestID, "ticket", "inspect", "ticket_id=%s valid=%t", p.TicketID, out.Valid)
	return out, nil
}

// Lookup returns a recorded ticket.
func (s TicketService) Lookup(ctx context.Context, id string) (models.Ticket, error) {
	if s.Ledger == nil {
		return models.Ticket{}, domain.UnavailableError{Resource: "ticket ledger"}
	}
	rec, err := s.Ledger.GetByID(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	return rec.Ticket, nil
}
