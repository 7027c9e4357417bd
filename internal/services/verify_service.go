package services

import (
	"context"
	"sync"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

// PaymentVerifierAPI is the backend's verification endpoint.
type PaymentVerifierAPI interface {
	VerifyPayment(ctx context.Context, result models.PaymentResult) (models.Ticket, error)
}

// VerifyService submits payment results for verification. One instance serves
// one booking session: it allows a single verification in flight and never
// issues a second ticket for a result it has already seen verified.
type VerifyService struct {
	API       PaymentVerifierAPI
	RequestID string

	mu       sync.Mutex
	inFlight bool
	issued   map[string]models.Ticket
}

func NewVerifyService(api PaymentVerifierAPI) *VerifyService {
	return &VerifyService{API: api, issued: map[string]models.Ticket{}}
}

func (s *VerifyService) Verify(ctx context.Context, result models.PaymentResult) (models.Ticket, error) {
	fp := result.Fingerprint()

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return models.Ticket{}, domain.AlreadyInProgressError{Op: "payment verification"}
	}
	if t, ok := s.issued[fp]; ok {
		s.mu.Unlock()
		utils.LogEvent(s.RequestID, "verify", "verify", "order_id="+result.OrderID+" already verified, reusing ticket "+t.ID)
		return t, nil
	}
	s.inFlight = true
	s.mu.Unlock()

	ticket, err := s.API.VerifyPayment(ctx, result)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		if s.issued == nil {
			s.issued = map[string]models.Ticket{}
		}
		s.issued[fp] = ticket
	}
	s.mu.Unlock()

	if err != nil {
		utils.LogEvent(s.RequestID, "verify", "verify", "order_id="+result.OrderID+" failed: "+err.Error())
		return models.Ticket{}, err
	}
	return ticket, nil
}
