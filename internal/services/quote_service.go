package services

import (
	"context"

	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

// OrderCreator prices a journey on the backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, routeID, from, to string) (models.FareQuote, error)
}

// QuoteService obtains backend-priced quotes. It never computes a fare itself.
type QuoteService struct {
	API       OrderCreator
	RequestID string
}

// RequestQuote checks the selection locally and only then asks the backend.
func (s QuoteService) RequestQuote(ctx context.Context, sel models.Selection) (models.FareQuote, error) {
	if err := sel.Validate(); err != nil {
		utils.LogEvent(s.RequestID, "quote", "request", "rejected: "+err.Error())
		return models.FareQuote{}, err
	}
	q, err := s.API.CreateOrder(ctx, sel.RouteID, sel.From, sel.To)
	if err != nil {
		utils.LogEvent(s.RequestID, "quote", "request", "failed: "+err.Error())
		return models.FareQuote{}, err
	}
	// the quote's context is the selection it was asked for
	q.RouteID, q.From, q.To = sel.RouteID, sel.From, sel.To
	return q, nil
}
