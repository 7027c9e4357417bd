package services

import (
	"context"
	"sync"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

// CheckoutOptions is what the hosted checkout widget is opened with.
// Amount and currency are the quote's, unmodified.
type CheckoutOptions struct {
	Key         string `json:"key"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OrderID     string `json:"order_id"`
}

// CheckoutService opens checkout interactions for quotes.
type CheckoutService struct {
	KeyID string
	Name  string
	// Disabled marks the widget as not ready even when a key is configured.
	Disabled  bool
	RequestID string
}

// Available reports whether a checkout can be opened.
func (s CheckoutService) Available() bool {
	return s.KeyID != "" && !s.Disabled
}

// Initiate opens a checkout scoped to exactly one quote. Exactly one of
// onResult or onCancel fires, when the attempt is completed or cancelled.
func (s CheckoutService) Initiate(quote models.FareQuote, description string, onResult func(context.Context, models.PaymentResult), onCancel func()) (*CheckoutAttempt, error) {
	if !s.Available() {
		return nil, domain.UnavailableError{Resource: "checkout"}
	}
	utils.LogEventf(s.RequestID, "checkout", "initiate", "order_id=%s amount=%d currency=%s", quote.ID, quote.Amount, quote.Currency)
	return &CheckoutAttempt{
		Options: CheckoutOptions{
			Key:         s.KeyID,
			Amount:      quote.Amount,
			Currency:    quote.Currency,
			Name:        s.Name,
			Description: description,
			OrderID:     quote.ID,
		},
		onResult: onResult,
		onCancel: onCancel,
	}, nil
}

// CheckoutAttempt is one open checkout interaction.
type CheckoutAttempt struct {
	Options CheckoutOptions

	mu       sync.Mutex
	closed   bool
	onResult func(context.Context, models.PaymentResult)
	onCancel func()
}

// Complete delivers the widget's result. The callback runs on the caller's goroutine.
func (a *CheckoutAttempt) Complete(ctx context.Context, result models.PaymentResult) error {
	if !a.close() {
		return domain.ConflictError{Resource: "checkout", Msg: "checkout already closed"}
	}
	if a.onResult != nil {
		a.onResult(ctx, result)
	}
	return nil
}

// Cancel reports that the passenger dismissed the widget.
func (a *CheckoutAttempt) Cancel() error {
	if !a.close() {
		return domain.ConflictError{Resource: "checkout", Msg: "checkout already closed"}
	}
	if a.onCancel != nil {
		a.onCancel()
	}
	return nil
}

// Closed reports whether a terminal callback has fired.
func (a *CheckoutAttempt) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *CheckoutAttempt) close() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.closed = true
	return true
}
