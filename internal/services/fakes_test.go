package services

import (
	"context"
	"sync"
	"time"

	"eticket/internal/domain/models"
)

type fakeSource struct {
	mu     sync.Mutex
	routes []models.Route
	stops  map[string][]models.Stop
	calls  int
}

func (f *fakeSource) ListRoutes(ctx context.Context) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.routes, nil
}

func (f *fakeSource) ListStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.stops[routeID], nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]any
}

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]models.Route:
		*d = v.([]models.Route)
	case *[]models.Stop:
		*d = v.([]models.Stop)
	}
	return true, nil
}

func (c *memCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string]any{}
	}
	c.data[key] = v
	return nil
}

type fakeOrders struct {
	calls int
	quote models.FareQuote
	err   error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, routeID, from, to string) (models.FareQuote, error) {
	f.calls++
	if f.err != nil {
		return models.FareQuote{}, f.err
	}
	return f.quote, nil
}

type fakeVerifyAPI struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
	ticket  models.Ticket
	err     error
}

func (f *fakeVerifyAPI) VerifyPayment(ctx context.Context, result models.PaymentResult) (models.Ticket, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return models.Ticket{}, f.err
	}
	return f.ticket, nil
}
