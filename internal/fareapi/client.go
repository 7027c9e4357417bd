// Package fareapi talks to the external fare and payment backend.
package fareapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/utils"
)

const maxBodyBytes = 1 << 20

// Client is safe for concurrent use.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	RequestID string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// WithRequestID returns a copy of c that tags calls and logs with id.
func (c *Client) WithRequestID(id string) *Client {
	cp := *c
	cp.RequestID = id
	return &cp
}

type orderRequest struct {
	RouteID      string `json:"routeId"`
	FromStopName string `json:"fromStopName"`
	ToStopName   string `json:"toStopName"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type verifyResponse struct {
	Status string         `json:"status"`
	Ticket *models.Ticket `json:"ticket"`
	Error  string         `json:"error"`
}

// ListRoutes fetches every route the backend knows.
func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	status, body, err := c.do(ctx, http.MethodGet, "/api/routes", nil)
	if err != nil {
		return nil, domain.NetworkError{Op: "list routes", Err: err}
	}
	if !isSuccess(status) {
		return nil, backendError(status, body, "Failed to fetch routes")
	}
	if err := json.Unmarshal(body, &routes); err != nil {
		return nil, domain.BackendError{Status: status, Msg: "invalid routes response"}
	}
	utils.LogEventf(c.RequestID, "fareapi", "list_routes", "count=%d", len(routes))
	return routes, nil
}

// ListStops fetches the stops of routeID, in the order the backend sends them.
func (c *Client) ListStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	var stops []models.Stop
	status, body, err := c.do(ctx, http.MethodGet, "/api/routes/"+url.PathEscape(routeID)+"/stops", nil)
	if err != nil {
		return nil, domain.NetworkError{Op: "list stops", Err: err}
	}
	if status == http.StatusNotFound {
		return nil, domain.NotFoundError{Resource: "route " + routeID}
	}
	if !isSuccess(status) {
		return nil, backendError(status, body, "Failed to fetch stops for route "+routeID)
	}
	if err := json.Unmarshal(body, &stops); err != nil {
		return nil, domain.BackendError{Status: status, Msg: "invalid stops response"}
	}
	utils.LogEventf(c.RequestID, "fareapi", "list_stops", "route_id=%s count=%d", routeID, len(stops))
	return stops, nil
}

// CreateOrder asks the backend to price a journey. The returned quote carries
// the route/from/to it was requested for.
func (c *Client) CreateOrder(ctx context.Context, routeID, from, to string) (models.FareQuote, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/orders", orderRequest{
		RouteID:      routeID,
		FromStopName: from,
		ToStopName:   to,
	})
	if err != nil {
		return models.FareQuote{}, domain.NetworkError{Op: "create order", Err: err}
	}
	if !isSuccess(status) {
		return models.FareQuote{}, backendError(status, body, "Could not calculate fare.")
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.FareQuote{}, domain.BackendError{Status: status, Msg: "invalid order response"}
	}
	if resp.ID == "" || resp.Amount == nil {
		return models.FareQuote{}, domain.BackendError{Status: status, Msg: "order response missing id or amount"}
	}
	if *resp.Amount < 0 {
		return models.FareQuote{}, domain.BackendError{Status: status, Msg: fmt.Sprintf("order %s has negative amount", resp.ID)}
	}

	utils.LogEventf(c.RequestID, "fareapi", "create_order", "order_id=%s route_id=%s amount=%d", resp.ID, routeID, *resp.Amount)
	return models.FareQuote{
		ID:       resp.ID,
		Amount:   *resp.Amount,
		Currency: resp.Currency,
		RouteID:  routeID,
		From:     from,
		To:       to,
	}, nil
}

// VerifyPayment submits the checkout result for authoritative verification.
// The returned ticket has no journey; the caller attaches the quote's.
func (c *Client) VerifyPayment(ctx context.Context, result models.PaymentResult) (models.Ticket, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/payment/verify", result)
	if err != nil {
		return models.Ticket{}, domain.NetworkError{Op: "verify payment", Err: err}
	}
	if status >= http.StatusInternalServerError {
		return models.Ticket{}, domain.NetworkError{Op: "verify payment", Err: fmt.Errorf("backend status %d", status)}
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if isSuccess(status) {
			return models.Ticket{}, domain.NetworkError{Op: "verify payment", Err: fmt.Errorf("undecodable response: %w", err)}
		}
		return models.Ticket{}, domain.VerificationFailedError{}
	}
	if !isSuccess(status) || resp.Status != "success" || resp.Ticket == nil {
		utils.LogEventf(c.RequestID, "fareapi", "verify_payment", "rejected order_id=%s status=%q http=%d", result.OrderID, resp.Status, status)
		return models.Ticket{}, domain.VerificationFailedError{Status: resp.Status}
	}

	utils.LogEventf(c.RequestID, "fareapi", "verify_payment", "order_id=%s ticket_id=%s", result.OrderID, resp.Ticket.ID)
	return *resp.Ticket, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.RequestID != "" {
		req.Header.Set("X-Request-ID", c.RequestID)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// backendError surfaces the backend's message verbatim when it sent one.
func backendError(status int, body []byte, fallback string) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return domain.BackendError{Status: status, Msg: eb.Error}
		}
		if eb.Message != "" {
			return domain.BackendError{Status: status, Msg: eb.Message}
		}
	}
	return domain.BackendError{Status: status, Msg: fallback}
}
