package models

import (
	"fmt"

	"eticket/internal/domain"
)

// Journey is the origin/destination pair a quote or ticket was made for.
type Journey struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FareQuote is a backend-issued, single-use priced offer ("order").
// Amount is in minor currency units (paise) and is never recomputed locally.
type FareQuote struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	RouteID  string `json:"route_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Journey returns the quote's creation context.
func (q FareQuote) Journey() Journey {
	return Journey{From: q.From, To: q.To}
}

// Description is the text shown by the checkout widget.
func (q FareQuote) Description() string {
	return fmt.Sprintf("Ticket from %s to %s", q.From, q.To)
}

// Selection is what the passenger picked before asking for a fare.
type Selection struct {
	RouteID string
	From    string
	To      string
	Stops   []Stop
}

// Validate checks the preconditions for asking a fare: a route, two distinct
// stops, both on the route's most recently fetched stop list.
func (s Selection) Validate() error {
	switch {
	case s.RouteID == "":
		return domain.ValidationError{Field: "routeId", Msg: "Please select a route."}
	case s.From == "" || s.To == "":
		return domain.ValidationError{Msg: "Please select a starting point and a destination."}
	case s.From == s.To:
		return domain.ValidationError{Msg: "Start and destination cannot be the same."}
	case len(s.Stops) == 0:
		return domain.ValidationError{Field: "stops", Msg: "Stops for this route are not loaded yet."}
	case !HasStop(s.Stops, s.From):
		return domain.ValidationError{Field: "fromStopName", Msg: fmt.Sprintf("%q is not a stop on route %s", s.From, s.RouteID)}
	case !HasStop(s.Stops, s.To):
		return domain.ValidationError{Field: "toStopName", Msg: fmt.Sprintf("%q is not a stop on route %s", s.To, s.RouteID)}
	}
	return nil
}
