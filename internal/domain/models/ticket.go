package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DecimalText keeps a backend amount as the decimal text it was sent as.
// The backend may send either "50.00" or 50.
type DecimalText string

func (d *DecimalText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DecimalText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*d = DecimalText(n.String())
	return nil
}

// Float parses the amount, returning 0 when it is not numeric.
func (d DecimalText) Float() float64 {
	f, err := strconv.ParseFloat(string(d), 64)
	if err != nil {
		return 0
	}
	return f
}

// Ticket is an issued e-ticket. From/To are copied from the quote that was paid.
type Ticket struct {
	ID        string      `json:"ticket_id"`
	Amount    DecimalText `json:"amount"`
	CreatedAt string      `json:"created_at"`
	From      string      `json:"from"`
	To        string      `json:"to"`
}

// Journey returns the journey the ticket is valid for.
func (t Ticket) Journey() Journey {
	return Journey{From: t.From, To: t.To}
}

// IssuedTicket is a ledger row: the ticket plus what it was issued for.
type IssuedTicket struct {
	Ticket
	RouteID            string
	OrderID            string
	PaymentFingerprint string
}
