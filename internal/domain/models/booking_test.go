package models

import (
	"testing"

	"eticket/internal/domain"
)

func TestSelectionValidate(t *testing.T) {
	stops := []Stop{{Name: "A", Sequence: 1}, {Name: "B", Sequence: 2}, {Name: "C", Sequence: 3}}

	cases := []struct {
		name string
		sel  Selection
		ok   bool
	}{
		{"forward", Selection{RouteID: "R1", From: "A", To: "C", Stops: stops}, true},
		{"reverse direction", Selection{RouteID: "R1", From: "C", To: "A", Stops: stops}, true},
		{"same stop", Selection{RouteID: "R1", From: "B", To: "B", Stops: stops}, false},
		{"missing to", Selection{RouteID: "R1", From: "A", Stops: stops}, false},
		{"unknown stop", Selection{RouteID: "R1", From: "A", To: "Z", Stops: stops}, false},
		{"no stops loaded", Selection{RouteID: "R1", From: "A", To: "B"}, false},
		{"no route", Selection{From: "A", To: "B", Stops: stops}, false},
	}
	for _, tc := range cases {
		err := tc.sel.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !domain.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestSortStopsKeepsInputUntouched(t *testing.T) {
	in := []Stop{{Name: "C", Sequence: 3}, {Name: "A", Sequence: 1}, {Name: "B", Sequence: 2}}
	out := SortStops(in)
	if out[0].Name != "A" || out[2].Name != "C" {
		t.Fatalf("unexpected order %+v", out)
	}
	if in[0].Name != "C" {
		t.Fatalf("input slice was modified")
	}
}

func TestPaymentFingerprintStable(t *testing.T) {
	a := PaymentResult{PaymentID: "p1", OrderID: "ord_1", Signature: "sig1"}
	b := PaymentResult{PaymentID: "p1", OrderID: "ord_1", Signature: "sig1"}
	c := PaymentResult{PaymentID: "p1o", OrderID: "rd_1", Signature: "sig1"}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("same result should give same fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("field boundaries must be part of the fingerprint")
	}
}
