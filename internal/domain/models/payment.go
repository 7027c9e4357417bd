package models

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// PaymentResult is the opaque proof returned by the checkout widget.
// It is forwarded to verification exactly as received.
type PaymentResult struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Fingerprint is a stable digest of the result, used to recognise a resubmission.
func (p PaymentResult) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{p.PaymentID, p.OrderID, p.Signature} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
