package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"strings"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/utils"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/phpdave11/gofpdf"
)

const defaultQRSize = 180

// TicketPayload is the machine-readable identity of a ticket encoded in its QR code.
type TicketPayload struct {
	TicketID  string `json:"ticketId"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// DocsService renders issued tickets. It only reads the ticket it is given.
type DocsService struct {
	RequestID string
}

func payloadOf(t models.Ticket) TicketPayload {
	return TicketPayload{
		TicketID:  t.ID,
		Amount:    string(t.Amount),
		Timestamp: t.CreatedAt,
		From:      t.From,
		To:        t.To,
	}
}

// Payload returns the JSON string encoded in the ticket's QR code.
func (s DocsService) Payload(t models.Ticket) (string, error) {
	if strings.TrimSpace(t.ID) == "" {
		return "", domain.ValidationError{Field: "ticket_id", Msg: "ticket has no id"}
	}
	raw, err := json.Marshal(payloadOf(t))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParsePayload decodes a scanned ticket payload.
func ParsePayload(raw string) (TicketPayload, error) {
	var p TicketPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return TicketPayload{}, domain.ValidationError{Field: "payload", Msg: "not a ticket payload", Err: err}
	}
	if p.TicketID == "" {
		return TicketPayload{}, domain.ValidationError{Field: "payload", Msg: "ticketId missing"}
	}
	return p, nil
}

// QRCode renders the ticket payload as a square PNG QR code of size pixels.
func (s DocsService) QRCode(t models.Ticket, size int) ([]byte, error) {
	payload, err := s.Payload(t)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "docs", "ticket_qr", "ticket_id="+t.ID)
	return buf.Bytes(), nil
}

// ETicketPDF renders a printable e-ticket with the QR code embedded.
func (s DocsService) ETicketPDF(t models.Ticket) ([]byte, string, error) {
	qrPNG, err := s.QRCode(t, 360)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Payment Successful", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Your e-Ticket is ready", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("From      : %s", utils.Safe(t.From, "-")),
		fmt.Sprintf("To        : %s", utils.Safe(t.To, "-")),
		fmt.Sprintf("Ticket ID : %s", utils.Safe(t.ID, "-")),
		fmt.Sprintf("Paid      : INR %s", utils.FormatMoney(t.Amount.Float())),
		fmt.Sprintf("Date      : %s", utils.Safe(utils.FormatTimestamp(t.CreatedAt), "-")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	name := "ticket-qr-" + utils.SafeFilenamePart(t.ID)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pageW, _ := pdf.GetPageSize()
	const qrMM = 60.0
	pdf.ImageOptions(name, (pageW-qrMM)/2, pdf.GetY()+6, qrMM, qrMM, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(pdf.GetY() + qrMM + 12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Show this code to the conductor when asked. Valid for one journey.", "", "C", false)

	if err := pdf.Error(); err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	utils.LogEvent(s.RequestID, "docs", "ticket_pdf", "ticket_id="+t.ID)
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", utils.SafeFilenamePart(t.ID)), nil
}

// DisplayPaid renders the paid amount the way the ticket card shows it.
func DisplayPaid(t models.Ticket) string {
	return "₹" + utils.FormatMoney(t.Amount.Float())
}
