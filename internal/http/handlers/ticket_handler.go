package handlers

import (
	"net/http"
	"strconv"

	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/http/middleware"
	"eticket/internal/services"

	"github.com/gin-gonic/gin"
)

type inspectRequest struct {
	Payload string `json:"payload"`
}

// sessionTicket returns the ticket held by the request's session.
func sessionTicket(c *gin.Context) (models.Ticket, bool) {
	v := middleware.GetSession(c).View()
	if v.Ticket == nil {
		RespondDomainError(c, domain.NotFoundError{Resource: "ticket"})
		return models.Ticket{}, false
	}
	return *v.Ticket, true
}

// GET /api/session/ticket
func (g *Gateway) GetTicket(c *gin.Context) {
	t, ok := sessionTicket(c)
	if !ok {
		return
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	payload, err := docs.Payload(t)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":  t,
		"payload": payload,
		"paid":    services.DisplayPaid(t),
		"title":   "Payment Successful",
	})
}

// GET /api/session/ticket/qr.png?size=
func (g *Gateway) TicketQR(c *gin.Context) {
	t, ok := sessionTicket(c)
	if !ok {
		return
	}
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			RespondDomainError(c, domain.ValidationError{Field: "size", Msg: "size must be between 64 and 1024"})
			return
		}
		size = n
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	png, err := docs.QRCode(t, size)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/session/ticket/pdf
func (g *Gateway) TicketPDF(c *gin.Context) {
	t, ok := sessionTicket(c)
	if !ok {
		return
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := docs.ETicketPDF(t)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// POST /api/tickets/inspect
func (g *Gateway) InspectTicket(c *gin.Context) {
	var req inspectRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := services.TicketService{Ledger: g.Ledger, RequestID: middleware.GetRequestID(c)}
	out, err := svc.Inspect(c.Request.Context(), req.Payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/tickets/:id
func (g *Gateway) LookupTicket(c *gin.Context) {
	svc := services.TicketService{Ledger: g.Ledger, RequestID: middleware.GetRequestID(c)}
	t, err := svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t, "paid": services.DisplayPaid(t)})
}
