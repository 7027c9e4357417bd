package handlers

import (
	"net/http"
	"time"

	"eticket/internal/booking"
	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/http/middleware"
	"eticket/internal/services"
	"eticket/internal/session"
	"eticket/internal/utils"

	"github.com/gin-gonic/gin"
)

// Gateway serves the booking page. Booking state lives in the session
// store; handlers only translate HTTP to session operations.
type Gateway struct {
	Store    *session.Store
	Tokens   session.Tokens
	Checkout services.CheckoutService
	Ledger   services.TicketLedger
}

type routeRequest struct {
	RouteID string `json:"routeId"`
}

type stopRequest struct {
	Stop string `json:"stop"`
}

// respondView answers a session operation. The view is always included so
// the page can render the single message slot, also on errors.
func respondView(c *gin.Context, v booking.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"session": v})
		return
	}
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "something went wrong"
	}
	c.JSON(status, gin.H{
		"error":      msg,
		"code":       domain.Kind(err),
		"request_id": middleware.GetRequestID(c),
		"session":    v,
	})
}

// POST /api/sessions?routeId=&currentStop=
func (g *Gateway) StartSession(c *gin.Context) {
	var params domain.EntryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid query", err)
		return
	}
	params.RouteID = utils.TrimOrEmpty(params.RouteID)
	params.CurrentStop = utils.TrimOrEmpty(params.CurrentStop)

	sess := g.Store.Create(params)
	token, err := g.Tokens.Sign(sess.ID, time.Now())
	if err != nil {
		g.Store.Remove(sess.ID)
		RespondDomainError(c, domain.InternalError{Msg: "could not sign session token", Err: err})
		return
	}

	// A start that fails (unknown scanned route, backend down) still yields
	// a session; the view carries the message and the page can retry.
	v, err := sess.Start(c.Request.Context())
	if err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "session", "start", "session_id="+sess.ID+" "+err.Error())
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_in": int(g.Tokens.TTL.Seconds()),
		"session":    v,
	})
}

// GET /api/session
func (g *Gateway) GetView(c *gin.Context) {
	respondView(c, middleware.GetSession(c).View(), nil)
}

// POST /api/session/routes/refresh
func (g *Gateway) DiscoverRoutes(c *gin.Context) {
	v, err := middleware.GetSession(c).DiscoverRoutes(c.Request.Context())
	respondView(c, v, err)
}

// PUT /api/session/route
func (g *Gateway) SelectRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := middleware.GetSession(c).SelectRoute(c.Request.Context(), req.RouteID)
	respondView(c, v, err)
}

// PUT /api/session/origin
func (g *Gateway) SelectOrigin(c *gin.Context) {
	var req stopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := middleware.GetSession(c).SelectOrigin(req.Stop)
	respondView(c, v, err)
}

// PUT /api/session/destination
func (g *Gateway) SelectDestination(c *gin.Context) {
	var req stopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := middleware.GetSession(c).SelectDestination(req.Stop)
	respondView(c, v, err)
}

// POST /api/session/quote
func (g *Gateway) RequestQuote(c *gin.Context) {
	v, err := middleware.GetSession(c).RequestQuote(c.Request.Context())
	respondView(c, v, err)
}

// POST /api/session/checkout
func (g *Gateway) StartCheckout(c *gin.Context) {
	opts, v, err := middleware.GetSession(c).StartPayment(c.Request.Context())
	if err != nil {
		respondView(c, v, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": opts, "session": v})
}

// POST /api/session/checkout/result
func (g *Gateway) CheckoutResult(c *gin.Context) {
	var result models.PaymentResult
	if !BindJSONOrError(c, &result) {
		return
	}
	v, err := middleware.GetSession(c).CompletePayment(c.Request.Context(), result)
	respondView(c, v, err)
}

// POST /api/session/checkout/cancel
func (g *Gateway) CheckoutCancel(c *gin.Context) {
	v, err := middleware.GetSession(c).CancelPayment()
	respondView(c, v, err)
}

// POST /api/session/verify/retry
func (g *Gateway) RetryVerification(c *gin.Context) {
	v, err := middleware.GetSession(c).RetryVerification(c.Request.Context())
	respondView(c, v, err)
}

// POST /api/session/reset
func (g *Gateway) Reset(c *gin.Context) {
	v, err := middleware.GetSession(c).Reset(c.Request.Context())
	respondView(c, v, err)
}
