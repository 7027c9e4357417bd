package api

import (
	"log"
	stdhttp "net/http"

	intconfig "eticket/internal/config"
	h "eticket/internal/http/handlers"
	"eticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, gw *h.Gateway) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", gw.Health)
		api.POST("/sessions", gw.StartSession)

		// Ticket inspection (conductor side)
		tickets := api.Group("/tickets")
		tickets.POST("/inspect", gw.InspectTicket)
		tickets.GET("/:id", gw.LookupTicket)

		// Booking session, addressed by its bearer token
		sess := api.Group("/session", middleware.RequireSession(gw.Tokens, gw.Store))
		sess.GET("", gw.GetView)
		sess.POST("/routes/refresh", gw.DiscoverRoutes)
		sess.PUT("/route", gw.SelectRoute)
		sess.PUT("/origin", gw.SelectOrigin)
		sess.PUT("/destination", gw.SelectDestination)
		sess.POST("/quote", gw.RequestQuote)
		sess.POST("/checkout", gw.StartCheckout)
		sess.POST("/checkout/result", gw.CheckoutResult)
		sess.POST("/checkout/cancel", gw.CheckoutCancel)
		sess.POST("/verify/retry", gw.RetryVerification)
		sess.POST("/reset", gw.Reset)
		sess.GET("/ticket", gw.GetTicket)
		sess.GET("/ticket/qr.png", gw.TicketQR)
		sess.GET("/ticket/pdf", gw.TicketPDF)
	}

	return r
}
