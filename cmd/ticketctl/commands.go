package main

import (
	"encoding/json"
	"fmt"
	"os"

	"eticket/internal/booking"
	intconfig "eticket/internal/config"
	"eticket/internal/domain"
	"eticket/internal/domain/models"
	"eticket/internal/repositories"
	"eticket/internal/services"

	"github.com/spf13/cobra"
)

var (
	routeArg   string
	fromArg    string
	toArg      string
	paymentArg string
	orderArg   string
	sigArg     string
	ticketArg  string
	amountArg  string
	tsArg      string
	pngOut     string
	pdfOut     string
	payloadArg string
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		routes, err := services.CatalogService{Source: client()}.ListRoutes(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range routes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.Name)
		}
		return nil
	},
}

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "List the stops of a route in travel order",
	RunE: func(cmd *cobra.Command, args []string) error {
		stops, err := services.CatalogService{Source: client()}.ListStops(cmd.Context(), routeArg)
		if err != nil {
			return err
		}
		for _, s := range stops {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.Sequence, s.Name)
		}
		return nil
	},
}

// quoteCmd runs the same booking session the gateway runs, up to the quote.
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a journey on a route",
	RunE: func(cmd *cobra.Command, args []string) error {
		api := client()
		sess := booking.NewSession("ticketctl", domain.EntryParams{RouteID: routeArg, CurrentStop: fromArg}, booking.Deps{
			Catalog: services.CatalogService{Source: api},
			Quotes:  services.QuoteService{API: api},
		})
		ctx := cmd.Context()
		if _, err := sess.Start(ctx); err != nil {
			return err
		}
		if _, err := sess.SelectOrigin(fromArg); err != nil {
			return err
		}
		if _, err := sess.SelectDestination(toArg); err != nil {
			return err
		}
		v, err := sess.RequestQuote(ctx)
		if err != nil {
			return err
		}
		if v.Quote == nil {
			return fmt.Errorf("no quote received")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "order %s: %s to %s, %s\n", v.Quote.ID, v.Quote.From, v.Quote.To, v.Quote.Display)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Submit a checkout result for verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := models.PaymentResult{PaymentID: paymentArg, OrderID: orderArg, Signature: sigArg}
		t, err := client().VerifyPayment(cmd.Context(), result)
		if err != nil {
			return err
		}
		t.From, t.To = fromArg, toArg
		return printTicket(cmd, t)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a ticket as QR code and PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := models.Ticket{ID: ticketArg, Amount: models.DecimalText(amountArg), CreatedAt: tsArg, From: fromArg, To: toArg}
		return printTicket(cmd, t)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Check a scanned ticket payload against the ledger (DB_DSN)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		svc := services.TicketService{Ledger: repositories.TicketRepository{DB: db}, RequestID: "ticketctl"}
		out, err := svc.Inspect(cmd.Context(), payloadArg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// printTicket prints the ticket card and writes the requested renderings.
func printTicket(cmd *cobra.Command, t models.Ticket) error {
	docs := services.DocsService{RequestID: "ticketctl"}
	payload, err := docs.Payload(t)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Payment Successful")
	fmt.Fprintf(w, "From: %s\nTo: %s\nTicket ID: %s\nPaid: %s\nDate: %s\n", t.From, t.To, t.ID, services.DisplayPaid(t), t.CreatedAt)
	fmt.Fprintf(w, "QR payload: %s\n", payload)

	if pngOut != "" {
		png, err := docs.QRCode(t, 0)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pngOut, png, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", pngOut)
	}
	if pdfOut != "" {
		pdf, _, err := docs.ETicketPDF(t)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfOut, pdf, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", pdfOut)
	}
	return nil
}

func init() {
	stopsCmd.Flags().StringVarP(&routeArg, "route", "r", "", "Route id")
	stopsCmd.MarkFlagRequired("route")

	quoteCmd.Flags().StringVarP(&routeArg, "route", "r", "", "Route id")
	quoteCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Origin stop")
	quoteCmd.Flags().StringVarP(&toArg, "to", "t", "", "Destination stop")
	quoteCmd.MarkFlagRequired("route")

	verifyCmd.Flags().StringVar(&paymentArg, "payment-id", "", "Checkout payment id")
	verifyCmd.Flags().StringVar(&orderArg, "order-id", "", "Order id of the paid quote")
	verifyCmd.Flags().StringVar(&sigArg, "signature", "", "Checkout signature")
	verifyCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Origin of the paid quote")
	verifyCmd.Flags().StringVarP(&toArg, "to", "t", "", "Destination of the paid quote")

	renderCmd.Flags().StringVar(&ticketArg, "ticket-id", "", "Ticket id")
	renderCmd.Flags().StringVar(&amountArg, "amount", "", "Paid amount as issued, e.g. 50.00")
	renderCmd.Flags().StringVar(&tsArg, "timestamp", "", "Issue timestamp")
	renderCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Origin")
	renderCmd.Flags().StringVarP(&toArg, "to", "t", "", "Destination")
	renderCmd.MarkFlagRequired("ticket-id")

	for _, c := range []*cobra.Command{verifyCmd, renderCmd} {
		c.Flags().StringVar(&pngOut, "png", "", "Write the QR code PNG to this file")
		c.Flags().StringVar(&pdfOut, "pdf", "", "Write the e-ticket PDF to this file")
	}

	inspectCmd.Flags().StringVar(&payloadArg, "payload", "", "Scanned QR payload (JSON)")
	inspectCmd.MarkFlagRequired("payload")
}
