package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "eticket/internal/config"
	intdb "eticket/internal/db"
	"eticket/internal/domain"
	"eticket/internal/domain/models"
)

const ticketTable = "issued_tickets"

// TicketRepository is the ledger of tickets issued through the gateway.
type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, domain.UnavailableError{Resource: "ticket ledger"}
}

// EnsureSchema creates the ledger table when it is missing.
func (r TicketRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	if intdb.HasTable(ctx, db, ticketTable) {
		return nil
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+ticketTable+` (
			ticket_id           VARCHAR(64)  NOT NULL PRIMARY KEY,
			amount              VARCHAR(32)  NOT NULL,
			created_at          VARCHAR(64)  NOT NULL,
			origin              VARCHAR(255) NOT NULL,
			destination         VARCHAR(255) NOT NULL,
			route_id            VARCHAR(64)  NULL,
			order_id            VARCHAR(64)  NULL,
			payment_fingerprint CHAR(64)     NULL,
			recorded_at         TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_issued_tickets_payment (payment_fingerprint)
		) DEFAULT CHARSET=utf8mb4`)
	return err
}

// Save records t. Saving the same ticket again is a no-op.
func (r TicketRepository) Save(ctx context.Context, t models.IssuedTicket) error {
	if t.ID == "" {
		return domain.ValidationError{Field: "ticket_id", Msg: "id tidak valid"}
	}
	db, err := r.db()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO `+ticketTable+`
			(ticket_id, amount, created_at, origin, destination, route_id, order_id, payment_fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE ticket_id = ticket_id`,
		t.ID,
		string(t.Amount),
		t.CreatedAt,
		t.From,
		t.To,
		intdb.NullIfEmpty(t.RouteID),
		intdb.NullIfEmpty(t.OrderID),
		intdb.NullIfEmpty(t.PaymentFingerprint),
	)
	return err
}

// GetByID fetches a ledger row by ticket id.
func (r TicketRepository) GetByID(ctx context.Context, id string) (models.IssuedTicket, error) {
	if id == "" {
		return models.IssuedTicket{}, domain.ValidationError{Field: "ticket_id", Msg: "id tidak valid"}
	}
	db, err := r.db()
	if err != nil {
		return models.IssuedTicket{}, err
	}

	var (
		t      models.IssuedTicket
		amount string
	)
	err = db.QueryRowContext(ctx, `
		SELECT ticket_id,
		       amount,
		       created_at,
		       origin,
		       destination,
		       COALESCE(route_id,''),
		       COALESCE(order_id,''),
		       COALESCE(payment_fingerprint,'')
		FROM `+ticketTable+`
		WHERE ticket_id=? LIMIT 1`, id).Scan(
		&t.ID,
		&amount,
		&t.CreatedAt,
		&t.From,
		&t.To,
		&t.RouteID,
		&t.OrderID,
		&t.PaymentFingerprint,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IssuedTicket{}, domain.NotFoundError{Resource: "ticket " + id}
		}
		return models.IssuedTicket{}, err
	}
	t.Amount = models.DecimalText(amount)
	return t, nil
}
