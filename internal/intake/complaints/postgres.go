package complaints

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS complaints (
	id BIGSERIAL PRIMARY KEY,
	complaint_number TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	sub_category TEXT NOT NULL DEFAULT '',
	attachment_path TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	pan TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	dob TEXT NOT NULL DEFAULT '',
	broker_name TEXT NOT NULL DEFAULT '',
	exchange_name TEXT NOT NULL DEFAULT '',
	client_or_dp TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	holding_mode TEXT NOT NULL DEFAULT '',
	folio_number TEXT NOT NULL DEFAULT '',
	demat_account_number TEXT NOT NULL DEFAULT '',
	mutual_fund_name TEXT NOT NULL DEFAULT '',
	investment_advisor_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS complaints_created_at_idx ON complaints (created_at DESC);`

const complaintColumns = `id, complaint_number, description, category, sub_category, attachment_path,
		full_name, phone, email, pan, address, dob,
		broker_name, exchange_name, client_or_dp,
		company_name, holding_mode, folio_number, demat_account_number,
		mutual_fund_name, investment_advisor_name, created_at`

const insertComplaintSQL = `INSERT INTO complaints (
		complaint_number, description, category, sub_category, attachment_path,
		full_name, phone, email, pan, address, dob,
		broker_name, exchange_name, client_or_dp,
		company_name, holding_mode, folio_number, demat_account_number,
		mutual_fund_name, investment_advisor_name
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	RETURNING id, created_at`

const getComplaintSQL = `SELECT ` + complaintColumns + `
	FROM complaints
	WHERE complaint_number = $1`

const listComplaintsSQL = `SELECT ` + complaintColumns + `
	FROM complaints
	WHERE $1 = '' OR complaint_number ILIKE '%' || $1 || '%'
		OR description ILIKE '%' || $1 || '%'
		OR category ILIKE '%' || $1 || '%'
		OR full_name ILIKE '%' || $1 || '%'
	ORDER BY id DESC
	LIMIT $2 OFFSET $3`

// PostgresRepository stores complaints in the complaints table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL complaint repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// Migrate creates the complaints table and its index when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate complaints: %w", errx.WrapDB(err))
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, c *Complaint) (string, error) {
	if c == nil || c.Number == "" {
		return "", fmt.Errorf("complaint without reference")
	}
	d := c.Details
	err := r.db.QueryRowxContext(ctx, insertComplaintSQL,
		c.Number, c.Description, c.Category, c.SubCategory, c.AttachmentPath,
		d.FullName, d.Phone, d.Email, d.PAN, d.Address, d.DOB,
		d.BrokerName, d.ExchangeName, d.ClientOrDP,
		d.CompanyName, string(d.HoldingMode), d.FolioNumber, d.DematAccountNumber,
		d.MutualFundName, d.InvestmentAdviserName,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save complaint %s: %w", c.Number, errx.WrapDB(err))
	}
	return c.Number, nil
}

func (r *PostgresRepository) Get(ctx context.Context, number string) (*Complaint, error) {
	var c Complaint
	if err := r.db.GetContext(ctx, &c, getComplaintSQL, number); err != nil {
		return nil, errx.WrapDB(err)
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Complaint, error) {
	f = f.normalized()
	out := []Complaint{}
	if err := r.db.SelectContext(ctx, &out, listComplaintsSQL, f.Query, f.Limit, f.Offset); err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", errx.WrapDB(err))
	}
	return out, nil
}
