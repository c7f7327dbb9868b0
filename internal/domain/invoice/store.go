package invoice

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("invoice not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const invoiceColumns = `
  id, company_id, number, customer_name, issued_on, due_on,
  status, currency, total, COALESCE(created_by::text, ''),
  created_at, updated_at
`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Number, &inv.CustomerName, &inv.IssuedOn, &inv.DueOn,
		&inv.Status, &inv.Currency, &inv.Total, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return inv, ErrNotFound
	}
	return inv, err
}

func (s *Store) Get(ctx context.Context, companyID, id string) (Invoice, error) {
	row := s.DB.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE company_id = $1 AND id = $2",
		companyID, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items, err = s.items(ctx, inv.ID)
	return inv, err
}

func (s *Store) items(ctx context.Context, invoiceID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, description, quantity, unit_price, position
    FROM invoice_items
    WHERE invoice_id = $1
    ORDER BY position
  `, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Description, &item.Quantity, &item.UnitPrice, &item.Position); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, companyID string, limit, offset int) ([]Invoice, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM invoices WHERE company_id = $1", companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE company_id = $1 ORDER BY issued_on DESC, number DESC LIMIT $2 OFFSET $3",
		companyID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

// Insert writes the invoice and its items in one transaction.
func (s *Store) Insert(ctx context.Context, inv Invoice) (Invoice, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Invoice{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
    INSERT INTO invoices (company_id, number, customer_name, issued_on, due_on, status, currency, total, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING `+invoiceColumns,
		inv.CompanyID, inv.Number, inv.CustomerName, inv.IssuedOn, inv.DueOn,
		inv.Status, inv.Currency, inv.Total, nullIfEmpty(inv.CreatedBy),
	)
	created, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}

	for pos, item := range inv.Items {
		var saved Item
		err := tx.QueryRow(ctx, `
      INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, position)
      VALUES ($1,$2,$3,$4,$5)
      RETURNING id, description, quantity, unit_price, position
    `, created.ID, item.Description, item.Quantity, item.UnitPrice, pos).
			Scan(&saved.ID, &saved.Description, &saved.Quantity, &saved.UnitPrice, &saved.Position)
		if err != nil {
			return Invoice{}, err
		}
		created.Items = append(created.Items, saved)
	}

	if err := tx.Commit(ctx); err != nil {
		return Invoice{}, err
	}
	return created, nil
}

func (s *Store) SetStatus(ctx context.Context, companyID, id string, status InvoiceStatus) (Invoice, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE invoices
    SET status = $1, updated_at = now()
    WHERE company_id = $2 AND id = $3
    RETURNING `+invoiceColumns,
		status, companyID, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items, err = s.items(ctx, inv.ID)
	return inv, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
