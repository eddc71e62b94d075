package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umutoz/defter-be/internal/models"
	"github.com/umutoz/defter-be/internal/money"
)

// Bill listing status filters, from the invoices screen.
const (
	BillStatusAll     = "all"
	BillStatusPaid    = "paid"
	BillStatusUnpaid  = "unpaid"
	BillStatusOverdue = "overdue"
)

// BillParams carries input for creating or editing a bill.
type BillParams struct {
	Title       string
	Amount      float64
	DueDate     *models.Date
	Description string
}

// BillServiceProvider defines the interface for bill services.
type BillServiceProvider interface {
	CreateBill(ctx context.Context, userID string, params BillParams) (models.Bill, error)
	ListBills(ctx context.Context, userID, status string) ([]models.Bill, error)
	UpdateBill(ctx context.Context, userID, id string, params BillParams) (models.Bill, error)
	DeleteBill(ctx context.Context, userID, id string) error
	SetBillPaid(ctx context.Context, userID, id string, paid bool) (models.Bill, error)
}

// BillService provides business logic for bills and keeps the
// bill-to-transaction link consistent: a paid bill always has exactly
// one mirrored expense transaction, an unpaid bill has none.
type BillService struct {
	db *sql.DB
}

// NewBillService creates a new BillService.
func NewBillService(db *sql.DB) *BillService {
	return &BillService{db: db}
}

func validateBillParams(params BillParams) (string, money.Cents, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return "", 0, fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}
	amount, err := money.FromFloat(params.Amount)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return title, amount, nil
}

// paymentTitle derives the linked transaction's title from the bill's.
func paymentTitle(billTitle string) string {
	return "Payment: " + billTitle
}

// CreateBill persists a new bill, initially unpaid.
func (s *BillService) CreateBill(ctx context.Context, userID string, params BillParams) (models.Bill, error) {
	title, amount, err := validateBillParams(params)
	if err != nil {
		return models.Bill{}, err
	}

	bill := models.Bill{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		DueDate:     params.DueDate,
		Description: strings.TrimSpace(params.Description),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	var dueDate any
	if bill.DueDate != nil {
		dueDate = bill.DueDate.String()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bills(id, user_id, title, amount_cents, due_date, description, is_paid, paid_at, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, 0, NULL, ?)`,
		bill.ID, bill.UserID, bill.Title, int64(bill.Amount), dueDate, bill.Description, bill.CreatedAt.Unix())
	if err != nil {
		return models.Bill{}, err
	}
	return bill, nil
}

// ListBills returns the user's bills, newest first, optionally narrowed
// to paid, unpaid or overdue ones.
func (s *BillService) ListBills(ctx context.Context, userID, status string) ([]models.Bill, error) {
	query := `SELECT id, user_id, title, amount_cents, due_date, description, is_paid, paid_at, created_at
		FROM bills WHERE user_id = ?`
	args := []any{userID}

	now := time.Now()
	switch status {
	case "", BillStatusAll:
	case BillStatusPaid:
		query += " AND is_paid = 1"
	case BillStatusUnpaid:
		query += " AND is_paid = 0"
	case BillStatusOverdue:
		query += " AND is_paid = 0 AND due_date IS NOT NULL AND due_date < ?"
		args = append(args, now.UTC().Format(models.DateLayout))
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := []models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bill.IsOverdue = bill.Overdue(now)
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// UpdateBill edits a bill's title, amount, due date and description.
// If the bill is paid, the mirrored expense transaction is updated in
// the same store transaction so the two never disagree.
func (s *BillService) UpdateBill(ctx context.Context, userID, id string, params BillParams) (models.Bill, error) {
	title, amount, err := validateBillParams(params)
	if err != nil {
		return models.Bill{}, err
	}

	var dueDate any
	if params.DueDate != nil {
		dueDate = params.DueDate.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Bill{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET title = ?, amount_cents = ?, due_date = ?, description = ? WHERE id = ? AND user_id = ?",
		title, int64(amount), dueDate, strings.TrimSpace(params.Description), id, userID)
	if err != nil {
		return models.Bill{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Bill{}, err
	}
	if n == 0 {
		return models.Bill{}, fmt.Errorf("bill %s: %w", id, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE transactions SET title = ?, amount_cents = ? WHERE user_id = ? AND source = ? AND source_id = ?",
		paymentTitle(title), int64(amount), userID, models.SourceBill, id)
	if err != nil {
		return models.Bill{}, err
	}

	bill, err := getBillTx(ctx, tx, userID, id)
	if err != nil {
		return models.Bill{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Bill{}, err
	}
	bill.IsOverdue = bill.Overdue(time.Now())
	return bill, nil
}

// DeleteBill removes a bill and, first, any transaction linked to it,
// atomically from the caller's point of view.
func (s *BillService) DeleteBill(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM transactions WHERE user_id = ? AND source = ? AND source_id = ?",
		userID, models.SourceBill, id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// SetBillPaid flips a bill's paid state. Paying creates the mirrored
// expense transaction; unpaying removes it. Both directions are
// idempotent, and the flip is guarded by a conditional update on
// is_paid so two concurrent requests cannot both create a transaction.
func (s *BillService) SetBillPaid(ctx context.Context, userID, id string, paid bool) (models.Bill, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Bill{}, err
	}
	defer tx.Rollback()

	bill, err := getBillTx(ctx, tx, userID, id)
	if err != nil {
		return models.Bill{}, err
	}

	if paid {
		paidAt := time.Now().UTC().Truncate(time.Second)
		res, err := tx.ExecContext(ctx,
			"UPDATE bills SET is_paid = 1, paid_at = ? WHERE id = ? AND user_id = ? AND is_paid = 0",
			paidAt.Unix(), id, userID)
		if err != nil {
			return models.Bill{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return models.Bill{}, err
		}
		if n == 0 {
			// Already paid: nothing to do.
			if err := tx.Commit(); err != nil {
				return models.Bill{}, err
			}
			bill.IsOverdue = bill.Overdue(time.Now())
			return bill, nil
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions(id, user_id, title, amount_cents, kind, source, source_id, payment_method, description, created_at)
			 VALUES(?, ?, ?, ?, ?, ?, ?, '', '', ?)`,
			uuid.New().String(), userID, paymentTitle(bill.Title), int64(bill.Amount),
			models.KindExpense, models.SourceBill, id, paidAt.Unix())
		if err != nil {
			return models.Bill{}, err
		}

		bill.IsPaid = true
		bill.PaidAt = &paidAt
	} else {
		res, err := tx.ExecContext(ctx,
			"UPDATE bills SET is_paid = 0, paid_at = NULL WHERE id = ? AND user_id = ? AND is_paid = 1",
			id, userID)
		if err != nil {
			return models.Bill{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return models.Bill{}, err
		}
		if n == 0 {
			// Already unpaid: nothing to do.
			if err := tx.Commit(); err != nil {
				return models.Bill{}, err
			}
			bill.IsOverdue = bill.Overdue(time.Now())
			return bill, nil
		}

		// Set-based cleanup: removes duplicates too, should any exist.
		_, err = tx.ExecContext(ctx,
			"DELETE FROM transactions WHERE user_id = ? AND source = ? AND source_id = ?",
			userID, models.SourceBill, id)
		if err != nil {
			return models.Bill{}, err
		}

		bill.IsPaid = false
		bill.PaidAt = nil
	}

	if err := tx.Commit(); err != nil {
		return models.Bill{}, err
	}
	bill.IsOverdue = bill.Overdue(time.Now())
	return bill, nil
}

// rowScanner lets scanBill work for both *sql.Rows and *sql.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (models.Bill, error) {
	var bill models.Bill
	var amountCents, createdAt int64
	var dueDate sql.NullString
	var paidAt sql.NullInt64
	var isPaid int
	err := row.Scan(&bill.ID, &bill.UserID, &bill.Title, &amountCents, &dueDate,
		&bill.Description, &isPaid, &paidAt, &createdAt)
	if err != nil {
		return models.Bill{}, err
	}
	bill.Amount = money.Cents(amountCents)
	bill.IsPaid = isPaid != 0
	bill.CreatedAt = time.Unix(createdAt, 0).UTC()
	if dueDate.Valid {
		d, err := models.ParseDate(dueDate.String)
		if err != nil {
			return models.Bill{}, fmt.Errorf("bill %s has malformed due date %q: %w", bill.ID, dueDate.String, err)
		}
		bill.DueDate = &d
	}
	if paidAt.Valid {
		t := time.Unix(paidAt.Int64, 0).UTC()
		bill.PaidAt = &t
	}
	return bill, nil
}

func getBillTx(ctx context.Context, tx *sql.Tx, userID, id string) (models.Bill, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, title, amount_cents, due_date, description, is_paid, paid_at, created_at
		 FROM bills WHERE id = ? AND user_id = ?`, id, userID)
	bill, err := scanBill(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Bill{}, fmt.Errorf("bill %s: %w", id, ErrNotFound)
		}
		return models.Bill{}, err
	}
	return bill, nil
}
