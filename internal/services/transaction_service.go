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

const (
	defaultListLimit = 100
	maxListLimit     = 2000
)

// CreateTransactionParams carries validated-at-the-edge input for a new
// ledger entry. Source fields are not included: only the bill linker may
// tag a transaction with its origin.
type CreateTransactionParams struct {
	Title         string
	Amount        float64
	Kind          string
	PaymentMethod string
	Description   string
}

// TransactionFilter narrows a ledger listing. The date range is
// [From, To): inclusive start, exclusive end.
type TransactionFilter struct {
	From      *time.Time
	To        *time.Time
	Query     string
	Kind      string
	MinAmount *money.Cents
	MaxAmount *money.Cents
	Limit     int
	Offset    int
}

// TransactionServiceProvider defines the interface for ledger services.
type TransactionServiceProvider interface {
	CreateTransaction(ctx context.Context, userID string, params CreateTransactionParams) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// TransactionService provides business logic for the ledger.
type TransactionService struct {
	db *sql.DB
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

// CreateTransaction persists a new ledger entry with a server-assigned
// id and creation timestamp.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, params CreateTransactionParams) (models.Transaction, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Transaction{}, fmt.Errorf("%w: title must not be empty", ErrInvalidArgument)
	}
	if !models.ValidKind(params.Kind) {
		return models.Transaction{}, fmt.Errorf("%w: kind must be %q or %q", ErrInvalidArgument, models.KindIncome, models.KindExpense)
	}
	amount, err := money.FromFloat(params.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	tx := models.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         title,
		Amount:        amount,
		Kind:          params.Kind,
		PaymentMethod: strings.TrimSpace(params.PaymentMethod),
		Description:   strings.TrimSpace(params.Description),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transactions(id, user_id, title, amount_cents, kind, source, source_id, payment_method, description, created_at)
		 VALUES(?, ?, ?, ?, ?, '', '', ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Title, int64(tx.Amount), tx.Kind, tx.PaymentMethod, tx.Description, tx.CreatedAt.Unix())
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// ListTransactions returns the user's ledger entries matching the
// filter, newest first, ties broken by id so pagination stays stable.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, maxListLimit)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidArgument)
	}
	if filter.Kind != "" && !models.ValidKind(filter.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, filter.Kind)
	}

	query := `SELECT id, user_id, title, amount_cents, kind, source, source_id, payment_method, description, created_at
		FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.From != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.From.Unix())
	}
	if filter.To != nil {
		query += " AND created_at < ?"
		args = append(args, filter.To.Unix())
	}
	if filter.Query != "" {
		query += " AND LOWER(title) LIKE '%' || LOWER(?) || '%'"
		args = append(args, filter.Query)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.MinAmount != nil {
		query += " AND amount_cents >= ?"
		args = append(args, int64(*filter.MinAmount))
	}
	if filter.MaxAmount != nil {
		query += " AND amount_cents <= ?"
		args = append(args, int64(*filter.MaxAmount))
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// DeleteTransaction removes a ledger entry. Entries owned by another
// user report ErrNotFound, same as a missing id.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var tx models.Transaction
	var amountCents, createdAt int64
	err := rows.Scan(&tx.ID, &tx.UserID, &tx.Title, &amountCents, &tx.Kind,
		&tx.Source, &tx.SourceID, &tx.PaymentMethod, &tx.Description, &createdAt)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Amount = money.Cents(amountCents)
	tx.CreatedAt = time.Unix(createdAt, 0).UTC()
	return tx, nil
}
