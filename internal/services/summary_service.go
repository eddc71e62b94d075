package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/umutoz/defter-be/internal/models"
	"github.com/umutoz/defter-be/internal/money"
)

const (
	defaultDays = 14
	maxDays     = 90
)

// MonthLayout is the wire format for summary month selectors.
const MonthLayout = "2006-01"

// SummaryServiceProvider defines the interface for ledger aggregation.
type SummaryServiceProvider interface {
	Summary(ctx context.Context, userID, month string) (models.Summary, error)
	Days(ctx context.Context, userID string, days int) ([]models.DaySummary, error)
}

// SummaryService sums a user's ledger. All aggregation happens in
// integer cents; month boundaries are computed in UTC.
type SummaryService struct {
	db *sql.DB
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(db *sql.DB) *SummaryService {
	return &SummaryService{db: db}
}

// monthBounds returns [start, end) for the given month in UTC.
// time.Date normalizes month 13, so December rolls over to January of
// the next year on its own.
func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

func (s *SummaryService) totals(ctx context.Context, userID string, from, to *time.Time) (income, expense money.Cents, err error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN kind = ? THEN amount_cents ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN kind = ? THEN amount_cents ELSE 0 END), 0)
		FROM transactions WHERE user_id = ?`
	args := []any{models.KindIncome, models.KindExpense, userID}
	if from != nil {
		query += " AND created_at >= ?"
		args = append(args, from.Unix())
	}
	if to != nil {
		query += " AND created_at < ?"
		args = append(args, to.Unix())
	}

	var incomeCents, expenseCents int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&incomeCents, &expenseCents); err != nil {
		return 0, 0, err
	}
	return money.Cents(incomeCents), money.Cents(expenseCents), nil
}

// Summary aggregates the user's whole ledger plus one month of it.
// month is "YYYY-MM"; empty selects the current month.
func (s *SummaryService) Summary(ctx context.Context, userID, month string) (models.Summary, error) {
	var year int
	var m time.Month
	if month == "" {
		now := time.Now().UTC()
		year, m = now.Year(), now.Month()
	} else {
		t, err := time.ParseInLocation(MonthLayout, month, time.UTC)
		if err != nil {
			return models.Summary{}, fmt.Errorf("%w: month must look like 2026-03", ErrInvalidArgument)
		}
		year, m = t.Year(), t.Month()
	}
	start, end := monthBounds(year, m)

	income, expense, err := s.totals(ctx, userID, nil, nil)
	if err != nil {
		return models.Summary{}, err
	}
	monthIncome, monthExpense, err := s.totals(ctx, userID, &start, &end)
	if err != nil {
		return models.Summary{}, err
	}

	return models.Summary{
		OverallBalance:    income - expense,
		IncomeTotal:       income,
		ExpenseTotal:      expense,
		MonthBalance:      monthIncome - monthExpense,
		MonthIncomeTotal:  monthIncome,
		MonthExpenseTotal: monthExpense,
		MonthLabel:        start.Format(MonthLayout),
	}, nil
}

// Days returns a per-day income/expense series for the last n days,
// today included, oldest first, with zero entries for empty days.
func (s *SummaryService) Days(ctx context.Context, userID string, days int) ([]models.DaySummary, error) {
	if days == 0 {
		days = defaultDays
	}
	if days < 0 || days > maxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidArgument, maxDays)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m-%d', created_at, 'unixepoch'),
			COALESCE(SUM(CASE WHEN kind = ? THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN amount_cents ELSE 0 END), 0)
		 FROM transactions WHERE user_id = ? AND created_at >= ?
		 GROUP BY 1`,
		models.KindIncome, models.KindExpense, userID, start.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDate := make(map[string]models.DaySummary, days)
	for rows.Next() {
		var d models.DaySummary
		var incomeCents, expenseCents int64
		if err := rows.Scan(&d.Date, &incomeCents, &expenseCents); err != nil {
			return nil, err
		}
		d.Income = money.Cents(incomeCents)
		d.Expense = money.Cents(expenseCents)
		byDate[d.Date] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]models.DaySummary, 0, days)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		entry, ok := byDate[key]
		if !ok {
			entry = models.DaySummary{Date: key}
		}
		series = append(series, entry)
	}
	return series, nil
}
