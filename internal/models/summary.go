package models

import "github.com/umutoz/defter-be/internal/money"

// Summary aggregates a user's ledger, overall and for a single month.
// Balances are income minus expense.
type Summary struct {
	OverallBalance    money.Cents `json:"overall_balance"`
	IncomeTotal       money.Cents `json:"income_total"`
	ExpenseTotal      money.Cents `json:"expense_total"`
	MonthBalance      money.Cents `json:"month_balance"`
	MonthIncomeTotal  money.Cents `json:"month_income_total"`
	MonthExpenseTotal money.Cents `json:"month_expense_total"`
	MonthLabel        string      `json:"month_label"`
}

// DaySummary is one entry of the per-day income/expense series shown on
// the dashboard.
type DaySummary struct {
	Date    string      `json:"date"`
	Income  money.Cents `json:"income"`
	Expense money.Cents `json:"expense"`
}
