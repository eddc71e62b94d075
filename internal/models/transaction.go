package models

import (
	"time"

	"github.com/umutoz/defter-be/internal/money"
)

// Transaction kinds. Amounts are always stored positive; direction is
// carried by the kind.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// SourceBill tags transactions created automatically when a bill is paid.
const SourceBill = "bill"

// Transaction is a single ledger entry owned by exactly one user.
type Transaction struct {
	ID            string      `json:"id"`
	UserID        string      `json:"-"`
	Title         string      `json:"title"`
	Amount        money.Cents `json:"amount"`
	Kind          string      `json:"kind"`
	Source        string      `json:"source,omitempty"`
	SourceID      string      `json:"sourceId,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ValidKind reports whether kind is one of the recognized transaction kinds.
func ValidKind(kind string) bool {
	return kind == KindIncome || kind == KindExpense
}
