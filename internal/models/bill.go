package models

import (
	"fmt"
	"time"

	"github.com/umutoz/defter-be/internal/money"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component, serialized as
// "YYYY-MM-DD". The underlying instant is midnight UTC.
type Date struct {
	time.Time
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format(DateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Bill is a recorded obligation. Marking it paid mirrors it into the
// ledger as an expense transaction tagged with the bill's id; marking it
// unpaid (or deleting it) removes that transaction again.
type Bill struct {
	ID          string      `json:"id"`
	UserID      string      `json:"-"`
	Title       string      `json:"title"`
	Amount      money.Cents `json:"amount"`
	DueDate     *Date       `json:"dueDate,omitempty"`
	Description string      `json:"description,omitempty"`
	IsPaid      bool        `json:"isPaid"`
	PaidAt      *time.Time  `json:"paidAt,omitempty"`
	IsOverdue   bool        `json:"isOverdue"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Overdue reports whether the bill's due date has passed as of now
// without the bill being paid.
func (b Bill) Overdue(now time.Time) bool {
	if b.IsPaid || b.DueDate == nil {
		return false
	}
	today := now.UTC().Format(DateLayout)
	return b.DueDate.Format(DateLayout) < today
}
