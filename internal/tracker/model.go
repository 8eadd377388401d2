package tracker

import (
	"github.com/shopspring/decimal"
)

const RoleAdmin = "admin"

// MODELS:

type Account struct {
	ID      int64
	AdminID int64
}

type Membership struct {
	UserID    int64
	AccountID int64
	Role      string
}

type Expense struct {
	ID        int64
	Name      string
	Amount    decimal.Decimal
	Date      string // YYYY-MM-DD as stored in the DATE column
	CreatedBy int64
	Type      string
	ImagePath *string
	AccountID int64
}

// REQUESTS:

// ExpenseRequest keeps absent fields as NULL so the NOT NULL columns of the
// expenses table reject them.
type ExpenseRequest struct {
	Name      *string
	Amount    decimal.NullDecimal
	Date      *string
	CreatedBy int64
	Type      *string
	ImagePath *string
	AccountID int64
}

// HasRequiredFields reports whether every NOT NULL column has a value.
func (e ExpenseRequest) HasRequiredFields() bool {
	return e.Name != nil && e.Amount.Valid && e.Date != nil && e.Type != nil
}
