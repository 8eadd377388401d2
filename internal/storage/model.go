package storage

import (
	"database/sql"

	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/shopspring/decimal"
)

type dbExpense struct {
	ID        int64
	Name      string
	Amount    decimal.Decimal
	Date      string
	CreatedBy int64
	Type      string
	ImagePath sql.NullString
	AccountID int64
}

func (e dbExpense) toExpense() tracker.Expense {
	return tracker.Expense{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    e.Amount,
		Date:      e.Date,
		CreatedBy: e.CreatedBy,
		Type:      e.Type,
		ImagePath: NullStringToNil(e.ImagePath),
		AccountID: e.AccountID,
	}
}

func NilToNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{Valid: true, String: *v}
}

func NullStringToNil(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
