package tracker

import (
	"context"
	"fmt"
)

// SaveExpense stores the expense as given. Amount, date and references are
// checked only by the database constraints.
func (et *ExpenseTracker) SaveExpense(ctx context.Context, expense ExpenseRequest) (int64, error) {
	id, err := et.storage.SaveExpense(ctx, expense)
	if err != nil {
		return 0, fmt.Errorf("failed to save expense: %w", err)
	}
	return id, nil
}

// GetExpenses lists every expense of the account in storage order. The
// result is not paginated.
func (et *ExpenseTracker) GetExpenses(ctx context.Context, accountID int64) ([]Expense, error) {
	expenses, err := et.storage.GetExpensesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	return expenses, nil
}
