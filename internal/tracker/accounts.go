package tracker

import (
	"context"
	"fmt"
)

// GetAdminAccounts returns the accounts in which userID holds the admin role.
func (et *ExpenseTracker) GetAdminAccounts(ctx context.Context, userID int64) ([]Account, error) {
	accounts, err := et.storage.GetAdminAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin accounts: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}
