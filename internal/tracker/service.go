package tracker

import (
	"context"

	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
)

type ExpenseTracker struct {
	storage     Storage
	tokens      TokenIssuer
	StorageType string
}

func NewExpenseTracker(s Storage, tokens TokenIssuer) *ExpenseTracker {
	return &ExpenseTracker{
		storage:     s,
		tokens:      tokens,
		StorageType: s.GetStorageType(),
	}
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Validate(token string) (userID int64, err error)
}

// Storage is the persistence boundary of the tracker. Every failure it
// returns is an appErrors.ErrorResponse.
type Storage interface {
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	// SaveUserWithAccount stores the user, its personal account and the admin
	// membership atomically.
	SaveUserWithAccount(ctx context.Context, user auth.User) (userID int64, accountID int64, err error)
	GetUserByEmail(ctx context.Context, email string) (auth.User, error)
	GetUserByID(ctx context.Context, userID int64) (auth.User, error)
	GetAdminAccounts(ctx context.Context, userID int64) ([]Account, error)
	SaveExpense(ctx context.Context, expense ExpenseRequest) (int64, error)
	GetExpensesByAccount(ctx context.Context, accountID int64) ([]Expense, error)
	GetStorageType() string
}
