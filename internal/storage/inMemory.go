package storage

import (
	"context"
	"sync"

	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/fatali-fataliyev/expense_tracker/internal/contextutil"
	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/fatali-fataliyev/expense_tracker/logging"
)

// InMemoryStorage keeps the same tables and constraints as the MySQL schema
// in process memory. Data is lost on restart.
type InMemoryStorage struct {
	mu          sync.RWMutex
	users       []auth.User
	accounts    []tracker.Account
	memberships []tracker.Membership
	expenses    []tracker.Expense

	lastUserID    int64
	lastAccountID int64
	lastExpenseID int64
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	_, found := inMem.userByEmail(email)
	return found, nil
}

func (inMem *InMemoryStorage) SaveUserWithAccount(ctx context.Context, user auth.User) (int64, int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if _, found := inMem.userByEmail(user.Email); found {
		logging.Logger.Warnf("[TraceID=%s] | signup for an existing email passed the existence check (concurrent signup)", contextutil.TraceIDFromContext(ctx))
		return 0, 0, appErrors.Storage("Server error")
	}

	inMem.lastUserID++
	user.ID = inMem.lastUserID
	inMem.users = append(inMem.users, user)

	inMem.lastAccountID++
	account := tracker.Account{ID: inMem.lastAccountID, AdminID: user.ID}
	inMem.accounts = append(inMem.accounts, account)

	inMem.memberships = append(inMem.memberships, tracker.Membership{
		UserID:    user.ID,
		AccountID: account.ID,
		Role:      tracker.RoleAdmin,
	})

	return user.ID, account.ID, nil
}

func (inMem *InMemoryStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	user, found := inMem.userByEmail(email)
	if !found {
		return auth.User{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "User not found",
		}
	}
	return user, nil
}

func (inMem *InMemoryStorage) GetUserByID(ctx context.Context, userID int64) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, user := range inMem.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "User not found",
	}
}

func (inMem *InMemoryStorage) GetAdminAccounts(ctx context.Context, userID int64) ([]tracker.Account, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	result := make([]tracker.Account, 0)
	for _, m := range inMem.memberships {
		if m.UserID != userID || m.Role != tracker.RoleAdmin {
			continue
		}
		for _, account := range inMem.accounts {
			if account.ID == m.AccountID {
				result = append(result, account)
			}
		}
	}
	return result, nil
}

// SaveExpense rejects NULL required fields and references to unknown users
// or accounts the way the expenses table constraints do.
func (inMem *InMemoryStorage) SaveExpense(ctx context.Context, e tracker.ExpenseRequest) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if !e.HasRequiredFields() {
		logging.Logger.Errorf("[TraceID=%s] | expense has NULL required fields in Storage.SaveExpense() function", contextutil.TraceIDFromContext(ctx))
		return 0, appErrors.Storage("Error inserting expense into database")
	}

	if !inMem.userExists(e.CreatedBy) || !inMem.accountExists(e.AccountID) {
		logging.Logger.Errorf("[TraceID=%s] | expense references unknown user %d or account %d in Storage.SaveExpense() function", contextutil.TraceIDFromContext(ctx), e.CreatedBy, e.AccountID)
		return 0, appErrors.Storage("Error inserting expense into database")
	}

	inMem.lastExpenseID++
	inMem.expenses = append(inMem.expenses, tracker.Expense{
		ID:        inMem.lastExpenseID,
		Name:      *e.Name,
		Amount:    e.Amount.Decimal.Round(2),
		Date:      *e.Date,
		CreatedBy: e.CreatedBy,
		Type:      *e.Type,
		ImagePath: copyString(e.ImagePath),
		AccountID: e.AccountID,
	})
	return inMem.lastExpenseID, nil
}

func (inMem *InMemoryStorage) GetExpensesByAccount(ctx context.Context, accountID int64) ([]tracker.Expense, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	result := make([]tracker.Expense, 0)
	for _, e := range inMem.expenses {
		if e.AccountID == accountID {
			e.ImagePath = copyString(e.ImagePath)
			result = append(result, e)
		}
	}
	return result, nil
}

func (inMem *InMemoryStorage) userByEmail(email string) (auth.User, bool) {
	for _, user := range inMem.users {
		if user.Email == email {
			return user, true
		}
	}
	return auth.User{}, false
}

func (inMem *InMemoryStorage) userExists(userID int64) bool {
	for _, user := range inMem.users {
		if user.ID == userID {
			return true
		}
	}
	return false
}

func (inMem *InMemoryStorage) accountExists(accountID int64) bool {
	for _, account := range inMem.accounts {
		if account.ID == accountID {
			return true
		}
	}
	return false
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
