package tracker

import (
	"context"
	"errors"
	"strconv"
	"testing"

	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mocks
type MockStorage struct {
	users      map[string]auth.User
	saved      []auth.User
	accounts   map[int64][]Account
	expenses   map[int64][]Expense
	failWith   error
	emailCheck error
}

func newMockStorage() *MockStorage {
	return &MockStorage{
		users:    map[string]auth.User{},
		accounts: map[int64][]Account{},
		expenses: map[int64][]Expense{},
	}
}

func (m *MockStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	if m.emailCheck != nil {
		return false, m.emailCheck
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *MockStorage) SaveUserWithAccount(ctx context.Context, user auth.User) (int64, int64, error) {
	if m.failWith != nil {
		return 0, 0, m.failWith
	}
	user.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, user)
	m.users[user.Email] = user
	m.accounts[user.ID] = append(m.accounts[user.ID], Account{ID: user.ID * 10, AdminID: user.ID})
	return user.ID, user.ID * 10, nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	user, ok := m.users[email]
	if !ok {
		return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrNotFound, Message: "User not found"}
	}
	return user, nil
}

func (m *MockStorage) GetUserByID(ctx context.Context, userID int64) (auth.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrNotFound, Message: "User not found"}
}

func (m *MockStorage) GetAdminAccounts(ctx context.Context, userID int64) ([]Account, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.accounts[userID], nil
}

func (m *MockStorage) SaveExpense(ctx context.Context, expense ExpenseRequest) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if !expense.HasRequiredFields() {
		return 0, appErrors.Storage("Error inserting expense into database")
	}
	id := int64(len(m.expenses[expense.AccountID]) + 1)
	m.expenses[expense.AccountID] = append(m.expenses[expense.AccountID], Expense{
		ID:        id,
		Name:      *expense.Name,
		Amount:    expense.Amount.Decimal,
		Date:      *expense.Date,
		CreatedBy: expense.CreatedBy,
		Type:      *expense.Type,
		ImagePath: expense.ImagePath,
		AccountID: expense.AccountID,
	})
	return id, nil
}

func (m *MockStorage) GetExpensesByAccount(ctx context.Context, accountID int64) ([]Expense, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.expenses[accountID], nil
}

func (m *MockStorage) GetStorageType() string {
	return "mock"
}

type mockTokens struct{}

func (mockTokens) Issue(userID int64) (string, error) {
	return "token-" + strconv.FormatInt(userID, 10), nil
}

func (mockTokens) Validate(token string) (int64, error) {
	if token == "token-1" {
		return 1, nil
	}
	return 0, auth.ErrInvalidToken
}

func newTestTracker() (*ExpenseTracker, *MockStorage) {
	store := newMockStorage()
	return NewExpenseTracker(store, mockTokens{}), store
}

// Tests

func TestSaveUser(t *testing.T) {
	et, store := newTestTracker()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    auth.NewUser
		wantCode string
	}{
		{
			name:     "Fail - Empty Email",
			input:    auth.NewUser{Email: "", PasswordPlain: "pw", Name: "A"},
			wantCode: appErrors.ErrInvalidInput,
		},
		{
			name:  "Success - Valid Registration",
			input: auth.NewUser{Email: "a@x.com", PasswordPlain: "pw", Name: "A"},
		},
		{
			name:     "Fail - Duplicate Email",
			input:    auth.NewUser{Email: "a@x.com", PasswordPlain: "pw2", Name: "B"},
			wantCode: appErrors.ErrConflict,
		},
		{
			name:     "Fail - Duplicate Email Different Case",
			input:    auth.NewUser{Email: " A@X.com", PasswordPlain: "pw2", Name: "B"},
			wantCode: appErrors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := et.SaveUser(ctx, tt.input)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, appErrors.CodeOf(err))
		})
	}

	require.Len(t, store.saved, 1)
	assert.Equal(t, "a@x.com", store.saved[0].Email)
	assert.NotEqual(t, "pw", store.saved[0].PasswordHashed)
	assert.True(t, auth.ComparePasswords(store.saved[0].PasswordHashed, "pw"))
}

func TestSaveUserStorageFailure(t *testing.T) {
	et, store := newTestTracker()
	store.failWith = appErrors.Storage("Registration failed, try again later.")

	_, err := et.SaveUser(context.Background(), auth.NewUser{Email: "a@x.com", PasswordPlain: "pw"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage, appErrors.CodeOf(err))

	store.failWith = nil
	store.emailCheck = appErrors.Storage("Failed to check email, try again later.")
	_, err = et.SaveUser(context.Background(), auth.NewUser{Email: "b@x.com", PasswordPlain: "pw"})
	assert.Equal(t, appErrors.ErrStorage, appErrors.CodeOf(err))
}

func TestGenerateToken(t *testing.T) {
	et, _ := newTestTracker()
	ctx := context.Background()

	_, err := et.SaveUser(ctx, auth.NewUser{Email: "a@x.com", PasswordPlain: "pw", Name: "A"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     auth.UserCredentialsPure
		wantToken string
		wantCode  string
	}{
		{
			name:      "Success",
			input:     auth.UserCredentialsPure{Email: "a@x.com", PasswordPlain: "pw"},
			wantToken: "token-1",
		},
		{
			name:     "Wrong password",
			input:    auth.UserCredentialsPure{Email: "a@x.com", PasswordPlain: "wrong"},
			wantCode: appErrors.ErrAuth,
		},
		{
			name:     "Unknown email",
			input:    auth.UserCredentialsPure{Email: "nobody@x.com", PasswordPlain: "pw"},
			wantCode: appErrors.ErrNotFound,
		},
		{
			name:     "Empty password",
			input:    auth.UserCredentialsPure{Email: "a@x.com"},
			wantCode: appErrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := et.GenerateToken(ctx, tt.input)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}
			assert.Equal(t, tt.wantCode, appErrors.CodeOf(err))
		})
	}
}

func TestCheckToken(t *testing.T) {
	et, _ := newTestTracker()
	ctx := context.Background()

	userID, err := et.CheckToken(ctx, "Bearer token-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	for _, token := range []string{"", "Bearer ", "token-2"} {
		_, err := et.CheckToken(ctx, token)
		assert.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err), "token %q", token)
	}
}

func TestGetUserName(t *testing.T) {
	et, _ := newTestTracker()
	ctx := context.Background()

	id, err := et.SaveUser(ctx, auth.NewUser{Email: "a@x.com", PasswordPlain: "pw", Name: "Alice"})
	require.NoError(t, err)

	name, err := et.GetUserName(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = et.GetUserName(ctx, 999)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestGetAdminAccounts(t *testing.T) {
	et, store := newTestTracker()
	ctx := context.Background()

	id, err := et.SaveUser(ctx, auth.NewUser{Email: "a@x.com", PasswordPlain: "pw"})
	require.NoError(t, err)

	accounts, err := et.GetAdminAccounts(ctx, id)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, id, accounts[0].AdminID)

	accounts, err = et.GetAdminAccounts(ctx, 404)
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)

	store.failWith = errors.New("boom")
	_, err = et.GetAdminAccounts(ctx, id)
	assert.Error(t, err)
}

func TestExpenses(t *testing.T) {
	et, _ := newTestTracker()
	ctx := context.Background()

	imagePath := "/img/receipt.png"
	name, date, expenseType := "Lunch", "2024-03-01", "food"
	req := ExpenseRequest{
		Name:      &name,
		Amount:    decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		Date:      &date,
		CreatedBy: 1,
		Type:      &expenseType,
		ImagePath: &imagePath,
		AccountID: 10,
	}

	_, err := et.SaveExpense(ctx, req)
	require.NoError(t, err)

	expenses, err := et.GetExpenses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Lunch", expenses[0].Name)
	assert.True(t, req.Amount.Decimal.Equal(expenses[0].Amount))
	assert.Equal(t, "2024-03-01", expenses[0].Date)
	assert.Equal(t, "food", expenses[0].Type)
	assert.Equal(t, &imagePath, expenses[0].ImagePath)

	empty, err := et.GetExpenses(ctx, 11)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestExpenseRequestRequiredFields(t *testing.T) {
	name, date, expenseType := "Lunch", "2024-03-01", "food"
	complete := ExpenseRequest{
		Name:   &name,
		Amount: decimal.NewNullDecimal(decimal.NewFromInt(5)),
		Date:   &date,
		Type:   &expenseType,
	}

	tests := []struct {
		name   string
		mutate func(r *ExpenseRequest)
		want   bool
	}{
		{name: "complete", mutate: func(r *ExpenseRequest) {}, want: true},
		{name: "zero amount is a value", mutate: func(r *ExpenseRequest) { r.Amount = decimal.NewNullDecimal(decimal.Zero) }, want: true},
		{name: "missing name", mutate: func(r *ExpenseRequest) { r.Name = nil }},
		{name: "missing amount", mutate: func(r *ExpenseRequest) { r.Amount = decimal.NullDecimal{} }},
		{name: "missing date", mutate: func(r *ExpenseRequest) { r.Date = nil }},
		{name: "missing type", mutate: func(r *ExpenseRequest) { r.Type = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := complete
			tt.mutate(&req)
			assert.Equal(t, tt.want, req.HasRequiredFields())
		})
	}
}
