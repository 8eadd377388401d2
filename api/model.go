package api

import (
	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/shopspring/decimal"
)

// REQUESTS START:
type SaveUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateExpenseRequest struct {
	Name      *string             `json:"name"`
	Amount    decimal.NullDecimal `json:"amount"` // number or quoted string
	Date      *string             `json:"date"`
	CreatedBy int64               `json:"created_by"`
	Type      *string             `json:"type"`
	ImagePath *string             `json:"image_path"`
	AccountID int64               `json:"account_id"`
}

//REQUESTS END:

//RESPONSES:

type LoginResponse struct {
	Auth  bool   `json:"auth"`
	Token string `json:"token"`
}

type CheckTokenResponse struct {
	Auth bool  `json:"auth"`
	ID   int64 `json:"id"`
}

type UserResponse struct {
	Name string `json:"name"`
}

type AccountItem struct {
	ID      int64 `json:"id"`
	AdminID int64 `json:"admin_id"`
}

type ExpenseItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	Date      string  `json:"date"`
	CreatedBy int64   `json:"created_by"`
	Type      string  `json:"type"`
	ImagePath *string `json:"image_path"`
	AccountID int64   `json:"account_id"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrConflict:
		return 400 // email already registered
	default:
		return 500 // storage and internal errors
	}
}

func ExpenseToHttp(expense tracker.Expense) ExpenseItem {
	return ExpenseItem{
		ID:        expense.ID,
		Name:      expense.Name,
		Amount:    expense.Amount.StringFixed(2),
		Date:      expense.Date,
		CreatedBy: expense.CreatedBy,
		Type:      expense.Type,
		ImagePath: expense.ImagePath,
		AccountID: expense.AccountID,
	}
}

func AccountToHttp(account tracker.Account) AccountItem {
	return AccountItem{
		ID:      account.ID,
		AdminID: account.AdminID,
	}
}

func (req CreateExpenseRequest) toTracker() tracker.ExpenseRequest {
	return tracker.ExpenseRequest{
		Name:      req.Name,
		Amount:    req.Amount,
		Date:      req.Date,
		CreatedBy: req.CreatedBy,
		Type:      req.Type,
		ImagePath: req.ImagePath,
		AccountID: req.AccountID,
	}
}
