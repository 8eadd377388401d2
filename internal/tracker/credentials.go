package tracker

import (
	"context"
	"fmt"
	"strings"

	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/fatali-fataliyev/expense_tracker/internal/contextutil"
	"github.com/fatali-fataliyev/expense_tracker/logging"
)

// SaveUser registers a user together with its personal account. The email
// check and the insert are not serialized; a concurrent signup with the same
// email is stopped by the unique index and surfaces as a storage failure.
func (et *ExpenseTracker) SaveUser(ctx context.Context, newUser auth.NewUser) (int64, error) {
	if err := newUser.ValidateUserFields(); err != nil {
		return 0, err
	}

	email := normalizeEmail(newUser.Email)

	isEmailTaken, err := et.storage.IsEmailTaken(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("failed to check email availability: %w", err)
	}
	if isEmailTaken {
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrConflict,
			Message: "User already exists",
		}
	}

	hashedPassword, err := auth.HashPassword(newUser.PasswordPlain)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to hash password in ExpenseTracker.SaveUser() | Error: %v", contextutil.TraceIDFromContext(ctx), err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Registration failed, try again later.",
		}
	}

	user := auth.User{
		Email:          email,
		Name:           strings.TrimSpace(newUser.Name),
		PasswordHashed: hashedPassword,
	}

	userID, accountID, err := et.storage.SaveUserWithAccount(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to registration: %w", err)
	}

	logging.Logger.Infof("[TraceID=%s] | user %d registered with personal account %d", contextutil.TraceIDFromContext(ctx), userID, accountID)
	return userID, nil
}

// GenerateToken checks the credentials and returns a signed bearer token
// valid for auth.TokenTTL.
func (et *ExpenseTracker) GenerateToken(ctx context.Context, credentials auth.UserCredentialsPure) (string, error) {
	if err := credentials.Validate(); err != nil {
		return "", err
	}

	user, err := et.storage.GetUserByEmail(ctx, normalizeEmail(credentials.Email))
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.ComparePasswords(user.PasswordHashed, credentials.PasswordPlain) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Invalid password",
		}
	}

	token, err := et.tokens.Issue(user.ID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to issue token in ExpenseTracker.GenerateToken() | Error: %v", contextutil.TraceIDFromContext(ctx), err)
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Login failed, try again later.",
		}
	}
	return token, nil
}

func (et *ExpenseTracker) CheckToken(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Authorization header is required.",
		}
	}

	userID, err := et.tokens.Validate(token)
	if err != nil {
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Token is invalid or expired, please login.",
		}
	}
	return userID, nil
}

func (et *ExpenseTracker) GetUserName(ctx context.Context, userID int64) (string, error) {
	user, err := et.storage.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return user.Name, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
