package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/fatali-fataliyev/expense_tracker/internal/contextutil"
	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/fatali-fataliyev/expense_tracker/logging"
	"github.com/go-chi/chi/v5"
)

type Api struct {
	Service *tracker.ExpenseTracker
}

func NewApi(service *tracker.ExpenseTracker) *Api {
	return &Api{
		Service: service,
	}
}

func (api *Api) Health(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).Text("backend is running")
}

func (api *Api) SaveUserHandler(r *iz.Request) iz.Responder {
	var newUserReq SaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&newUserReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newUser := auth.NewUser{
		Email:         newUserReq.Email,
		PasswordPlain: newUserReq.Password,
		Name:          newUserReq.Name,
	}

	if _, err := api.Service.SaveUser(r.Context(), newUser); err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).Text("User and personal account created successfully")
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	var loginRequest UserLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	credentials := auth.UserCredentialsPure{
		Email:         loginRequest.Email,
		PasswordPlain: loginRequest.Password,
	}

	token, err := api.Service.GenerateToken(r.Context(), credentials)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(LoginResponse{Auth: true, Token: token})
}

func (api *Api) CheckToken(r *iz.Request) iz.Responder {
	userID, err := api.Service.CheckToken(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(CheckTokenResponse{Auth: true, ID: userID})
}

func (api *Api) GetUserHandler(r *iz.Request) iz.Responder {
	userID, err := pathID(r, "id")
	if err != nil {
		return iz.Respond().Status(400).Text(err.Error())
	}

	name, err := api.Service.GetUserName(r.Context(), userID)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(UserResponse{Name: name})
}

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	var newExpenseReq CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&newExpenseReq); err != nil {
		msg := fmt.Sprintf("failed to parse save expense request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	if _, err := api.Service.SaveExpense(r.Context(), newExpenseReq.toTracker()); err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).Text("Expense added successfully")
}

func (api *Api) GetAdminAccountsHandler(r *iz.Request) iz.Responder {
	userID, err := pathID(r, "userId")
	if err != nil {
		return iz.Respond().Status(400).Text(err.Error())
	}

	accounts, err := api.Service.GetAdminAccounts(r.Context(), userID)
	if err != nil {
		return errorResponse(r, err)
	}

	accountsForHttp := make([]AccountItem, 0, len(accounts))
	for _, account := range accounts {
		accountsForHttp = append(accountsForHttp, AccountToHttp(account))
	}
	return iz.Respond().Status(200).JSON(accountsForHttp)
}

func (api *Api) GetExpensesHandler(r *iz.Request) iz.Responder {
	accountID, err := pathID(r, "accountId")
	if err != nil {
		return iz.Respond().Status(400).Text(err.Error())
	}

	expenses, err := api.Service.GetExpenses(r.Context(), accountID)
	if err != nil {
		return errorResponse(r, err)
	}

	expensesForHttp := make([]ExpenseItem, 0, len(expenses))
	for _, expense := range expenses {
		expensesForHttp = append(expensesForHttp, ExpenseToHttp(expense))
	}
	return iz.Respond().Status(200).JSON(expensesForHttp)
}

func pathID(r *iz.Request, name string) (int64, error) {
	raw := chi.URLParam(r.Request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: '%s'", name, raw)
	}
	return id, nil
}

func errorResponse(r *iz.Request, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status >= 500 {
		logging.Logger.Errorf("[TraceID=%s] | %s %s failed | Error: %v", contextutil.TraceIDFromContext(r.Context()), r.Method, r.URL.Path, err)
	}
	return iz.Respond().Status(status).Text(appErrors.MessageOf(err))
}
