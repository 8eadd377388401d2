package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	appErrors "github.com/fatali-fataliyev/expense_tracker/customErrors"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/fatali-fataliyev/expense_tracker/internal/contextutil"
	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/fatali-fataliyev/expense_tracker/logging"
	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

var mysqlSq = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "MySQL"
}

func (mySql *MySQLStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	query := mysqlSq.Select("1").
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1)

	var dummy int
	err := query.RunWith(mySql.db).QueryRowContext(ctx).Scan(&dummy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		traceID := contextutil.TraceIDFromContext(ctx)
		logging.Logger.Errorf("[TraceID=%s] | failed to check email existence in Storage.IsEmailTaken() function | Error: %v", traceID, err)
		return false, appErrors.Storage("Server error")
	}

	return true, nil
}

// SaveUserWithAccount inserts the user, a personal account administered by
// that user and the admin membership in a single transaction.
func (mySql *MySQLStorage) SaveUserWithAccount(ctx context.Context, user auth.User) (int64, int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	txn, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start SQL transaction in Storage.SaveUserWithAccount() function | Error: %v", traceID, err)
		return 0, 0, appErrors.Storage("Server error")
	}
	defer func() {
		if rbErr := txn.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logging.Logger.Errorf("[TraceID=%s] | failed to rollback signup transaction | Error: %v", traceID, rbErr)
		}
	}()

	res, err := mysqlSq.Insert("users").
		Columns("email", "password", "name").
		Values(user.Email, user.PasswordHashed, user.Name).
		RunWith(txn).
		ExecContext(ctx)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			logging.Logger.Warnf("[TraceID=%s] | signup for an existing email passed the existence check (concurrent signup) | Error: %v", traceID, err)
		} else {
			logging.Logger.Errorf("[TraceID=%s] | failed to save user in Storage.SaveUserWithAccount() function | Error: %v", traceID, err)
		}
		return 0, 0, appErrors.Storage("Server error")
	}

	userID, err := res.LastInsertId()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read user id in Storage.SaveUserWithAccount() function | Error: %v", traceID, err)
		return 0, 0, appErrors.Storage("Server error")
	}

	accountID, err := createPersonalAccount(ctx, txn, userID)
	if err != nil {
		return 0, 0, err
	}

	if err := txn.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit signup transaction in Storage.SaveUserWithAccount() function | Error: %v", traceID, err)
		return 0, 0, appErrors.Storage("Server error")
	}

	return userID, accountID, nil
}

func createPersonalAccount(ctx context.Context, txn *sql.Tx, userID int64) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	res, err := mysqlSq.Insert("accounts").
		Columns("admin_id").
		Values(userID).
		RunWith(txn).
		ExecContext(ctx)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to create personal account in Storage.createPersonalAccount() function | Error: %v", traceID, err)
		return 0, appErrors.Storage("Error creating personal account")
	}

	accountID, err := res.LastInsertId()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read account id in Storage.createPersonalAccount() function | Error: %v", traceID, err)
		return 0, appErrors.Storage("Error creating personal account")
	}

	_, err = mysqlSq.Insert("user_account").
		Columns("user_id", "account_id", "role").
		Values(userID, accountID, tracker.RoleAdmin).
		RunWith(txn).
		ExecContext(ctx)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to associate user with account in Storage.createPersonalAccount() function | Error: %v", traceID, err)
		return 0, appErrors.Storage("Error associating user with personal account")
	}

	return accountID, nil
}

func (mySql *MySQLStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	query := mysqlSq.Select("id", "email", "name", "password").
		From("users").
		Where(sq.Eq{"email": email})

	return mySql.scanUser(ctx, query, "GetUserByEmail")
}

func (mySql *MySQLStorage) GetUserByID(ctx context.Context, userID int64) (auth.User, error) {
	query := mysqlSq.Select("id", "email", "name", "password").
		From("users").
		Where(sq.Eq{"id": userID})

	return mySql.scanUser(ctx, query, "GetUserByID")
}

func (mySql *MySQLStorage) scanUser(ctx context.Context, query sq.SelectBuilder, caller string) (auth.User, error) {
	var user auth.User
	err := query.RunWith(mySql.db).QueryRowContext(ctx).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHashed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "User not found",
			}
		}

		traceID := contextutil.TraceIDFromContext(ctx)
		logging.Logger.Errorf("[TraceID=%s] | failed to scan user row in Storage.%s() function | Error : %v", traceID, caller, err)
		return auth.User{}, appErrors.Storage("Server error")
	}
	return user, nil
}

func (mySql *MySQLStorage) GetAdminAccounts(ctx context.Context, userID int64) ([]tracker.Account, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := mysqlSq.Select("a.id", "a.admin_id").
		From("accounts a").
		Join("user_account ua ON ua.account_id = a.id").
		Where(sq.And{
			sq.Eq{"ua.user_id": userID},
			sq.Eq{"ua.role": tracker.RoleAdmin},
		})

	rows, err := query.RunWith(mySql.db).QueryContext(ctx)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get admin accounts in Storage.GetAdminAccounts() function | Error: %v", traceID, err)
		return nil, appErrors.Storage("Error fetching account details")
	}
	defer rows.Close()

	accounts := make([]tracker.Account, 0)
	for rows.Next() {
		var account tracker.Account
		if err := rows.Scan(&account.ID, &account.AdminID); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan row in Storage.GetAdminAccounts() function | Error : %v", traceID, err)
			return nil, appErrors.Storage("Error fetching account details")
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate rows in Storage.GetAdminAccounts() function | Error : %v", traceID, err)
		return nil, appErrors.Storage("Error fetching account details")
	}

	return accounts, nil
}

func (mySql *MySQLStorage) SaveExpense(ctx context.Context, e tracker.ExpenseRequest) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	res, err := mysqlSq.Insert("expenses").
		Columns("name", "amount", "date", "created_by", "type", "image_path", "account_id").
		Values(e.Name, e.Amount, e.Date, e.CreatedBy, e.Type, NilToNullString(e.ImagePath), e.AccountID).
		RunWith(mySql.db).
		ExecContext(ctx)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save expense in Storage.SaveExpense() function | Error: %v", traceID, err)
		return 0, appErrors.Storage("Error inserting expense into database")
	}

	id, err := res.LastInsertId()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read expense id in Storage.SaveExpense() function | Error: %v", traceID, err)
		return 0, appErrors.Storage("Error inserting expense into database")
	}
	return id, nil
}

func (mySql *MySQLStorage) GetExpensesByAccount(ctx context.Context, accountID int64) ([]tracker.Expense, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := mysqlSq.Select(
		"id", "name", "amount", "DATE_FORMAT(date, '%Y-%m-%d')",
		"created_by", "type", "image_path", "account_id",
	).
		From("expenses").
		Where(sq.Eq{"account_id": accountID})

	rows, err := query.RunWith(mySql.db).QueryContext(ctx)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get expenses in Storage.GetExpensesByAccount() function | Error: %v", traceID, err)
		return nil, appErrors.Storage("Error fetching expenses")
	}
	defer rows.Close()

	expenses := make([]tracker.Expense, 0)
	for rows.Next() {
		var row dbExpense
		err := rows.Scan(&row.ID, &row.Name, &row.Amount, &row.Date, &row.CreatedBy, &row.Type, &row.ImagePath, &row.AccountID)
		if err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan row in Storage.GetExpensesByAccount() function | Error : %v", traceID, err)
			return nil, appErrors.Storage("Error fetching expenses")
		}
		expenses = append(expenses, row.toExpense())
	}

	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate rows in Storage.GetExpensesByAccount() function | Error : %v", traceID, err)
		return nil, appErrors.Storage("Error fetching expenses")
	}

	return expenses, nil
}
