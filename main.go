package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fatali-fataliyev/expense_tracker/api"
	"github.com/fatali-fataliyev/expense_tracker/internal/auth"
	"github.com/fatali-fataliyev/expense_tracker/internal/config"
	"github.com/fatali-fataliyev/expense_tracker/internal/storage"
	"github.com/fatali-fataliyev/expense_tracker/internal/tracker"
	"github.com/fatali-fataliyev/expense_tracker/logging"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		return
	}

	if err := logging.Init(conf.Env, conf.LogLevel); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	store, err := newStorage(context.Background(), conf)
	if err != nil {
		logging.Logger.Errorf("failed to initialize storage: %v", err)
		return
	}

	tokens, err := auth.NewTokenIssuer(conf.JWTSecret)
	if err != nil {
		logging.Logger.Errorf("failed to create token issuer: %v", err)
		return
	}

	et := tracker.NewExpenseTracker(store, tokens)
	logging.Logger.Infof("using %s storage", et.StorageType)

	handler := api.NewRouter(api.NewApi(et))

	logging.Logger.Infof("Starting server on port: %s", conf.Port)
	if err := http.ListenAndServe(":"+conf.Port, handler); err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}

func newStorage(ctx context.Context, conf *config.Config) (tracker.Storage, error) {
	if conf.Storage == config.StorageInMemory {
		return storage.NewInMemoryStorage(), nil
	}

	db, err := storage.Init(ctx, conf.Database)
	if err != nil {
		return nil, err
	}
	return storage.NewMySQLStorage(db), nil
}
