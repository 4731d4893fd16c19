package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Chinweike99/expense-tracker-backend/internal/memory"
	"github.com/Chinweike99/expense-tracker-backend/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Stores:  repo,
		Cleanup: repo.Close,
	}, nil
}

// memoryStores composes the in-memory stores into one backend.
type memoryStores struct {
	*memory.Ledger
	*memory.Budgets
	*memory.Debts
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	stores := &memoryStores{
		Ledger:  memory.NewLedger(),
		Budgets: memory.NewBudgets(),
		Debts:   memory.NewDebts(),
	}

	f.logger.Info("Initialized memory backend")

	return &Result{
		Stores:  stores,
		Cleanup: nil, // nothing to release
	}, nil
}
