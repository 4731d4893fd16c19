package backend

import (
	"context"

	"github.com/Chinweike99/expense-tracker-backend/internal/services"
)

// Stores bundles the three store contracts the engine schedules against.
// A backend provides all of them over one underlying data source.
type Stores interface {
	services.LedgerStore
	services.BudgetStore
	services.DebtStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store set and optional cleanup function
type Result struct {
	Stores  Stores
	Cleanup CleanupFunc
}

// Factory creates store backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type represents the kind of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
