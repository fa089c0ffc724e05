package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tvan04/workflow-management-system-sub001/internal/config"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

var (
	ErrNotFound        = errors.New("application not found")
	ErrVersionConflict = errors.New("application was modified concurrently")
)

// Store persists Application records. Update is a compare-and-swap on Version:
// it fails with ErrVersionConflict unless the stored version equals expectedVersion,
// and on success the stored version becomes expectedVersion+1.
type Store interface {
	Insert(ctx context.Context, app models.Application) (string, error)
	GetByID(ctx context.Context, id string) (models.Application, error)
	ListAll(ctx context.Context) ([]models.Application, error)
	Update(ctx context.Context, app models.Application, expectedVersion int64) error
	SearchByText(ctx context.Context, query string) ([]models.Application, error)
	Close()
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.FilePath)
	case "postgres":
		repo, err := ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := Apply(ctx, repo.db); err != nil {
			repo.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
