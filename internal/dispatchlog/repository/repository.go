package repository

import (
	"context"

	"eduapp-backend/internal/dispatchlog/domain"
)

// DispatchRepository defines the interface for dispatch log access
type DispatchRepository interface {
	// Create stores a dispatch record
	Create(ctx context.Context, record *domain.DispatchRecord) error

	// List returns records newest first along with the total count
	List(ctx context.Context, limit, offset int) ([]*domain.DispatchRecord, int64, error)
}
