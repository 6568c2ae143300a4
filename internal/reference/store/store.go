// Package store persists the pre-approved reference list. Every
// implementation satisfies ports.ReferenceLookup so the engine can read it.
package store

import (
	"context"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
)

// Store is the reference list repository.
//
// Add returns sentinel.ErrConflict when a record with the same composite key
// (email, type, specialization) exists. Remove and FindByID return
// sentinel.ErrNotFound for unknown IDs; FindByKey does the same for unknown keys.
type Store interface {
	ports.ReferenceLookup
	Add(ctx context.Context, record *models.Record) error
	Remove(ctx context.Context, referenceID id.ReferenceID) error
	FindByID(ctx context.Context, referenceID id.ReferenceID) (*models.Record, error)
	FindByKey(ctx context.Context, key matching.Key) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
}
