// Package store persists verification applications.
package store

import (
	"context"

	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
)

// Store is the application repository.
//
// Create returns sentinel.ErrConflict when the applicant already has an
// application. Update, Replace and the Find methods return
// sentinel.ErrNotFound for unknown applications.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	// Replace atomically deletes previous and creates app. It backs
	// resubmission after a rejection or revocation.
	Replace(ctx context.Context, previous id.ApplicationID, app *models.Application) error
	Update(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	FindByApplicant(ctx context.Context, applicant id.UserID) (*models.Application, error)
	// FindApprovedByRegistration matches the normalized registration number.
	FindApprovedByRegistration(ctx context.Context, registrationKey string) ([]*models.Application, error)
	// List returns applications with any of the given statuses, oldest first.
	// No statuses means all applications.
	List(ctx context.Context, statuses ...models.Status) ([]*models.Application, error)
	CountByStatus(ctx context.Context) (models.Statistics, error)
}

// TxStore runs fn inside a transactional boundary. Store calls made with the
// ctx passed to fn join the transaction; returning an error rolls it back.
type TxStore interface {
	Store
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
