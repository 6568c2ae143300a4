package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/normalize"
	"mindcare/internal/verification/models"
	id "mindcare/pkg/domain"
	"mindcare/pkg/platform/sentinel"
	txcontext "mindcare/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists applications in professional_verifications.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// RunInTx joins an existing transaction in ctx or starts a new one.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const columnList = `
	id, applicant_id, correlation_id, professional_type, first_name, last_name, email,
	registration_number, registration_key, degree_institution, degree_title, affiliation,
	experience_years, specialization, languages_spoken, clinic_address, contact_email,
	contact_phone, license_document_url, degree_document_url, additional_document_urls,
	status, admin_notes, rejection_reason, verified_by, verified_at, assessment,
	created_at, updated_at
`

const selectApplications = `SELECT ` + columnList + ` FROM professional_verifications `

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	args, err := insertArgs(app)
	if err != nil {
		return err
	}
	query := `INSERT INTO professional_verifications (` + columnList + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, previous id.ApplicationID, app *models.Application) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM professional_verifications WHERE id = $1`, uuid.UUID(previous))
		if err != nil {
			return fmt.Errorf("delete previous application: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("delete previous application: %w", err)
		} else if n == 0 {
			return sentinel.ErrNotFound
		}
		return s.Create(ctx, app)
	})
}

func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	assessment, err := encodeAssessment(app.Assessment)
	if err != nil {
		return err
	}
	query := `
		UPDATE professional_verifications SET
			status = $2, admin_notes = $3, rejection_reason = $4, verified_by = $5,
			verified_at = $6, assessment = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(app.ID),
		string(app.Status),
		app.AdminNotes,
		app.RejectionReason,
		nullableUser(app.VerifiedBy),
		app.VerifiedAt,
		assessment,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(applicationID))
}

func (s *PostgresStore) FindByApplicant(ctx context.Context, applicant id.UserID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE applicant_id = $1`, uuid.UUID(applicant))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Application, error) {
	app, err := scanApplication(s.execer(ctx).QueryRowContext(ctx, selectApplications+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) FindApprovedByRegistration(ctx context.Context, registrationKey string) ([]*models.Application, error) {
	if registrationKey == "" {
		return nil, nil
	}
	return s.query(ctx, selectApplications+`WHERE status = $1 AND registration_key = $2 ORDER BY created_at, id`,
		string(models.StatusApproved), registrationKey)
}

func (s *PostgresStore) List(ctx context.Context, statuses ...models.Status) ([]*models.Application, error) {
	if len(statuses) == 0 {
		return s.query(ctx, selectApplications+`ORDER BY created_at, id`)
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return s.query(ctx, selectApplications+`WHERE status = ANY($1) ORDER BY created_at, id`, pq.Array(names))
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (models.Statistics, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT status, COUNT(*) FROM professional_verifications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()

	stats := models.Statistics{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan application count: %w", err)
		}
		stats[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application counts: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

func insertArgs(app *models.Application) ([]any, error) {
	assessment, err := encodeAssessment(app.Assessment)
	if err != nil {
		return nil, err
	}
	return []any{
		uuid.UUID(app.ID),
		uuid.UUID(app.ApplicantID),
		app.CorrelationID,
		string(app.Type),
		app.FirstName,
		app.LastName,
		app.Email,
		app.RegistrationNumber,
		normalize.Registration(app.RegistrationNumber),
		app.DegreeInstitution,
		app.DegreeTitle,
		app.Affiliation,
		app.ExperienceYears,
		app.Specialization,
		pq.Array(nonNil(app.LanguagesSpoken)),
		app.ClinicAddress,
		app.ContactEmail,
		app.ContactPhone,
		app.LicenseDocumentURL,
		app.DegreeDocumentURL,
		pq.Array(nonNil(app.AdditionalDocumentURLs)),
		string(app.Status),
		app.AdminNotes,
		app.RejectionReason,
		nullableUser(app.VerifiedBy),
		app.VerifiedAt,
		assessment,
		app.CreatedAt,
		app.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app             models.Application
		appID           uuid.UUID
		applicantID     uuid.UUID
		credType        string
		registrationKey string
		years           sql.NullInt64
		languages       pq.StringArray
		additional      pq.StringArray
		status          string
		verifiedBy      *uuid.UUID
		verifiedAt      sql.NullTime
		assessment      []byte
	)
	err := row.Scan(
		&appID, &applicantID, &app.CorrelationID, &credType, &app.FirstName, &app.LastName, &app.Email,
		&app.RegistrationNumber, &registrationKey, &app.DegreeInstitution, &app.DegreeTitle, &app.Affiliation,
		&years, &app.Specialization, &languages, &app.ClinicAddress, &app.ContactEmail,
		&app.ContactPhone, &app.LicenseDocumentURL, &app.DegreeDocumentURL, &additional,
		&status, &app.AdminNotes, &app.RejectionReason, &verifiedBy, &verifiedAt, &assessment,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.ID = id.ApplicationID(appID)
	app.ApplicantID = id.UserID(applicantID)
	app.Type = matching.CredentialType(credType)
	app.Status = models.Status(status)
	if years.Valid {
		y := int(years.Int64)
		app.ExperienceYears = &y
	}
	if len(languages) > 0 {
		app.LanguagesSpoken = []string(languages)
	}
	if len(additional) > 0 {
		app.AdditionalDocumentURLs = []string(additional)
	}
	if verifiedBy != nil {
		app.VerifiedBy = id.UserID(*verifiedBy)
	}
	if verifiedAt.Valid {
		at := verifiedAt.Time
		app.VerifiedAt = &at
	}
	if len(assessment) > 0 {
		var a models.Assessment
		if err := json.Unmarshal(assessment, &a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		app.Assessment = &a
	}
	return &app, nil
}

// encodeAssessment returns nil for SQL NULL or the JSON document as text.
func encodeAssessment(a *models.Assessment) (any, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}
	return string(b), nil
}

func nullableUser(u id.UserID) *uuid.UUID {
	if u.IsNil() {
		return nil
	}
	v := uuid.UUID(u)
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

