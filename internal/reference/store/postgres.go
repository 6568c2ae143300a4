package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/models"
	id "mindcare/pkg/domain"
	"mindcare/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// columns maps lookup fields to reference_entries columns. Only these
// columns are ever interpolated into SQL.
var columns = map[ports.Field]string{
	ports.FieldEmail:              "email",
	ports.FieldFullName:           "full_name",
	ports.FieldSpecialization:     "specialization",
	ports.FieldRegistrationNumber: "registration_number",
	ports.FieldDegreeTitle:        "degree_title",
	ports.FieldDegreeInstitution:  "degree_institution",
}

// PostgresStore persists reference entries in the reference_entries table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectRecords = `
	SELECT id, email, full_name, professional_type, specialization,
		   registration_number, degree_title, degree_institution,
		   license_number, affiliation, experience_years, languages_spoken,
		   clinic_address, contact_phone, license_document_url,
		   degree_document_url, status_note, uploaded_at, uploaded_by
	FROM reference_entries
`

// Lookup translates the criteria into a parameterised WHERE clause.
func (s *PostgresStore) Lookup(ctx context.Context, criteria ports.Criteria) ([]matching.ReferenceRecord, error) {
	where, args, ok := buildWhere(criteria)
	if !ok {
		return nil, nil
	}
	query := selectRecords + where + ` ORDER BY uploaded_at, id`
	if criteria.Limit > 0 {
		args = append(args, criteria.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup reference entries: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// buildWhere returns false when the criteria cannot match any row, such as a
// contains condition with an empty value.
func buildWhere(criteria ports.Criteria) (string, []any, bool) {
	clauses := []string{"professional_type = $1"}
	args := []any{string(criteria.Type)}

	for _, cond := range criteria.Conditions {
		col, known := columns[cond.Field]
		if !known {
			return "", nil, false
		}
		switch cond.Op {
		case ports.OpEquals:
			args = append(args, cond.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		case ports.OpEqualsFold:
			args = append(args, cond.Value)
			clauses = append(clauses, fmt.Sprintf("lower(%s) = lower($%d)", col, len(args)))
		case ports.OpContains, ports.OpContainsFold:
			if cond.Value == "" {
				return "", nil, false
			}
			op := "LIKE"
			if cond.Op == ports.OpContainsFold {
				op = "ILIKE"
			}
			args = append(args, "%"+escapeLike(cond.Value)+"%")
			clauses = append(clauses, fmt.Sprintf(`%s %s $%d ESCAPE '\'`, col, op, len(args)))
		default:
			return "", nil, false
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Add inserts a record, mapping the composite-key unique index to ErrConflict.
func (s *PostgresStore) Add(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO reference_entries (
			id, email, full_name, professional_type, specialization,
			registration_number, degree_title, degree_institution,
			license_number, affiliation, experience_years, languages_spoken,
			clinic_address, contact_phone, license_document_url,
			degree_document_url, status_note, uploaded_at, uploaded_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	var uploadedBy *uuid.UUID
	if !record.UploadedBy.IsNil() {
		u := uuid.UUID(record.UploadedBy)
		uploadedBy = &u
	}
	languages := record.LanguagesSpoken
	if languages == nil {
		languages = []string{}
	}

	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.Email,
		record.FullName,
		string(record.Type),
		record.Specialization,
		record.RegistrationNumber,
		record.DegreeTitle,
		record.DegreeInstitution,
		record.LicenseNumber,
		record.Affiliation,
		record.ExperienceYears,
		pq.Array(languages),
		record.ClinicAddress,
		record.ContactPhone,
		record.LicenseDocumentURL,
		record.DegreeDocumentURL,
		record.StatusNote,
		record.UploadedAt,
		uploadedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert reference entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, referenceID id.ReferenceID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reference_entries WHERE id = $1`, uuid.UUID(referenceID))
	if err != nil {
		return fmt.Errorf("delete reference entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reference entry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, referenceID id.ReferenceID) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecords+`WHERE id = $1`, uuid.UUID(referenceID))
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find reference entry: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key matching.Key) (*models.Record, error) {
	key = matching.KeyOf(key.Email, key.Type, key.Specialization)
	row := s.db.QueryRowContext(ctx, selectRecords+`
		WHERE lower(email) = $1 AND professional_type = $2 AND lower(specialization) = $3`,
		key.Email, string(key.Type), key.Specialization)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find reference entry by key: %w", err)
	}
	return record, nil
}

// List returns every record, newest upload first.
func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+`ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list reference entries: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) Search(ctx context.Context, filter models.SearchFilter) ([]models.Record, error) {
	var (
		clauses []string
		args    []any
	)
	addFold := func(col, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		clauses = append(clauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, col, len(args)))
	}
	addFold("email", filter.Email)
	addFold("full_name", filter.Name)
	addFold("specialization", filter.Specialization)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		clauses = append(clauses, fmt.Sprintf("professional_type = $%d", len(args)))
	}

	query := selectRecords
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY uploaded_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search reference entries: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reference_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reference entries: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record     models.Record
		refID      uuid.UUID
		credType   string
		years      sql.NullInt64
		languages  pq.StringArray
		uploadedBy *uuid.UUID
	)
	err := row.Scan(
		&refID,
		&record.Email,
		&record.FullName,
		&credType,
		&record.Specialization,
		&record.RegistrationNumber,
		&record.DegreeTitle,
		&record.DegreeInstitution,
		&record.LicenseNumber,
		&record.Affiliation,
		&years,
		&languages,
		&record.ClinicAddress,
		&record.ContactPhone,
		&record.LicenseDocumentURL,
		&record.DegreeDocumentURL,
		&record.StatusNote,
		&record.UploadedAt,
		&uploadedBy,
	)
	if err != nil {
		return nil, err
	}
	record.ID = id.ReferenceID(refID)
	record.Type = matching.CredentialType(credType)
	if years.Valid {
		y := int(years.Int64)
		record.ExperienceYears = &y
	}
	if len(languages) > 0 {
		record.LanguagesSpoken = []string(languages)
	}
	if uploadedBy != nil {
		record.UploadedBy = id.UserID(*uploadedBy)
	}
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reference entry: %w", err)
		}
		out = append(out, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference entries: %w", err)
	}
	return out, nil
}
