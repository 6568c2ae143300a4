package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	matching "mindcare/internal/matching/models"
	"mindcare/internal/matching/ports"
	"mindcare/internal/reference/metrics"
	"mindcare/internal/reference/models"
	"mindcare/internal/reference/store"
	id "mindcare/pkg/domain"
	dErrors "mindcare/pkg/domain-errors"
	audit "mindcare/pkg/platform/audit"
	"mindcare/pkg/platform/audit/publisher"
	auditmemory "mindcare/pkg/platform/audit/store/memory"
)

// =============================================================================
// Reference service
// =============================================================================
// The reference list feeds every confidence score, so imports must be
// forgiving row by row but strict about the header, and single adds must
// enforce the composite key.

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemory
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	admin      id.UserID
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.admin = id.UserID(uuid.New())
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	svc, err := New(s.store,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TestNewRequiresStore() {
	_, err := New(nil)
	s.EqualError(err, "reference store is required")
}

func (s *ServiceSuite) actions() []string {
	events, err := s.auditStore.ListRecent(s.ctx, 100)
	s.Require().NoError(err)
	var out []string
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestAdd() {
	rec, err := s.service.Add(s.ctx, models.Record{
		Email:              "  ayesha@example.com ",
		FullName:           "Dr. Ayesha Rahman",
		Type:               matching.CredentialPsychiatrist,
		Specialization:     "General Psychiatry",
		RegistrationNumber: "BMDC-12345",
	}, s.admin)
	s.Require().NoError(err)

	s.False(rec.ID.IsNil())
	s.Equal("ayesha@example.com", rec.Email)
	s.Equal(s.now, rec.UploadedAt)
	s.Equal(s.admin, rec.UploadedBy)
	s.Equal([]string{string(audit.EventReferenceAdded)}, s.actions())

	_, err = s.service.Add(s.ctx, models.Record{
		Email:          "AYESHA@example.com",
		FullName:       "Ayesha",
		Type:           matching.CredentialPsychiatrist,
		Specialization: "general psychiatry",
	}, s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestAddValidation() {
	cases := map[string]models.Record{
		"email is required":          {FullName: "A", Type: matching.CredentialPsychologist, Specialization: "CBT"},
		"email is invalid":           {Email: "nope", FullName: "A", Type: matching.CredentialPsychologist, Specialization: "CBT"},
		"full_name is required":      {Email: "a@example.com", Type: matching.CredentialPsychologist, Specialization: "CBT"},
		"specialization is required": {Email: "a@example.com", FullName: "A", Type: matching.CredentialPsychologist},
	}
	for msg, rec := range cases {
		_, err := s.service.Add(s.ctx, rec, s.admin)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), msg)
		s.Equal(msg, dErrors.MessageOf(err))
	}

	_, err := s.service.Add(s.ctx, models.Record{Email: "a@example.com", FullName: "A", Type: "NURSE", Specialization: "x"}, s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestRemoveAndGet() {
	rec, err := s.service.Add(s.ctx, models.Record{
		Email: "a@example.com", FullName: "A", Type: matching.CredentialPsychologist, Specialization: "CBT",
	}, s.admin)
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)

	s.Require().NoError(s.service.Remove(s.ctx, rec.ID, s.admin))
	s.True(dErrors.HasCode(s.service.Remove(s.ctx, rec.ID, s.admin), dErrors.CodeNotFound))
	_, err = s.service.Get(s.ctx, rec.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(s.actions(), string(audit.EventReferenceRemoved))
}

func (s *ServiceSuite) TestIsPreApproved() {
	_, err := s.service.Add(s.ctx, models.Record{
		Email: "Karim@Example.com", FullName: "Karim", Type: matching.CredentialPsychologist, Specialization: "Trauma",
	}, s.admin)
	s.Require().NoError(err)

	ok, err := s.service.IsPreApproved(s.ctx, "karim@example.com", matching.CredentialPsychologist, "TRAUMA")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.IsPreApproved(s.ctx, "karim@example.com", matching.CredentialPsychiatrist, "Trauma")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestSearchAndCount() {
	for _, email := range []string{"a@example.com", "b@example.org"} {
		_, err := s.service.Add(s.ctx, models.Record{
			Email: email, FullName: "Name", Type: matching.CredentialPsychologist, Specialization: "CBT",
		}, s.admin)
		s.Require().NoError(err)
	}

	found, err := s.service.Search(s.ctx, models.SearchFilter{Email: ".org"})
	s.Require().NoError(err)
	s.Len(found, 1)

	all, err := s.service.Search(s.ctx, models.SearchFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	n, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

const sampleCSV = `email,full_name,professional_type,specialization,bmdc_number,degree_title,degree_institution,experience_years,languages_spoken
ayesha@example.com,Dr. Ayesha Rahman,psychiatrist,General Psychiatry,BMDC-12345,,,12,"[""Bangla"",""English""]"
karim@example.com,Karim Hossain,PSYCHOLOGIST,Clinical Psychology,,MS in Clinical Psychology,University of Dhaka,abc,"Bangla; Hindi"
,Missing Email,PSYCHOLOGIST,CBT,,,,,
nurse@example.com,Nora,NURSE,Wards,,,,,
AYESHA@example.com,Dup,PSYCHIATRIST,general psychiatry,BMDC-99999,,,,
`

func (s *ServiceSuite) TestImportCSV() {
	summary, err := s.service.ImportCSV(s.ctx, strings.NewReader(sampleCSV), s.admin)
	s.Require().NoError(err)

	s.Equal(2, summary.Added)
	s.Equal(3, summary.Skipped)
	s.Require().Len(summary.Rows, 3)
	s.Equal(models.RowIssue{Line: 4, Reason: "missing required fields"}, summary.Rows[0])
	s.Equal(models.RowIssue{Line: 5, Reason: "invalid professional type: NURSE"}, summary.Rows[1])
	s.Equal(models.RowIssue{Line: 6, Reason: "already in reference list"}, summary.Rows[2])

	got, err := s.store.FindByKey(s.ctx, matching.KeyOf("ayesha@example.com", matching.CredentialPsychiatrist, "General Psychiatry"))
	s.Require().NoError(err)
	s.Equal("BMDC-12345", got.RegistrationNumber)
	s.Equal([]string{"Bangla", "English"}, got.LanguagesSpoken)
	s.Require().NotNil(got.ExperienceYears)
	s.Equal(12, *got.ExperienceYears)
	s.Equal(s.admin, got.UploadedBy)

	karim, err := s.store.FindByKey(s.ctx, matching.KeyOf("karim@example.com", matching.CredentialPsychologist, "Clinical Psychology"))
	s.Require().NoError(err)
	s.Nil(karim.ExperienceYears, "unparseable years are dropped")
	s.Equal([]string{"Bangla", "Hindi"}, karim.LanguagesSpoken)

	s.Equal(2.0, testutil.ToFloat64(s.metrics.ImportedRows.WithLabelValues("added")))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.ImportedRows.WithLabelValues("skipped")))
	s.Equal([]string{string(audit.EventReferenceImported)}, s.actions())
}

func (s *ServiceSuite) TestImportedEntriesAreVisibleToLookups() {
	_, err := s.service.ImportCSV(s.ctx, strings.NewReader(sampleCSV), s.admin)
	s.Require().NoError(err)

	got, err := s.store.Lookup(s.ctx, ports.Criteria{Type: matching.CredentialPsychiatrist}.
		Where(ports.FieldRegistrationNumber, ports.OpEquals, "BMDC-12345"))
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *ServiceSuite) TestImportCSVHeaderErrors() {
	_, err := s.service.ImportCSV(s.ctx, strings.NewReader(""), s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.ImportCSV(s.ctx, strings.NewReader("email,full_name,professional_type,specialization\n"), s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal("CSV file is empty or has no data rows", dErrors.MessageOf(err))

	_, err = s.service.ImportCSV(s.ctx, strings.NewReader("email,full_name,specialization\na@example.com,A,CBT\n"), s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("missing required column: professional_type", dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestImportCSVHeaderIsCaseInsensitiveAndBOMTolerant() {
	body := "\ufeffEmail, Full_Name ,PROFESSIONAL_TYPE,Specialization\na@example.com,A,psychologist,CBT\n"
	summary, err := s.service.ImportCSV(s.ctx, strings.NewReader(body), s.admin)
	s.Require().NoError(err)
	s.Equal(1, summary.Added)
}

type failingStore struct {
	*store.InMemory
}

func (failingStore) Add(context.Context, *models.Record) error {
	return errors.New("connection refused")
}

func (s *ServiceSuite) TestImportCSVStoreFailureIsInternal() {
	svc, err := New(failingStore{store.NewInMemory()})
	s.Require().NoError(err)

	_, err = svc.ImportCSV(s.ctx, strings.NewReader(sampleCSV), s.admin)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestParseLanguages(t *testing.T) {
	cases := map[string][]string{
		"":                     nil,
		`["Bangla","English"]`: {"Bangla", "English"},
		"Bangla, English":      {"Bangla", "English"},
		"[broken":              {"[broken"},
		" ; ":                  nil,
		"Bangla;Bangla":        {"Bangla"},
	}
	for in, want := range cases {
		if got := parseLanguages(in); !equalStrings(got, want) {
			t.Errorf("parseLanguages(%q) = %v, want %v", in, got, want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
