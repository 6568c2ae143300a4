package audit

import (
	"context"
	"time"

	id "mindcare/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers verification decisions. Publishing is fail-closed:
	// the decision must not be reported as done if its audit record was lost.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity (submissions, scoring, imports).
	// Callers log and continue when these cannot be written.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// UserID is the applicant the event concerns, when there is one.
	UserID id.UserID
	// Subject names the entity acted on (application or reference ID).
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// ActorID is the admin who performed the action, when different from UserID.
	ActorID string
}

type AuditEvent string

const (
	// Verification workflow
	EventApplicationSubmitted     AuditEvent = "application_submitted"
	EventConfidenceScored         AuditEvent = "confidence_scored"
	EventConfidenceFailed         AuditEvent = "confidence_failed"
	EventApplicationReviewStarted AuditEvent = "application_review_started"
	EventApplicationApproved      AuditEvent = "application_approved"
	EventApplicationRejected      AuditEvent = "application_rejected"
	EventApplicationRevoked       AuditEvent = "application_revoked"

	// Reference list
	EventReferenceAdded    AuditEvent = "reference_added"
	EventReferenceRemoved  AuditEvent = "reference_removed"
	EventReferenceImported AuditEvent = "reference_imported"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationApproved:      CategoryCompliance,
	EventApplicationRejected:      CategoryCompliance,
	EventApplicationRevoked:       CategoryCompliance,
	EventApplicationReviewStarted: CategoryCompliance,

	EventApplicationSubmitted: CategoryOperations,
	EventConfidenceScored:     CategoryOperations,
	EventConfidenceFailed:     CategoryOperations,
	EventReferenceAdded:       CategoryOperations,
	EventReferenceRemoved:     CategoryOperations,
	EventReferenceImported:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
