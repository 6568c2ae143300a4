package admin

import (
	"time"

	audit "mindcare/pkg/platform/audit"
)

// AuditEventResponse is the HTTP response DTO for one audit record.
type AuditEventResponse struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
}

// AuditTrailResponse wraps the events for HTTP response, newest first.
type AuditTrailResponse struct {
	Events []*AuditEventResponse `json:"events"`
	Total  int                   `json:"total"`
}

func toAuditTrail(events []audit.Event) *AuditTrailResponse {
	out := make([]*AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp := &AuditEventResponse{
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Subject:   e.Subject,
			Action:    e.Action,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			ActorID:   e.ActorID,
		}
		if !e.UserID.IsNil() {
			resp.UserID = e.UserID.String()
		}
		out = append(out, resp)
	}
	return &AuditTrailResponse{Events: out, Total: len(out)}
}
