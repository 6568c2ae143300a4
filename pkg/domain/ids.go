// Package domain holds typed identifiers shared across modules. Distinct types
// keep an application ID from being passed where a reference ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "mindcare/pkg/domain-errors"
)

// UserID identifies an account in the external user store (applicant or admin).
type UserID uuid.UUID

// ApplicationID identifies a professional verification application.
type ApplicationID uuid.UUID

// ReferenceID identifies an entry in the pre-approved reference list.
type ReferenceID uuid.UUID

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ReferenceID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReferenceID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewApplicationID returns a random application ID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewReferenceID returns a random reference ID.
func NewReferenceID() ReferenceID { return ReferenceID(uuid.New()) }

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, kind+" cannot be nil")
	}
	return parsed, nil
}

// ParseUserID parses a non-nil UUID into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user ID")
	return UserID(parsed), err
}

// ParseApplicationID parses a non-nil UUID into an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) {
	parsed, err := parseUUID(s, "application ID")
	return ApplicationID(parsed), err
}

// ParseReferenceID parses a non-nil UUID into a ReferenceID.
func ParseReferenceID(s string) (ReferenceID, error) {
	parsed, err := parseUUID(s, "reference ID")
	return ReferenceID(parsed), err
}

// Text encoding lets IDs appear as canonical UUID strings in JSON and cache
// payloads. Decoding accepts the nil UUID so zero values round-trip.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ReferenceID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ApplicationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ReferenceID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
