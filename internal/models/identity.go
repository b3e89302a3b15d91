package models

import "github.com/google/uuid"

// Identity is an authenticated caller as asserted by the external
// identity provider's token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type DestinationKind string

const (
	DestinationAdminList   DestinationKind = "admin_list"
	DestinationProject     DestinationKind = "project"
	DestinationProjectList DestinationKind = "project_list"
	DestinationUnassigned  DestinationKind = "unassigned"
)

// Destination is where an identity lands after login.
type Destination struct {
	Kind      DestinationKind `json:"kind"`
	ProjectID uuid.UUID       `json:"project_id,omitzero"`
	Projects  []Project       `json:"projects,omitempty"`
}
