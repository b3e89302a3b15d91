package ledger

import (
	"context"
	"fmt"

	"github.com/bsead/budget-pro/internal/models"
)

// DefaultAdminRole is the role claim that marks an administrative actor.
const DefaultAdminRole = "admin"

// Router decides where an authenticated identity lands.
type Router struct {
	finder    ProjectFinder
	adminRole string
}

func NewRouter(finder ProjectFinder, adminRole string) *Router {
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	return &Router{finder: finder, adminRole: adminRole}
}

// IsAdmin reports whether the identity carries the administrative role.
func (r *Router) IsAdmin(identity models.Identity) bool {
	return identity.Role == r.adminRole
}

// Route sends administrators to the project list. Anyone else is matched
// against projects by responsible email or identity id: one match lands on
// that project, several on the list, none on the unassigned notice.
func (r *Router) Route(ctx context.Context, identity models.Identity) (models.Destination, error) {
	if r.IsAdmin(identity) {
		return models.Destination{Kind: models.DestinationAdminList}, nil
	}

	projects, err := r.finder.FindProjectsByResponsibleParty(ctx, identity.Email, identity.ID)
	if err != nil {
		return models.Destination{}, fmt.Errorf("failed to find projects for %s: %w", identity.Email, err)
	}

	switch len(projects) {
	case 0:
		return models.Destination{Kind: models.DestinationUnassigned}, nil
	case 1:
		return models.Destination{Kind: models.DestinationProject, ProjectID: projects[0].ID}, nil
	default:
		return models.Destination{Kind: models.DestinationProjectList, Projects: projects}, nil
	}
}
