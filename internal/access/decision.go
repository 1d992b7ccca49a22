package access

import (
	"context"
	"errors"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

const (
	MethodRole  = "role"
	MethodShare = "share"
)

// Decision is the answer to "can this principal see this resource".
// Denial is an expected value, never an error; errors are reserved for
// storage failure.
type Decision struct {
	HasAccess bool   `json:"hasAccess"`
	Reason    string `json:"reason,omitempty"`
	Method    string `json:"method,omitempty"`
}

// Decider combines the role path and the share-link path into one answer.
type Decider struct {
	permissions *PermissionService
	shareLinks  *ShareLinkService
}

func NewDecider(permissions *PermissionService, shareLinks *ShareLinkService) *Decider {
	return &Decider{permissions: permissions, shareLinks: shareLinks}
}

// Decide tries the role path first, then the share path; the two are a
// strict OR. A share token is an independent grant, not an escalation: it
// never overrides a role denial, and a signed-in user with enough role
// never needs one.
//
// The role path runs only for signed-in callers. An anonymous caller must
// present a share token to get anything through the facade, even for a
// resource no rule protects; public reads go through the pages directly,
// not through here.
//
// Presenting a share token consumes a use even when the subsequent resource
// match fails: the budget is spent by presenting the token at all. That
// discourages probing a link against resources it was not minted for.
func (d *Decider) Decide(ctx context.Context, role *models.Role, shareToken *string, resourceType models.ResourceType, resourceID string) (Decision, error) {
	if role != nil {
		dec, err := d.permissions.CheckRole(ctx, role, resourceType, resourceID)
		if err != nil {
			return Decision{}, err
		}
		if dec.HasAccess {
			dec.Method = MethodRole
			return dec, nil
		}
	}

	if shareToken != nil && *shareToken != "" {
		link, err := d.shareLinks.Validate(ctx, *shareToken)
		switch {
		case err == nil:
			if MatchesResource(link, resourceType, resourceID) {
				return Decision{HasAccess: true, Method: MethodShare}, nil
			}
		case errors.Is(err, ErrInvalidLink),
			errors.Is(err, ErrLinkExpired),
			errors.Is(err, ErrUsesExhausted):
			// Fall through to the combined denial.
		default:
			return Decision{}, err
		}
	}

	return Decision{Reason: "Access denied"}, nil
}
