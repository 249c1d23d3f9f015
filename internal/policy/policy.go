// Package policy decides, per operation, whether a principal may act on a
// resource. Handlers never test roles inline; they ask Authorize and map
// the deny reason onto a transport status.
package policy

import (
	"github.com/google/uuid"

	"github.com/itfreelance/api/internal/models"
)

type Operation string

const (
	OpCategoryCreate Operation = "category.create"
	OpCategoryUpdate Operation = "category.update"
	OpCategoryDelete Operation = "category.delete"

	OpProjectCreate Operation = "project.create"
	OpProjectUpdate Operation = "project.update"
	OpProjectDelete Operation = "project.delete"

	OpOfferCreate Operation = "offer.create"
	OpOfferUpdate Operation = "offer.update"
	OpOfferDelete Operation = "offer.delete"

	OpReviewCreate Operation = "review.create"

	OpMetricsView Operation = "metrics.view"
)

type DenyReason string

const (
	DenyUnauthenticated   DenyReason = "unauthenticated"
	DenyRoleMismatch      DenyReason = "role_mismatch"
	DenyOwnershipMismatch DenyReason = "ownership_mismatch"
	DenyInactiveAccount   DenyReason = "account_inactive"
)

// Principal is the authenticated identity attempting an operation.
type Principal struct {
	ID     uuid.UUID
	Role   models.Role
	Status models.Status
}

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// Resource is the target of an operation. Resources without an owning
// user (categories, metrics) are passed as nil.
type Resource interface {
	OwnerID() uuid.UUID
}

type rule struct {
	role      models.Role
	ownership bool
}

var rules = map[Operation]rule{
	OpCategoryCreate: {role: models.RoleAdmin},
	OpCategoryUpdate: {role: models.RoleAdmin},
	OpCategoryDelete: {role: models.RoleAdmin},

	OpProjectCreate: {role: models.RoleClient},
	OpProjectUpdate: {role: models.RoleClient, ownership: true},
	OpProjectDelete: {role: models.RoleClient, ownership: true},

	OpOfferCreate: {role: models.RoleFreelancer},
	OpOfferUpdate: {role: models.RoleFreelancer, ownership: true},
	OpOfferDelete: {role: models.RoleFreelancer, ownership: true},

	// review.create targets the project; its owner is the reviewing client
	OpReviewCreate: {role: models.RoleClient, ownership: true},

	OpMetricsView: {role: models.RoleAdmin},
}

// Authorize evaluates the rule for op against the principal and resource.
// Unknown operations deny.
func Authorize(p *Principal, op Operation, res Resource) Decision {
	if p == nil {
		return deny(DenyUnauthenticated)
	}

	r, ok := rules[op]
	if !ok {
		return deny(DenyRoleMismatch)
	}

	if p.Role != r.role {
		return deny(DenyRoleMismatch)
	}

	if r.ownership {
		if res == nil || res.OwnerID() != p.ID {
			return deny(DenyOwnershipMismatch)
		}
	}

	return allow()
}

// CanLogin gates credential issuance. An inactive account denies with a
// reason distinct from bad credentials so the transport can tell them
// apart.
func CanLogin(u *models.User) Decision {
	if u.Status != models.StatusActive {
		return deny(DenyInactiveAccount)
	}
	return allow()
}
