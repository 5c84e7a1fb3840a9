// internal/policy/policy.go

// Package policy centralizes every authorization decision the API makes.
// Evaluate is a pure function over the caller's access tier, the requested
// action, and the target resource, so access rules live in one table instead
// of being duplicated per handler.
package policy

import (
	"github.com/google/uuid"

	"github.com/marketsquare/storefront/internal/models"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceCategory       Resource = "category"
	ResourceProduct        Resource = "product"
	ResourceProductReviews Resource = "product_reviews"
	ResourceUser           Resource = "user"
	ResourceSession        Resource = "session"
)

type Reason string

const (
	ReasonNotAuthenticated Reason = "not_authenticated"
	ReasonNotSeller        Reason = "not_seller"
	ReasonNotAdmin         Reason = "not_admin"
	ReasonNotOwner         Reason = "not_owner"
	ReasonUnsupported      Reason = "unsupported"
)

// Caller is the identity context of a request. The zero value is anonymous.
type Caller struct {
	Authenticated bool
	UserID        uuid.UUID
	UserType      models.UserType
}

func Anonymous() Caller {
	return Caller{}
}

func ForUser(id uuid.UUID, userType models.UserType) Caller {
	return Caller{Authenticated: true, UserID: id, UserType: userType}
}

// Subject is the concrete resource instance an action targets, when ownership
// matters. Rules without an ownership check ignore it.
type Subject struct {
	OwnerID uuid.UUID
}

// Owned is a convenience for passing a subject inline.
func Owned(ownerID uuid.UUID) *Subject {
	return &Subject{OwnerID: ownerID}
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// rule is one row of the policy table. Checks run in a fixed order:
// authentication, then role, then ownership. A role requirement of "" means
// any authenticated user; requireOwner implies requireAuth.
type rule struct {
	requireAuth  bool
	requireType  models.UserType
	requireOwner bool
}

// rules holds every supported (resource, action) combination. Anything not
// listed here is Deny(unsupported); the transport layer decides how that maps
// outward.
var rules = map[Resource]map[Action]rule{
	ResourceSession: {
		ActionCreate: {},                                       // login
		ActionUpdate: {requireAuth: true, requireOwner: true},  // refresh
		ActionDelete: {requireAuth: true, requireOwner: true},  // logout
	},
	ResourceUser: {
		ActionCreate: {},                                       // register
		ActionRead:   {requireAuth: true, requireOwner: true},  // /users/me
	},
	ResourceCategory: {
		ActionRead:   {},
		ActionCreate: {requireAuth: true, requireType: models.UserTypeAdmin},
		ActionUpdate: {requireAuth: true, requireType: models.UserTypeAdmin},
	},
	ResourceProduct: {
		ActionRead:   {},
		ActionCreate: {requireAuth: true, requireType: models.UserTypeSeller},
		ActionUpdate: {requireAuth: true, requireType: models.UserTypeSeller, requireOwner: true},
		ActionDelete: {requireAuth: true, requireType: models.UserTypeSeller, requireOwner: true},
	},
	ResourceProductReviews: {
		ActionRead:   {},
		ActionCreate: {requireAuth: true},
	},
}

// Evaluate decides whether caller may perform action on resource. subject is
// the concrete instance for ownership-gated rules and may be nil elsewhere.
// The role check precedes the ownership check: a non-seller updating a product
// they somehow own is still denied as not_seller. Evaluate never mutates its
// arguments and holds no state; it is safe for concurrent use.
func Evaluate(caller Caller, action Action, resource Resource, subject *Subject) Decision {
	actions, ok := rules[resource]
	if !ok {
		return Deny(ReasonUnsupported)
	}
	r, ok := actions[action]
	if !ok {
		return Deny(ReasonUnsupported)
	}

	if (r.requireAuth || r.requireOwner) && !caller.Authenticated {
		return Deny(ReasonNotAuthenticated)
	}

	if r.requireType != "" && caller.UserType != r.requireType {
		switch r.requireType {
		case models.UserTypeSeller:
			return Deny(ReasonNotSeller)
		case models.UserTypeAdmin:
			return Deny(ReasonNotAdmin)
		default:
			return Deny(ReasonUnsupported)
		}
	}

	if r.requireOwner {
		// Sessions are keyed to their user by the session store itself; an
		// ownership subject is only ever supplied for resources that carry an
		// owner id. Without one we cannot prove ownership.
		if resource != ResourceSession {
			if subject == nil || subject.OwnerID != caller.UserID {
				return Deny(ReasonNotOwner)
			}
		} else if subject != nil && subject.OwnerID != caller.UserID {
			return Deny(ReasonNotOwner)
		}
	}

	return Allow()
}
