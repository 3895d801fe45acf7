package auth

import (
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"

	"github.com/utafrali/wishlist-service/internal/domain"
)

// Principal is the identity attached to a request after token validation.
// A zero Principal means the request carried no valid credentials.
type Principal struct {
	UserID string
	Role   string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// Decision is the outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

// Err maps the decision to its error. Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case Unauthenticated:
		return apperrors.Unauthorized("authentication required")
	case Forbidden:
		return apperrors.Forbidden("insufficient permissions")
	default:
		return nil
	}
}

// SelfOrAdmin allows a user to act on their own resources and admins to act
// on anyone's. Authentication is checked before ownership so missing
// credentials never surface as a permission problem.
func SelfOrAdmin(p Principal, targetUserID string) Decision {
	if !p.Authenticated() {
		return Unauthenticated
	}
	if p.UserID == targetUserID || p.IsAdmin() {
		return Allow
	}
	return Forbidden
}

// AdminOnly allows only admins through.
func AdminOnly(p Principal) Decision {
	if !p.Authenticated() {
		return Unauthenticated
	}
	if p.IsAdmin() {
		return Allow
	}
	return Forbidden
}
