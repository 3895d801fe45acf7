package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

func TestSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		target    string
		want      Decision
	}{
		{"anonymous", Principal{}, "user-1", Unauthenticated},
		{"self", Principal{UserID: "user-1", Role: domain.RoleCustomer}, "user-1", Allow},
		{"other customer", Principal{UserID: "user-2", Role: domain.RoleCustomer}, "user-1", Forbidden},
		{"admin on other", Principal{UserID: "admin-1", Role: domain.RoleAdmin}, "user-1", Allow},
		{"admin on self", Principal{UserID: "admin-1", Role: domain.RoleAdmin}, "admin-1", Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelfOrAdmin(tt.principal, tt.target))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	assert.Equal(t, Unauthenticated, AdminOnly(Principal{}))
	assert.Equal(t, Forbidden, AdminOnly(Principal{UserID: "user-1", Role: domain.RoleCustomer}))
	assert.Equal(t, Allow, AdminOnly(Principal{UserID: "admin-1", Role: domain.RoleAdmin}))
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allow.Err())
	assert.True(t, errors.Is(Unauthenticated.Err(), apperrors.ErrUnauthorized))
	assert.True(t, errors.Is(Forbidden.Err(), apperrors.ErrForbidden))
}
