package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/cardhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID        string
	Name      string
	LoginID   string
	Role      string
	CompanyID string
}

// SuperAdminUser returns a TestUser with superadmin role.
func SuperAdminUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test SuperAdmin",
		LoginID: "superadmin@test.com",
		Role:    "superadmin",
	}
}

// AdminUser returns a TestUser with admin role scoped to a company.
func AdminUser(companyID primitive.ObjectID) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Admin",
		LoginID:   "admin@test.com",
		Role:      "admin",
		CompanyID: companyID.Hex(),
	}
}

// HolderUser returns a TestUser with the card-holder role.
func HolderUser(companyID primitive.ObjectID) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Holder",
		LoginID:   "holder@test.com",
		Role:      "user",
		CompanyID: companyID.Hex(),
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		LoginID:   user.LoginID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
