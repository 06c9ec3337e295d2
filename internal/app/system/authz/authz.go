// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/cardhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false. This ensures callers can
// trust that ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSuperAdmin reports whether the current request's user is a superadmin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "superadmin"
}

// IsAdmin reports whether the current request's user is a company admin.
// Note: superadmins are also considered admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "superadmin")
}

// IsCardHolder reports whether the current request's user is a card holder.
func IsCardHolder(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "user"
}

// UserCompanyID returns the caller's company ID as an ObjectID.
// Returns NilObjectID if the user is not logged in or has no company
// (superadmins are not company-scoped).
func UserCompanyID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.CompanyID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.CompanyID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// CanAccessCompany reports whether the caller may act on records belonging
// to the given company. Superadmins can access every company; admins and
// card holders only their own. This is the tenant-isolation check every
// company-scoped handler runs before touching the store.
func CanAccessCompany(r *http.Request, companyID primitive.ObjectID) bool {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	if strings.ToLower(user.Role) == "superadmin" {
		return true
	}
	return UserCompanyID(r) == companyID && companyID != primitive.NilObjectID
}
