// internal/app/bootstrap/startup_test.go
package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/cardhub/internal/app/system/authutil"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/cardhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureSuperAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	err := ensureSuperAdmin(ctx, deps, "root", "changeme123", testLogger())
	if err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"login_id": "root"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if user.Role != "superadmin" {
		t.Errorf("expected role 'superadmin', got %q", user.Role)
	}
	if user.CompanyID != nil {
		t.Error("expected superadmin to have nil company_id")
	}
	if user.Status != "active" {
		t.Errorf("expected status 'active', got %q", user.Status)
	}
	if user.UserNo == 0 {
		t.Error("expected a user number to be allocated")
	}
	if !authutil.CheckPassword("changeme123", user.Password) {
		t.Error("expected configured password to verify")
	}
}

func TestEnsureSuperAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	companyID := primitive.NewObjectID()
	existing := models.User{
		ID:         primitive.NewObjectID(),
		UserNo:     7,
		FirstName:  "Pat",
		LastName:   "Adler",
		FullNameCI: text.Fold("Pat Adler"),
		LoginID:    "padler2025",
		Role:       "admin",
		Status:     "active",
		CompanyID:  &companyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, existing); err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}

	err := ensureSuperAdmin(ctx, deps, "padler2025", "unused-password1", testLogger())
	if err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	if user.Role != "superadmin" {
		t.Errorf("expected role 'superadmin', got %q", user.Role)
	}
	if user.CompanyID != nil {
		t.Error("expected superadmin to have nil company_id after promotion")
	}
}

func TestEnsureSuperAdmin_AlreadySuperAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	existing := models.User{
		ID:         primitive.NewObjectID(),
		UserNo:     1,
		FirstName:  "Super",
		LastName:   "Admin",
		FullNameCI: text.Fold("Super Admin"),
		LoginID:    "root",
		Password:   "$2a$10$invalidhashforthistest",
		Role:       "superadmin",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, existing); err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}

	if err := ensureSuperAdmin(ctx, deps, "root", "newpassword1", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	// Unchanged; in particular the password is not reset.
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Password != existing.Password {
		t.Error("expected existing superadmin password to be untouched")
	}
}

func TestEnsureSuperAdmin_Unconfigured(t *testing.T) {
	deps := DBDeps{} // must not be touched
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, deps, "", "", testLogger()); err != nil {
		t.Fatalf("expected no-op when login ID is unset, got %v", err)
	}
}

func TestValidateConfig_NfcKeyMaterial(t *testing.T) {
	base := AppConfig{
		MongoURI:    "mongodb://localhost:27017",
		NfcKeyHex:   strings.Repeat("ab", 32),
		NfcIVHex:    strings.Repeat("ab", 16),
		CardBaseURL: "https://cards.example.com/card",
	}

	if err := ValidateConfig(nil, base, testLogger()); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"short key", func(c *AppConfig) { c.NfcKeyHex = strings.Repeat("ab", 16) }},
		{"non-hex key", func(c *AppConfig) { c.NfcKeyHex = strings.Repeat("zz", 32) }},
		{"short iv", func(c *AppConfig) { c.NfcIVHex = "abcd" }},
		{"relative card url", func(c *AppConfig) { c.CardBaseURL = "/card" }},
		{"login id without password", func(c *AppConfig) { c.SuperAdminLoginID = "root" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := ValidateConfig(nil, cfg, testLogger()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
