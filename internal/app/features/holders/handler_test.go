// internal/app/features/holders/handler_test.go
package holders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/dalemusser/cardhub/internal/app/store/audit"
	"github.com/dalemusser/cardhub/internal/app/store/emaillogs"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/mailer"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/cardhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// newTestRouter mounts the holders feature the way the app router does,
// so URL parameters resolve through chi.
func newTestRouter(t *testing.T, db *mongo.Database) (*Handler, http.Handler) {
	t.Helper()

	logger := zap.NewNop()
	h := NewHandler(
		userstore.New(db),
		mailer.New("127.0.0.1", 2525, "", "", "noreply@test.local", "CardHub Test", emaillogs.New(db), logger),
		"CardHub Test",
		uierrors.NewErrorLogger(logger),
		auditlog.New(audit.New(db), logger, auditlog.Config{Admin: "db"}),
		logger,
	)

	r := chi.NewRouter()
	r.Route("/api/holders", h.MountRoutes)
	return h, r
}

func doJSON(t *testing.T, router http.Handler, method, target string, user testutil.TestUser, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreate_GeneratesCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, router := newTestRouter(t, db)

	companyID := primitive.NewObjectID()
	admin := testutil.AdminUser(companyID)

	rec := doJSON(t, router, http.MethodPost, "/api/holders", admin, map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"position":   "Engineer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data struct {
			Holder  models.User `json:"holder"`
			LoginID string      `json:"login_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	wantPrefix := "janedoe"
	if !strings.HasPrefix(env.Data.LoginID, wantPrefix) {
		t.Errorf("expected login id starting %q, got %q", wantPrefix, env.Data.LoginID)
	}
	if !strings.Contains(env.Data.LoginID, time.Now().Format("2006")) {
		t.Errorf("expected login id to carry the year, got %q", env.Data.LoginID)
	}
	if env.Data.Holder.UserNo == 0 {
		t.Error("expected a user number to be allocated")
	}
	if env.Data.Holder.Role != "user" {
		t.Errorf("expected role user, got %q", env.Data.Holder.Role)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("response leaks the bcrypt hash")
	}
}

func TestHandleCreate_LoginIDCollisionGetsSuffix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, router := newTestRouter(t, db)

	admin := testutil.AdminUser(primitive.NewObjectID())
	body := map[string]string{"first_name": "Jane", "last_name": "Doe"}

	first := doJSON(t, router, http.MethodPost, "/api/holders", admin, body)
	second := doJSON(t, router, http.MethodPost, "/api/holders", admin, body)
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201s, got %d and %d", first.Code, second.Code)
	}

	var a, b struct {
		Data struct {
			LoginID string `json:"login_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if a.Data.LoginID == b.Data.LoginID {
		t.Errorf("expected distinct login ids, both %q", a.Data.LoginID)
	}
}

func TestHandleCreate_RequiresCompanyScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, router := newTestRouter(t, db)

	body := map[string]string{"first_name": "Jane", "last_name": "Doe"}

	// Superadmins must name a company.
	rec := doJSON(t, router, http.MethodPost, "/api/holders", testutil.SuperAdminUser(), body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for superadmin without company_id, got %d", rec.Code)
	}

	// Superadmins acting on a named company succeed.
	companyID := primitive.NewObjectID()
	rec = doJSON(t, router, http.MethodPost, "/api/holders?company_id="+companyID.Hex(), testutil.SuperAdminUser(), body)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 for superadmin with company_id, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleList_ScopedToOwnCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, router := newTestRouter(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := primitive.NewObjectID()
	theirs := primitive.NewObjectID()
	for _, seed := range []struct {
		first, last, login string
		company            primitive.ObjectID
	}{
		{"Jane", "Doe", "janedoe2026", mine},
		{"John", "Smith", "johnsmith2026", theirs},
	} {
		companyID := seed.company
		if _, err := h.Users.Create(ctx, models.User{
			FirstName: seed.first,
			LastName:  seed.last,
			LoginID:   seed.login,
			Role:      "user",
			Status:    "active",
			CompanyID: &companyID,
		}); err != nil {
			t.Fatalf("seed holder: %v", err)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/holders", testutil.AdminUser(mine), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data []models.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(env.Data) != 1 {
		t.Fatalf("expected 1 holder, got %d", len(env.Data))
	}
	if env.Data[0].FirstName != "Jane" {
		t.Errorf("expected own company's holder, got %q", env.Data[0].FirstName)
	}
}

func TestHandleUpdate_NameChangeFlagsReRegistration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, router := newTestRouter(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	holder, err := h.Users.Create(ctx, models.User{
		FirstName: "Jane",
		LastName:  "Doe",
		LoginID:   "janedoe2026",
		Role:      "user",
		Status:    "active",
		CompanyID: &companyID,
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}
	if err := h.Users.RegisterTag(ctx, holder.ID, "04:AA:BB", "https://cards.example.com/card?data=x"); err != nil {
		t.Fatalf("register tag: %v", err)
	}

	admin := testutil.AdminUser(companyID)
	update := map[string]string{
		"first_name": "Janet",
		"last_name":  "Doe",
		"status":     "active",
	}
	rec := doJSON(t, router, http.MethodPut, "/api/holders/"+holder.ID.Hex(), admin, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "re-register") {
		t.Errorf("expected re-registration notice after name change, got %s", rec.Body.String())
	}

	// A non-name update must not warn.
	update["first_name"] = "Janet"
	update["position"] = "Lead Engineer"
	rec = doJSON(t, router, http.MethodPut, "/api/holders/"+holder.ID.Hex(), admin, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "re-register") {
		t.Errorf("unexpected re-registration notice, got %s", rec.Body.String())
	}
}

func TestHandleDeactivate_CrossTenantHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, router := newTestRouter(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	holder, err := h.Users.Create(ctx, models.User{
		FirstName: "Jane",
		LastName:  "Doe",
		LoginID:   "janedoe2026",
		Role:      "user",
		Status:    "active",
		CompanyID: &companyID,
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}

	// Another company's admin cannot touch the holder, and learns nothing.
	outsider := testutil.AdminUser(primitive.NewObjectID())
	rec := doJSON(t, router, http.MethodPost, "/api/holders/"+holder.ID.Hex()+"/deactivate", outsider, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-tenant deactivate, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/holders/"+holder.ID.Hex()+"/deactivate", testutil.AdminUser(companyID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := h.Users.GetByID(ctx, holder.ID)
	if err != nil {
		t.Fatalf("reload holder: %v", err)
	}
	if stored.IsActive() {
		t.Error("expected holder to be disabled")
	}
}
