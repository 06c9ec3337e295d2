// internal/app/features/card/handler_test.go
package card

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/dalemusser/cardhub/internal/app/store/audit"
	companystore "github.com/dalemusser/cardhub/internal/app/store/companies"
	productstore "github.com/dalemusser/cardhub/internal/app/store/products"
	socialstore "github.com/dalemusser/cardhub/internal/app/store/socials"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/tagcodec"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/cardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	testKey = []byte("0123456789abcdef0123456789abcdef")
	testIV  = []byte("0123456789abcdef")
)

func newTestHandler(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()

	codec, err := tagcodec.New(testKey, testIV, "https://cards.example.com/card")
	if err != nil {
		t.Fatalf("codec init: %v", err)
	}

	logger := zap.NewNop()
	return NewHandler(
		codec,
		userstore.New(db),
		companystore.New(db),
		productstore.New(db),
		socialstore.New(db),
		uierrors.NewErrorLogger(logger),
		auditlog.New(audit.New(db), logger, auditlog.Config{Card: "db"}),
		logger,
	)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serveCard(h *Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)
	return rec
}

func TestServe_ResolvesFullProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h := newTestHandler(t, db)

	company, err := h.Companies.Create(ctx, models.Company{
		Name:    "Acme Corp",
		Website: "https://acme.example.com",
		Status:  "active",
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}

	holder, err := h.Users.Create(ctx, models.User{
		FirstName: "Jane",
		LastName:  "Doe",
		LoginID:   "janedoe2026",
		Position:  "Engineer",
		Email:     "jane@acme.example.com",
		Role:      "user",
		Status:    "active",
		CompanyID: &company.ID,
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}

	if _, err := h.Products.Create(ctx, models.Product{
		CompanyID: company.ID,
		Name:      "Widget",
		Status:    "active",
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := h.Socials.Create(ctx, models.SocialLink{
		CompanyID: company.ID,
		OwnerKind: "user",
		OwnerID:   &holder.ID,
		Platform:  "linkedin",
		URL:       "https://linkedin.com/in/janedoe",
	}); err != nil {
		t.Fatalf("create social link: %v", err)
	}

	ndefURL, err := h.Codec.Encode(holder.FirstName, holder.LastName, holder.UserNo)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	rec := serveCard(h, ndefURL)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}

	var profile struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Position  string `json:"position"`
		Email     string `json:"email"`
		Company   *struct {
			Name string `json:"name"`
		} `json:"company"`
		Products []models.Product    `json:"products"`
		Socials  []models.SocialLink `json:"socials"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	if profile.FirstName != "Jane" || profile.LastName != "Doe" {
		t.Errorf("unexpected holder names: %q %q", profile.FirstName, profile.LastName)
	}
	if profile.Position != "Engineer" {
		t.Errorf("expected position, got %q", profile.Position)
	}
	if profile.Company == nil || profile.Company.Name != "Acme Corp" {
		t.Errorf("expected company in profile, got %+v", profile.Company)
	}
	if len(profile.Products) != 1 {
		t.Errorf("expected 1 product, got %d", len(profile.Products))
	}
	if len(profile.Socials) != 1 {
		t.Errorf("expected 1 social link, got %d", len(profile.Socials))
	}
}

func TestServe_NoSensitiveFieldsInProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h := newTestHandler(t, db)

	holder, err := h.Users.Create(ctx, models.User{
		FirstName: "Solo",
		LastName:  "Holder",
		LoginID:   "soloholder2026",
		Password:  "$2a$10$notarealhashbutpresent",
		Role:      "user",
		Status:    "active",
		CompanyID: oid(t),
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}

	ndefURL, err := h.Codec.Encode(holder.FirstName, holder.LastName, holder.UserNo)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	rec := serveCard(h, ndefURL)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, _ := raw["data"].(map[string]any)
	for _, field := range []string{"password", "login_id", "nfc_uid", "user_no", "role"} {
		if _, present := data[field]; present {
			t.Errorf("public profile leaks %q", field)
		}
	}
}

// Every resolution failure must produce the same status and body, so a
// caller cannot distinguish a forged payload from a deactivated holder.
func TestServe_FailuresAreIndistinguishable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h := newTestHandler(t, db)

	// A deactivated holder whose tag was issued while active.
	holder, err := h.Users.Create(ctx, models.User{
		FirstName: "Gone",
		LastName:  "Person",
		LoginID:   "goneperson2026",
		Role:      "user",
		Status:    "active",
		CompanyID: oid(t),
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}
	issuedURL, err := h.Codec.Encode(holder.FirstName, holder.LastName, holder.UserNo)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := h.Users.Deactivate(ctx, holder.ID, *holder.CompanyID); err != nil {
		t.Fatalf("deactivate holder: %v", err)
	}

	// A well-formed payload that matches nobody.
	ghostURL, err := h.Codec.Encode("Ghost", "Nobody", 424242)
	if err != nil {
		t.Fatalf("encode ghost: %v", err)
	}

	targets := map[string]string{
		"missing parameter":  "/card",
		"empty parameter":    "/card?data=",
		"not base64":         "/card?data=%25%25%25",
		"garbage ciphertext": "/card?data=aGVsbG8gd29ybGQhISE=",
		"no matching holder": ghostURL,
		"deactivated holder": issuedURL,
	}

	var wantBody string
	for name, target := range targets {
		rec := serveCard(h, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", name, rec.Code)
			continue
		}
		body := rec.Body.String()
		if wantBody == "" {
			wantBody = body
			continue
		}
		if body != wantBody {
			t.Errorf("%s: failure body differs: %q vs %q", name, body, wantBody)
		}
	}
}

func oid(t *testing.T) *primitive.ObjectID {
	t.Helper()
	id := primitive.NewObjectID()
	return &id
}
