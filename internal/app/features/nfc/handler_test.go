// internal/app/features/nfc/handler_test.go
package nfc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/dalemusser/cardhub/internal/app/store/audit"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/bridge"
	"github.com/dalemusser/cardhub/internal/app/system/tagcodec"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/cardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	testKey = []byte("0123456789abcdef0123456789abcdef")
	testIV  = []byte("0123456789abcdef")
)

// newTestHandler builds the handler against a fresh database with the
// unique sparse nfc_uid index the duplicate-claim path depends on.
func newTestHandler(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nfc_uid", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		t.Fatalf("create nfc_uid index: %v", err)
	}

	codec, err := tagcodec.New(testKey, testIV, "https://cards.example.com/card")
	if err != nil {
		t.Fatalf("codec init: %v", err)
	}

	logger := zap.NewNop()
	return NewHandler(
		codec,
		userstore.New(db),
		bridge.New("", logger), // no writer deployed in tests
		uierrors.NewErrorLogger(logger),
		auditlog.New(audit.New(db), logger, auditlog.Config{Admin: "db"}),
		logger,
	)
}

func createHolder(t *testing.T, h *Handler, companyID primitive.ObjectID, first, last, loginID string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	holder, err := h.Users.Create(ctx, models.User{
		FirstName: first,
		LastName:  last,
		LoginID:   loginID,
		Role:      "user",
		Status:    "active",
		CompanyID: &companyID,
	})
	if err != nil {
		t.Fatalf("create holder: %v", err)
	}
	return holder
}

func postRegister(h *Handler, user testutil.TestUser, userID, nfcUID string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"user_id": userID, "nfc_uid": nfcUID})
	req := httptest.NewRequest(http.MethodPost, "/api/nfc/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	return rec
}

func TestHandleRegister_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	companyID := primitive.NewObjectID()
	holder := createHolder(t, h, companyID, "Jane", "Doe", "janedoe2026")
	admin := testutil.AdminUser(companyID)

	rec := postRegister(h, admin, holder.ID.Hex(), "04:AA:BB:CC:DD:EE:FF")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			NdefURL        string `json:"ndef_url"`
			UserNo         int64  `json:"user_no"`
			BridgeNotified bool   `json:"bridge_notified"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	wantURL, err := h.Codec.Encode(holder.FirstName, holder.LastName, holder.UserNo)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if env.Data.NdefURL != wantURL {
		t.Errorf("ndef_url mismatch: got %q want %q", env.Data.NdefURL, wantURL)
	}
	if env.Data.UserNo != holder.UserNo {
		t.Errorf("user_no mismatch: got %d want %d", env.Data.UserNo, holder.UserNo)
	}
	if !env.Data.BridgeNotified {
		t.Error("expected bridge_notified true with no-op notifier")
	}

	// Both identity channels must be persisted together.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	stored, err := h.Users.GetByID(ctx, holder.ID)
	if err != nil {
		t.Fatalf("reload holder: %v", err)
	}
	if stored.NfcUID != "04:AA:BB:CC:DD:EE:FF" {
		t.Errorf("nfc_uid not persisted: %q", stored.NfcUID)
	}
	if stored.NdefURL != wantURL {
		t.Errorf("ndef_url not persisted: %q", stored.NdefURL)
	}
}

func TestHandleRegister_TenantMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	holder := createHolder(t, h, primitive.NewObjectID(), "Jane", "Doe", "janedoe2026")
	otherAdmin := testutil.AdminUser(primitive.NewObjectID())

	rec := postRegister(h, otherAdmin, holder.ID.Hex(), "04:AA:BB:CC")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_SuperAdminAnyCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	holder := createHolder(t, h, primitive.NewObjectID(), "Jane", "Doe", "janedoe2026")

	rec := postRegister(h, testutil.SuperAdminUser(), holder.ID.Hex(), "04:AA:BB:CC")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_DuplicateUID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	companyID := primitive.NewObjectID()
	first := createHolder(t, h, companyID, "Jane", "Doe", "janedoe2026")
	second := createHolder(t, h, companyID, "John", "Smith", "johnsmith2026")
	admin := testutil.AdminUser(companyID)

	if rec := postRegister(h, admin, first.ID.Hex(), "04:SAME:UID"); rec.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := postRegister(h, admin, second.ID.Hex(), "04:SAME:UID")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate uid, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_ReRegisterSameHolder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	companyID := primitive.NewObjectID()
	holder := createHolder(t, h, companyID, "Jane", "Doe", "janedoe2026")
	admin := testutil.AdminUser(companyID)

	if rec := postRegister(h, admin, holder.ID.Hex(), "04:OLD:TAG"); rec.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d", rec.Code)
	}
	// Replacing a lost tag overwrites both channels.
	if rec := postRegister(h, admin, holder.ID.Hex(), "04:NEW:TAG"); rec.Code != http.StatusOK {
		t.Fatalf("re-registration failed: %d %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	stored, err := h.Users.GetByID(ctx, holder.ID)
	if err != nil {
		t.Fatalf("reload holder: %v", err)
	}
	if stored.NfcUID != "04:NEW:TAG" {
		t.Errorf("expected new uid, got %q", stored.NfcUID)
	}
}

func TestHandleRegister_RejectsNonHolders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	target, err := h.Users.Create(ctx, models.User{
		FirstName: "Ann",
		LastName:  "Admin",
		LoginID:   "annadmin2026",
		Role:      "admin",
		Status:    "active",
		CompanyID: &companyID,
	})
	if err != nil {
		t.Fatalf("create admin user: %v", err)
	}

	rec := postRegister(h, testutil.AdminUser(companyID), target.ID.Hex(), "04:AA")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-holder target, got %d", rec.Code)
	}
}

func TestHandleLookupByUID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	companyID := primitive.NewObjectID()
	holder := createHolder(t, h, companyID, "Jane", "Doe", "janedoe2026")
	admin := testutil.AdminUser(companyID)

	if rec := postRegister(h, admin, holder.ID.Hex(), "04:DE:AD:BE:EF"); rec.Code != http.StatusOK {
		t.Fatalf("registration failed: %d", rec.Code)
	}

	lookup := func(user testutil.TestUser, uid string) *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/nfc/user?uid="+uid, user)
		rec := httptest.NewRecorder()
		h.HandleLookupByUID(rec, req)
		return rec
	}

	rec := lookup(admin, "04:DE:AD:BE:EF")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			ID     string `json:"id"`
			UserNo int64  `json:"user_no"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Data.ID != holder.ID.Hex() {
		t.Errorf("expected holder %s, got %s", holder.ID.Hex(), env.Data.ID)
	}

	// A cross-tenant lookup must answer exactly like an unknown UID.
	otherAdmin := testutil.AdminUser(primitive.NewObjectID())
	crossTenant := lookup(otherAdmin, "04:DE:AD:BE:EF")
	unknown := lookup(otherAdmin, "04:99:99:99:99")
	if crossTenant.Code != http.StatusNotFound || unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404s, got %d and %d", crossTenant.Code, unknown.Code)
	}
	if crossTenant.Body.String() != unknown.Body.String() {
		t.Errorf("cross-tenant body differs from unknown-uid body: %q vs %q",
			crossTenant.Body.String(), unknown.Body.String())
	}
}
