// internal/app/features/products/handler.go
package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	productstore "github.com/dalemusser/cardhub/internal/app/store/products"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Products *productstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(products *productstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Products: products,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func targetCompany(r *http.Request) (primitive.ObjectID, error) {
	if authz.IsSuperAdmin(r) {
		raw := strings.TrimSpace(r.URL.Query().Get("company_id"))
		if raw == "" {
			return primitive.NilObjectID, errors.New("company_id is required")
		}
		return primitive.ObjectIDFromHex(raw)
	}
	companyID := authz.UserCompanyID(r)
	if companyID.IsZero() {
		return primitive.NilObjectID, errors.New("no company on account")
	}
	return companyID, nil
}

// HandleList handles GET /api/products.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	products, err := h.Products.ListByCompany(ctx, companyID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list products", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, products)
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	LinkURL     string `json:"link_url"`
	Status      string `json:"status"`
}

// HandleCreate handles POST /api/products.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode product body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Product name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Products.Create(ctx, models.Product{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: htmlsanitize.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Status:      req.Status,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create product", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "product_created", actorID, nil, &companyID,
		map[string]string{"product_id": created.ID.Hex(), "name": created.Name})
	uierrors.Created(w, created)
}

// HandleGet handles GET /api/products/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	product, err := h.Products.GetByID(ctx, id, companyID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Product not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load product", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, product)
}

// HandleUpdate handles PUT /api/products/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode product body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Product name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Products.Update(ctx, id, companyID, productstore.Update{
		Name:        req.Name,
		Description: htmlsanitize.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Status:      req.Status,
	})
	switch {
	case errors.Is(err, productstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Product not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update product", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "product_updated", actorID, nil, &companyID,
		map[string]string{"product_id": id.Hex()})
	uierrors.OKMessage(w, "Product updated.", nil)
}

// HandleDelete handles DELETE /api/products/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Products.Delete(ctx, id, companyID)
	switch {
	case errors.Is(err, productstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Product not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB delete product", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "product_deleted", actorID, nil, &companyID,
		map[string]string{"product_id": id.Hex()})
	uierrors.OKMessage(w, "Product deleted.", nil)
}
