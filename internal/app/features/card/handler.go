// internal/app/features/card/handler.go
package card

// The public tap endpoint. A phone reads the NDEF URL off a tag and opens
// GET /card?data=<encrypted>. Decoding, matching, and holder lookup all
// collapse into one generic not-found response so callers cannot tell a
// forged payload from a deactivated holder.

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	companystore "github.com/dalemusser/cardhub/internal/app/store/companies"
	productstore "github.com/dalemusser/cardhub/internal/app/store/products"
	socialstore "github.com/dalemusser/cardhub/internal/app/store/socials"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/tagcodec"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"go.uber.org/zap"
)

// notFoundMsg is the single response body for every resolution failure.
const notFoundMsg = "Card not found."

type Handler struct {
	Codec     *tagcodec.Codec
	Users     *userstore.Store
	Companies *companystore.Store
	Products  *productstore.Store
	Socials   *socialstore.Store
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(
	codec *tagcodec.Codec,
	users *userstore.Store,
	companies *companystore.Store,
	products *productstore.Store,
	socials *socialstore.Store,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Codec:     codec,
		Users:     users,
		Companies: companies,
		Products:  products,
		Socials:   socials,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

// cardProfile is the public view of a resolved holder.
type cardProfile struct {
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Position  string              `json:"position,omitempty"`
	Bio       string              `json:"bio,omitempty"`
	Email     string              `json:"email,omitempty"`
	Contact   string              `json:"contact_number,omitempty"`
	PhotoURL  string              `json:"photo_url,omitempty"`
	Company   *cardCompany        `json:"company,omitempty"`
	Products  []models.Product    `json:"products,omitempty"`
	Socials   []models.SocialLink `json:"socials,omitempty"`
}

type cardCompany struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	About   string `json:"about,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Serve handles GET /card?data=<encrypted>.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" {
		h.AuditLog.CardResolveFailed(r.Context(), r, "missing data parameter")
		uierrors.Fail(w, http.StatusNotFound, notFoundMsg)
		return
	}

	identifier, err := h.Codec.Decode(data)
	if err != nil {
		h.AuditLog.CardResolveFailed(r.Context(), r, "decode failed")
		uierrors.Fail(w, http.StatusNotFound, notFoundMsg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	candidates, err := h.Users.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list active holders", err, "A server error occurred.")
		return
	}

	match, ok := tagcodec.Resolve(identifier, candidates)
	if !ok {
		h.AuditLog.CardResolveFailed(ctx, r, "no unique match")
		uierrors.Fail(w, http.StatusNotFound, notFoundMsg)
		return
	}

	// The resolution scan works on a projection; load the full record.
	holder, err := h.Users.GetByID(ctx, match.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load holder", err, "A server error occurred.")
		return
	}
	if !holder.IsActive() {
		h.AuditLog.CardResolveFailed(ctx, r, "holder deactivated")
		uierrors.Fail(w, http.StatusNotFound, notFoundMsg)
		return
	}

	profile := cardProfile{
		FirstName: holder.FirstName,
		LastName:  holder.LastName,
		Position:  holder.Position,
		Bio:       holder.Bio,
		Email:     holder.Email,
		Contact:   holder.Contact,
		PhotoURL:  holder.PhotoURL,
	}

	if holder.CompanyID != nil {
		company, err := h.Companies.GetByID(ctx, *holder.CompanyID)
		if err != nil {
			h.Log.Warn("card: company load failed",
				zap.String("company_id", holder.CompanyID.Hex()),
				zap.Error(err))
		} else if company.Status == "" || company.Status == "active" {
			profile.Company = &cardCompany{
				Name:    company.Name,
				Address: company.Address,
				Phone:   company.Phone,
				Email:   company.Email,
				Website: company.Website,
				About:   company.About,
				LogoURL: company.LogoURL,
			}

			products, err := h.Products.ListActiveByCompany(ctx, *holder.CompanyID)
			if err != nil {
				h.Log.Warn("card: product list failed", zap.Error(err))
			} else {
				profile.Products = products
			}

			socials, err := h.Socials.ListForUser(ctx, *holder.CompanyID, holder.ID)
			if err != nil {
				h.Log.Warn("card: social list failed", zap.Error(err))
			} else {
				companySocials, err := h.Socials.ListForCompany(ctx, *holder.CompanyID)
				if err == nil {
					socials = append(socials, companySocials...)
				}
				profile.Socials = socials
			}
		}
	}

	h.AuditLog.CardResolved(ctx, r, holder.ID, holder.CompanyID)
	uierrors.OK(w, profile)
}
