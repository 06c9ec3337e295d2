// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/authutil"
	"github.com/dalemusser/cardhub/internal/app/system/normalize"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return ensureSuperAdmin(ctx, deps, appCfg.SuperAdminLoginID, appCfg.SuperAdminPassword, logger)
}

// ensureSuperAdmin guarantees a superadmin account exists so a fresh
// deployment can be administered. An existing user with the configured
// login ID is promoted; otherwise the account is created with the
// configured password. No-op when superadmin_login_id is unset.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, loginID, password string, logger *zap.Logger) error {
	if loginID == "" {
		logger.Debug("superadmin_login_id not set; skipping superadmin bootstrap")
		return nil
	}
	loginID = normalize.LoginID(loginID)

	users := deps.MongoDatabase.Collection("users")

	var existing models.User
	err := users.FindOne(ctx, bson.M{"login_id": loginID}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Role == "superadmin" {
			return nil
		}
		// Promote. Superadmins are not tied to a company.
		_, err := users.UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{
				"$set":   bson.M{"role": "superadmin", "updated_at": time.Now()},
				"$unset": bson.M{"company_id": ""},
			},
		)
		if err != nil {
			return fmt.Errorf("promote superadmin: %w", err)
		}
		logger.Info("promoted existing user to superadmin",
			zap.String("login_id", loginID))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		hash, err := authutil.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash superadmin password: %w", err)
		}
		store := userstore.New(deps.MongoDatabase)
		_, err = store.Create(ctx, models.User{
			FirstName: "Super",
			LastName:  "Admin",
			LoginID:   loginID,
			Password:  hash,
			Role:      "superadmin",
			Status:    "active",
		})
		if err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}
		logger.Info("created superadmin account",
			zap.String("login_id", loginID))
		return nil

	default:
		return fmt.Errorf("look up superadmin: %w", err)
	}
}
