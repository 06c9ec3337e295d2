// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection used by all stores.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes the stores depend on.
//
// The unique sparse index on users.nfc_uid is load-bearing: tag
// registration claims a hardware UID with a single conditional update
// and relies on this index to stay atomic under concurrent registrations.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_no", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "nfc_uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "role", Value: 1}},
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	companies := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("companies").Indexes().CreateMany(ctx, companies); err != nil {
		return fmt.Errorf("create companies indexes: %w", err)
	}

	products := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "name_ci", Value: 1}},
		},
	}
	if _, err := db.Collection("products").Indexes().CreateMany(ctx, products); err != nil {
		return fmt.Errorf("create products indexes: %w", err)
	}

	socials := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "owner_kind", Value: 1}, {Key: "owner_id", Value: 1}},
		},
	}
	if _, err := db.Collection("social_links").Indexes().CreateMany(ctx, socials); err != nil {
		return fmt.Errorf("create social_links indexes: %w", err)
	}

	settings := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("system_settings").Indexes().CreateMany(ctx, settings); err != nil {
		return fmt.Errorf("create system_settings indexes: %w", err)
	}

	activity := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection("activity_logs").Indexes().CreateMany(ctx, activity); err != nil {
		return fmt.Errorf("create activity_logs indexes: %w", err)
	}

	emails := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipient_email", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection("email_logs").Indexes().CreateMany(ctx, emails); err != nil {
		return fmt.Errorf("create email_logs indexes: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
