// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	groupstore "github.com/dalemusser/projecthub/internal/app/store/groups"
	memstore "github.com/dalemusser/projecthub/internal/app/store/memory"
	studentstore "github.com/dalemusser/projecthub/internal/app/store/students"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured backend and builds the stores over it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StoreType == StoreMemory {
		groups := memstore.NewGroups()
		logger.Info("in-memory store ready")
		return DBDeps{
			Groups:   groups,
			Students: memstore.NewStudents(groups),
			Runtime:  &Runtime{},
		}, nil
	}

	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	groups := groupstore.New(db)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Groups:        groups,
		Students:      studentstore.New(db, groups),
		Audit:         audit.New(db),
		Runtime:       &Runtime{},
	}, nil
}

// EnsureSchema attaches JSON-schema validators and builds indexes. It is a
// no-op on the in-memory store.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}
	logger.Info("schema ensured")
	return nil
}
