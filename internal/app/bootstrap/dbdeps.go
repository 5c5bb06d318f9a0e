// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupStore is what the engine and the invitation sweep need from a group
// backend. Both the MongoDB and in-memory stores implement it.
type GroupStore interface {
	lifecycle.Repository
	workers.InvitationIndex
}

// DBDeps holds database/back-end dependencies for the app.
//
// MongoClient, MongoDatabase and Audit are nil on the in-memory store.
// Runtime is filled in by Startup; it is a pointer so every hook sees
// the same services even though DBDeps is passed by value.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Groups   GroupStore
	Students lifecycle.Directory
	Audit    *audit.Store

	Runtime *Runtime
}
