// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/projecthub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("groups", groupsSchema())
	ensure("students", studentsSchema())

	// Audit events are append-only and loosely shaped; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum(vals ...string) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, v)
	}
	return out
}

func groupsSchema() bson.M {
	member := bson.M{
		"bsonType": "object",
		"required": bson.A{"id", "email", "role", "status"},
		"properties": bson.M{
			"id":         bson.M{"bsonType": "string", "minLength": 1},
			"student_id": bson.M{"bsonType": "string"},
			"email":      bson.M{"bsonType": "string", "minLength": 3},
			"email_ci":   bson.M{"bsonType": "string"},
			"role":       bson.M{"enum": enum(models.RoleLeader, models.RoleMember)},
			"status":     bson.M{"enum": enum(models.MemberActive, models.MemberPending, models.MemberInvited)},
			"join_date":  bson.M{"bsonType": "date"},
			"invited_at": bson.M{"bsonType": "date"},
		},
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "max_members", "members", "status", "version"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"project_ref": bson.M{"bsonType": "string"},
				"proposal_id": bson.M{"bsonType": "string"},
				"max_members": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": models.MinGroupSize, "maximum": models.MaxGroupSize},
				"members":     bson.M{"bsonType": "array", "maxItems": models.MaxGroupSize, "items": member},
				"status":      bson.M{"enum": enum(models.GroupActive, models.GroupPending, models.GroupInactive)},
				"version":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func studentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "full_name_ci", "email", "email_ci", "status"},
			"properties": bson.M{
				"full_name":           bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"full_name_ci":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":               bson.M{"bsonType": "string", "minLength": 3},
				"email_ci":            bson.M{"bsonType": "string", "minLength": 3},
				"institutional_id":    bson.M{"bsonType": "string"},
				"institutional_id_ci": bson.M{"bsonType": "string"},
				"committee_excluded":  bson.M{"bsonType": "bool"},
				"status":              bson.M{"enum": enum(models.StudentActive, models.StudentDisabled)},
			},
		},
	}
}
