// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(p *bool) bool { return p != nil && *p }

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// ensureIndexSet makes the collection carry each desired index. An index with
// the same key pattern is reused when its name and uniqueness match, and is
// dropped and recreated otherwise.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range want {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)))

		if ex, ok := existing[sig]; ok {
			if isUnique(unique) == isUnique(ex.Unique) && (name == "" || ex.Name == name) {
				log.Info("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		log.Info("index ensured", zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		// A proposal converts into at most one group. Groups created directly
		// carry no proposal_id and are outside the index.
		{
			Keys: bson.D{{Key: "proposal_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"proposal_id": bson.M{"$type": "string"}}).
				SetName("uniq_groups_proposal"),
		},
		// Distinct member students (available-pool search) and per-student lookups.
		{
			Keys:    bson.D{{Key: "members.student_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_member_student"),
		},
		// Invitation sweep: groups holding invites older than a cutoff.
		{
			Keys:    bson.D{{Key: "members.status", Value: 1}, {Key: "members.invited_at", Value: 1}},
			Options: options.Index().SetName("idx_groups_member_status_invited"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_nameci__id"),
		},
	})
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("students"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_students_emailci"),
		},
		// Available-pool listing sorted by name or by email.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_students_status_fullnameci__id"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "email_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_students_status_emailci__id"),
		},
		{
			Keys:    bson.D{{Key: "institutional_id_ci", Value: 1}},
			Options: options.Index().SetName("idx_students_instidci"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_group_created"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_created"),
		},
		{
			Keys:    bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_type_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
	})
}
