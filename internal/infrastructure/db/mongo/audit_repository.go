package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

const collectionAuditLogs = "audit_logs"

type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditLogs)}
}

type auditDoc struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	Action         string              `bson:"action"`
	Description    string              `bson:"description"`
	UserID         *primitive.ObjectID `bson:"user_id,omitempty"`
	IPAddress      string              `bson:"ip_address,omitempty"`
	AdditionalInfo bson.M              `bson:"additional_info,omitempty"`
	Timestamp      time.Time           `bson:"timestamp"`
	Actor          *auditActorDoc      `bson:"actor,omitempty"`
}

type auditActorDoc struct {
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Email     string `bson:"email"`
}

func (d *auditDoc) toDomain() *domain.AuditEntry {
	e := &domain.AuditEntry{
		ID:          d.ID.Hex(),
		Action:      domain.AuditAction(d.Action),
		Description: d.Description,
		IPAddress:   d.IPAddress,
		Timestamp:   d.Timestamp.UTC(),
	}
	if d.UserID != nil {
		e.UserID = d.UserID.Hex()
	}
	if len(d.AdditionalInfo) > 0 {
		e.AdditionalInfo = map[string]any(d.AdditionalInfo)
	}
	if d.Actor != nil {
		e.User = &domain.AuditActor{FirstName: d.Actor.FirstName, LastName: d.Actor.LastName, Email: d.Actor.Email}
	}
	return e
}

// Insert appends e. A user id that is not an object id is kept in
// additional_info instead of user_id.
func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		ID:          primitive.NewObjectID(),
		Action:      string(e.Action),
		Description: e.Description,
		IPAddress:   e.IPAddress,
		Timestamp:   e.Timestamp,
	}
	if len(e.AdditionalInfo) > 0 {
		doc.AdditionalInfo = bson.M(e.AdditionalInfo)
	}
	if e.UserID != "" {
		if oid, ok := objectID(e.UserID); ok {
			doc.UserID = &oid
		} else {
			if doc.AdditionalInfo == nil {
				doc.AdditionalInfo = bson.M{}
			}
			doc.AdditionalInfo["userId"] = e.UserID
		}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (r *AuditRepository) FindByUser(ctx context.Context, userID string) ([]*domain.AuditEntry, error) {
	oid, ok := objectID(userID)
	if !ok {
		return nil, nil
	}
	return r.aggregate(ctx, bson.M{"user_id": oid}, 0, 0)
}

func (r *AuditRepository) FindByAction(ctx context.Context, action domain.AuditAction) ([]*domain.AuditEntry, error) {
	return r.aggregate(ctx, bson.M{"action": string(action)}, 0, 0)
}

func (r *AuditRepository) List(ctx context.Context, offset, limit int) ([]*domain.AuditEntry, error) {
	return r.aggregate(ctx, bson.M{}, offset, limit)
}

func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete audit entries: %w", err)
	}
	return res.DeletedCount, nil
}

// aggregate lists matching entries newest first and joins the acting user.
func (r *AuditRepository) aggregate(ctx context.Context, match bson.M, offset, limit int) ([]*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(offset)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "actor",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$actor", "preserveNullAndEmptyArrays": true}}},
	)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	out := make([]*domain.AuditEntry, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the lookup indexes used by the audit listings.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
