package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

const (
	collectionSessions   = "sessions"
	collectionResetCodes = "password_resets"

	// Expired reset codes are kept for a day so that late attempts get an
	// expiry error rather than an unknown-code error.
	resetCodeRetention = 24 * time.Hour
)

type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

type sessionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	UserID    string             `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sessionDoc{
		ID:        primitive.NewObjectID(),
		Token:     s.Token,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	s.ID = doc.ID.Hex()
	return nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d sessionDoc
	err := r.col.FindOne(ctx, bson.M{"token": token, "expires_at": bson.M{"$gt": now}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &domain.Session{
		ID:        d.ID.Hex(),
		Token:     d.Token,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
	}, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the token lookup index and the TTL index that purges
// expired sessions.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

type ResetCodeRepository struct {
	col *mongo.Collection
}

func NewResetCodeRepository(db *mongo.Database) *ResetCodeRepository {
	return &ResetCodeRepository{col: db.Collection(collectionResetCodes)}
}

type resetCodeDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Code      string             `bson:"code"`
	UserID    string             `bson:"user_id"`
	ExpiresAt time.Time          `bson:"expires_at"`
}

func (r *ResetCodeRepository) Create(ctx context.Context, rc *domain.ResetCode) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := resetCodeDoc{
		ID:        primitive.NewObjectID(),
		Code:      rc.Code,
		UserID:    rc.UserID,
		ExpiresAt: rc.ExpiresAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrOTPInvalid
		}
		return fmt.Errorf("insert reset code: %w", err)
	}
	rc.ID = doc.ID.Hex()
	return nil
}

func (r *ResetCodeRepository) FindByCode(ctx context.Context, code string) (*domain.ResetCode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d resetCodeDoc
	if err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOTPInvalid
		}
		return nil, fmt.Errorf("find reset code: %w", err)
	}
	return &domain.ResetCode{
		ID:        d.ID.Hex(),
		Code:      d.Code,
		UserID:    d.UserID,
		ExpiresAt: d.ExpiresAt.UTC(),
	}, nil
}

func (r *ResetCodeRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete reset codes: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ResetCodeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(resetCodeRetention.Seconds())),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
