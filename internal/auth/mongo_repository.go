package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const createIndexTimeout = 5 * time.Second

// MongoRepository implements Repository backed by a MongoDB users collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a MongoRepository and ensures the unique index
// on providerId exists, so at most one user per provider identity can be
// stored even under concurrent first-logins.
func NewMongoRepository(db *mongo.Database) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()

	collection := db.Collection("users")
	unique := true
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"providerId": 1},
		Options: &options.IndexOptions{Unique: &unique},
	})
	if err != nil {
		return nil, fmt.Errorf("create providerId index: %w", err)
	}

	return &MongoRepository{collection: collection}, nil
}

// FindByProviderID looks up a user by provider identity.
func (r *MongoRepository) FindByProviderID(ctx context.Context, providerID string) (*User, error) {
	return r.findOne(ctx, bson.M{"providerId": providerID})
}

// FindByID looks up a user by local identifier.
func (r *MongoRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// Create inserts a new user document.
func (r *MongoRepository) Create(ctx context.Context, user User) (User, error) {
	if _, err := r.collection.InsertOne(ctx, userDocument(user)); err != nil {
		if isDuplicateKey(err) {
			return User{}, fmt.Errorf("provider id %q: %w", user.ProviderID, ErrConflict)
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser()
}

func isDuplicateKey(err error) bool {
	var writeException mongo.WriteException
	if errors.As(err, &writeException) {
		for _, writeErr := range writeException.WriteErrors {
			if writeErr.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// userDoc is the persisted layout of a user. The UUID identifier is stored
// as its canonical string form.
type userDoc struct {
	ID         string    `bson:"_id"`
	ProviderID string    `bson:"providerId"`
	Name       string    `bson:"name,omitempty"`
	Email      string    `bson:"email,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func userDocument(user User) userDoc {
	return userDoc{
		ID:         user.ID.String(),
		ProviderID: user.ProviderID,
		Name:       user.Name,
		Email:      user.Email,
		CreatedAt:  user.CreatedAt,
	}
}

func (d userDoc) toUser() (*User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", d.ID, err)
	}
	return &User{
		ID:         id,
		ProviderID: d.ProviderID,
		Name:       d.Name,
		Email:      d.Email,
		CreatedAt:  d.CreatedAt,
	}, nil
}
