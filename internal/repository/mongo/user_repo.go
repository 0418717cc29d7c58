package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/repository"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	// Basic sanity only; name rules per role live in the service layer
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID() // Generate new ObjectID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// Only the unique email index can raise this
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
		return primitive.NilObjectID, errors.Wrap(err, "insert user")
	}

	// Assert the type of the inserted ID
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find user by email")
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find user %s", id.Hex())
	}
	return &user, nil
}

// GetByIDs loads every user whose id is in ids with a single $in query.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx) // Ensure cursor is closed

	// Ids with no matching user are simply absent from the result
	var users []domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	if users == nil {
		users = []domain.User{} // Return empty slice, not nil
	}
	return users, nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}}, // Login lookup
			Options: options.Index().SetUnique(true),  // Make email unique
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}}, // Index on role for assignee pickers
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return errors.Wrapf(err, "create indexes for %s", collection.Name())
}
