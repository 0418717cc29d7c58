package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lexdesk/training-monitor/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicateEmail = RepositoryError("user with this email already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs returns the users that exist; missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
}

// TrainingDocumentRepository defines the interface for training documents and
// the progress records and discussions embedded in their items.
type TrainingDocumentRepository interface {
	Create(ctx context.Context, doc *domain.TrainingDocument) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingDocument, error)
	GetByAttorneyID(ctx context.Context, attorneyID primitive.ObjectID) ([]domain.TrainingDocument, error)
	GetByParalegalID(ctx context.Context, paralegalID primitive.ObjectID) ([]domain.TrainingDocument, error)
	// FindBySourceRef returns a document that has a non-link item stored under key.
	FindBySourceRef(ctx context.Context, key string) (*domain.TrainingDocument, error)

	// AppendComment adds a comment to the end of an item's discussion.
	AppendComment(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, comment domain.StoredComment) error
	// AppendReply adds a reply to the end of a comment's replies.
	AppendReply(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, commentID primitive.ObjectID, reply domain.StoredReply) error
	// UpsertProgress keeps a single progress record per paralegal per item.
	UpsertProgress(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, paralegalID primitive.ObjectID, percent int, at time.Time) error
}
