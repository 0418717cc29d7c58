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

const trainingDocumentCollectionName = "training_documents"

type mongoTrainingDocumentRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingDocumentRepository creates a repository backed by the training_documents collection.
func NewMongoTrainingDocumentRepository(db *mongo.Database) repository.TrainingDocumentRepository {
	return &mongoTrainingDocumentRepository{
		collection: db.Collection(trainingDocumentCollectionName),
	}
}

// Create inserts a new training document. Item, progress and comment ids are
// assigned here when the caller left them empty.
func (r *mongoTrainingDocumentRepository) Create(ctx context.Context, doc *domain.TrainingDocument) (primitive.ObjectID, error) {
	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.AssignedParalegalIDs == nil {
		doc.AssignedParalegalIDs = []primitive.ObjectID{}
	}
	doc.Files = prepareItems(doc.Files, domain.KindDocument)
	doc.Videos = prepareItems(doc.Videos, domain.KindVideo)

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert training document")
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func prepareItems(items []domain.StoredItem, kind domain.ItemKind) []domain.StoredItem {
	if items == nil {
		return []domain.StoredItem{}
	}
	for i := range items {
		if items[i].ID.IsZero() {
			items[i].ID = primitive.NewObjectID()
		}
		items[i].Kind = kind
		if items[i].Progress == nil {
			items[i].Progress = []domain.StoredProgress{}
		}
		if items[i].Comments == nil {
			items[i].Comments = []domain.StoredComment{}
		}
	}
	return items
}

func (r *mongoTrainingDocumentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingDocument, error) {
	var doc domain.TrainingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find training document %s", id.Hex())
	}
	return &doc, nil
}

// GetByAttorneyID lists an attorney's documents, newest first.
func (r *mongoTrainingDocumentRepository) GetByAttorneyID(ctx context.Context, attorneyID primitive.ObjectID) ([]domain.TrainingDocument, error) {
	return r.find(ctx, bson.M{"attorneyId": attorneyID})
}

// GetByParalegalID lists the documents assigned to a paralegal, newest first.
func (r *mongoTrainingDocumentRepository) GetByParalegalID(ctx context.Context, paralegalID primitive.ObjectID) ([]domain.TrainingDocument, error) {
	return r.find(ctx, bson.M{"assignedParalegalIds": paralegalID})
}

func (r *mongoTrainingDocumentRepository) find(ctx context.Context, filter bson.M) ([]domain.TrainingDocument, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find training documents")
	}
	defer cursor.Close(ctx)

	var docs []domain.TrainingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode training documents")
	}
	if docs == nil {
		docs = []domain.TrainingDocument{}
	}
	return docs, nil
}

// FindBySourceRef finds the document holding a stored (non-external) file.
func (r *mongoTrainingDocumentRepository) FindBySourceRef(ctx context.Context, key string) (*domain.TrainingDocument, error) {
	// External links are never signed, so they must not grant access to a key
	match := bson.M{"$elemMatch": bson.M{"sourceRef": key, "isExternalLink": false}}
	filter := bson.M{"$or": bson.A{
		bson.M{"files": match},
		bson.M{"videos": match},
	}}

	var doc domain.TrainingDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, errors.Wrap(err, "find training document by source ref")
	}
	return &doc, nil
}

func (r *mongoTrainingDocumentRepository) AppendComment(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, comment domain.StoredComment) error {
	field := kind.PathSegment()
	if comment.Replies == nil {
		comment.Replies = []domain.StoredReply{}
	}
	filter := bson.M{"_id": docID, field + "._id": itemID}
	update := bson.M{
		"$push": bson.M{field + ".$.comments": comment}, // $ is the item matched by the filter
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Wrap(err, "append comment")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingDocumentRepository) AppendReply(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, commentID primitive.ObjectID, reply domain.StoredReply) error {
	field := kind.PathSegment()
	filter := bson.M{
		"_id": docID,
		field: bson.M{"$elemMatch": bson.M{"_id": itemID, "comments._id": commentID}},
	}
	update := bson.M{
		"$push": bson.M{field + ".$[item].comments.$[comment].replies": reply},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	// Replies stay one level deep: they are pushed onto the comment, never onto a reply
	updateOptions := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"item._id": itemID},
			bson.M{"comment._id": commentID},
		},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, updateOptions)
	if err != nil {
		return errors.Wrap(err, "append reply")
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpsertProgress updates the paralegal's existing record on the item, or
// pushes a new one when none exists yet. Mongo has no upsert for array
// elements, so this is a $set followed by a guarded $push.
func (r *mongoTrainingDocumentRepository) UpsertProgress(ctx context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, paralegalID primitive.ObjectID, percent int, at time.Time) error {
	field := kind.PathSegment()

	// Step 1: the item already holds a record for this paralegal
	setFilter := bson.M{
		"_id": docID,
		field: bson.M{"$elemMatch": bson.M{"_id": itemID, "progress.paralegalId": paralegalID}},
	}
	setUpdate := bson.M{"$set": bson.M{
		field + ".$[item].progress.$[record].percentComplete": percent,
		field + ".$[item].progress.$[record].updatedAt":       at,
		"updatedAt": time.Now().UTC(),
	}}
	// $[item] picks the content item, $[record] the paralegal's own entry
	setOptions := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"item._id": itemID},
			bson.M{"record.paralegalId": paralegalID},
		},
	})
	updateExisting := func() (bool, error) {
		result, err := r.collection.UpdateOne(ctx, setFilter, setUpdate, setOptions)
		if err != nil {
			return false, errors.Wrap(err, "update progress")
		}
		return result.MatchedCount > 0, nil
	}
	if updated, err := updateExisting(); err != nil || updated {
		return err
	}

	record := domain.StoredProgress{
		ID:              primitive.NewObjectID(),
		ParalegalID:     paralegalID,
		PercentComplete: percent,
		UpdatedAt:       &at,
	}
	// Step 2: push a first record. $ne against an array field matches only
	// when no element has this paralegalId, which keeps one record per learner.
	pushFilter := bson.M{
		"_id": docID,
		field: bson.M{"$elemMatch": bson.M{"_id": itemID, "progress.paralegalId": bson.M{"$ne": paralegalID}}},
	}
	pushUpdate := bson.M{
		"$push": bson.M{field + ".$[item].progress": record},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	pushOptions := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"item._id": itemID}},
	})
	result, err := r.collection.UpdateOne(ctx, pushFilter, pushUpdate, pushOptions)
	if err != nil {
		return errors.Wrap(err, "insert progress")
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// A concurrent request may have pushed the record between the two steps
	updated, err := updateExisting()
	if err != nil {
		return err
	}
	if !updated {
		return repository.ErrNotFound // Document or item is gone
	}
	return nil
}

// EnsureTrainingDocumentIndexes creates the indexes used by the listing queries.
func EnsureTrainingDocumentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "attorneyId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "assignedParalegalIds", Value: 1}}},
		{Keys: bson.D{{Key: "files.sourceRef", Value: 1}}}, // FindBySourceRef for signed URLs
		{Keys: bson.D{{Key: "videos.sourceRef", Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return errors.Wrapf(err, "create indexes for %s", collection.Name())
}
