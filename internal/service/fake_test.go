package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{users: map[primitive.ObjectID]domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memDocRepo struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*domain.TrainingDocument
}

func newMemDocRepo(docs ...domain.TrainingDocument) *memDocRepo {
	r := &memDocRepo{docs: map[primitive.ObjectID]*domain.TrainingDocument{}}
	for i := range docs {
		d := docs[i]
		r.docs[d.ID] = &d
	}
	return r
}

func (r *memDocRepo) Create(_ context.Context, doc *domain.TrainingDocument) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	cp := *doc
	r.docs[doc.ID] = &cp
	return doc.ID, nil
}

func (r *memDocRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) GetByAttorneyID(_ context.Context, attorneyID primitive.ObjectID) ([]domain.TrainingDocument, error) {
	return r.filter(func(d *domain.TrainingDocument) bool { return d.AttorneyID == attorneyID }), nil
}

func (r *memDocRepo) GetByParalegalID(_ context.Context, paralegalID primitive.ObjectID) ([]domain.TrainingDocument, error) {
	return r.filter(func(d *domain.TrainingDocument) bool { return d.IsAssigned(paralegalID) }), nil
}

func (r *memDocRepo) filter(keep func(*domain.TrainingDocument) bool) []domain.TrainingDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TrainingDocument{}
	for _, d := range r.docs {
		if keep(d) {
			out = append(out, *d)
		}
	}
	return out
}

func (r *memDocRepo) FindBySourceRef(_ context.Context, key string) (*domain.TrainingDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		for _, items := range [][]domain.StoredItem{d.Files, d.Videos} {
			for _, it := range items {
				if !it.IsExternalLink && it.SourceRef == key {
					cp := *d
					return &cp, nil
				}
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memDocRepo) item(docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID) (*domain.StoredItem, error) {
	d, ok := r.docs[docID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	items := d.Files
	if kind == domain.KindVideo {
		items = d.Videos
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memDocRepo) AppendComment(_ context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, comment domain.StoredComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, err := r.item(docID, kind, itemID)
	if err != nil {
		return err
	}
	it.Comments = append(it.Comments, comment)
	return nil
}

func (r *memDocRepo) AppendReply(_ context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, commentID primitive.ObjectID, reply domain.StoredReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, err := r.item(docID, kind, itemID)
	if err != nil {
		return err
	}
	for i := range it.Comments {
		if it.Comments[i].ID == commentID {
			it.Comments[i].Replies = append(it.Comments[i].Replies, reply)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memDocRepo) UpsertProgress(_ context.Context, docID primitive.ObjectID, kind domain.ItemKind, itemID, paralegalID primitive.ObjectID, percent int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, err := r.item(docID, kind, itemID)
	if err != nil {
		return err
	}
	for i := range it.Progress {
		if it.Progress[i].ParalegalID == paralegalID {
			it.Progress[i].PercentComplete = percent
			it.Progress[i].UpdatedAt = &at
			return nil
		}
	}
	it.Progress = append(it.Progress, domain.StoredProgress{
		ID: primitive.NewObjectID(), ParalegalID: paralegalID, PercentComplete: percent, UpdatedAt: &at,
	})
	return nil
}

type fakeStorage struct {
	err error
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("https://s3.test/put/%s?ct=%s", key, contentType), nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/get/" + key, nil
}
