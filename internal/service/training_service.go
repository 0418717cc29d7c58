package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lexdesk/training-monitor/internal/discussion"
	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/repository"
	"lexdesk/training-monitor/internal/storage"
)

// --- Error Definitions ---
var (
	ErrTrainingDocumentNotFound = errors.New("training document not found")
	ErrItemNotFound             = errors.New("content item not found")
	ErrCommentNotFound          = errors.New("comment not found")
	ErrFileNotFound             = errors.New("file reference not found")
	ErrAccessDenied             = errors.New("access denied to this training document")
	ErrInvalidPercent           = errors.New("percent complete must be between 0 and 100")
	ErrInvalidTrainingDocument  = errors.New("invalid training document")
	ErrInvalidParalegal         = errors.New("assignee is not a registered paralegal")
	ErrEmptyBody                = discussion.ErrEmptyBody
)

// Caller is the authenticated user a request acts for.
type Caller struct {
	ID   primitive.ObjectID
	Role domain.Role
}

// NewItemInput describes a file or video attached to a new training document.
type NewItemInput struct {
	SourceRef      string
	IsExternalLink bool
	DisplayName    string
}

// CreateTrainingDocumentInput carries the fields of a new training document.
type CreateTrainingDocumentInput struct {
	Name         string
	DocumentType string
	Priority     domain.Priority
	Description  string
	ParalegalIDs []primitive.ObjectID
	Files        []NewItemInput
	Videos       []NewItemInput
}

// UploadURL is a presigned PUT target and the key the object will live under.
type UploadURL struct {
	URL       string
	ObjectKey string
}

type TrainingService interface {
	// Attorney views
	ListAssignedTrainingDocuments(ctx context.Context, attorneyID primitive.ObjectID) ([]domain.TrainingAssignment, error)
	CreateTrainingDocument(ctx context.Context, attorneyID primitive.ObjectID, in CreateTrainingDocumentInput) (*domain.TrainingAssignment, error)
	RequestUploadURL(ctx context.Context, attorneyID primitive.ObjectID, kind domain.ItemKind, fileName, contentType string) (*UploadURL, error)

	// Paralegal views
	ListForParalegal(ctx context.Context, paralegalID primitive.ObjectID) ([]domain.TrainingAssignment, error)
	RecordProgress(ctx context.Context, paralegalID, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, percent int) error

	// Shared by both roles
	PostComment(ctx context.Context, caller Caller, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, body string) error
	PostReply(ctx context.Context, caller Caller, docID primitive.ObjectID, kind domain.ItemKind, itemID, commentID primitive.ObjectID, body string) error
	ResolveFileAccessURL(ctx context.Context, caller Caller, fileRef string) (string, error)
}

type trainingService struct {
	docRepo  repository.TrainingDocumentRepository
	userRepo repository.UserRepository
	files    storage.FileStorage
	now      func() time.Time
}

func NewTrainingService(
	docRepo repository.TrainingDocumentRepository,
	userRepo repository.UserRepository,
	files storage.FileStorage,
) TrainingService {
	return &trainingService{
		docRepo:  docRepo,
		userRepo: userRepo,
		files:    files,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// === Listing ===

func (s *trainingService) ListAssignedTrainingDocuments(ctx context.Context, attorneyID primitive.ObjectID) ([]domain.TrainingAssignment, error) {
	docs, err := s.docRepo.GetByAttorneyID(ctx, attorneyID)
	if err != nil {
		return nil, err
	}
	return s.toAssignments(ctx, docs)
}

func (s *trainingService) ListForParalegal(ctx context.Context, paralegalID primitive.ObjectID) ([]domain.TrainingAssignment, error) {
	docs, err := s.docRepo.GetByParalegalID(ctx, paralegalID)
	if err != nil {
		return nil, err
	}
	return s.toAssignments(ctx, docs)
}

// === Authoring ===

func (s *trainingService) CreateTrainingDocument(ctx context.Context, attorneyID primitive.ObjectID, in CreateTrainingDocumentInput) (*domain.TrainingAssignment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidTrainingDocument
	}

	assignees := dedupeIDs(in.ParalegalIDs)
	if len(assignees) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, assignees)
		if err != nil {
			return nil, err
		}
		if len(users) != len(assignees) {
			return nil, ErrInvalidParalegal
		}
		for i := range users {
			if !users[i].IsParalegal() {
				return nil, ErrInvalidParalegal
			}
		}
	}

	files, err := newItems(attorneyID, in.Files, domain.KindDocument)
	if err != nil {
		return nil, err
	}
	videos, err := newItems(attorneyID, in.Videos, domain.KindVideo)
	if err != nil {
		return nil, err
	}

	doc := &domain.TrainingDocument{
		AttorneyID:           attorneyID,
		Name:                 name,
		DocumentType:         strings.TrimSpace(in.DocumentType),
		Priority:             in.Priority,
		Description:          in.Description,
		AssignedParalegalIDs: assignees,
		Files:                files,
		Videos:               videos,
	}
	if _, err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	out, err := s.toAssignments(ctx, []domain.TrainingDocument{*doc})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// newItems validates new items: stored files must be keys issued to this
// attorney, links must be http(s) URLs.
func newItems(attorneyID primitive.ObjectID, in []NewItemInput, kind domain.ItemKind) ([]domain.StoredItem, error) {
	items := make([]domain.StoredItem, 0, len(in))
	for _, it := range in {
		ref := strings.TrimSpace(it.SourceRef)
		if ref == "" {
			return nil, ErrInvalidTrainingDocument
		}
		if it.IsExternalLink {
			if !strings.HasPrefix(ref, "https://") && !strings.HasPrefix(ref, "http://") {
				return nil, ErrInvalidTrainingDocument
			}
		} else if !storage.IsOwnedKey(attorneyID.Hex(), ref) {
			return nil, ErrInvalidTrainingDocument
		}

		displayName := strings.TrimSpace(it.DisplayName)
		if displayName == "" {
			displayName = ref[strings.LastIndex(ref, "/")+1:]
		}
		items = append(items, domain.StoredItem{
			ID:             primitive.NewObjectID(),
			Kind:           kind,
			SourceRef:      ref,
			IsExternalLink: it.IsExternalLink,
			DisplayName:    displayName,
		})
	}
	return items, nil
}

func (s *trainingService) RequestUploadURL(ctx context.Context, attorneyID primitive.ObjectID, kind domain.ItemKind, fileName, contentType string) (*UploadURL, error) {
	if strings.TrimSpace(contentType) == "" {
		return nil, ErrInvalidTrainingDocument
	}
	key := storage.NewObjectKey(attorneyID.Hex(), kind.PathSegment(), fileName)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadURL{URL: url, ObjectKey: key}, nil
}

// === Progress ===

func (s *trainingService) RecordProgress(ctx context.Context, paralegalID, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidPercent
	}
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.IsAssigned(paralegalID) {
		return ErrAccessDenied
	}
	if _, ok := doc.FindItem(kind, itemID); !ok {
		return ErrItemNotFound
	}

	err = s.docRepo.UpsertProgress(ctx, docID, kind, itemID, paralegalID, percent, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}

// === Discussion ===

func (s *trainingService) PostComment(ctx context.Context, caller Caller, docID primitive.ObjectID, kind domain.ItemKind, itemID primitive.ObjectID, body string) error {
	body, err := discussion.ValidateBody(body)
	if err != nil {
		return err
	}
	doc, err := s.accessibleDocument(ctx, caller, docID)
	if err != nil {
		return err
	}
	if _, ok := doc.FindItem(kind, itemID); !ok {
		return ErrItemNotFound
	}

	comment := domain.StoredComment{
		ID:         primitive.NewObjectID(),
		AuthorID:   caller.ID,
		AuthorRole: domain.AuthorKindFor(caller.Role),
		Body:       body,
		CreatedAt:  s.now(),
		Replies:    []domain.StoredReply{},
	}
	err = s.docRepo.AppendComment(ctx, docID, kind, itemID, comment)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}

func (s *trainingService) PostReply(ctx context.Context, caller Caller, docID primitive.ObjectID, kind domain.ItemKind, itemID, commentID primitive.ObjectID, body string) error {
	body, err := discussion.ValidateBody(body)
	if err != nil {
		return err
	}
	doc, err := s.accessibleDocument(ctx, caller, docID)
	if err != nil {
		return err
	}
	item, ok := doc.FindItem(kind, itemID)
	if !ok {
		return ErrItemNotFound
	}
	found := false
	for _, c := range item.Comments {
		if c.ID == commentID {
			found = true
			break
		}
	}
	if !found {
		return ErrCommentNotFound
	}

	reply := domain.StoredReply{
		ID:         primitive.NewObjectID(),
		AuthorID:   caller.ID,
		AuthorRole: domain.AuthorKindFor(caller.Role),
		Body:       body,
		CreatedAt:  s.now(),
	}
	err = s.docRepo.AppendReply(ctx, docID, kind, itemID, commentID, reply)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}

// === File access ===

// ResolveFileAccessURL exchanges a stored file reference for a short-lived
// presigned GET URL. The reference must belong to a document the caller can see.
func (s *trainingService) ResolveFileAccessURL(ctx context.Context, caller Caller, fileRef string) (string, error) {
	if strings.TrimSpace(fileRef) == "" {
		return "", ErrFileNotFound
	}
	doc, err := s.docRepo.FindBySourceRef(ctx, fileRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrFileNotFound
		}
		return "", err
	}
	// Only keys recorded on a document the caller can see are ever signed
	if !canAccess(doc, caller) {
		return "", ErrAccessDenied
	}
	return s.files.GeneratePresignedDownloadURL(ctx, fileRef)
}

// === Helpers ===

func (s *trainingService) getDocument(ctx context.Context, docID primitive.ObjectID) (*domain.TrainingDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *trainingService) accessibleDocument(ctx context.Context, caller Caller, docID primitive.ObjectID) (*domain.TrainingDocument, error) {
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !canAccess(doc, caller) {
		return nil, ErrAccessDenied
	}
	return doc, nil
}

// canAccess allows the owning attorney and the assigned paralegals. Other
// attorneys in the firm are denied.
func canAccess(doc *domain.TrainingDocument, caller Caller) bool {
	switch caller.Role {
	case domain.RoleAttorney:
		return doc.AttorneyID == caller.ID
	case domain.RoleParalegal:
		return doc.IsAssigned(caller.ID)
	}
	return false
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
