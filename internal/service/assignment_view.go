package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lexdesk/training-monitor/internal/domain"
)

// userDirectory resolves stored user ids to wire references. Ids that no
// longer match a user stay bare; a zero id means no user at all.
type userDirectory map[primitive.ObjectID]*domain.User

func (d userDirectory) ref(id primitive.ObjectID) domain.UserRef {
	if id.IsZero() {
		return domain.NoUser()
	}
	if u, ok := d[id]; ok {
		return u.Ref()
	}
	return domain.IDRef(id.Hex())
}

// toAssignments converts stored documents into the client view, hydrating
// every referenced user with a single lookup.
func (s *trainingService) toAssignments(ctx context.Context, docs []domain.TrainingDocument) ([]domain.TrainingAssignment, error) {
	dir, err := s.loadUsers(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrainingAssignment, len(docs))
	for i := range docs {
		out[i] = toAssignment(&docs[i], dir)
	}
	return out, nil
}

func (s *trainingService) loadUsers(ctx context.Context, docs []domain.TrainingDocument) (userDirectory, error) {
	var ids []primitive.ObjectID
	for i := range docs {
		ids = append(ids, docs[i].AssignedParalegalIDs...)
		for _, items := range [][]domain.StoredItem{docs[i].Files, docs[i].Videos} {
			for _, it := range items {
				for _, p := range it.Progress {
					ids = append(ids, p.ParalegalID)
				}
				for _, c := range it.Comments {
					ids = append(ids, c.AuthorID)
					for _, r := range c.Replies {
						ids = append(ids, r.AuthorID)
					}
				}
			}
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	dir := make(userDirectory, len(users))
	for i := range users {
		dir[users[i].ID] = &users[i]
	}
	return dir, nil
}

func toAssignment(doc *domain.TrainingDocument, dir userDirectory) domain.TrainingAssignment {
	assignees := make([]domain.UserRef, len(doc.AssignedParalegalIDs))
	for i, id := range doc.AssignedParalegalIDs {
		assignees[i] = dir.ref(id)
	}
	return domain.TrainingAssignment{
		ID:                 doc.ID.Hex(),
		Name:               doc.Name,
		DocumentType:       doc.DocumentType,
		Priority:           doc.Priority,
		Description:        doc.Description,
		CreatedAt:          doc.CreatedAt,
		AssignedParalegals: assignees,
		Items: domain.AssignmentItems{
			Files:  toContentItems(doc.Files, domain.KindDocument, dir),
			Videos: toContentItems(doc.Videos, domain.KindVideo, dir),
		},
	}
}

func toContentItems(items []domain.StoredItem, kind domain.ItemKind, dir userDirectory) []domain.ContentItem {
	out := make([]domain.ContentItem, len(items))
	for i, it := range items {
		progress := make([]domain.ProgressRecord, len(it.Progress))
		for j, p := range it.Progress {
			progress[j] = domain.ProgressRecord{
				ID:              p.ID.Hex(),
				Learner:         dir.ref(p.ParalegalID),
				PercentComplete: p.PercentComplete,
				LastUpdated:     p.UpdatedAt,
			}
		}

		comments := make([]domain.Comment, len(it.Comments))
		for j, c := range it.Comments {
			replies := make([]domain.Reply, len(c.Replies))
			for k, r := range c.Replies {
				replies[k] = domain.Reply{
					ID:             r.ID.Hex(),
					Author:         dir.ref(r.AuthorID),
					AuthorKindHint: r.AuthorRole,
					Body:           r.Body,
					CreatedAt:      r.CreatedAt,
				}
			}
			comments[j] = domain.Comment{
				ID:             c.ID.Hex(),
				Author:         dir.ref(c.AuthorID),
				AuthorKindHint: c.AuthorRole,
				Body:           c.Body,
				CreatedAt:      c.CreatedAt,
				Replies:        replies,
			}
		}

		out[i] = domain.ContentItem{
			ID:             it.ID.Hex(),
			Kind:           kind,
			SourceRef:      it.SourceRef,
			IsExternalLink: it.IsExternalLink,
			DisplayName:    it.DisplayName,
			Progress:       progress,
			Discussion:     comments,
		}
	}
	return out
}
