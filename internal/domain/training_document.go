// internal/domain/training_document.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemKind distinguishes the two content item collections of a training document.
type ItemKind string

const (
	KindDocument ItemKind = "document"
	KindVideo    ItemKind = "video"
)

// PathSegment is the URL/storage segment used for items of this kind.
func (k ItemKind) PathSegment() string {
	if k == KindVideo {
		return "videos"
	}
	return "files"
}

// ProgressLabel is the verb shown next to a percentage for this kind.
func (k ItemKind) ProgressLabel() string {
	if k == KindVideo {
		return "Watched"
	}
	return "Read"
}

// ParseItemKind accepts both the kind names and their path segments.
func ParseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "document", "documents", "file", "files":
		return KindDocument, true
	case "video", "videos":
		return KindVideo, true
	}
	return "", false
}

// Priority is free-form on the wire; High and Medium are the recognised values.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// AuthorKind is the role recorded on a comment when it was written.
type AuthorKind string

const (
	AuthorAttorney  AuthorKind = "Attorney"
	AuthorParalegal AuthorKind = "Paralegal"
)

// AuthorKindFor maps a user role to the hint stored on comments.
func AuthorKindFor(r Role) AuthorKind {
	if r == RoleAttorney {
		return AuthorAttorney
	}
	return AuthorParalegal
}

// TrainingDocument is the stored form of a training assignment: a bundle of
// files and videos an attorney assigns to one or more paralegals.
type TrainingDocument struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AttorneyID           primitive.ObjectID   `bson:"attorneyId" json:"attorneyId"` // Owner; denormalized for listing
	Name                 string               `bson:"name" json:"name"`
	DocumentType         string               `bson:"documentType,omitempty" json:"documentType,omitempty"`
	Priority             Priority             `bson:"priority,omitempty" json:"priority,omitempty"`
	Description          string               `bson:"description,omitempty" json:"description,omitempty"`
	AssignedParalegalIDs []primitive.ObjectID `bson:"assignedParalegalIds" json:"assignedParalegalIds"`
	Files                []StoredItem         `bson:"files" json:"files"`
	Videos               []StoredItem         `bson:"videos" json:"videos"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Items returns the item slice for a kind.
func (d *TrainingDocument) Items(kind ItemKind) []StoredItem {
	if kind == KindVideo {
		return d.Videos
	}
	return d.Files
}

// FindItem locates an item by kind and id.
func (d *TrainingDocument) FindItem(kind ItemKind, id primitive.ObjectID) (*StoredItem, bool) {
	items := d.Items(kind)
	for i := range items {
		if items[i].ID == id {
			return &items[i], true
		}
	}
	return nil, false
}

// IsAssigned reports whether the paralegal is one of the document's assignees.
func (d *TrainingDocument) IsAssigned(paralegalID primitive.ObjectID) bool {
	for _, id := range d.AssignedParalegalIDs {
		if id == paralegalID {
			return true
		}
	}
	return false
}

// StoredItem is a single file or video inside a TrainingDocument.
type StoredItem struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Kind           ItemKind           `bson:"kind" json:"kind"`
	SourceRef      string             `bson:"sourceRef" json:"sourceRef"` // S3 object key, or a URL when IsExternalLink
	IsExternalLink bool               `bson:"isExternalLink" json:"isExternalLink"`
	DisplayName    string             `bson:"displayName" json:"displayName"`
	Progress       []StoredProgress   `bson:"progress" json:"progress"`
	Comments       []StoredComment    `bson:"comments" json:"comments"`
}

type StoredProgress struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	ParalegalID     primitive.ObjectID `bson:"paralegalId" json:"paralegalId"`
	PercentComplete int                `bson:"percentComplete" json:"percentComplete"`
	UpdatedAt       *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type StoredComment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorRole AuthorKind         `bson:"authorRole,omitempty" json:"authorRole,omitempty"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	Replies    []StoredReply      `bson:"replies" json:"replies"`
}

// StoredReply has no replies of its own: threads are one level deep.
type StoredReply struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorRole AuthorKind         `bson:"authorRole,omitempty" json:"authorRole,omitempty"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
