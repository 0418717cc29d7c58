package domain

import "time"

// TrainingAssignment is the client-side view of a training document, with
// every author and learner reference already resolved as far as the server
// could take it.
type TrainingAssignment struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	DocumentType       string          `json:"documentType"`
	Priority           Priority        `json:"priority"`
	Description        string          `json:"description"`
	CreatedAt          time.Time       `json:"createdAt"`
	AssignedParalegals []UserRef       `json:"assignedParalegals"`
	Items              AssignmentItems `json:"items"`
}

type AssignmentItems struct {
	Files  []ContentItem `json:"files"`
	Videos []ContentItem `json:"videos"`
}

// ContentItem is a single document or video within an assignment.
type ContentItem struct {
	ID             string           `json:"id"`
	Kind           ItemKind         `json:"kind"`
	SourceRef      string           `json:"sourceRef"`
	IsExternalLink bool             `json:"isExternalLink"`
	DisplayName    string           `json:"displayName"`
	Progress       []ProgressRecord `json:"progress"`
	Discussion     []Comment        `json:"discussion"`
}

// ProgressRecord is one learner's completion for one item. PercentComplete
// means "read" for documents and "watched" for videos.
type ProgressRecord struct {
	ID              string     `json:"id"`
	Learner         UserRef    `json:"learner"`
	PercentComplete int        `json:"percentComplete"`
	LastUpdated     *time.Time `json:"lastUpdated,omitempty"`
}

// Comment is the head of a thread. Order within a slice is server order.
type Comment struct {
	ID             string     `json:"id"`
	Author         UserRef    `json:"author"`
	AuthorKindHint AuthorKind `json:"authorKindHint,omitempty"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"createdAt"`
	Replies        []Reply    `json:"replies"`
}

// Reply carries no replies of its own.
type Reply struct {
	ID             string     `json:"id"`
	Author         UserRef    `json:"author"`
	AuthorKindHint AuthorKind `json:"authorKindHint,omitempty"`
	Body           string     `json:"body"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// DocumentSummary holds the per-assignment counts shown in list and detail views.
type DocumentSummary struct {
	FileCount            int `json:"fileCount"`
	VideoCount           int `json:"videoCount"`
	AssignedLearnerCount int `json:"assignedLearnerCount"`
}

// Summary counts items and assignees. The assignee count does not depend on
// whether any progress has been recorded.
func (a *TrainingAssignment) Summary() DocumentSummary {
	return DocumentSummary{
		FileCount:            len(a.Items.Files),
		VideoCount:           len(a.Items.Videos),
		AssignedLearnerCount: len(a.AssignedParalegals),
	}
}

// ItemsOf returns the items of one kind.
func (a *TrainingAssignment) ItemsOf(kind ItemKind) []ContentItem {
	if kind == KindVideo {
		return a.Items.Videos
	}
	return a.Items.Files
}

// FindItem locates an item by kind and id.
func (a *TrainingAssignment) FindItem(kind ItemKind, id string) (*ContentItem, bool) {
	items := a.ItemsOf(kind)
	for i := range items {
		if items[i].ID == id {
			return &items[i], true
		}
	}
	return nil, false
}

// Completion is the share of learners with a record who have finished an item.
type Completion struct {
	Completed               int
	TotalLearnersWithRecord int
}

// Fraction is Completed/TotalLearnersWithRecord, or 0 when nobody has a record.
func (c Completion) Fraction() float64 {
	if c.TotalLearnersWithRecord == 0 {
		return 0
	}
	return float64(c.Completed) / float64(c.TotalLearnersWithRecord)
}

// Completion divides by learners that have a record, not by assignees: a
// learner who never started has no record, which is not the same as 0%.
func (i *ContentItem) Completion() Completion {
	c := Completion{TotalLearnersWithRecord: len(i.Progress)}
	for _, p := range i.Progress {
		if p.PercentComplete >= 100 {
			c.Completed++
		}
	}
	return c
}
