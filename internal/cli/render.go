package cli

import (
	"fmt"
	"io"
	"strings"

	"lexdesk/training-monitor/internal/discussion"
	"lexdesk/training-monitor/internal/domain"
	"lexdesk/training-monitor/internal/identity"
	"lexdesk/training-monitor/internal/progress"
)

const createdLayout = "Jan 2, 2006"

// RenderList prints one block per assignment with its summary counts.
func RenderList(w io.Writer, assignments []domain.TrainingAssignment, showEmpty bool) {
	if showEmpty {
		fmt.Fprintln(w, "No training documents found.")
		return
	}
	for _, a := range assignments {
		s := a.Summary()
		fmt.Fprintf(w, "%s  %s%s\n", a.ID, a.Name, priorityBadge(a.Priority))
		if a.Description != "" {
			fmt.Fprintf(w, "    %s\n", a.Description)
		}
		fmt.Fprintf(w, "    %d files, %d videos, %d paralegals assigned\n", s.FileCount, s.VideoCount, s.AssignedLearnerCount)
	}
}

// RenderDetail prints the full monitoring view of one assignment.
func RenderDetail(w io.Writer, a domain.TrainingAssignment) {
	s := a.Summary()
	fmt.Fprintf(w, "%s%s\n", a.Name, priorityBadge(a.Priority))
	if a.DocumentType != "" {
		fmt.Fprintf(w, "Type: %s\n", a.DocumentType)
	}
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created: %s\n", a.CreatedAt.Format(createdLayout))
	}
	if a.Description != "" {
		fmt.Fprintf(w, "%s\n", a.Description)
	}
	fmt.Fprintf(w, "Files: %d  Videos: %d  Assigned paralegals: %d\n", s.FileCount, s.VideoCount, s.AssignedLearnerCount)

	if len(a.AssignedParalegals) > 0 {
		names := make([]string, len(a.AssignedParalegals))
		for i, ref := range a.AssignedParalegals {
			names[i] = formatIdentity(identity.Resolve(ref))
		}
		fmt.Fprintf(w, "Assigned: %s\n", strings.Join(names, ", "))
	}

	renderItems(w, "FILES", a.Items.Files)
	renderItems(w, "VIDEOS", a.Items.Videos)
}

func renderItems(w io.Writer, title string, items []domain.ContentItem) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(items))
	if len(items) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for i := range items {
		renderItem(w, &items[i])
	}
}

func renderItem(w io.Writer, item *domain.ContentItem) {
	source := "stored file"
	if item.IsExternalLink {
		source = "link"
	}
	fmt.Fprintf(w, "  %s  [%s, id %s]\n", item.DisplayName, source, item.ID)

	view := progress.NewView(*item)
	c := item.Completion()
	fmt.Fprintf(w, "    Progress: %d of %d complete (%.0f%%)\n", c.Completed, c.TotalLearnersWithRecord, c.Fraction()*100)
	if len(view.Entries) == 0 {
		fmt.Fprintln(w, "      no progress recorded yet")
	}
	for _, e := range view.Entries {
		badge := ""
		if e.Complete() {
			badge = "  [complete]"
		}
		fmt.Fprintf(w, "      %s  %d%% %s  updated %s%s\n",
			formatIdentity(e.Learner), e.Percent, view.Label, e.LastUpdatedLabel, badge)
	}

	fmt.Fprintf(w, "    Discussion (%d)\n", discussion.Count(item.Discussion))
	for _, t := range discussion.Threads(item.Discussion) {
		renderEntry(w, "      ", t.Entry)
		for _, r := range t.Replies {
			renderEntry(w, "        > ", r)
		}
	}
}

func renderEntry(w io.Writer, indent string, e discussion.Entry) {
	when := ""
	if !e.CreatedAt.IsZero() {
		when = " " + e.CreatedAt.Format(createdLayout)
	}
	fmt.Fprintf(w, "%s%s (%s)%s [id %s]: %s\n", indent, formatIdentity(e.Author), e.RoleLabel, when, e.ID, e.Body)
}

func formatIdentity(who identity.Identity) string {
	return "[" + who.Initials + "] " + who.DisplayName
}

func priorityBadge(p domain.Priority) string {
	if p == "" {
		return ""
	}
	return "  [" + string(p) + "]"
}
