package monitor

import (
	"strings"

	"lexdesk/training-monitor/internal/domain"
)

// FilterAssignments keeps assignments whose name or description contains the
// query, case-insensitively. An empty query keeps everything. The input
// slice is not modified.
func FilterAssignments(assignments []domain.TrainingAssignment, query string) []domain.TrainingAssignment {
	q := strings.ToLower(query)
	out := make([]domain.TrainingAssignment, 0, len(assignments))
	for _, a := range assignments {
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Description), q) {
			out = append(out, a)
		}
	}
	return out
}
