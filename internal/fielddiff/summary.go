package fielddiff

import (
	"fmt"
	"strings"

	"nestling-health/audit/internal/normalize"
)

const (
	// summaryMaxNames is the largest change count listed in full.
	summaryMaxNames = 4
	// summaryLeadNames is how many names a truncated summary shows.
	summaryLeadNames = 3
)

// Summary renders a ChangeSet as a short human-readable line for audit
// display, e.g. "Updated visit_date, notes". Entries whose before and after
// normalize equal are dropped first, so a ChangeSet assembled by a caller
// other than Build still reads correctly. Five or more changes collapse to a
// count plus the leading field names and an ellipsis.
//
// entityType is accepted for callers that tag summaries per entity; it does
// not currently alter the output.
func Summary(changes ChangeSet, entityType string) string {
	names := make([]string, 0, changes.Len())
	for _, field := range changes.Fields() {
		change, ok := changes.Get(field)
		if !ok {
			continue
		}
		if normalize.Equal(change.Before, change.After) {
			continue
		}
		names = append(names, field)
	}
	if len(names) == 0 {
		return ""
	}
	if len(names) <= summaryMaxNames {
		return "Updated " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("Updated %d fields: %s...", len(names), strings.Join(names[:summaryLeadNames], ", "))
}
