package enrollment

import (
	"fmt"
)

// Validate checks that no student holds two sections of a course, that
// rosters and enrolled sets mirror each other, and that the catalog index
// matches its sections. Returns false and a message for invalid state.
func Validate(catalog *Catalog, directory *Directory) (bool, string) {
	var message string
	var duplicateCourse bool = false
	var rosterMismatch bool = false
	var staleIndex bool = false

	for _, s := range directory.Students() {
		seen := make(map[string]bool, len(s.classes))
		for _, id := range s.classes {
			if seen[id.CourseID] {
				duplicateCourse = true
				message += fmt.Sprintf("- Student %s holds more than one section of %s\n", s.id, id.CourseID)
			}
			seen[id.CourseID] = true

			cs, ok := catalog.index[id]
			if !ok {
				rosterMismatch = true
				message += fmt.Sprintf("- Student %s enrolled in unknown class %s\n", s.id, id)
				continue
			}
			if cs.roster[s.id] != s {
				rosterMismatch = true
				message += fmt.Sprintf("- Student %s missing from roster of %s\n", s.id, id)
			}
		}
	}

	for _, cs := range catalog.sections {
		for id, s := range cs.roster {
			if known, ok := directory.students[id]; !ok || known != s {
				rosterMismatch = true
				message += fmt.Sprintf("- Roster of %s lists unknown student %s\n", cs.id, id)
				continue
			}
			if !s.holds(cs.id) {
				rosterMismatch = true
				message += fmt.Sprintf("- Roster of %s lists %s who is not enrolled in it\n", cs.id, id)
			}
		}
	}

	indexed := 0
	for course, sections := range catalog.byCourse {
		for _, cs := range sections {
			indexed++
			if cs.id.CourseID != course || catalog.index[cs.id] != cs {
				staleIndex = true
				message += fmt.Sprintf("- Course index entry %s is stale\n", cs.id)
			}
		}
	}
	if indexed != len(catalog.sections) || len(catalog.index) != len(catalog.sections) {
		staleIndex = true
		message += fmt.Sprintf("- Index sizes differ: %d sections, %d by identity, %d by course\n",
			len(catalog.sections), len(catalog.index), indexed)
	}

	if staleIndex {
		message = "[FAIL]: Catalog index check.\n" + message
	} else {
		message = "[  OK]: Catalog index check.\n" + message
	}
	if rosterMismatch {
		message = "[FAIL]: Roster consistency check.\n" + message
	} else {
		message = "[  OK]: Roster consistency check.\n" + message
	}
	if duplicateCourse {
		message = "[FAIL]: One section per course check.\n" + message
	} else {
		message = "[  OK]: One section per course check.\n" + message
	}

	return !(duplicateCourse || rosterMismatch || staleIndex), message
}
