package csvio

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/pkg/model"
)

type labeledSlot struct {
	label string
	slot  model.Slot
}

// groupByDay buckets slots per weekday, each bucket sorted by start time.
func groupByDay(slots []labeledSlot) [model.NumberOfDays][]labeledSlot {
	var week [model.NumberOfDays][]labeledSlot
	for _, s := range slots {
		day := s.slot.Weekday()
		if day < model.Monday || day > model.Friday {
			continue
		}
		week[day] = append(week[day], s)
	}
	for _, day := range week {
		slices.SortStableFunc(day, func(a, b labeledSlot) int {
			if start := a.slot.Start().Cmp(b.slot.Start()); start != 0 {
				return start
			}
			return strings.Compare(a.label, b.label)
		})
	}
	return week
}

// mergeIdentical folds slots that several sections share into one entry
// listing every section label.
func mergeIdentical(slots []labeledSlot) []labeledSlot {
	var merged []labeledSlot
	for _, s := range slots {
		i := slices.IndexFunc(merged, func(m labeledSlot) bool { return m.slot.Equal(s.slot) })
		if i < 0 {
			merged = append(merged, s)
			continue
		}
		merged[i].label += ", " + s.label
	}
	return merged
}

func span(s model.Slot) string {
	return model.Clock(s.Start()) + " to " + model.Clock(s.End())
}

// PrintStudentSchedule prints the classes and weekly timetable of one student.
func PrintStudentSchedule(w io.Writer, catalog *enrollment.Catalog, directory *enrollment.Directory, studentID string) error {
	student, err := directory.Lookup(studentID)
	if err != nil {
		return err
	}
	var slots []labeledSlot
	var held []string
	for _, id := range student.Classes() {
		cs, err := catalog.Lookup(id)
		if err != nil {
			return err
		}
		held = append(held, id.CourseID+" "+id.SectionID)
		for _, s := range cs.Slots() {
			slots = append(slots, labeledSlot{label: id.CourseID, slot: s})
		}
	}

	fmt.Fprintf(w, ">> The student %s with number %s is enrolled in the following classes:\n", student.Name(), student.ID())
	fmt.Fprintf(w, "   %s\n", strings.Join(held, " | "))
	fmt.Fprintln(w, ">> The student's schedule is:")
	for day, entries := range groupByDay(slots) {
		fmt.Fprintf(w, "   >> %s:\n", model.Weekday(day))
		for _, e := range entries {
			fmt.Fprintf(w, "      %-12s %s   %s\n", e.label, span(e.slot), e.slot.Category())
		}
	}
	return nil
}

// PrintClassSchedule prints the timetable of every course taught to the
// given section code.
func PrintClassSchedule(w io.Writer, catalog *enrollment.Catalog, sectionID string) error {
	sections := catalog.SectionsNamed(sectionID)
	var slots []labeledSlot
	for _, cs := range sections {
		for _, s := range cs.Slots() {
			slots = append(slots, labeledSlot{label: cs.ID().CourseID, slot: s})
		}
	}
	if len(slots) == 0 {
		return fmt.Errorf("class %s: %w", sectionID, enrollment.ErrNotFound)
	}

	fmt.Fprintf(w, ">> The schedule for the class %s is:\n", sectionID)
	for day, entries := range groupByDay(slots) {
		fmt.Fprintf(w, "   >> %s:\n", model.Weekday(day))
		for _, e := range entries {
			fmt.Fprintf(w, "      %s\t%s\t%s\n", span(e.slot), e.label, e.slot.Category())
		}
	}
	return nil
}

// PrintCourseSchedule prints the timetable of every section of a course.
// Slots shared by several sections are printed once.
func PrintCourseSchedule(w io.Writer, catalog *enrollment.Catalog, courseID string) error {
	sections := catalog.SectionsOfCourse(courseID)
	if len(sections) == 0 {
		return fmt.Errorf("course %s: %w", courseID, enrollment.ErrNotFound)
	}
	var slots []labeledSlot
	for _, cs := range sections {
		for _, s := range cs.Slots() {
			slots = append(slots, labeledSlot{label: cs.ID().SectionID, slot: s})
		}
	}

	fmt.Fprintf(w, ">> The schedule for the course %s is:\n", courseID)
	for day, entries := range groupByDay(mergeIdentical(slots)) {
		fmt.Fprintf(w, "   >> %s:\n", model.Weekday(day))
		for _, e := range entries {
			fmt.Fprintf(w, "      %s\t%s\t%s\n", span(e.slot), e.slot.Category(), e.label)
		}
	}
	return nil
}

// PrintCourseStudents prints the students of a course sorted by name,
// together with the roster size of each section.
func PrintCourseStudents(w io.Writer, catalog *enrollment.Catalog, directory *enrollment.Directory, courseID string) error {
	sections := catalog.SectionsOfCourse(courseID)
	if len(sections) == 0 {
		return fmt.Errorf("course %s: %w", courseID, enrollment.ErrNotFound)
	}
	students := directory.StudentsOfCourse(courseID)

	fmt.Fprintf(w, ">> Number of students: %d\n", len(students))
	for _, cs := range sections {
		fmt.Fprintf(w, "   %-12s %d\n", cs.ID().SectionID, cs.RosterSize())
	}
	fmt.Fprintln(w, ">> Students:")
	for _, s := range students {
		class, _ := s.ClassOf(courseID)
		fmt.Fprintf(w, "   %-12s %-30s %s\n", s.ID(), s.Name(), class.SectionID)
	}
	return nil
}

func studentName(directory *enrollment.Directory, studentID string) string {
	if s, err := directory.Lookup(studentID); err == nil {
		return s.Name()
	}
	return "?"
}

// PrintRequests prints queued requests in submission order.
func PrintRequests(w io.Writer, directory *enrollment.Directory, title string, requests []model.Request) {
	fmt.Fprintf(w, ">> %s:\n", title)
	for _, r := range requests {
		fmt.Fprintf(w, "   %s %s -> %s %s\n", r.StudentID, studentName(directory, r.StudentID), r.Desired.CourseID, r.Desired.SectionID)
	}
}

// PrintOutcomes prints decided requests with their reason.
func PrintOutcomes(w io.Writer, directory *enrollment.Directory, title string, outcomes []model.Outcome) {
	fmt.Fprintf(w, ">> %s:\n", title)
	for _, o := range outcomes {
		r := o.Request
		fmt.Fprintf(w, "   %s %s -> %s %s (%s)\n", r.StudentID, studentName(directory, r.StudentID), r.Desired.CourseID, r.Desired.SectionID, o.Reason)
	}
}
