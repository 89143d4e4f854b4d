package enrollment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rhyrak/go-enroll/pkg/model"
)

// Directory is the authoritative set of students and their enrolled sections.
type Directory struct {
	students map[string]*Student
}

func NewDirectory() *Directory {
	return &Directory{students: make(map[string]*Student)}
}

// Lookup finds a student by id.
func (d *Directory) Lookup(studentID string) (*Student, error) {
	s, ok := d.students[studentID]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	return s, nil
}

// Enroll records an existing enrollment at load time. The student is created
// on first sight; a second section of an already held course is refused.
func (d *Directory) Enroll(catalog *Catalog, studentID, name string, id model.ClassID) error {
	cs, err := catalog.Lookup(id)
	if err != nil {
		return err
	}
	s, ok := d.students[studentID]
	if !ok {
		s = newStudent(studentID, name)
	}
	if held, ok := s.ClassOf(id.CourseID); ok {
		return fmt.Errorf("student %s in %s and %s: %w", studentID, held, id, ErrCourseAlreadyHeld)
	}
	if cs.HasStudent(studentID) {
		return fmt.Errorf("student %s listed twice in %s: %w", studentID, id, ErrInconsistentState)
	}
	s.addClass(id)
	cs.addStudent(s)
	d.students[studentID] = s
	return nil
}

// Placement is one existing enrollment handed to EnrollAll.
type Placement struct {
	StudentID string
	Name      string
	Class     model.ClassID
}

// PlacementError reports which placement EnrollAll refused.
type PlacementError struct {
	Index int
	Err   error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement %d: %v", e.Index, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// EnrollAll builds a directory from placements. Every placement is checked
// before the first roster is touched, so a refused input leaves the catalog
// as it was.
func EnrollAll(catalog *Catalog, placements []Placement) (*Directory, error) {
	held := make(map[string]map[string]model.ClassID)
	for i, p := range placements {
		cs, err := catalog.Lookup(p.Class)
		if err != nil {
			return nil, &PlacementError{Index: i, Err: err}
		}
		courses, ok := held[p.StudentID]
		if !ok {
			courses = make(map[string]model.ClassID)
			held[p.StudentID] = courses
		}
		if prev, ok := courses[p.Class.CourseID]; ok {
			return nil, &PlacementError{Index: i, Err: fmt.Errorf("student %s in %s and %s: %w", p.StudentID, prev, p.Class, ErrCourseAlreadyHeld)}
		}
		if cs.HasStudent(p.StudentID) {
			return nil, &PlacementError{Index: i, Err: fmt.Errorf("student %s listed twice in %s: %w", p.StudentID, p.Class, ErrInconsistentState)}
		}
		courses[p.Class.CourseID] = p.Class
	}

	d := NewDirectory()
	for i, p := range placements {
		if err := d.Enroll(catalog, p.StudentID, p.Name, p.Class); err != nil {
			return nil, &PlacementError{Index: i, Err: err}
		}
	}
	return d, nil
}

// Students returns all students ordered by id.
func (d *Directory) Students() []*Student {
	students := make([]*Student, 0, len(d.students))
	for _, s := range d.students {
		students = append(students, s)
	}
	slices.SortFunc(students, func(s1, s2 *Student) int {
		return strings.Compare(s1.id, s2.id)
	})
	return students
}

// StudentsOfCourse returns every student enrolled in any section of courseID,
// ordered by name and then id.
func (d *Directory) StudentsOfCourse(courseID string) []*Student {
	var enrolled []*Student
	for _, s := range d.students {
		if s.IsEnrolled(courseID) {
			enrolled = append(enrolled, s)
		}
	}
	slices.SortFunc(enrolled, func(s1, s2 *Student) int {
		if name := strings.Compare(s1.name, s2.name); name != 0 {
			return name
		}
		return strings.Compare(s1.id, s2.id)
	})
	return enrolled
}

func (d *Directory) Len() int {
	return len(d.students)
}
