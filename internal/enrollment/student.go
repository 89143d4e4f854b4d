package enrollment

import (
	"slices"

	"github.com/rhyrak/go-enroll/pkg/model"
)

// Student holds at most one section per course, in enrollment order.
type Student struct {
	id      string
	name    string
	classes []model.ClassID
}

func newStudent(id, name string) *Student {
	return &Student{id: id, name: name}
}

func (s *Student) ID() string   { return s.id }
func (s *Student) Name() string { return s.name }

// Classes returns a copy of the enrolled sections.
func (s *Student) Classes() []model.ClassID {
	return slices.Clone(s.classes)
}

// ClassOf returns the section the student holds for courseID, if any.
func (s *Student) ClassOf(courseID string) (model.ClassID, bool) {
	for _, c := range s.classes {
		if c.CourseID == courseID {
			return c, true
		}
	}
	return model.ClassID{}, false
}

func (s *Student) IsEnrolled(courseID string) bool {
	_, ok := s.ClassOf(courseID)
	return ok
}

func (s *Student) holds(id model.ClassID) bool {
	return slices.Contains(s.classes, id)
}

func (s *Student) addClass(id model.ClassID) bool {
	if s.IsEnrolled(id.CourseID) {
		return false
	}
	s.classes = append(s.classes, id)
	return true
}

// replaceClass swaps old for id in place, keeping the enrollment order.
func (s *Student) replaceClass(old, id model.ClassID) bool {
	i := slices.Index(s.classes, old)
	if i < 0 {
		return false
	}
	s.classes[i] = id
	return true
}
