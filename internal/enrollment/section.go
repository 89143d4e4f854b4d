package enrollment

import (
	"slices"
	"strings"

	"github.com/rhyrak/go-enroll/pkg/model"
)

// ClassSection is one scheduled offering of a course together with its
// weekly slots and current roster.
type ClassSection struct {
	id     model.ClassID
	slots  []model.Slot
	roster map[string]*Student
}

func newClassSection(id model.ClassID) *ClassSection {
	return &ClassSection{id: id, roster: make(map[string]*Student)}
}

func (c *ClassSection) ID() model.ClassID {
	return c.id
}

// Slots returns a copy of the slot list in insertion order.
func (c *ClassSection) Slots() []model.Slot {
	return slices.Clone(c.slots)
}

func (c *ClassSection) RosterSize() int {
	return len(c.roster)
}

func (c *ClassSection) HasStudent(studentID string) bool {
	_, ok := c.roster[studentID]
	return ok
}

// Students returns the roster ordered by student id.
func (c *ClassSection) Students() []*Student {
	students := make([]*Student, 0, len(c.roster))
	for _, s := range c.roster {
		students = append(students, s)
	}
	slices.SortFunc(students, func(s1, s2 *Student) int {
		return strings.Compare(s1.id, s2.id)
	})
	return students
}

// Collides reports whether any slot of c overlaps any slot of other.
func (c *ClassSection) Collides(other *ClassSection) bool {
	for _, s1 := range c.slots {
		for _, s2 := range other.slots {
			if s1.Collides(s2) {
				return true
			}
		}
	}
	return false
}

func (c *ClassSection) addSlot(slot model.Slot) {
	c.slots = append(c.slots, slot)
}

// addStudent returns false if the student is already on the roster.
func (c *ClassSection) addStudent(s *Student) bool {
	if _, ok := c.roster[s.id]; ok {
		return false
	}
	c.roster[s.id] = s
	return true
}

// removeStudent returns false if the student was not on the roster.
func (c *ClassSection) removeStudent(s *Student) bool {
	if _, ok := c.roster[s.id]; !ok {
		return false
	}
	delete(c.roster, s.id)
	return true
}
