package enrollment

import (
	"fmt"
	"slices"

	"github.com/rhyrak/go-enroll/pkg/model"
)

// Catalog is the authoritative set of class sections.
type Catalog struct {
	sections []*ClassSection
	index    map[model.ClassID]*ClassSection
	byCourse map[string][]*ClassSection
}

func NewCatalog() *Catalog {
	return &Catalog{
		index:    make(map[model.ClassID]*ClassSection),
		byCourse: make(map[string][]*ClassSection),
	}
}

// Register creates the section for id, or returns the existing one.
func (c *Catalog) Register(id model.ClassID) *ClassSection {
	if cs, ok := c.index[id]; ok {
		return cs
	}
	cs := newClassSection(id)
	c.sections = append(c.sections, cs)
	c.index[id] = cs
	c.byCourse[id.CourseID] = append(c.byCourse[id.CourseID], cs)
	return cs
}

// AddSlot appends a slot to a registered section.
func (c *Catalog) AddSlot(id model.ClassID, slot model.Slot) error {
	cs, err := c.Lookup(id)
	if err != nil {
		return err
	}
	cs.addSlot(slot)
	return nil
}

// Lookup finds the section with exactly this identity.
func (c *Catalog) Lookup(id model.ClassID) (*ClassSection, error) {
	cs, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", id, ErrNotFound)
	}
	return cs, nil
}

// SectionsOfCourse returns every section of courseID in registration order.
func (c *Catalog) SectionsOfCourse(courseID string) []*ClassSection {
	return slices.Clone(c.byCourse[courseID])
}

// SectionsNamed returns the sections carrying the given section code across
// all courses, ordered by identity.
func (c *Catalog) SectionsNamed(sectionID string) []*ClassSection {
	var named []*ClassSection
	for _, cs := range c.Sections() {
		if cs.id.SectionID == sectionID {
			named = append(named, cs)
		}
	}
	return named
}

// Sections returns all sections ordered by identity.
func (c *Catalog) Sections() []*ClassSection {
	sorted := slices.Clone(c.sections)
	slices.SortFunc(sorted, func(c1, c2 *ClassSection) int {
		return c1.id.Compare(c2.id)
	})
	return sorted
}

// Courses returns the distinct course codes, sorted.
func (c *Catalog) Courses() []string {
	courses := make([]string, 0, len(c.byCourse))
	for course := range c.byCourse {
		courses = append(courses, course)
	}
	slices.Sort(courses)
	return courses
}

func (c *Catalog) Len() int {
	return len(c.sections)
}
