package enrollment

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rhyrak/go-enroll/pkg/model"
)

func cid(course, section string) model.ClassID {
	return model.ClassID{CourseID: course, SectionID: section}
}

func slotAt(day model.Weekday, start, duration string) model.Slot {
	return model.NewSlot(day, decimal.RequireFromString(start), decimal.RequireFromString(duration), "T")
}

type fixture struct {
	catalog   *Catalog
	directory *Directory
}

func newFixture() *fixture {
	return &fixture{catalog: NewCatalog(), directory: NewDirectory()}
}

func (f *fixture) section(t *testing.T, id model.ClassID, slots ...model.Slot) *ClassSection {
	t.Helper()
	cs := f.catalog.Register(id)
	for _, s := range slots {
		if err := f.catalog.AddSlot(id, s); err != nil {
			t.Fatal(err)
		}
	}
	return cs
}

func (f *fixture) enroll(t *testing.T, studentID string, id model.ClassID) {
	t.Helper()
	if err := f.directory.Enroll(f.catalog, studentID, "Name "+studentID, id); err != nil {
		t.Fatal(err)
	}
}

// fill enrolls n generated students into id.
func (f *fixture) fill(t *testing.T, id model.ClassID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.enroll(t, fmt.Sprintf("%s-%s-%03d", id.CourseID, id.SectionID, i), id)
	}
}

func (f *fixture) engine(cfg *Configuration) *Engine {
	return NewEngine(f.catalog, f.directory, cfg, nil)
}

func rosterSizes(sections []*ClassSection) []int {
	sizes := make([]int, len(sections))
	for i, cs := range sections {
		sizes[i] = cs.RosterSize()
	}
	return sizes
}
