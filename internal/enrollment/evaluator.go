package enrollment

import (
	"github.com/rhyrak/go-enroll/pkg/model"
)

// Evaluator decides requests against the current catalog and directory
// without mutating either.
type Evaluator struct {
	catalog   *Catalog
	directory *Directory
	cfg       *Configuration
}

func NewEvaluator(catalog *Catalog, directory *Directory, cfg *Configuration) *Evaluator {
	if cfg == nil {
		cfg = NewDefaultConfiguration()
	}
	return &Evaluator{catalog: catalog, directory: directory, cfg: cfg}
}

// Evaluate returns ReasonAccepted or the reason for rejecting req.
// A missing student or section is returned as an error wrapping ErrNotFound.
func (e *Evaluator) Evaluate(req model.Request) (model.Reason, error) {
	student, err := e.directory.Lookup(req.StudentID)
	if err != nil {
		return "", err
	}
	desired, err := e.catalog.Lookup(req.Desired)
	if err != nil {
		return "", err
	}
	if student.holds(req.Desired) {
		return model.ReasonAlreadyEnrolled, nil
	}

	collides, err := e.HasCollision(student, desired)
	if err != nil {
		return "", err
	}
	if collides {
		return model.ReasonCollision, nil
	}
	if e.ExceedsCapacity(desired) {
		return model.ReasonCapacity, nil
	}
	return model.ReasonAccepted, nil
}

// HasCollision checks the desired section against every section the student
// holds. The section of the same course is skipped since it would be left.
func (e *Evaluator) HasCollision(student *Student, desired *ClassSection) (bool, error) {
	for _, id := range student.classes {
		if id.SameCourse(desired.id) {
			continue
		}
		held, err := e.catalog.Lookup(id)
		if err != nil {
			return false, err
		}
		if held.Collides(desired) {
			return true, nil
		}
	}
	return false, nil
}

// ExceedsCapacity applies the balancing rule over all sections of the
// desired course using roster sizes before the move.
func (e *Evaluator) ExceedsCapacity(desired *ClassSection) bool {
	sections := e.catalog.SectionsOfCourse(desired.id.CourseID)
	if len(sections) == 0 {
		return false
	}
	smallest, largest, total := sections[0].RosterSize(), sections[0].RosterSize(), 0
	for _, cs := range sections {
		size := cs.RosterSize()
		smallest = min(smallest, size)
		largest = max(largest, size)
		total += size
	}
	if largest-smallest >= e.cfg.SpreadLimit {
		return true
	}
	return desired.RosterSize() >= e.cfg.Ceiling(total)
}
