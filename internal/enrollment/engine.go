package enrollment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/pkg/model"
)

// Fault is a request that could not be decided because the state it refers
// to is missing or broken.
type Fault struct {
	Request model.Request
	Err     error
}

// Batch holds the outcomes of one ProcessAll run in processing order.
type Batch struct {
	Accepted []model.Outcome
	Rejected []model.Outcome
	Faulted  []Fault
}

// Engine owns the catalog and directory and is the only writer of both.
// It is not safe for concurrent use.
type Engine struct {
	catalog   *Catalog
	directory *Directory
	evaluator *Evaluator
	cfg       *Configuration
	logger    *zap.Logger

	pending  []model.Request
	accepted []model.Outcome
	rejected []model.Outcome
}

func NewEngine(catalog *Catalog, directory *Directory, cfg *Configuration, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = NewDefaultConfiguration()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   catalog,
		directory: directory,
		evaluator: NewEvaluator(catalog, directory, cfg),
		cfg:       cfg,
		logger:    logger,
	}
}

func (e *Engine) Catalog() *Catalog     { return e.catalog }
func (e *Engine) Directory() *Directory { return e.directory }

// Submit queues a request. Nothing is checked until the queue is processed.
func (e *Engine) Submit(studentID string, desired model.ClassID) model.Request {
	req := model.Request{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Desired:   desired,
	}
	e.pending = append(e.pending, req)
	e.logger.Debug("request submitted",
		zap.String("request", req.ID),
		zap.String("student", studentID),
		zap.Stringer("class", desired))
	return req
}

// Pending returns the queued requests in submission order.
func (e *Engine) Pending() []model.Request {
	return slices.Clone(e.pending)
}

// Accepted returns every accepted request since the engine was created.
func (e *Engine) Accepted() []model.Outcome {
	return slices.Clone(e.accepted)
}

// Rejected returns every rejected request since the engine was created.
func (e *Engine) Rejected() []model.Outcome {
	return slices.Clone(e.rejected)
}

// ProcessAll drains the queue in FIFO order. Each request is decided against
// the state left by the previous one. Requests that hit missing or broken
// state are reported in Batch.Faulted and joined into the returned error;
// with StopOnIntegrityError the run stops there and later requests stay queued.
func (e *Engine) ProcessAll() (*Batch, error) {
	if e.cfg.ValidateBeforeBatch {
		if valid, report := Validate(e.catalog, e.directory); !valid {
			return nil, fmt.Errorf("%w\n%s", ErrInconsistentState, report)
		}
	}

	batch := &Batch{}
	var errs []error
	for len(e.pending) > 0 {
		req := e.pending[0]
		e.pending = e.pending[1:]

		reason, err := e.process(req)
		if err != nil {
			e.logger.Warn("request faulted",
				zap.String("request", req.ID),
				zap.String("student", req.StudentID),
				zap.Stringer("class", req.Desired),
				zap.Error(err))
			batch.Faulted = append(batch.Faulted, Fault{Request: req, Err: err})
			errs = append(errs, fmt.Errorf("request %s: %w", req.ID, err))
			if e.cfg.StopOnIntegrityError {
				break
			}
			continue
		}

		outcome := model.Outcome{Request: req, Reason: reason}
		if outcome.Accepted() {
			batch.Accepted = append(batch.Accepted, outcome)
			e.accepted = append(e.accepted, outcome)
		} else {
			batch.Rejected = append(batch.Rejected, outcome)
			e.rejected = append(e.rejected, outcome)
		}
		e.logger.Debug("request decided",
			zap.String("request", req.ID),
			zap.String("reason", string(reason)))
	}
	return batch, errors.Join(errs...)
}

func (e *Engine) process(req model.Request) (model.Reason, error) {
	reason, err := e.evaluator.Evaluate(req)
	if err != nil || reason != model.ReasonAccepted {
		return reason, err
	}
	student, err := e.directory.Lookup(req.StudentID)
	if err != nil {
		return "", err
	}
	desired, err := e.catalog.Lookup(req.Desired)
	if err != nil {
		return "", err
	}
	if err := e.swap(student, desired); err != nil {
		return "", err
	}
	return model.ReasonAccepted, nil
}

// swap moves student out of its current section of the desired course (if
// any) and into desired. Every precondition is checked before the first
// write, so either both sides change or nothing does.
func (e *Engine) swap(student *Student, desired *ClassSection) error {
	if desired.HasStudent(student.id) {
		return fmt.Errorf("student %s already on roster of %s: %w", student.id, desired.id, ErrInconsistentState)
	}
	old, hasOld := student.ClassOf(desired.id.CourseID)
	var from *ClassSection
	if hasOld {
		var err error
		if from, err = e.catalog.Lookup(old); err != nil {
			return err
		}
		if !from.HasStudent(student.id) {
			return fmt.Errorf("student %s missing from roster of %s: %w", student.id, old, ErrInconsistentState)
		}
	}

	if from != nil {
		from.removeStudent(student)
		student.replaceClass(old, desired.id)
	} else {
		student.addClass(desired.id)
	}
	desired.addStudent(student)
	return nil
}
