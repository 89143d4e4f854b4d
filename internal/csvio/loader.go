package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/pkg/model"
)

// newCSVReader accepts plain UTF-8, UTF-8 with a BOM and BOM-marked UTF-16,
// which is what spreadsheet exports of the data files tend to produce.
func newCSVReader(in io.Reader, delim rune) gocsv.CSVReader {
	decoded := transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(decoded)
	r.Comma = delim
	r.TrimLeadingSpace = true
	return r
}

func readRows[T any](in io.Reader, delim rune, source string) ([]*T, error) {
	rows := []*T{}
	if err := gocsv.UnmarshalCSV(newCSVReader(in, delim), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return rows, nil
		}
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return rows, nil
}

func loadRows[T any](path string, delim rune) ([]*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readRows[T](f, delim, path)
}

// LoadCatalog reads the course/class pairs and the class slots named in cfg.
func LoadCatalog(cfg *enrollment.Configuration) (*enrollment.Catalog, error) {
	classes, err := loadRows[model.CourseClassCSVRow](cfg.ClassesPerCourseFile, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	slots, err := loadRows[model.SlotCSVRow](cfg.ClassesFile, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(classes, slots)
}

// ReadCatalog is LoadCatalog over already opened streams.
func ReadCatalog(classesPerCourse, classes io.Reader, delim rune) (*enrollment.Catalog, error) {
	classRows, err := readRows[model.CourseClassCSVRow](classesPerCourse, delim, "classes per course")
	if err != nil {
		return nil, err
	}
	slotRows, err := readRows[model.SlotCSVRow](classes, delim, "classes")
	if err != nil {
		return nil, err
	}
	return BuildCatalog(classRows, slotRows)
}

// BuildCatalog registers every class and attaches its slots. A slot row for
// a class that was never registered is an error.
func BuildCatalog(classes []*model.CourseClassCSVRow, slots []*model.SlotCSVRow) (*enrollment.Catalog, error) {
	catalog := enrollment.NewCatalog()
	for i, c := range classes {
		id, err := classID(c.CourseID, c.SectionID)
		if err != nil {
			return nil, fmt.Errorf("classes per course row %d: %w", i+2, err)
		}
		catalog.Register(id)
	}
	for i, row := range slots {
		id, err := classID(row.CourseID, row.SectionID)
		if err != nil {
			return nil, fmt.Errorf("classes row %d: %w", i+2, err)
		}
		slot, err := parseSlot(row)
		if err != nil {
			return nil, fmt.Errorf("classes row %d: %w", i+2, err)
		}
		if err := catalog.AddSlot(id, slot); err != nil {
			return nil, fmt.Errorf("classes row %d: %w", i+2, err)
		}
	}
	return catalog, nil
}

func parseSlot(row *model.SlotCSVRow) (model.Slot, error) {
	day, err := model.ParseWeekday(strings.TrimSpace(row.Weekday))
	if err != nil {
		return model.Slot{}, err
	}
	start, err := decimal.NewFromString(strings.TrimSpace(row.StartHour))
	if err != nil {
		return model.Slot{}, fmt.Errorf("start hour %q: %w", row.StartHour, err)
	}
	duration, err := decimal.NewFromString(strings.TrimSpace(row.Duration))
	if err != nil {
		return model.Slot{}, fmt.Errorf("duration %q: %w", row.Duration, err)
	}
	if !duration.IsPositive() {
		return model.Slot{}, fmt.Errorf("duration %q must be positive", row.Duration)
	}
	return model.NewSlot(day, start, duration, strings.TrimSpace(row.Type)), nil
}

// LoadDirectory reads the student enrollments named in cfg.
func LoadDirectory(cfg *enrollment.Configuration, catalog *enrollment.Catalog) (*enrollment.Directory, error) {
	rows, err := loadRows[model.EnrollmentCSVRow](cfg.StudentsFile, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	return BuildDirectory(catalog, rows)
}

// ReadDirectory is LoadDirectory over an already opened stream.
func ReadDirectory(in io.Reader, delim rune, catalog *enrollment.Catalog) (*enrollment.Directory, error) {
	rows, err := readRows[model.EnrollmentCSVRow](in, delim, "students classes")
	if err != nil {
		return nil, err
	}
	return BuildDirectory(catalog, rows)
}

// BuildDirectory enrolls every row. Rows naming an unknown class or a second
// section of a course the student already holds are refused, and a refused
// file leaves the catalog rosters untouched.
func BuildDirectory(catalog *enrollment.Catalog, rows []*model.EnrollmentCSVRow) (*enrollment.Directory, error) {
	placements := make([]enrollment.Placement, 0, len(rows))
	for i, row := range rows {
		studentID, err := code("StudentCode", row.StudentID)
		if err != nil {
			return nil, fmt.Errorf("students row %d: %w", i+2, err)
		}
		id, err := classID(row.CourseID, row.SectionID)
		if err != nil {
			return nil, fmt.Errorf("students row %d: %w", i+2, err)
		}
		placements = append(placements, enrollment.Placement{StudentID: studentID, Name: row.StudentName, Class: id})
	}
	directory, err := enrollment.EnrollAll(catalog, placements)
	if err != nil {
		var pe *enrollment.PlacementError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("students row %d: %w", pe.Index+2, pe.Err)
		}
		return nil, err
	}
	return directory, nil
}

// LoadRequests reads the batch requests file named in cfg.
func LoadRequests(cfg *enrollment.Configuration) ([]*model.RequestCSVRow, error) {
	return loadRows[model.RequestCSVRow](cfg.RequestsFile, cfg.Delimiter)
}

// ReadRequests is LoadRequests over an already opened stream.
func ReadRequests(in io.Reader, delim rune) ([]*model.RequestCSVRow, error) {
	return readRows[model.RequestCSVRow](in, delim, "requests")
}

// SubmitRequests queues every row on the engine in file order. Nothing is
// queued if any row lacks a code.
func SubmitRequests(engine *enrollment.Engine, rows []*model.RequestCSVRow) ([]model.Request, error) {
	type parsed struct {
		studentID string
		id        model.ClassID
	}
	checked := make([]parsed, 0, len(rows))
	for i, row := range rows {
		studentID, err := code("StudentCode", row.StudentID)
		if err != nil {
			return nil, fmt.Errorf("requests row %d: %w", i+2, err)
		}
		id, err := classID(row.CourseID, row.SectionID)
		if err != nil {
			return nil, fmt.Errorf("requests row %d: %w", i+2, err)
		}
		checked = append(checked, parsed{studentID: studentID, id: id})
	}

	submitted := make([]model.Request, 0, len(checked))
	for _, p := range checked {
		submitted = append(submitted, engine.Submit(p.studentID, p.id))
	}
	return submitted, nil
}

// ErrMissingCode is returned for rows with an empty identifier column,
// which is also what a header with unknown column names produces.
var ErrMissingCode = errors.New("missing code")

func code(column, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s: %w", column, ErrMissingCode)
	}
	return value, nil
}

func classID(courseID, sectionID string) (model.ClassID, error) {
	course, err := code("UcCode", courseID)
	if err != nil {
		return model.ClassID{}, err
	}
	section, err := code("ClassCode", sectionID)
	if err != nil {
		return model.ClassID{}, err
	}
	return model.ClassID{CourseID: course, SectionID: section}, nil
}
