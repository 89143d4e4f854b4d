package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/pkg/model"
)

// EnrollmentRows flattens the directory into the students_classes.csv shape,
// ordered by student id and then by enrollment order.
func EnrollmentRows(directory *enrollment.Directory) []*model.EnrollmentCSVRow {
	var rows []*model.EnrollmentCSVRow
	for _, s := range directory.Students() {
		for _, c := range s.Classes() {
			rows = append(rows, &model.EnrollmentCSVRow{
				StudentID:   s.ID(),
				StudentName: s.Name(),
				CourseID:    c.CourseID,
				SectionID:   c.SectionID,
			})
		}
	}
	return rows
}

func writeRows(w io.Writer, rows any, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	safe := gocsv.NewSafeCSVWriter(writer)
	if err := gocsv.MarshalCSV(rows, safe); err != nil {
		return err
	}
	safe.Flush()
	return safe.Error()
}

// WriteEnrollments writes the current enrollments with a header line.
func WriteEnrollments(w io.Writer, directory *enrollment.Directory, delim rune) error {
	rows := EnrollmentRows(directory)
	return writeRows(w, &rows, delim)
}

// ExportEnrollments writes the current enrollments to the file at path,
// replacing it, and returns the path.
func ExportEnrollments(directory *enrollment.Directory, path string, delim rune) (string, error) {
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if err := WriteEnrollments(out, directory, delim); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, out.Close()
}

// ExportEnrollmentsString returns the comma separated enrollment file contents.
func ExportEnrollmentsString(directory *enrollment.Directory) (string, error) {
	var sb strings.Builder
	if err := WriteEnrollments(&sb, directory, ','); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteCatalog writes the classes_per_uc.csv and classes.csv streams for catalog.
func WriteCatalog(classesPerCourse, classes io.Writer, catalog *enrollment.Catalog, delim rune) error {
	var classRows []*model.CourseClassCSVRow
	var slotRows []*model.SlotCSVRow
	for _, cs := range catalog.Sections() {
		id := cs.ID()
		classRows = append(classRows, &model.CourseClassCSVRow{CourseID: id.CourseID, SectionID: id.SectionID})
		for _, s := range cs.Slots() {
			slotRows = append(slotRows, &model.SlotCSVRow{
				SectionID: id.SectionID,
				CourseID:  id.CourseID,
				Weekday:   s.Weekday().String(),
				StartHour: s.Start().String(),
				Duration:  s.Duration().String(),
				Type:      s.Category(),
			})
		}
	}
	if err := writeRows(classesPerCourse, &classRows, delim); err != nil {
		return err
	}
	return writeRows(classes, &slotRows, delim)
}
