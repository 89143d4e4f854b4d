package csvio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/pkg/model"
)

const classesPerCourseCSV = `UcCode,ClassCode
L.EIC001,1LEIC01
L.EIC001,1LEIC02
L.EIC002,1LEIC01
L.EIC002,1LEIC02
`

const classesCSV = "ClassCode,UcCode,Weekday,StartHour,Duration,Type\r\n" +
	"1LEIC01,L.EIC001,Monday,10.5,1.5,TP\r\n" +
	"1LEIC01,L.EIC001,Wednesday,8,2,T\r\n" +
	"1LEIC02,L.EIC001,Wednesday,8,2,T\r\n" +
	"1LEIC02,L.EIC001,Tuesday,9,1.5,TP\r\n" +
	"1LEIC01,L.EIC002,Monday,9,1.5,TP\r\n" +
	"1LEIC02,L.EIC002,Friday,11,2,TP\r\n"

const studentsCSV = `StudentCode,StudentName,UcCode,ClassCode
202025232,Iara,L.EIC001,1LEIC01
202025232,Iara,L.EIC002,1LEIC02
202071557,Ana,L.EIC001,1LEIC02
202071557,Ana,L.EIC002,1LEIC01
202030247,Ludovico,L.EIC002,1LEIC01
`

func readFixtureCatalog(t *testing.T) *enrollment.Catalog {
	t.Helper()
	catalog, err := ReadCatalog(strings.NewReader(classesPerCourseCSV), strings.NewReader(classesCSV), ',')
	if err != nil {
		t.Fatal(err)
	}
	return catalog
}

func loadFixture(t *testing.T) (*enrollment.Catalog, *enrollment.Directory) {
	t.Helper()
	catalog := readFixtureCatalog(t)
	directory, err := ReadDirectory(strings.NewReader(studentsCSV), ',', catalog)
	if err != nil {
		t.Fatal(err)
	}
	return catalog, directory
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n")), "\n")
	slices.Sort(lines[1:])
	return lines
}

func TestReadCatalog(t *testing.T) {
	catalog, _ := loadFixture(t)
	if catalog.Len() != 4 {
		t.Fatalf("Len() = %d", catalog.Len())
	}
	cs, err := catalog.Lookup(model.ClassID{CourseID: "L.EIC001", SectionID: "1LEIC01"})
	if err != nil {
		t.Fatal(err)
	}
	slots := cs.Slots()
	if len(slots) != 2 || slots[0].Weekday() != model.Monday || model.Clock(slots[0].End()) != "12:00" {
		t.Fatalf("slots = %+v", slots)
	}
}

func TestRoundTripWithoutRequests(t *testing.T) {
	catalog, directory := loadFixture(t)
	e := enrollment.NewEngine(catalog, directory, nil, nil)
	if _, err := e.ProcessAll(); err != nil {
		t.Fatal(err)
	}
	out, err := ExportEnrollmentsString(directory)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sortedLines(out), sortedLines(studentsCSV); !slices.Equal(got, want) {
		t.Fatalf("round trip mismatch:\n%v\n%v", got, want)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	catalog, _ := loadFixture(t)
	var perCourse, classes bytes.Buffer
	if err := WriteCatalog(&perCourse, &classes, catalog, ';'); err != nil {
		t.Fatal(err)
	}
	again, err := ReadCatalog(&perCourse, &classes, ';')
	if err != nil {
		t.Fatal(err)
	}
	before, after := catalog.Sections(), again.Sections()
	if len(before) != len(after) {
		t.Fatalf("sections %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID() != after[i].ID() {
			t.Fatalf("section %d: %s vs %s", i, before[i].ID(), after[i].ID())
		}
		s1, s2 := before[i].Slots(), after[i].Slots()
		if len(s1) != len(s2) {
			t.Fatalf("%s: slot count %d vs %d", before[i].ID(), len(s1), len(s2))
		}
		for j := range s1 {
			if !s1[j].Equal(s2[j]) {
				t.Fatalf("%s slot %d differs", before[i].ID(), j)
			}
		}
	}
}

func TestReadStripsByteOrderMark(t *testing.T) {
	in := "\ufeff" + studentsCSV
	directory, err := ReadDirectory(strings.NewReader(in), ',', readFixtureCatalog(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := directory.Lookup("202025232"); err != nil {
		t.Fatal(err)
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	badSlot := "ClassCode,UcCode,Weekday,StartHour,Duration,Type\n1LEIC09,L.EIC001,Monday,9,1,T\n"
	if _, err := ReadCatalog(strings.NewReader(classesPerCourseCSV), strings.NewReader(badSlot), ','); !errors.Is(err, enrollment.ErrNotFound) {
		t.Fatalf("unknown class: got %v", err)
	}
	badDay := "ClassCode,UcCode,Weekday,StartHour,Duration,Type\n1LEIC01,L.EIC001,Sunday,9,1,T\n"
	if _, err := ReadCatalog(strings.NewReader(classesPerCourseCSV), strings.NewReader(badDay), ','); err == nil {
		t.Fatal("expected weekday error")
	}
	badHour := "ClassCode,UcCode,Weekday,StartHour,Duration,Type\n1LEIC01,L.EIC001,Monday,nine,1,T\n"
	if _, err := ReadCatalog(strings.NewReader(classesPerCourseCSV), strings.NewReader(badHour), ','); err == nil {
		t.Fatal("expected start hour error")
	}

	twice := studentsCSV + "202025232,Iara,L.EIC001,1LEIC02\n"
	if _, err := ReadDirectory(strings.NewReader(twice), ',', readFixtureCatalog(t)); !errors.Is(err, enrollment.ErrCourseAlreadyHeld) {
		t.Fatalf("second section: got %v", err)
	}
	if _, err := ReadDirectory(strings.NewReader(studentsCSV), ',', readFixtureCatalog(t)); err != nil {
		t.Fatalf("valid students file refused: %v", err)
	}
}

func rosterSizes(catalog *enrollment.Catalog) []int {
	var sizes []int
	for _, cs := range catalog.Sections() {
		sizes = append(sizes, cs.RosterSize())
	}
	return sizes
}

func TestRefusedStudentsFileLeavesRostersUntouched(t *testing.T) {
	for name, tail := range map[string]string{
		"unknown class":  "202099999,Rita,L.EIC009,1LEIC01\n",
		"second section": "202025232,Iara,L.EIC001,1LEIC02\n",
		"repeated row":   "202030247,Ludovico,L.EIC002,1LEIC01\n",
	} {
		t.Run(name, func(t *testing.T) {
			catalog := readFixtureCatalog(t)
			before := rosterSizes(catalog)
			if _, err := ReadDirectory(strings.NewReader(studentsCSV+tail), ',', catalog); err == nil {
				t.Fatal("expected the file to be refused")
			}
			if after := rosterSizes(catalog); !slices.Equal(before, after) {
				t.Fatalf("rosters changed from %v to %v", before, after)
			}
			directory, err := ReadDirectory(strings.NewReader(studentsCSV), ',', catalog)
			if err != nil {
				t.Fatalf("catalog not reusable: %v", err)
			}
			if valid, msg := enrollment.Validate(catalog, directory); !valid {
				t.Fatalf("state invalid after reuse:\n%s", msg)
			}
		})
	}
}

func TestRefusedRowReportsLineNumber(t *testing.T) {
	bad := studentsCSV + "202099999,Rita,L.EIC009,1LEIC01\n"
	_, err := ReadDirectory(strings.NewReader(bad), ',', readFixtureCatalog(t))
	if !errors.Is(err, enrollment.ErrNotFound) || !strings.Contains(err.Error(), "students row 7") {
		t.Fatalf("got %v", err)
	}
}

func TestMissingCodesAreRefused(t *testing.T) {
	unknownHeader := "Course,Class\nL.EIC001,1LEIC01\n"
	if _, err := ReadCatalog(strings.NewReader(unknownHeader), strings.NewReader(classesCSV), ','); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("classes per course with unknown header: got %v", err)
	}
	blankSection := "ClassCode,UcCode,Weekday,StartHour,Duration,Type\n,L.EIC001,Monday,9,1,T\n"
	if _, err := ReadCatalog(strings.NewReader(classesPerCourseCSV), strings.NewReader(blankSection), ','); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("slot without class code: got %v", err)
	}
	noStudent := "StudentCode,StudentName,UcCode,ClassCode\n,Iara,L.EIC001,1LEIC01\n"
	if _, err := ReadDirectory(strings.NewReader(noStudent), ',', readFixtureCatalog(t)); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("student without code: got %v", err)
	}

	catalog, directory := loadFixture(t)
	e := enrollment.NewEngine(catalog, directory, nil, nil)
	rows, err := ReadRequests(strings.NewReader("Student,Course,Class\n202025232,L.EIC001,1LEIC02\n"), ',')
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SubmitRequests(e, rows); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("requests with unknown header: got %v", err)
	}
	if len(e.Pending()) != 0 {
		t.Fatalf("queued %d requests from a refused file", len(e.Pending()))
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := enrollment.NewDefaultConfiguration()
	cfg.ClassesPerCourseFile = filepath.Join(dir, "classes_per_uc.csv")
	cfg.ClassesFile = filepath.Join(dir, "classes.csv")
	cfg.StudentsFile = filepath.Join(dir, "students_classes.csv")
	cfg.RequestsFile = filepath.Join(dir, "requests.csv")
	cfg.ExportFile = filepath.Join(dir, "export.csv")
	files := map[string]string{
		cfg.ClassesPerCourseFile: classesPerCourseCSV,
		cfg.ClassesFile:          classesCSV,
		cfg.StudentsFile:         studentsCSV,
		cfg.RequestsFile:         "StudentCode,UcCode,ClassCode\n202030247,L.EIC002,1LEIC02\n202025232,L.EIC001,1LEIC02\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	catalog, err := LoadCatalog(cfg)
	if err != nil {
		t.Fatal(err)
	}
	directory, err := LoadDirectory(cfg, catalog)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := LoadRequests(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e := enrollment.NewEngine(catalog, directory, cfg, nil)
	submitted, err := SubmitRequests(e, rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(submitted) != 2 {
		t.Fatalf("submitted %d", len(submitted))
	}
	batch, err := e.ProcessAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Accepted) != 2 {
		t.Fatalf("batch = %+v", batch)
	}

	path, err := ExportEnrollments(directory, cfg.ExportFile, cfg.Delimiter)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "202030247,Ludovico,L.EIC002,1LEIC02") {
		t.Fatalf("export missing moved student:\n%s", data)
	}
	if _, err := LoadCatalog(&enrollment.Configuration{ClassesPerCourseFile: filepath.Join(dir, "missing.csv")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
