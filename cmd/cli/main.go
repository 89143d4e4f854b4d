package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/internal/config"
	"github.com/rhyrak/go-enroll/internal/csvio"
	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/pkg/model"
)

const usage = `Commands:
  schedule <student>                 weekly schedule of a student
  class <section>                    timetable of a class section, e.g. 1LEIC01
  course <course>                    timetable of every section of a course
  students <course>                  students of a course sorted by name
  request <student> <course> <section>
                                     queue a change of section
  pending                            queued requests
  process                            decide every queued request
  rejected                           rejected requests so far
  validate                           check the enrollment state
  save                               write students_classes.csv
  help
  quit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	fmt.Println("Loading...")
	catalog, err := csvio.LoadCatalog(cfg.Enrollment)
	if err != nil {
		logger.Fatal("loading catalog failed", zap.Error(err))
	}
	directory, err := csvio.LoadDirectory(cfg.Enrollment, catalog)
	if err != nil {
		logger.Fatal("loading students failed", zap.Error(err))
	}
	fmt.Printf("%d classes in %d courses, %d students\n\n", catalog.Len(), len(catalog.Courses()), directory.Len())

	engine := enrollment.NewEngine(catalog, directory, cfg.Enrollment, logger)
	if err := run(os.Stdin, os.Stdout, engine, cfg.Enrollment, logger); err != nil {
		logger.Fatal("reading commands failed", zap.Error(err))
	}
}

// run reads one command per line until quit or end of input.
func run(in io.Reader, out io.Writer, engine *enrollment.Engine, cfg *enrollment.Configuration, logger *zap.Logger) error {
	fmt.Fprintln(out, usage)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := execute(out, engine, cfg, logger, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

var errUsage = errors.New("wrong number of arguments, try help")

func execute(out io.Writer, engine *enrollment.Engine, cfg *enrollment.Configuration, logger *zap.Logger, cmd string, args []string) error {
	arity := map[string]int{
		"schedule": 1, "class": 1, "course": 1, "students": 1, "request": 3,
		"pending": 0, "process": 0, "rejected": 0, "validate": 0, "save": 0, "help": 0,
	}
	want, ok := arity[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	if len(args) != want {
		return errUsage
	}

	catalog, directory := engine.Catalog(), engine.Directory()
	switch cmd {
	case "schedule":
		return csvio.PrintStudentSchedule(out, catalog, directory, args[0])
	case "class":
		return csvio.PrintClassSchedule(out, catalog, args[0])
	case "course":
		return csvio.PrintCourseSchedule(out, catalog, args[0])
	case "students":
		return csvio.PrintCourseStudents(out, catalog, directory, args[0])
	case "request":
		req := engine.Submit(args[0], model.ClassID{CourseID: args[1], SectionID: args[2]})
		fmt.Fprintf(out, "Queued request %s\n", req.ID)
	case "pending":
		csvio.PrintRequests(out, directory, "Pending requests", engine.Pending())
	case "process":
		batch, err := engine.ProcessAll()
		if batch == nil {
			return err
		}
		csvio.PrintOutcomes(out, directory, "Accepted", batch.Accepted)
		csvio.PrintOutcomes(out, directory, "Rejected", batch.Rejected)
		if len(batch.Faulted) != 0 {
			fmt.Fprintln(out, ">> Failed:")
			for _, f := range batch.Faulted {
				fmt.Fprintf(out, "   %s %s %s: %v\n", f.Request.StudentID, f.Request.Desired.CourseID, f.Request.Desired.SectionID, f.Err)
			}
			logger.Warn("batch finished with faults", zap.Int("faulted", len(batch.Faulted)))
		}
	case "rejected":
		csvio.PrintOutcomes(out, directory, "Rejected requests", engine.Rejected())
	case "validate":
		valid, msg := enrollment.Validate(catalog, directory)
		if valid {
			fmt.Fprintln(out, "Passed all tests")
		} else {
			fmt.Fprintln(out, "Invalid state:")
		}
		fmt.Fprint(out, msg)
	case "save":
		path, err := csvio.ExportEnrollments(directory, cfg.ExportFile, cfg.Delimiter)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Exported output to: "+path)
	case "help":
		fmt.Fprintln(out, usage)
	}
	return nil
}
