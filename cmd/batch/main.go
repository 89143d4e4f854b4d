package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/internal/config"
	"github.com/rhyrak/go-enroll/internal/csvio"
	"github.com/rhyrak/go-enroll/internal/enrollment"
)

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

	catalog, err := csvio.LoadCatalog(cfg.Enrollment)
	if err != nil {
		logger.Fatal("loading catalog failed", zap.Error(err))
	}
	directory, err := csvio.LoadDirectory(cfg.Enrollment, catalog)
	if err != nil {
		logger.Fatal("loading students failed", zap.Error(err))
	}
	rows, err := csvio.LoadRequests(cfg.Enrollment)
	if err != nil {
		logger.Fatal("loading requests failed", zap.Error(err))
	}

	engine := enrollment.NewEngine(catalog, directory, cfg.Enrollment, logger)
	requests, err := csvio.SubmitRequests(engine, rows)
	if err != nil {
		logger.Fatal("invalid requests file", zap.Error(err))
	}
	fmt.Printf("Loaded %d classes, %d students, %d requests\n\n", catalog.Len(), directory.Len(), len(requests))

	start := time.Now().UnixNano()
	batch, err := engine.ProcessAll()
	end := time.Now().UnixNano()
	if batch == nil {
		logger.Fatal("refusing to process requests", zap.Error(err))
	}

	csvio.PrintOutcomes(os.Stdout, directory, "Accepted requests", batch.Accepted)
	fmt.Println()
	csvio.PrintOutcomes(os.Stdout, directory, "Rejected requests", batch.Rejected)
	fmt.Println()
	if len(batch.Faulted) != 0 {
		fmt.Println("Requests that could not be processed:")
		for _, f := range batch.Faulted {
			fmt.Printf("   %s %s %s: %v\n", f.Request.StudentID, f.Request.Desired.CourseID, f.Request.Desired.SectionID, f.Err)
		}
		fmt.Println()
	}

	outPath, exportErr := csvio.ExportEnrollments(directory, cfg.Enrollment.ExportFile, cfg.Enrollment.Delimiter)

	valid, msg := enrollment.Validate(catalog, directory)
	if !valid {
		fmt.Println("Invalid state:")
	} else {
		fmt.Println("Passed all tests")
	}
	fmt.Println(msg)

	fmt.Printf("Accepted: %d\n", len(batch.Accepted))
	fmt.Printf("Rejected: %d\n", len(batch.Rejected))
	fmt.Printf("Faulted: %d\n", len(batch.Faulted))
	fmt.Printf("Timer: %f ms\n", float64(end-start)/1000000.0)

	if exportErr != nil {
		logger.Fatal("export failed", zap.Error(exportErr))
	}
	fmt.Println("Exported output to: " + outPath)

	if !valid {
		os.Exit(1)
	}
}
