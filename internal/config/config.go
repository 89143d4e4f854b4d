// Package config builds the program configuration from the environment and
// sets up logging for the commands.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rhyrak/go-enroll/internal/enrollment"
)

type Config struct {
	Enrollment  *enrollment.Configuration
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string
}

// Load starts from enrollment.NewDefaultConfiguration and applies the
// ENROLL_* overrides. ENROLL_DATA_DIR relocates every data file at once.
func Load() (*Config, error) {
	cfg := &Config{Enrollment: enrollment.NewDefaultConfiguration()}
	e := cfg.Enrollment

	if dir := getEnv("ENROLL_DATA_DIR", ""); dir != "" {
		e.ClassesPerCourseFile = filepath.Join(dir, "classes_per_uc.csv")
		e.ClassesFile = filepath.Join(dir, "classes.csv")
		e.StudentsFile = filepath.Join(dir, "students_classes.csv")
		e.RequestsFile = filepath.Join(dir, "requests.csv")
		e.ExportFile = filepath.Join(dir, "students_classes.csv")
	}
	e.ClassesPerCourseFile = getEnv("ENROLL_CLASSES_PER_UC_FILE", e.ClassesPerCourseFile)
	e.ClassesFile = getEnv("ENROLL_CLASSES_FILE", e.ClassesFile)
	e.StudentsFile = getEnv("ENROLL_STUDENTS_FILE", e.StudentsFile)
	e.RequestsFile = getEnv("ENROLL_REQUESTS_FILE", e.RequestsFile)
	e.ExportFile = getEnv("ENROLL_EXPORT_FILE", e.ExportFile)

	var err error
	if e.Delimiter, err = getEnvRune("ENROLL_DELIMITER", e.Delimiter); err != nil {
		return nil, err
	}
	if e.SpreadLimit, err = getEnvInt("ENROLL_SPREAD_LIMIT", e.SpreadLimit); err != nil {
		return nil, err
	}
	if e.CeilingDivisor, err = getEnvInt("ENROLL_CEILING_DIVISOR", e.CeilingDivisor); err != nil {
		return nil, err
	}
	if e.CeilingDivisor <= 0 {
		return nil, &configError{message: "ENROLL_CEILING_DIVISOR must be positive"}
	}
	if e.CeilingBase, err = getEnvInt("ENROLL_CEILING_BASE", e.CeilingBase); err != nil {
		return nil, err
	}
	if e.StopOnIntegrityError, err = getEnvBool("ENROLL_STOP_ON_INTEGRITY_ERROR", e.StopOnIntegrityError); err != nil {
		return nil, err
	}
	if e.ValidateBeforeBatch, err = getEnvBool("ENROLL_VALIDATE_BEFORE_BATCH", e.ValidateBeforeBatch); err != nil {
		return nil, err
	}

	cfg.HTTPAddr = getEnv("ENROLL_HTTP_ADDR", ":3001")
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	return cfg, nil
}

// NewLogger returns a development logger for "debug" and a production
// logger at the given level otherwise.
func NewLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, &configError{message: "invalid LOG_LEVEL: " + err.Error()}
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, &configError{message: "invalid int for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, &configError{message: "invalid bool for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

func getEnvRune(key string, fallback rune) (rune, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, &configError{message: key + " must be a single character"}
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

var _ error = (*configError)(nil)
