package main

import (
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/internal/csvio"
	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/internal/store"
	"github.com/rhyrak/go-enroll/pkg/model"
)

// server serializes every engine mutation behind mu. Reads share the lock,
// so they only ever see the state between two batches.
type server struct {
	mu     sync.RWMutex
	engine *enrollment.Engine
	store  *store.EnrollmentStore
	cfg    *enrollment.Configuration
	logger *zap.Logger
}

type slotView struct {
	Weekday string          `json:"weekday"`
	Start   decimal.Decimal `json:"start"`
	End     decimal.Decimal `json:"end"`
	Type    string          `json:"type"`
}

type sectionView struct {
	CourseID   string     `json:"course_id"`
	SectionID  string     `json:"section_id"`
	RosterSize int        `json:"roster_size"`
	Slots      []slotView `json:"slots"`
}

type submitRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	SectionID string `json:"section_id"`
}

type faultView struct {
	Request model.Request `json:"request"`
	Error   string        `json:"error"`
}

func viewSection(cs *enrollment.ClassSection) sectionView {
	v := sectionView{
		CourseID:   cs.ID().CourseID,
		SectionID:  cs.ID().SectionID,
		RosterSize: cs.RosterSize(),
		Slots:      []slotView{},
	}
	for _, s := range cs.Slots() {
		v.Slots = append(v.Slots, slotView{Weekday: s.Weekday().String(), Start: s.Start(), End: s.End(), Type: s.Category()})
	}
	return v
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/students/:id", s.handleGetStudent)
	r.GET("/courses/:id", s.handleGetCourse)
	r.GET("/courses/:id/students", s.handleGetCourseStudents)
	r.POST("/requests", s.handlePostRequest)
	r.GET("/requests/pending", s.handleGetPending)
	r.GET("/requests/accepted", s.handleGetAccepted)
	r.GET("/requests/rejected", s.handleGetRejected)
	r.POST("/requests/process", s.handleProcess)
	r.GET("/enrollments", s.handleGetEnrollments)
	r.POST("/enrollments/save", s.handleSave)
	return r
}

func (s *server) handleGetStudent(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, err := s.engine.Directory().Lookup(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	classes := []sectionView{}
	for _, id := range student.Classes() {
		cs, err := s.engine.Catalog().Lookup(id)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		classes = append(classes, viewSection(cs))
	}
	var schedule strings.Builder
	if err := csvio.PrintStudentSchedule(&schedule, s.engine.Catalog(), s.engine.Directory(), student.ID()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":       student.ID(),
		"name":     student.Name(),
		"classes":  classes,
		"schedule": schedule.String(),
	})
}

func (s *server) handleGetCourse(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := s.engine.Catalog().SectionsOfCourse(ctx.Param("id"))
	if len(sections) == 0 {
		ctx.Status(http.StatusNotFound)
		return
	}
	views := make([]sectionView, 0, len(sections))
	for _, cs := range sections {
		views = append(views, viewSection(cs))
	}
	ctx.JSON(http.StatusOK, gin.H{"sections": views})
}

func (s *server) handleGetCourseStudents(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courseID := ctx.Param("id")
	if len(s.engine.Catalog().SectionsOfCourse(courseID)) == 0 {
		ctx.Status(http.StatusNotFound)
		return
	}
	type studentView struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		SectionID string `json:"section_id"`
	}
	students := []studentView{}
	for _, st := range s.engine.Directory().StudentsOfCourse(courseID) {
		class, _ := st.ClassOf(courseID)
		students = append(students, studentView{ID: st.ID(), Name: st.Name(), SectionID: class.SectionID})
	}
	ctx.JSON(http.StatusOK, gin.H{"students": students})
}

func (s *server) handlePostRequest(ctx *gin.Context) {
	var body submitRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.StudentID == "" || body.CourseID == "" || body.SectionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "student_id, course_id and section_id are required"})
		return
	}

	s.mu.Lock()
	req := s.engine.Submit(body.StudentID, model.ClassID{CourseID: body.CourseID, SectionID: body.SectionID})
	s.mu.Unlock()

	ctx.JSON(http.StatusAccepted, gin.H{"request": req})
}

func (s *server) handleGetPending(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx.JSON(http.StatusOK, gin.H{"requests": nonNil(s.engine.Pending())})
}

func (s *server) handleGetAccepted(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx.JSON(http.StatusOK, gin.H{"outcomes": nonNil(s.engine.Accepted())})
}

func (s *server) handleGetRejected(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx.JSON(http.StatusOK, gin.H{"outcomes": nonNil(s.engine.Rejected())})
}

func (s *server) handleProcess(ctx *gin.Context) {
	s.mu.Lock()
	batch, err := s.engine.ProcessAll()
	s.mu.Unlock()

	if batch == nil {
		s.logger.Error("refusing to process on inconsistent state", zap.Error(err))
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	faults := []faultView{}
	for _, f := range batch.Faulted {
		faults = append(faults, faultView{Request: f.Request, Error: f.Err.Error()})
	}
	if s.store != nil {
		decided := slices.Concat(batch.Accepted, batch.Rejected)
		if err := s.store.RecordOutcomes(ctx.Request.Context(), decided); err != nil {
			s.logger.Warn("recording outcomes failed", zap.Error(err))
		}
	}
	s.logger.Info("batch processed",
		zap.Int("accepted", len(batch.Accepted)),
		zap.Int("rejected", len(batch.Rejected)),
		zap.Int("faulted", len(batch.Faulted)))

	ctx.JSON(http.StatusOK, gin.H{
		"accepted": nonNil(batch.Accepted),
		"rejected": nonNil(batch.Rejected),
		"faulted":  faults,
	})
}

func (s *server) handleGetEnrollments(ctx *gin.Context) {
	s.mu.RLock()
	data, err := csvio.ExportEnrollmentsString(s.engine.Directory())
	s.mu.RUnlock()
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(data))
}

// handleSave writes the enrollments to Postgres when configured, otherwise
// to the export file.
func (s *server) handleSave(ctx *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store != nil {
		if err := s.store.Replace(ctx.Request.Context(), csvio.EnrollmentRows(s.engine.Directory())); err != nil {
			s.logger.Error("saving enrollments failed", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"saved": "database"})
		return
	}
	path, err := csvio.ExportEnrollments(s.engine.Directory(), s.cfg.ExportFile, s.cfg.Delimiter)
	if err != nil {
		s.logger.Error("saving enrollments failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"saved": path})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
