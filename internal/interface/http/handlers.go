package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/snapx-edu/academy-hub/internal/application/command"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
	"github.com/snapx-edu/academy-hub/internal/domain/user"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/external/advisor"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "academy-hub",
		"version": "v1",
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": s.Uptime().String(),
	})
}

// handleReady probes every backing service. The dashboard degrades rather
// than fails when a dependency is down, so a degraded report is still 200.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string, len(s.deps.HealthCheckers))
	for name, hc := range s.deps.HealthCheckers {
		if err := hc.Health(ctx); err != nil {
			services[name] = "down"
		} else {
			services[name] = "up"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"services": services,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

type userDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

func toUserDTO(u user.User) userDTO {
	return userDTO{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Avatar: u.Avatar,
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   toUserDTO(s.deps.Session.CurrentUser()),
		"layout": s.deps.Session.WidgetLayout(),
	})
}

func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	u := s.deps.Session.SwitchRole(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(u)})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"layout": s.deps.Session.WidgetLayout()})
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout []string `json:"layout"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	if err := s.deps.Session.SetWidgetLayout(r.Context(), req.Layout); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layout": req.Layout})
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

type courseDTO struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Instructor       string   `json:"instructor"`
	Category         string   `json:"category,omitempty"`
	Description      string   `json:"description,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	NextLesson       string   `json:"next_lesson,omitempty"`
	TotalModules     int      `json:"total_modules"`
	CompletedModules int      `json:"completed_modules"`
	Progress         int      `json:"progress"`
	Enrolled         bool     `json:"enrolled"`
	Recommended      bool     `json:"recommended,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	StudentsEnrolled int      `json:"students_enrolled,omitempty"`
}

func toCourseDTO(c course.Course) courseDTO {
	return courseDTO{
		ID:               c.ID.String(),
		Title:            c.Title,
		Instructor:       c.Instructor,
		Category:         c.Category,
		Description:      c.Description,
		Thumbnail:        c.Thumbnail,
		NextLesson:       c.NextLesson,
		TotalModules:     c.TotalModules,
		CompletedModules: c.CompletedModules,
		Progress:         c.Progress,
		Enrolled:         c.Enrolled,
		Recommended:      c.Recommended,
		Skills:           c.Skills,
		Rating:           c.Rating,
		StudentsEnrolled: c.StudentsEnrolled,
	}
}

func toCourseDTOs(courses []course.Course) []courseDTO {
	dtos := make([]courseDTO, 0, len(courses))
	for _, c := range courses {
		dtos = append(dtos, toCourseDTO(c))
	}
	return dtos
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.deps.Courses.Courses()
	if len(courses) == 0 {
		courses = s.deps.Courses.Load(r.Context())
	}

	writeJSONMeta(w, http.StatusOK, toCourseDTOs(courses), &ResponseMeta{
		TotalCount: len(courses),
		Fallback:   s.deps.Courses.UsedFallback(),
	})
}

func (s *Server) handleRefreshCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.deps.Courses.Load(r.Context())

	writeJSONMeta(w, http.StatusOK, toCourseDTOs(courses), &ResponseMeta{
		TotalCount: len(courses),
		Fallback:   s.deps.Courses.UsedFallback(),
	})
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id := course.ID(r.PathValue("id"))

	enrolled, err := s.deps.Courses.Enroll(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(enrolled))
}

func (s *Server) handleCompleteModule(w http.ResponseWriter, r *http.Request) {
	id := course.ID(r.PathValue("id"))

	updated, err := s.deps.Courses.MarkModuleComplete(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(updated))
}

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR
// ══════════════════════════════════════════════════════════════════════════════

type eventDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	CourseID    string `json:"course_id,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
	When        string `json:"when,omitempty"`
}

func toEventDTO(ev calendar.Event) eventDTO {
	return eventDTO{
		ID:          ev.ID,
		Title:       ev.Title,
		Date:        ev.Date.UTC().Format(time.RFC3339),
		Category:    string(ev.Category),
		CourseID:    ev.CourseID.String(),
		Duration:    ev.Duration,
		Description: ev.Description,
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	email := s.deps.Session.CurrentUser().Email

	if within := getQueryParamInt(r, "within_days", 0); within > 0 {
		upcoming := s.deps.Dashboard.UpcomingEvents(r.Context(), email, within)
		dtos := make([]eventDTO, 0, len(upcoming))
		for _, ev := range upcoming {
			dto := toEventDTO(ev.Event)
			dto.When = ev.When
			dtos = append(dtos, dto)
		}
		writeJSONMeta(w, http.StatusOK, dtos, &ResponseMeta{TotalCount: len(dtos)})
		return
	}

	events := s.deps.Dashboard.ListEvents(r.Context(), email)
	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, toEventDTO(ev))
	}
	writeJSONMeta(w, http.StatusOK, dtos, &ResponseMeta{TotalCount: len(dtos)})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		CourseID    string `json:"course_id"`
		Duration    string `json:"duration"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		date, err = time.Parse(time.RFC3339, req.Date)
	}
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD or RFC 3339")
		return
	}

	result, err := s.deps.CreateEvent.Handle(r.Context(), command.CreateEventCommand{
		Title:       req.Title,
		Date:        date,
		Category:    req.Category,
		CourseID:    req.CourseID,
		Duration:    req.Duration,
		Description: req.Description,
		UserEmail:   s.deps.Session.CurrentUser().Email,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONMeta(w, http.StatusCreated, toEventDTO(result.Event), &ResponseMeta{Local: result.Local})
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENTS, STUDENTS, NUDGES
// ══════════════════════════════════════════════════════════════════════════════

type assessmentDTO struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id,omitempty"`
	Title       string `json:"title"`
	DueDate     string `json:"due_date,omitempty"`
	TotalPoints int    `json:"total_points"`
	AvgScore    int    `json:"avg_score,omitempty"`
	Status      string `json:"status"`
	Questions   int    `json:"questions,omitempty"`
}

func toAssessmentDTO(a assessment.Assessment) assessmentDTO {
	return assessmentDTO{
		ID:          a.ID,
		CourseID:    a.CourseID,
		Title:       a.Title,
		DueDate:     a.DueDate,
		TotalPoints: a.TotalPoints,
		AvgScore:    a.AvgScore,
		Status:      string(a.Status),
		Questions:   a.Questions,
	}
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	assessments := s.deps.Dashboard.ListAssessments(r.Context())
	dtos := make([]assessmentDTO, 0, len(assessments))
	for _, a := range assessments {
		dtos = append(dtos, toAssessmentDTO(a))
	}
	writeJSONMeta(w, http.StatusOK, dtos, &ResponseMeta{TotalCount: len(dtos)})
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID    string `json:"course_id"`
		Title       string `json:"title"`
		DueDate     string `json:"due_date"`
		TotalPoints int    `json:"total_points"`
		Questions   int    `json:"questions"`
		Status      string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	result, err := s.deps.CreateAssessment.Handle(r.Context(), command.CreateAssessmentCommand{
		CourseID:    req.CourseID,
		Title:       req.Title,
		DueDate:     req.DueDate,
		TotalPoints: req.TotalPoints,
		Questions:   req.Questions,
		Status:      req.Status,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONMeta(w, http.StatusCreated, toAssessmentDTO(result.Assessment), &ResponseMeta{Local: result.Local})
}

type studentDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Avatar          string  `json:"avatar,omitempty"`
	GPA             float64 `json:"gpa"`
	Attendance      int     `json:"attendance"`
	MissedDeadlines int     `json:"missed_deadlines"`
	StrongestSkill  string  `json:"strongest_skill,omitempty"`
	WeakestSkill    string  `json:"weakest_skill,omitempty"`
	RecentGrades    []int   `json:"recent_grades,omitempty"`
}

func toStudentDTO(p student.Profile) studentDTO {
	return studentDTO{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Avatar:          p.Avatar,
		GPA:             p.GPA,
		Attendance:      p.Attendance,
		MissedDeadlines: p.MissedDeadlines,
		StrongestSkill:  p.StrongestSkill,
		WeakestSkill:    p.WeakestSkill,
		RecentGrades:    p.RecentGrades,
	}
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students := s.deps.Dashboard.ListStudents(r.Context())
	dtos := make([]studentDTO, 0, len(students))
	for _, p := range students {
		dtos = append(dtos, toStudentDTO(p))
	}
	writeJSONMeta(w, http.StatusOK, dtos, &ResponseMeta{TotalCount: len(dtos)})
}

type nudgeDTO struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
	ActionLink  string `json:"action_link,omitempty"`
}

func toNudgeDTO(n nudge.Nudge) nudgeDTO {
	return nudgeDTO{
		ID:          n.ID,
		Category:    string(n.Category),
		Severity:    string(n.Severity),
		Message:     n.Message,
		Timestamp:   n.Timestamp,
		ActionLabel: n.ActionLabel,
		ActionLink:  n.ActionLink,
	}
}

func (s *Server) handleListNudges(w http.ResponseWriter, r *http.Request) {
	nudges := s.deps.Dashboard.ListNudges(r.Context(), s.deps.Session.CurrentUser().Email)
	dtos := make([]nudgeDTO, 0, len(nudges))
	for _, n := range nudges {
		dtos = append(dtos, toNudgeDTO(n))
	}
	writeJSONMeta(w, http.StatusOK, dtos, &ResponseMeta{TotalCount: len(dtos)})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADVISORY
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleAdvisorConsult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		History []advisor.Message `json:"history"`
		Context string            `json:"context"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	reply, err := s.deps.Advisor.Consult(r.Context(), req.History, req.Context)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleAdvisorGoals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PerformanceSummary string `json:"performance_summary"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	goals, err := s.deps.Advisor.SuggestGoals(r.Context(), req.PerformanceSummary)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// handleAdvisorCompliance audits a study-setup photo and persists the result
// as a compliance record. The audit result is returned even when the record
// store write could only be resolved locally.
func (s *Server) handleAdvisorCompliance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	result, err := s.deps.Advisor.AnalyzeCompliance(r.Context(), req.ImageBase64)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	email := s.deps.Session.CurrentUser().Email
	saved, err := s.deps.SaveRecords.SaveCompliance(r.Context(), email, map[string]any{
		"u_compliant":       result.IsCompliant,
		"u_score":           result.Score,
		"u_recommendations": result.Recommendations,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONMeta(w, http.StatusOK, map[string]any{
		"result": result,
		"ack_id": saved.AckID,
	}, &ResponseMeta{Local: saved.Local})
}

func (s *Server) handleAdvisorReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64  string `json:"image_base64"`
		StudentEmail string `json:"student_email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.StudentEmail == "" {
		req.StudentEmail = s.deps.Session.CurrentUser().Email
	}

	review, err := s.deps.Advisor.ReviewHandwrittenWork(r.Context(), req.ImageBase64)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	saved, err := s.deps.SaveRecords.SaveGrading(r.Context(), req.StudentEmail, map[string]any{
		"u_subject":         review.Subject,
		"u_estimated_grade": review.EstimatedGrade,
		"u_feedback":        review.Feedback,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONMeta(w, http.StatusOK, map[string]any{
		"review": review,
		"ack_id": saved.AckID,
	}, &ResponseMeta{Local: saved.Local})
}

func (s *Server) handleAdvisorCareer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentProfile string `json:"student_profile"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	recs, err := s.deps.Advisor.CareerIntelligence(r.Context(), req.StudentProfile)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleAdvisorIntervention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentData string `json:"student_data"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	plan, err := s.deps.Advisor.GenerateIntervention(r.Context(), req.StudentData)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain error kinds onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		writeJSONError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsUnavailable(err):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		s.logger.Error("unhandled request error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeBody decodes a JSON request body, capped at 8 MB to leave room for
// base64 image payloads on the advisory endpoints.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 8<<20))
	return dec.Decode(dst)
}
