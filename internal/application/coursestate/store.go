// Package coursestate holds the in-memory course catalog state for a session.
// The store applies mutations optimistically: local state changes first, the
// remote write follows, and a remote failure never rolls the local state back.
package coursestate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/fallback"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// CatalogClient defines what the store needs from the remote record client.
type CatalogClient interface {
	// Available reports whether the client is configured to reach the remote store.
	Available() bool

	// ListCourses fetches the course catalog.
	ListCourses(ctx context.Context) ([]course.Course, error)

	// ListEnrollments fetches the active enrollments for a student.
	ListEnrollments(ctx context.Context, email string) ([]course.Enrollment, error)

	// Enroll creates an enrollment record and returns its remote id.
	Enroll(ctx context.Context, email string, courseID course.ID) (string, error)

	// UpdateProgress patches progress onto an existing enrollment record.
	UpdateProgress(ctx context.Context, enrollmentID string, progress, completedModules int) error
}

// MutationRecord describes one optimistic mutation for the journal.
type MutationRecord struct {
	Operation        string
	CourseID         string
	StudentEmail     string
	Progress         int
	CompletedModules int
	RemoteID         string
	RemoteError      string
	AppliedAt        time.Time
}

// Journal persists optimistic mutations so divergence from the remote store
// can be reconciled later. Implementations must not block mutations on
// journal failures.
type Journal interface {
	RecordMutation(ctx context.Context, rec MutationRecord) error
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// StoreConfig contains the store dependencies.
type StoreConfig struct {
	Client  CatalogClient
	Journal Journal               // optional
	Events  shared.EventPublisher // optional
	Logger  *slog.Logger
}

// Store keeps the merged course list for one student session.
//
// All state transitions run under a single mutex, so concurrent mutations
// serialize and no module-completion increment is lost. Remote writes happen
// outside the lock with values captured during the transition.
type Store struct {
	client  CatalogClient
	journal Journal
	events  shared.EventPublisher
	logger  *slog.Logger

	mu           sync.Mutex
	courses      []course.Course
	enrollments  map[course.ID]string // course id -> remote enrollment id
	email        string
	generation   uint64
	loaded       bool
	usedFallback bool
}

// NewStore creates a new course state store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		client:      cfg.Client,
		journal:     cfg.Journal,
		events:      cfg.Events,
		logger:      cfg.Logger.With(slog.String("component", "coursestate")),
		enrollments: make(map[course.ID]string),
	}
}

// Bind switches the store to a new student session. The current course list
// stays visible until the next Load replaces it; any Load in flight for the
// previous session is discarded when it completes.
func (s *Store) Bind(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.email == email {
		return
	}
	s.email = email
	s.generation++
	s.enrollments = make(map[course.ID]string)
	s.loaded = false
}

// Email returns the bound student email.
func (s *Store) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// UsedFallback reports whether the current course list came from the static
// sample catalog instead of the remote store.
func (s *Store) UsedFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedFallback
}

// Courses returns a deep copy of the current course list.
func (s *Store) Courses() []course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCourses(s.courses)
}

// Course returns a copy of one course by id.
func (s *Store) Course(id course.ID) (course.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			return s.courses[i].Clone(), true
		}
	}
	return course.Course{}, false
}

// EnrolledCourses returns copies of the courses the student is enrolled in.
func (s *Store) EnrolledCourses() []course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]course.Course, 0, len(s.courses))
	for i := range s.courses {
		if s.courses[i].Enrolled {
			out = append(out, s.courses[i].Clone())
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LOAD
// ══════════════════════════════════════════════════════════════════════════════

// Load refreshes the course list from the remote store.
//
// Courses and enrollments are fetched concurrently, and the merge only runs
// once both results are in. An enrollment failure degrades to an empty
// enrollment list, so a fetched catalog is always committed. Only a course
// fetch failure keeps the previous list; if nothing was ever loaded the
// static sample catalog is substituted. Load therefore never leaves the
// store empty and never returns an error to the caller's render path.
func (s *Store) Load(ctx context.Context) []course.Course {
	s.mu.Lock()
	email := s.email
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()

	courses, enrollments, err := s.fetch(ctx, email)
	if err != nil {
		s.logger.Warn("catalog fetch failed, serving local state",
			slog.String("email", email),
			slog.String("error", err.Error()))
		return s.commitFallback(gen, email, start)
	}

	merged, enrollMap := merge(courses, enrollments, email)

	s.mu.Lock()
	if s.generation != gen {
		// A newer session took over while this fetch was in flight.
		out := cloneCourses(s.courses)
		s.mu.Unlock()
		return out
	}
	s.courses = merged
	s.enrollments = enrollMap
	s.loaded = true
	s.usedFallback = false
	out := cloneCourses(s.courses)
	enrolled := countEnrolled(s.courses)
	s.mu.Unlock()

	s.publish(shared.NewCatalogSyncedEvent(email, len(merged), enrolled, false, time.Since(start)))
	return out
}

// fetch retrieves courses and enrollments in parallel.
func (s *Store) fetch(ctx context.Context, email string) ([]course.Course, []course.Enrollment, error) {
	if s.client == nil || !s.client.Available() {
		return nil, nil, shared.ErrRecordStoreUnavailable
	}

	var (
		wg          sync.WaitGroup
		courses     []course.Course
		enrollments []course.Enrollment
		courseErr   error
		enrollErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		courses, courseErr = s.client.ListCourses(ctx)
	}()
	go func() {
		defer wg.Done()
		enrollments, enrollErr = s.client.ListEnrollments(ctx, email)
	}()
	wg.Wait()

	if courseErr != nil {
		return nil, nil, fmt.Errorf("list courses: %w", courseErr)
	}
	// An enrollment failure does not invalidate the fetched catalog: the
	// merge proceeds with no enrollments and the list stays unenriched.
	if enrollErr != nil {
		s.logger.Warn("enrollment fetch failed, merging catalog without enrollments",
			slog.String("email", email),
			slog.String("error", enrollErr.Error()))
		return courses, nil, nil
	}
	return courses, enrollments, nil
}

// commitFallback keeps the previous list, or installs the sample catalog when
// the store has never been populated for this session.
func (s *Store) commitFallback(gen uint64, email string, start time.Time) []course.Course {
	s.mu.Lock()
	if s.generation != gen {
		out := cloneCourses(s.courses)
		s.mu.Unlock()
		return out
	}
	if !s.loaded {
		s.courses = fallback.Courses()
		s.enrollments = make(map[course.ID]string)
		s.loaded = true
		s.usedFallback = true
	}
	out := cloneCourses(s.courses)
	enrolled := countEnrolled(s.courses)
	usedFallback := s.usedFallback
	s.mu.Unlock()

	s.publish(shared.NewCatalogSyncedEvent(email, len(out), enrolled, usedFallback, time.Since(start)))
	return out
}

// merge overlays enrollment records onto the fetched catalog. Courses with an
// active enrollment for the student become enrolled with the recorded
// progress; everything else keeps its catalog defaults.
func merge(courses []course.Course, enrollments []course.Enrollment, email string) ([]course.Course, map[course.ID]string) {
	enrollMap := make(map[course.ID]string, len(enrollments))
	byCourse := make(map[course.ID]course.Enrollment, len(enrollments))
	for _, e := range enrollments {
		if !e.Active {
			continue
		}
		if e.StudentEmail != "" && e.StudentEmail != email {
			continue
		}
		byCourse[e.CourseID] = e
		enrollMap[e.CourseID] = e.ID
	}

	merged := make([]course.Course, len(courses))
	for i := range courses {
		c := courses[i].Clone()
		if e, ok := byCourse[c.ID]; ok {
			c.ApplyEnrollment(e.Progress, e.CompletedModules)
		}
		merged[i] = c
	}
	return merged, enrollMap
}

// ══════════════════════════════════════════════════════════════════════════════
// MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Enroll marks the course as enrolled with zeroed progress, then creates the
// remote enrollment record. Enrolling in an already-enrolled course is a
// no-op. A remote failure leaves the local enrollment in place.
func (s *Store) Enroll(ctx context.Context, id course.ID) (course.Course, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return course.Course{}, shared.ErrCourseNotFound
	}
	if !s.courses[idx].Enroll() {
		out := s.courses[idx].Clone()
		s.mu.Unlock()
		return out, nil
	}
	email := s.email
	gen := s.generation
	out := s.courses[idx].Clone()
	s.mu.Unlock()

	rec := MutationRecord{
		Operation:    "enroll",
		CourseID:     string(id),
		StudentEmail: email,
		AppliedAt:    time.Now().UTC(),
	}

	if s.client != nil && s.client.Available() {
		remoteID, err := s.client.Enroll(ctx, email, id)
		if err != nil {
			rec.RemoteError = err.Error()
			s.logger.Warn("remote enroll failed, keeping local enrollment",
				slog.String("course_id", string(id)),
				slog.String("error", err.Error()))
		} else {
			rec.RemoteID = remoteID
			s.mu.Lock()
			if s.generation == gen {
				s.enrollments[id] = remoteID
			}
			s.mu.Unlock()
		}
	}

	s.record(ctx, rec)

	ev := shared.NewCourseEnrolledEvent(string(id), email)
	ev.EnrollmentID = rec.RemoteID
	s.publish(ev)

	return out, nil
}

// MarkModuleComplete advances the completed module counter by one, capped at
// the module total, and recomputes progress. At the ceiling the call changes
// nothing and skips the remote write. The remote patch targets the known
// enrollment record; without one the change stays local only.
func (s *Store) MarkModuleComplete(ctx context.Context, id course.ID) (course.Course, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return course.Course{}, shared.ErrCourseNotFound
	}
	changed := s.courses[idx].CompleteModule()
	out := s.courses[idx].Clone()
	email := s.email
	enrollmentID := s.enrollments[id]
	s.mu.Unlock()

	if !changed {
		return out, nil
	}

	rec := MutationRecord{
		Operation:        "complete_module",
		CourseID:         string(id),
		StudentEmail:     email,
		Progress:         out.Progress,
		CompletedModules: out.CompletedModules,
		RemoteID:         enrollmentID,
		AppliedAt:        time.Now().UTC(),
	}

	if enrollmentID != "" && s.client != nil && s.client.Available() {
		if err := s.client.UpdateProgress(ctx, enrollmentID, out.Progress, out.CompletedModules); err != nil {
			rec.RemoteError = err.Error()
			s.logger.Warn("remote progress update failed, keeping local state",
				slog.String("course_id", string(id)),
				slog.String("enrollment_id", enrollmentID),
				slog.String("error", err.Error()))
		}
	}

	s.record(ctx, rec)
	s.publish(shared.NewModuleCompletedEvent(string(id), email, out.CompletedModules, out.TotalModules, out.Progress))

	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNAL
// ══════════════════════════════════════════════════════════════════════════════

// indexOf finds a course position. Caller must hold the mutex.
func (s *Store) indexOf(id course.ID) int {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) publish(event shared.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Warn("event publish failed",
			slog.String("event_type", string(event.EventType())),
			slog.String("error", err.Error()))
	}
}

func (s *Store) record(ctx context.Context, rec MutationRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordMutation(ctx, rec); err != nil {
		s.logger.Warn("journal write failed",
			slog.String("operation", rec.Operation),
			slog.String("course_id", rec.CourseID),
			slog.String("error", err.Error()))
	}
}

func cloneCourses(in []course.Course) []course.Course {
	out := make([]course.Course, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func countEnrolled(in []course.Course) int {
	n := 0
	for i := range in {
		if in[i].Enrolled {
			n++
		}
	}
	return n
}
