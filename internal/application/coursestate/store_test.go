package coursestate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// fakeClient is a scripted CatalogClient for store tests.
type fakeClient struct {
	mu sync.Mutex

	available     bool
	courses       []course.Course
	enrollments   []course.Enrollment
	listErr       error
	enrollListErr error
	enrollErr     error
	updateErr     error

	enrollCalls  int
	updateCalls  int
	lastProgress int
	lastModules  int
}

func (f *fakeClient) Available() bool { return f.available }

func (f *fakeClient) ListCourses(ctx context.Context) ([]course.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]course.Course, len(f.courses))
	for i := range f.courses {
		out[i] = f.courses[i].Clone()
	}
	return out, nil
}

func (f *fakeClient) ListEnrollments(ctx context.Context, email string) ([]course.Enrollment, error) {
	if f.enrollListErr != nil {
		return nil, f.enrollListErr
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.enrollments, nil
}

func (f *fakeClient) Enroll(ctx context.Context, email string, courseID course.ID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollCalls++
	if f.enrollErr != nil {
		return "", f.enrollErr
	}
	return "e-remote", nil
}

func (f *fakeClient) UpdateProgress(ctx context.Context, enrollmentID string, progress, completedModules int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastProgress = progress
	f.lastModules = completedModules
	return f.updateErr
}

func catalogFixture() []course.Course {
	return []course.Course{
		{ID: "c1", Title: "Advanced Data Structures", TotalModules: 12},
		{ID: "c2", Title: "UX/UI Design Systems", TotalModules: 8},
		{ID: "c3", Title: "AI Ethics & Compliance", TotalModules: 5},
	}
}

func newTestStore(client CatalogClient) *Store {
	s := NewStore(StoreConfig{Client: client})
	s.Bind("alex.rivera@snapx.edu")
	return s
}

func TestLoadMergesEnrollments(t *testing.T) {
	client := &fakeClient{
		available: true,
		courses:   catalogFixture(),
		enrollments: []course.Enrollment{
			{ID: "e1", CourseID: "c1", StudentEmail: "alex.rivera@snapx.edu", Progress: 65, CompletedModules: 8, Active: true},
			{ID: "e2", CourseID: "c2", StudentEmail: "someone.else@snapx.edu", Progress: 50, CompletedModules: 4, Active: true},
			{ID: "e3", CourseID: "c3", StudentEmail: "alex.rivera@snapx.edu", Progress: 20, CompletedModules: 1, Active: false},
		},
	}
	s := newTestStore(client)

	courses := s.Load(context.Background())
	require.Len(t, courses, 3)

	assert.True(t, courses[0].Enrolled)
	assert.Equal(t, 65, courses[0].Progress)
	assert.Equal(t, 8, courses[0].CompletedModules)

	// Other students' and inactive enrollments do not apply.
	assert.False(t, courses[1].Enrolled)
	assert.False(t, courses[2].Enrolled)
	assert.False(t, s.UsedFallback())
}

func TestLoadFallsBackToSamplesWhenUnavailable(t *testing.T) {
	s := newTestStore(&fakeClient{available: false})

	courses := s.Load(context.Background())

	require.NotEmpty(t, courses)
	assert.True(t, s.UsedFallback())
}

func TestLoadFallsBackToSamplesOnError(t *testing.T) {
	s := newTestStore(&fakeClient{available: true, listErr: errors.New("boom")})

	courses := s.Load(context.Background())

	require.NotEmpty(t, courses)
	assert.True(t, s.UsedFallback())
}

func TestLoadCommitsCatalogWhenEnrollmentsFail(t *testing.T) {
	client := &fakeClient{
		available: true,
		courses: []course.Course{
			{ID: "remote-1", Title: "Distributed Systems", TotalModules: 10},
		},
		enrollments: []course.Enrollment{
			{ID: "e1", CourseID: "remote-1", StudentEmail: "alex.rivera@snapx.edu", Progress: 40, CompletedModules: 4, Active: true},
		},
		enrollListErr: errors.New("enrollment table unreachable"),
	}
	s := newTestStore(client)

	courses := s.Load(context.Background())

	// The fetched catalog is served unenriched, not the sample set.
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID("remote-1"), courses[0].ID)
	assert.False(t, courses[0].Enrolled)
	assert.Equal(t, 0, courses[0].Progress)
	assert.False(t, s.UsedFallback())
}

func TestLoadKeepsPreviousListOnError(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture()}
	s := newTestStore(client)
	first := s.Load(context.Background())
	require.Len(t, first, 3)

	client.listErr = errors.New("gateway timeout")
	second := s.Load(context.Background())

	assert.Equal(t, first, second)
	assert.False(t, s.UsedFallback())
}

func TestEnrollIsOptimistic(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture()}
	s := newTestStore(client)
	s.Load(context.Background())

	c, err := s.Enroll(context.Background(), "c2")
	require.NoError(t, err)

	assert.True(t, c.Enrolled)
	assert.Equal(t, 0, c.Progress)
	assert.Equal(t, 0, c.CompletedModules)
	assert.Equal(t, 1, client.enrollCalls)
}

func TestEnrollTwiceIsNoOp(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture()}
	s := newTestStore(client)
	s.Load(context.Background())

	_, err := s.Enroll(context.Background(), "c2")
	require.NoError(t, err)
	_, err = s.MarkModuleComplete(context.Background(), "c2")
	require.NoError(t, err)

	c, err := s.Enroll(context.Background(), "c2")
	require.NoError(t, err)

	assert.True(t, c.Enrolled)
	assert.Equal(t, 1, c.CompletedModules)
	assert.Equal(t, 1, client.enrollCalls, "second enroll must not hit the remote store")
}

func TestEnrollUnknownCourse(t *testing.T) {
	s := newTestStore(&fakeClient{available: true, courses: catalogFixture()})
	s.Load(context.Background())

	_, err := s.Enroll(context.Background(), "nope")
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestEnrollKeepsLocalStateOnRemoteFailure(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture(), enrollErr: errors.New("503")}
	s := newTestStore(client)
	s.Load(context.Background())

	c, err := s.Enroll(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, c.Enrolled)

	got, ok := s.Course("c1")
	require.True(t, ok)
	assert.True(t, got.Enrolled, "remote failure must not roll back the enrollment")
}

func TestMarkModuleCompleteRecomputesProgress(t *testing.T) {
	client := &fakeClient{
		available: true,
		courses:   catalogFixture(),
		enrollments: []course.Enrollment{
			{ID: "e1", CourseID: "c1", StudentEmail: "alex.rivera@snapx.edu", Progress: 58, CompletedModules: 7, Active: true},
		},
	}
	s := newTestStore(client)
	s.Load(context.Background())

	c, err := s.MarkModuleComplete(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 8, c.CompletedModules)
	assert.Equal(t, 67, c.Progress) // round(8/12*100)
	assert.Equal(t, 1, client.updateCalls)
	assert.Equal(t, 67, client.lastProgress)
	assert.Equal(t, 8, client.lastModules)
}

func TestMarkModuleCompleteAtCeiling(t *testing.T) {
	client := &fakeClient{
		available: true,
		courses:   catalogFixture(),
		enrollments: []course.Enrollment{
			{ID: "e3", CourseID: "c3", StudentEmail: "alex.rivera@snapx.edu", Progress: 100, CompletedModules: 5, Active: true},
		},
	}
	s := newTestStore(client)
	s.Load(context.Background())

	c, err := s.MarkModuleComplete(context.Background(), "c3")
	require.NoError(t, err)

	assert.Equal(t, 5, c.CompletedModules)
	assert.Equal(t, 100, c.Progress)
	assert.Equal(t, 0, client.updateCalls, "ceiling completion must not patch the remote record")
}

func TestMarkModuleCompleteWithoutEnrollmentRecordStaysLocal(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture(), enrollErr: errors.New("down")}
	s := newTestStore(client)
	s.Load(context.Background())

	// Enrollment exists only locally; there is no remote record id to patch.
	_, err := s.Enroll(context.Background(), "c2")
	require.NoError(t, err)

	c, err := s.MarkModuleComplete(context.Background(), "c2")
	require.NoError(t, err)

	assert.Equal(t, 1, c.CompletedModules)
	assert.Equal(t, 13, c.Progress) // round(1/8*100)
	assert.Equal(t, 0, client.updateCalls)
}

func TestConcurrentCompletionsLoseNothing(t *testing.T) {
	client := &fakeClient{
		available: true,
		courses:   []course.Course{{ID: "big", Title: "Big Course", TotalModules: 200}},
		enrollments: []course.Enrollment{
			{ID: "e1", CourseID: "big", StudentEmail: "alex.rivera@snapx.edu", Active: true},
		},
	}
	s := newTestStore(client)
	s.Load(context.Background())

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.MarkModuleComplete(context.Background(), "big")
		}()
	}
	wg.Wait()

	c, ok := s.Course("big")
	require.True(t, ok)
	assert.Equal(t, workers, c.CompletedModules)
	assert.Equal(t, 25, c.Progress) // round(50/200*100)
}

func TestBindPreservesCourseListUntilNextLoad(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture()}
	s := newTestStore(client)
	s.Load(context.Background())

	s.Bind("sarah.chen@snapx.edu")

	assert.Len(t, s.Courses(), 3, "switching sessions must not blank the visible list")
	assert.Equal(t, "sarah.chen@snapx.edu", s.Email())
}

func TestEventsPublishedOnMutations(t *testing.T) {
	client := &fakeClient{available: true, courses: catalogFixture()}
	pub := &capturePublisher{}
	s := NewStore(StoreConfig{Client: client, Events: pub})
	s.Bind("alex.rivera@snapx.edu")
	s.Load(context.Background())

	_, err := s.Enroll(context.Background(), "c1")
	require.NoError(t, err)
	_, err = s.MarkModuleComplete(context.Background(), "c1")
	require.NoError(t, err)

	types := pub.types()
	assert.Contains(t, types, shared.EventCatalogSynced)
	assert.Contains(t, types, shared.EventCourseEnrolled)
	assert.Contains(t, types, shared.EventModuleCompleted)
}

// capturePublisher records published event types.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
