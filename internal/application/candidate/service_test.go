package candidate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/recruit-notes/internal/application/notification"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCandidateStore struct{ mock.Mock }

func (m *mockCandidateStore) Put(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCandidateStore) Get(ctx context.Context, candidateID string) (*domain.Candidate, error) {
	args := m.Called(ctx, candidateID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Candidate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCandidateStore) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	args := m.Called(ctx, email)
	if c := args.Get(0); c != nil {
		return c.(*domain.Candidate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCandidateStore) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *mockCandidateStore) Update(ctx context.Context, candidateID string, req domain.UpdateCandidateRequest) error {
	return m.Called(ctx, candidateID, req).Error(0)
}

func (m *mockCandidateStore) SetResumeKey(ctx context.Context, candidateID, key string) error {
	return m.Called(ctx, candidateID, key).Error(0)
}

func (m *mockCandidateStore) Delete(ctx context.Context, candidateID string) error {
	return m.Called(ctx, candidateID).Error(0)
}

type mockBroadcaster struct{ mock.Mock }

func (m *mockBroadcaster) NotifyCandidateCreated(ctx context.Context, c domain.Candidate, creator domain.User) notification.Result {
	return m.Called(ctx, c, creator).Get(0).(notification.Result)
}

type mockResumes struct{ mock.Mock }

func (m *mockResumes) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	return m.Called(ctx, key, r, contentType).Error(0)
}

func (m *mockResumes) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockResumes) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var (
	notFound = fmt.Errorf("candidate not found: %w", domain.ErrNotFound)
	creator  = domain.User{UserID: "u1", Name: "Alice", Email: "alice@corp.test"}
)

type fixture struct {
	repo    *mockCandidateStore
	fanout  *mockBroadcaster
	resumes *mockResumes
	cache   *cache.Memory
	svc     *service
}

func newFixture() *fixture {
	f := &fixture{
		repo:    &mockCandidateStore{},
		fanout:  &mockBroadcaster{},
		resumes: &mockResumes{},
		cache:   cache.NewMemory(),
	}
	f.svc = NewService(ServiceDeps{
		CandidateRepo: f.repo,
		Fanout:        f.fanout,
		Resumes:       f.resumes,
		Cache:         f.cache,
	}).(*service)
	f.svc.async = func(fn func()) { fn() }
	return f
}

func strPtr(s string) *string { return &s }

func TestCreate_DefaultsToPendingAndBroadcasts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("GetByEmail", ctx, "jane@example.com").Return(nil, notFound)
	f.repo.On("Put", ctx, mock.AnythingOfType("*domain.Candidate")).Return(nil)
	f.fanout.On("NotifyCandidateCreated", mock.Anything, mock.AnythingOfType("domain.Candidate"), creator).
		Return(notification.Result{Sent: 3})
	f.cache.SetJSON(ctx, cache.CandidateListKey("u2"), []domain.Candidate{}, time.Minute)

	c, err := f.svc.Create(ctx, creator, domain.CreateCandidateRequest{Name: "  Jane Doe ", Email: "Jane@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, domain.CandidatePending, c.Status)
	assert.Equal(t, "u1", c.CreatedBy)
	assert.NotEmpty(t, c.CandidateID)

	var stale []domain.Candidate
	assert.False(t, f.cache.GetJSON(ctx, cache.CandidateListKey("u2"), &stale))
	activity := f.cache.RecentActivity(ctx, "u1", 10)
	require.Len(t, activity, 1)
	assert.Equal(t, "candidate_created", activity[0].Action)
	f.repo.AssertExpectations(t)
	f.fanout.AssertExpectations(t)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("GetByEmail", ctx, "jane@example.com").Return(&domain.Candidate{CandidateID: "c9"}, nil)

	_, err := f.svc.Create(ctx, creator, domain.CreateCandidateRequest{Name: "Jane", Email: "jane@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, creator, domain.CreateCandidateRequest{Name: "J", Email: "jane@example.com"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = f.svc.Create(ctx, creator, domain.CreateCandidateRequest{Name: "Jane", Email: "jane@example.com", Status: "ghosted"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	f.repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestList_FiltersAndSortsNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.repo.On("ListAll", ctx).Return([]domain.Candidate{
		{CandidateID: "c1", Name: "Old Go Dev", Email: "a@x.test", CreatedAt: base},
		{CandidateID: "c2", Name: "Designer", Email: "b@x.test", Position: strPtr("Golang Engineer"), CreatedAt: base.Add(time.Hour)},
		{CandidateID: "c3", Name: "Chef", Email: "c@x.test", CreatedAt: base.Add(2 * time.Hour)},
	}, nil).Once()

	all, err := f.svc.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c3", "c2", "c1"}, []string{all[0].CandidateID, all[1].CandidateID, all[2].CandidateID})

	f.repo.On("ListAll", ctx).Return([]domain.Candidate{
		{CandidateID: "c1", Name: "Old Go Dev", Email: "a@x.test", CreatedAt: base},
		{CandidateID: "c2", Name: "Designer", Email: "b@x.test", Position: strPtr("Golang Engineer"), CreatedAt: base.Add(time.Hour)},
	}, nil).Once()
	found, err := f.svc.List(ctx, "u1", " GO ")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "c2", found[0].CandidateID)

	// served from cache
	again, err := f.svc.List(ctx, "u1", "go")
	require.NoError(t, err)
	assert.Len(t, again, 2)
	f.repo.AssertNumberOfCalls(t, "ListAll", 2)
}

func TestGet_CachesCandidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("Get", ctx, "c1").Return(&domain.Candidate{CandidateID: "c1", Name: "Jane"}, nil).Once()

	for i := 0; i < 2; i++ {
		c, err := f.svc.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Jane", c.Name)
	}
	f.repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("Get", ctx, "nope").Return(nil, notFound)

	_, err := f.svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_EmailTakenByAnother(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("GetByEmail", ctx, "taken@x.test").Return(&domain.Candidate{CandidateID: "c2"}, nil)

	_, err := f.svc.Update(ctx, creator, "c1", domain.UpdateCandidateRequest{Email: strPtr("Taken@x.test")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_KeepsOwnEmailAndInvalidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	status := domain.CandidateHired
	req := domain.UpdateCandidateRequest{Email: strPtr("jane@x.test"), Status: &status}
	f.repo.On("GetByEmail", ctx, "jane@x.test").Return(&domain.Candidate{CandidateID: "c1"}, nil)
	f.repo.On("Update", ctx, "c1", req).Return(nil)
	f.repo.On("Get", ctx, "c1").Return(&domain.Candidate{CandidateID: "c1", Status: status}, nil)
	f.cache.SetJSON(ctx, cache.CandidateKey("c1"), domain.Candidate{CandidateID: "c1"}, time.Minute)

	c, err := f.svc.Update(ctx, creator, "c1", req)
	require.NoError(t, err)
	assert.Equal(t, domain.CandidateHired, c.Status)
	var cached domain.Candidate
	assert.False(t, f.cache.GetJSON(ctx, cache.CandidateKey("c1"), &cached))
}

func TestUpdate_InvalidStatus(t *testing.T) {
	f := newFixture()
	status := domain.CandidateStatus("ghosted")

	_, err := f.svc.Update(context.Background(), creator, "c1", domain.UpdateCandidateRequest{Status: &status})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestDelete_RemovesResumeObject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("Get", ctx, "c1").Return(&domain.Candidate{CandidateID: "c1", ResumeKey: strPtr("resumes/c1/x/cv.pdf")}, nil)
	f.repo.On("Delete", ctx, "c1").Return(nil)
	f.resumes.On("Delete", ctx, "resumes/c1/x/cv.pdf").Return(errors.New("access denied"))

	require.NoError(t, f.svc.Delete(ctx, creator, "c1"))
	f.resumes.AssertExpectations(t)
}

func TestUploadResume_ReplacesPrevious(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	body := strings.NewReader("%PDF-1.7")
	f.repo.On("Get", ctx, "c1").Return(&domain.Candidate{CandidateID: "c1", ResumeKey: strPtr("old")}, nil)
	f.resumes.On("Upload", ctx, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "resumes/c1/") }), body, "application/pdf").Return(nil)
	f.repo.On("SetResumeKey", ctx, "c1", mock.AnythingOfType("string")).Return(nil)
	f.resumes.On("Delete", ctx, "old").Return(nil)

	c, err := f.svc.UploadResume(ctx, "c1", "cv.pdf", "application/pdf", body)
	require.NoError(t, err)
	require.NotNil(t, c.ResumeKey)
	assert.True(t, strings.HasSuffix(*c.ResumeKey, ".pdf"))
	f.resumes.AssertExpectations(t)
}

func TestResumeURL_NoResume(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("Get", ctx, "c1").Return(&domain.Candidate{CandidateID: "c1"}, nil)

	_, err := f.svc.ResumeURL(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResumeURL_Unconfigured(t *testing.T) {
	svc := NewService(ServiceDeps{CandidateRepo: &mockCandidateStore{}})

	_, err := svc.ResumeURL(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
