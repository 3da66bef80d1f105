package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/huddle-dev/huddle/internal/app/conn"
	"github.com/huddle-dev/huddle/internal/app/execrelay"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/core/mocks"
	"github.com/huddle-dev/huddle/internal/domain"
)

type memText struct {
	content string
	subs    []func(core.TextDelta)
}

func (m *memText) Apply(d core.TextDelta) error {
	for _, fn := range m.subs {
		fn(d)
	}
	return nil
}

func (m *memText) Snapshot() string { return m.content }

func (m *memText) OnUpdate(fn func(core.TextDelta)) core.Unsubscribe {
	m.subs = append(m.subs, fn)
	return func() {}
}

type memAwareness struct{}

func (memAwareness) Publish(core.AwarenessState) error { return nil }
func (memAwareness) OnUpdate(func(string, *core.AwarenessState)) core.Unsubscribe {
	return func() {}
}

type memDocs struct {
	texts map[domain.SessionName]*memText
}

func (m *memDocs) Text(name domain.SessionName) core.SharedText {
	if m.texts == nil {
		m.texts = make(map[domain.SessionName]*memText)
	}
	t, ok := m.texts[name]
	if !ok {
		t = &memText{}
		m.texts[name] = t
	}
	return t
}

func (m *memDocs) Awareness(domain.SessionName) core.AwarenessChannel { return memAwareness{} }

type memJobs struct {
	saved map[string]*domain.ExecutionJob
}

func (m *memJobs) Save(_ context.Context, job *domain.ExecutionJob) error {
	if m.saved == nil {
		m.saved = make(map[string]*domain.ExecutionJob)
	}
	m.saved[job.Token] = job
	return nil
}

func (m *memJobs) Get(_ context.Context, token string) (*domain.ExecutionJob, error) {
	job, ok := m.saved[token]
	if !ok {
		return nil, core.ErrJobNotFound
	}
	return job, nil
}

type stubSurface struct{}

func (stubSurface) ApplyRemote(core.EditOp) error             { return nil }
func (stubSurface) OnEdit(func(core.EditOp)) core.Unsubscribe { return func() {} }
func (stubSurface) OnSelection(func(core.Selection)) core.Unsubscribe {
	return func() {}
}
func (stubSurface) SetMarker(string, core.Marker) {}
func (stubSurface) ClearMarker(string)            {}
func (stubSurface) SetLanguage(domain.Language)   {}

type testEnv struct {
	coord  *Coordinator
	room   *mocks.MockMediaRoom
	issuer *mocks.MockCredentialIssuer
	svc    *mocks.MockExecutionService
	jobs   *memJobs
}

func newTestEnv(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	env := &testEnv{
		room:   mocks.NewMockMediaRoom(ctrl),
		issuer: mocks.NewMockCredentialIssuer(ctrl),
		svc:    mocks.NewMockExecutionService(ctrl),
		jobs:   &memJobs{},
	}
	rooms := func() core.MediaRoom { return env.room }
	relay := execrelay.New(env.svc, execrelay.WithPollInterval(time.Millisecond))
	env.coord = NewCoordinator(rooms, env.issuer, &memDocs{}, relay, env.jobs)
	return env
}

func (e *testEnv) expectConnect() {
	e.issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	e.room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	e.room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(func() {}))
}

func (e *testEnv) join(t *testing.T) *Handle {
	session, err := domain.NewSession("standup")
	require.NoError(t, err)
	choices, err := domain.NewParticipantChoices("alice", false, false)
	require.NoError(t, err)

	h, err := e.coord.Join(context.Background(), *session, choices)
	require.NoError(t, err)
	return h
}

func TestJoinBindsHandle(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()

	h := env.join(t)

	assert.Equal(t, conn.StateConnected, h.State())
	assert.False(t, h.Encrypted())

	got, ok := env.coord.Handle(h.ID)
	require.True(t, ok)
	assert.Same(t, h, got)
}

func TestJoinFailureBindsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(core.ConnectionDescriptor{}, &core.ConnectionError{Kind: core.CredentialFetchFailed})

	session, err := domain.NewSession("standup")
	require.NoError(t, err)
	choices, err := domain.NewParticipantChoices("alice", false, false)
	require.NoError(t, err)

	h, err := env.coord.Join(context.Background(), *session, choices)

	require.Error(t, err)
	assert.Nil(t, h)
	assert.Empty(t, env.coord.Sessions())
}

func TestLeaveUnbindsAndDetaches(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	env.room.EXPECT().Disconnect()

	h := env.join(t)
	_, err := env.coord.AttachDocument(h, stubSurface{})
	require.NoError(t, err)

	env.coord.Leave(h)

	_, ok := env.coord.Handle(h.ID)
	assert.False(t, ok)
	assert.Empty(t, env.coord.Sessions())
}

func TestAttachDocumentConflict(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	_, err := env.coord.AttachDocument(h, stubSurface{})
	require.NoError(t, err)

	_, err = env.coord.AttachDocument(h, stubSurface{})
	var syncErr *core.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, core.AttachConflict, syncErr.Kind)
}

func TestAttachDocumentConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	for i := 0; i < 200; i++ {
		// Distinct surface identities, so only the handle slot can
		// arbitrate.
		surfaces := []core.EditorSurface{new(stubSurface), new(stubSurface)}
		errs := make([]error, len(surfaces))
		var wg sync.WaitGroup
		for j := range surfaces {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				_, errs[j] = env.coord.AttachDocument(h, surfaces[j])
			}(j)
		}
		wg.Wait()

		var attached, conflicts int
		for _, err := range errs {
			if err == nil {
				attached++
				continue
			}
			var syncErr *core.SyncError
			require.ErrorAs(t, err, &syncErr)
			assert.Equal(t, core.AttachConflict, syncErr.Kind)
			conflicts++
		}
		require.Equal(t, 1, attached, "iteration %d", i)
		require.Equal(t, 1, conflicts, "iteration %d", i)

		// One detach frees the slot completely; no binding survives from
		// the losing attach.
		env.coord.DetachDocument(h)
		_, err := env.coord.AttachDocument(h, new(stubSurface))
		require.NoError(t, err)
		env.coord.DetachDocument(h)
	}
}

func TestDetachDocumentIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	_, err := env.coord.AttachDocument(h, stubSurface{})
	require.NoError(t, err)

	env.coord.DetachDocument(h)
	env.coord.DetachDocument(h)

	// The slot is free again after detach.
	_, err = env.coord.AttachDocument(h, stubSurface{})
	require.NoError(t, err)
}

func TestRunCodeEmptySource(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	// No Authorized/Submit expectations: blank code never reaches the
	// service.
	job, err := env.coord.RunCode(context.Background(), h, "   \n\t", domain.LangPython)

	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, "No code to execute", job.Stderr)
	assert.Equal(t, 1, job.ExitCode)
}

func TestRunCodePersistsTerminalJob(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	env.svc.EXPECT().Authorized().Return(true)
	env.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return("tok-1", nil)
	env.svc.EXPECT().Result(gomock.Any(), "tok-1").
		Return(core.SubmissionResult{StatusID: core.StatusAccepted, Stdout: "4\n"}, nil)

	job, err := env.coord.RunCode(context.Background(), h, "print(2+2)", domain.LangPython)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSucceeded, job.Status)

	saved, err := env.coord.Job(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Same(t, job, saved)
}

func TestRunCodeRejectsConcurrentRun(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	h := env.join(t)

	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	_, err := env.coord.RunCode(context.Background(), h, "print(1)", domain.LangPython)
	assert.ErrorIs(t, err, ErrRunInFlight)
}

func TestSessionsListsMembers(t *testing.T) {
	env := newTestEnv(t)
	env.expectConnect()
	env.expectConnect()

	session, err := domain.NewSession("standup")
	require.NoError(t, err)
	alice, err := domain.NewParticipantChoices("alice", false, false)
	require.NoError(t, err)
	bob, err := domain.NewParticipantChoices("bob", false, false)
	require.NoError(t, err)

	_, err = env.coord.Join(context.Background(), *session, alice)
	require.NoError(t, err)
	_, err = env.coord.Join(context.Background(), *session, bob)
	require.NoError(t, err)

	infos := env.coord.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, domain.SessionName("standup"), infos[0].Name)
	assert.Equal(t, 2, infos[0].MemberCount)
}
