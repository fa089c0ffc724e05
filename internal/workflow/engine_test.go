package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/database"
	"github.com/tvan04/workflow-management-system-sub001/internal/files"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
	"github.com/tvan04/workflow-management-system-sub001/internal/token"
)

const tokenSecret = "test-secret-0123456789"

type notice struct {
	kind    string
	appID   string
	role    string
	token   string
	outcome models.Outcome
}

type recordingDispatcher struct {
	mu      sync.Mutex
	notices []notice
	fail    bool
}

func (r *recordingDispatcher) NotifyApprover(_ context.Context, app models.Application, approver models.Approver, actionToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.notices = append(r.notices, notice{kind: "approver", appID: app.ID, role: approver.Role, token: actionToken})
	return nil
}

func (r *recordingDispatcher) NotifyOutcome(_ context.Context, app models.Application, outcome models.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.notices = append(r.notices, notice{kind: "outcome", appID: app.ID, outcome: outcome})
	return nil
}

func (r *recordingDispatcher) list() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

func (r *recordingDispatcher) summary() []string {
	var out []string
	for _, n := range r.list() {
		if n.kind == "approver" {
			out = append(out, "approver:"+n.role)
		} else {
			out = append(out, "outcome:"+string(n.outcome))
		}
	}
	return out
}

type countingObserver struct {
	mu          sync.Mutex
	transitions []string
	failures    int
}

func (c *countingObserver) TransitionRecorded(action string, status models.ApplicationStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitions = append(c.transitions, action+"->"+string(status))
}

func (c *countingObserver) NotificationFailed(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
}

type fixture struct {
	engine   *Engine
	store    database.Store
	notifier *recordingDispatcher
	observer *countingObserver
	tokens   *token.Issuer
	uploads  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uploads := t.TempDir()
	storage, err := files.NewStorage(uploads, 1<<20)
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	f := &fixture{
		store:    database.NewMemoryStore(),
		notifier: &recordingDispatcher{},
		observer: &countingObserver{},
		tokens:   token.NewIssuer(tokenSecret, time.Hour),
		uploads:  uploads,
	}
	f.engine = NewEngine(Options{
		Store:    f.store,
		Files:    storage,
		Notifier: f.notifier,
		Tokens:   f.tokens,
		Logger:   logger,
		Observer: f.observer,
	})
	return f
}

func pdf() *bytes.Reader {
	return bytes.NewReader([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj << /Type /Catalog >> endobj\n"))
}

func validInput() SubmitInput {
	return SubmitInput{
		FacultyName:     "Sarah Johnson",
		FacultyEmail:    "sarah.johnson@vanderbilt.edu",
		FacultyTitle:    "Associate Professor",
		Department:      "Biomedical Engineering",
		College:         "School of Engineering",
		AppointmentType: "Secondary",
		EffectiveDate:   "2026-09-01",
		Duration:        "3 years",
		Rationale:       "Joint research program in medical imaging",
		Approvers: []ApproverInput{
			{Role: "chair", Name: "Dr. Chair", Email: "chair@vanderbilt.edu"},
			{Role: "dean", Name: "Dr. Dean", Email: "dean@vanderbilt.edu"},
		},
		CVFileName: "johnson_cv.pdf",
		CV:         pdf(),
	}
}

func (f *fixture) submit(t *testing.T) models.Application {
	t.Helper()
	app, err := f.engine.Submit(context.Background(), validInput())
	require.NoError(t, err)
	return app
}

func action(email string) ActionInput {
	return ActionInput{ApproverEmail: email, Signature: "signed", Notes: "ok"}
}

func assertConsistent(t *testing.T, app models.Application) {
	t.Helper()
	require.NotEmpty(t, app.StatusHistory)
	assert.Equal(t, app.Status, app.StatusHistory[len(app.StatusHistory)-1].Status)
}

func TestSubmit_Valid(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Len(t, app.StatusHistory, 1)
	assert.Equal(t, 0, app.CurrentStep)
	assert.Equal(t, "2026-09-01", app.EffectiveDate.String())
	assert.Equal(t, "application/pdf", app.CVFile.MimeType)
	assert.Equal(t, "johnson_cv.pdf", app.CVFile.FileName)
	assert.Equal(t, app.SubmittedAt, app.UpdatedAt)
	assertConsistent(t, app)

	stored, err := f.engine.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Status, stored.Status)
	assert.Equal(t, app.Version, stored.Version)

	notices := f.notifier.list()
	require.Len(t, notices, 1)
	assert.Equal(t, "chair", notices[0].role)

	claims, err := f.tokens.Verify(notices[0].token)
	require.NoError(t, err)
	assert.Equal(t, app.ID, claims.ApplicationID())
	assert.Equal(t, "chair@vanderbilt.edu", claims.Email)
	assert.Equal(t, 0, claims.Step)

	assert.Equal(t, []string{"submit->submitted"}, f.observer.transitions)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *SubmitInput)
		field  string
	}{
		{"missing name", func(in *SubmitInput) { in.FacultyName = "  " }, "facultyName"},
		{"bad faculty email", func(in *SubmitInput) { in.FacultyEmail = "sarah-at-vanderbilt" }, "facultyEmail"},
		{"missing college", func(in *SubmitInput) { in.College = "" }, "college"},
		{"missing rationale", func(in *SubmitInput) { in.Rationale = "" }, "rationale"},
		{"bad date", func(in *SubmitInput) { in.EffectiveDate = "02/30/2026" }, "effectiveDate"},
		{"missing date", func(in *SubmitInput) { in.EffectiveDate = "" }, "effectiveDate"},
		{"no approvers", func(in *SubmitInput) { in.Approvers = []ApproverInput{} }, "approvers"},
		{"nil approvers", func(in *SubmitInput) { in.Approvers = nil }, "approvers"},
		{"approver without name", func(in *SubmitInput) { in.Approvers[1].Name = "" }, "approvers[1].name"},
		{"approver bad email", func(in *SubmitInput) { in.Approvers[0].Email = "chair" }, "approvers[0].email"},
		{"duplicate role", func(in *SubmitInput) { in.Approvers[1].Role = "Chair" }, "approvers[1].role"},
		{"missing cv", func(in *SubmitInput) { in.CV = nil }, "cv"},
		{"text cv", func(in *SubmitInput) { in.CV = bytes.NewReader([]byte("plain text resume")) }, "cv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.engine.Submit(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
			assert.Contains(t, apperror.FieldsOf(err), tt.field)

			all, err := f.engine.ListAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
			assert.Empty(t, f.notifier.list())

			entries, err := os.ReadDir(f.uploads)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestSubmit_RoleDefaults(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Approvers = []ApproverInput{
		{Name: "A", Email: "a@vanderbilt.edu"},
		{Role: "Department Chair", Name: "B", Email: "b@vanderbilt.edu"},
		{Name: "C", Email: "c@vanderbilt.edu"},
	}

	app, err := f.engine.Submit(context.Background(), in)
	require.NoError(t, err)

	var roles []string
	for _, a := range app.ApprovalChain {
		roles = append(roles, a.Role)
	}
	assert.Equal(t, []string{"approver1", "department_chair", "approver3"}, roles)
}

type failingInsertStore struct {
	database.Store
}

func (failingInsertStore) Insert(context.Context, models.Application) (string, error) {
	return "", errors.New("disk full")
}

func TestSubmit_InsertFailureRemovesCV(t *testing.T) {
	f := newFixture(t)
	f.engine.store = failingInsertStore{Store: f.store}

	_, err := f.engine.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.notifier.list())
}

func TestChairApprovesDeanDenies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	app, err := f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatus("dean"), app.Status)
	assert.Equal(t, "pending_dean", string(app.Status))
	assert.Len(t, app.StatusHistory, 2)
	assert.Equal(t, 1, app.CurrentStep)
	assertConsistent(t, app)

	app, err = f.engine.Deny(ctx, app.ID, ActionInput{ApproverEmail: "dean@vanderbilt.edu", Signature: "D. Dean", Notes: "no budget"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, app.Status)
	assert.Len(t, app.StatusHistory, 3)
	assertConsistent(t, app)

	last := app.StatusHistory[2]
	assert.Equal(t, "dean@vanderbilt.edu", last.Approver)
	assert.Equal(t, "D. Dean", last.Signature)
	assert.Equal(t, "no budget", last.Notes)

	assert.Equal(t, []string{"approver:chair", "approver:dean", "outcome:denied"}, f.notifier.summary())

	stored, err := f.engine.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app, stored)
}

func TestFullChainApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	_, err := f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	app, err = f.engine.Approve(ctx, app.ID, action("dean@vanderbilt.edu"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, app.Status)
	assert.Len(t, app.StatusHistory, 3)
	assert.Equal(t, 2, app.CurrentStep)
	assertConsistent(t, app)
	assert.Equal(t, []string{"approver:chair", "approver:dean", "outcome:approved"}, f.notifier.summary())
	assert.Equal(t, []string{"submit->submitted", "approve->pending_dean", "approve->approved"}, f.observer.transitions)
}

func TestDenyAtFirstPosition(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	app, err := f.engine.Deny(context.Background(), app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, app.Status)
	assert.Len(t, app.StatusHistory, 2)
	assert.Equal(t, []string{"approver:chair", "outcome:denied"}, f.notifier.summary())
}

func TestActionsOnTerminalApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)
	_, err := f.engine.Deny(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)

	for _, email := range []string{"chair@vanderbilt.edu", "dean@vanderbilt.edu"} {
		_, err = f.engine.Approve(ctx, app.ID, action(email))
		assert.True(t, apperror.Is(err, apperror.KindInvalidState), "got %v", err)
		_, err = f.engine.Deny(ctx, app.ID, action(email))
		assert.True(t, apperror.Is(err, apperror.KindInvalidState), "got %v", err)
	}

	stored, err := f.engine.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
	assert.Len(t, f.notifier.list(), 2)
}

func TestWrongApprover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	for _, email := range []string{"dean@vanderbilt.edu", "intruder@example.com"} {
		_, err := f.engine.Approve(ctx, app.ID, action(email))
		assert.True(t, apperror.Is(err, apperror.KindAuthorization), "got %v", err)
	}

	stored, err := f.engine.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app, stored)
}

func TestStaleDuplicateAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	_, err := f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)

	_, err = f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "got %v", err)

	stored, err := f.engine.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
}

func TestActionInputChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	_, err := f.engine.Approve(ctx, app.ID, ActionInput{ApproverEmail: "chair@vanderbilt.edu"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, apperror.FieldsOf(err), "signature")

	_, err = f.engine.Approve(ctx, app.ID, ActionInput{Signature: "x"})
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	_, err = f.engine.Deny(ctx, app.ID, ActionInput{ApproverEmail: "   ", Signature: "x"})
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	_, err = f.engine.Act(ctx, app.ID, "escalate", action("chair@vanderbilt.edu"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.engine.Approve(ctx, "missing", action("chair@vanderbilt.edu"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	updated, err := f.engine.Act(ctx, app.ID, " APPROVE ", action("  Chair@Vanderbilt.EDU "))
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatus("dean"), updated.Status)
	assert.Equal(t, "chair@vanderbilt.edu", updated.StatusHistory[1].Approver)
}

func TestActionTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)
	other := f.submit(t)

	foreign, err := f.tokens.Issue(other.ID, "chair@vanderbilt.edu", 0)
	require.NoError(t, err)
	wrongStep, err := f.tokens.Issue(app.ID, "chair@vanderbilt.edu", 1)
	require.NoError(t, err)

	for _, tok := range []string{"garbage", foreign, wrongStep} {
		in := action("chair@vanderbilt.edu")
		in.Token = tok
		_, err = f.engine.Approve(ctx, app.ID, in)
		assert.True(t, apperror.Is(err, apperror.KindAuthorization), "got %v", err)
	}

	f.engine.requireToken = true
	_, err = f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	in := action("chair@vanderbilt.edu")
	in.Token = f.notifier.list()[0].token
	_, err = f.engine.Approve(ctx, app.ID, in)
	require.NoError(t, err)

	//the dean's link carries the next step
	notices := f.notifier.list()
	deanToken := notices[len(notices)-1].token
	claims, err := f.tokens.Verify(deanToken)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.Step)
}

func TestNotificationFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.fail = true

	app, err := f.engine.Submit(ctx, validInput())
	require.NoError(t, err)

	app, err = f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatus("dean"), app.Status)
	assert.Equal(t, 2, f.observer.failures)

	stored, err := f.engine.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
}

func TestConcurrentDuplicateApprovals(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Approve(context.Background(), app.ID, action("chair@vanderbilt.edu"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		kind := apperror.KindOf(err)
		assert.Contains(t, []apperror.Kind{apperror.KindInvalidState, apperror.KindAuthorization}, kind)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.engine.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
	assertConsistent(t, stored)
	assert.Equal(t, 0, f.engine.locks.size())
}

func TestSearchAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.submit(t)

	in := validInput()
	in.FacultyName = "Marcus Lee"
	in.FacultyEmail = "marcus.lee@vanderbilt.edu"
	second, err := f.engine.Submit(ctx, in)
	require.NoError(t, err)

	found, err := f.engine.Search(ctx, "SARAH")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	found, err = f.engine.Search(ctx, "marcus.lee@")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	found, err = f.engine.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	found, err = f.engine.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	all, err := f.engine.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestMetricsAndPendingOlderThan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clock := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return clock }

	approved := f.submit(t)
	denied := f.submit(t)
	open := f.submit(t)

	clock = clock.Add(10 * time.Hour)
	_, err := f.engine.Approve(ctx, approved.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	_, err = f.engine.Approve(ctx, approved.ID, action("dean@vanderbilt.edu"))
	require.NoError(t, err)

	clock = clock.Add(20 * time.Hour)
	_, err = f.engine.Deny(ctx, denied.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)

	m, err := f.engine.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalApplications)
	assert.Equal(t, 1, m.Approved)
	assert.Equal(t, 1, m.Denied)
	assert.Equal(t, 1, m.Pending)
	assert.Equal(t, map[string]int{"approved": 1, "denied": 1, "submitted": 1}, m.ByStatus)
	assert.Equal(t, 20.0, m.AverageProcessingHours)
	assert.Equal(t, 0.5, m.ApprovalRate)

	stale, err := f.engine.PendingOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, open.ID, stale[0].ID)

	stale, err = f.engine.PendingOlderThan(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestMetricsEmpty(t *testing.T) {
	f := newFixture(t)
	m, err := f.engine.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.TotalApplications)
	assert.Equal(t, 0.0, m.AverageProcessingHours)
	assert.Equal(t, 0.0, m.ApprovalRate)
	assert.NotNil(t, m.ByStatus)
}

func TestRemind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.submit(t)

	assert.True(t, f.engine.Remind(ctx, app))
	assert.Equal(t, []string{"approver:chair", "approver:chair"}, f.notifier.summary())

	app, err := f.engine.Deny(ctx, app.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)
	assert.False(t, f.engine.Remind(ctx, app))
}

func TestRemind_StaleSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listed := f.submit(t)

	_, err := f.engine.Approve(ctx, listed.ID, action("chair@vanderbilt.edu"))
	require.NoError(t, err)

	assert.False(t, f.engine.Remind(ctx, listed))
	assert.Equal(t, []string{"approver:chair", "approver:dean"}, f.notifier.summary())

	fresh, err := f.engine.GetByID(ctx, listed.ID)
	require.NoError(t, err)
	assert.True(t, f.engine.Remind(ctx, fresh))
	assert.Equal(t, []string{"approver:chair", "approver:dean", "approver:dean"}, f.notifier.summary())

	assert.False(t, f.engine.Remind(ctx, models.Application{ID: "missing"}))
}

// updateErrStore wraps a real store and fails every Update with err.
type updateErrStore struct {
	database.Store
	err error
}

func (s updateErrStore) Update(context.Context, models.Application, int64) error {
	return s.err
}

func TestDecide_StoreUpdateErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperror.Kind
	}{
		{"lost compare and swap", database.ErrVersionConflict, apperror.KindInvalidState},
		{"record vanished", database.ErrNotFound, apperror.KindNotFound},
		{"driver failure", errors.New("connection reset"), apperror.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			app := f.submit(t)
			f.engine.store = updateErrStore{Store: f.store, err: fmt.Errorf("update: %w", tt.err)}

			_, err := f.engine.Approve(ctx, app.ID, action("chair@vanderbilt.edu"))
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))

			assert.Equal(t, []string{"approver:chair"}, f.notifier.summary())
			assert.Equal(t, []string{"submit->submitted"}, f.observer.transitions)

			stored, err := f.store.GetByID(ctx, app.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusSubmitted, stored.Status)
			assert.Len(t, stored.StatusHistory, 1)
		})
	}
}
