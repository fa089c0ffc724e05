package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/database"
	"github.com/tvan04/workflow-management-system-sub001/internal/filter"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
	"github.com/tvan04/workflow-management-system-sub001/internal/notify"
	"github.com/tvan04/workflow-management-system-sub001/internal/token"
)

// CVStore holds uploaded CV documents outside the application record.
type CVStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (models.CVFile, error)
	Remove(cv models.CVFile) error
}

// Observer receives workflow events, usually to feed metrics.
type Observer interface {
	TransitionRecorded(action string, status models.ApplicationStatus)
	NotificationFailed(kind string)
}

type nopObserver struct{}

func (nopObserver) TransitionRecorded(string, models.ApplicationStatus) {}
func (nopObserver) NotificationFailed(string)                           {}

type Options struct {
	Store    database.Store
	Files    CVStore
	Notifier notify.Dispatcher
	Tokens   *token.Issuer
	//reject approve/deny calls that carry no action token
	RequireToken bool
	Logger       log.FieldLogger
	Observer     Observer
}

// Engine owns the approval state machine. Every read-modify-write of one
// application runs under that application's lock.
type Engine struct {
	store        database.Store
	files        CVStore
	notifier     notify.Dispatcher
	tokens       *token.Issuer
	requireToken bool
	log          log.FieldLogger
	observer     Observer
	locks        *keyedMutex
	now          func() time.Time
}

func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Engine{
		store:        opts.Store,
		files:        opts.Files,
		notifier:     opts.Notifier,
		tokens:       opts.Tokens,
		requireToken: opts.RequireToken,
		log:          opts.Logger,
		observer:     opts.Observer,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// ActionInput is an approver's decision on the pending chain position.
type ActionInput struct {
	ApproverEmail string
	Signature     string
	Notes         string
	//action token from the signature link, optional unless tokens are required
	Token string
}

func (e *Engine) Submit(ctx context.Context, in SubmitInput) (models.Application, error) {
	effective, err := validateSubmission(&in)
	if err != nil {
		return models.Application{}, err
	}

	cv, err := e.files.Save(ctx, in.CVFileName, in.CV)
	if err != nil {
		return models.Application{}, err
	}

	now := e.now().UTC()
	app := models.Application{
		ID: uuid.NewString(),
		FacultyMember: models.FacultyMember{
			Name:       in.FacultyName,
			Email:      in.FacultyEmail,
			Title:      in.FacultyTitle,
			Department: in.Department,
			College:    in.College,
		},
		AppointmentType: in.AppointmentType,
		EffectiveDate:   models.NewDate(effective),
		Duration:        in.Duration,
		Rationale:       in.Rationale,
		ApprovalChain:   in.chain(),
		CurrentStep:     0,
		Status:          models.StatusSubmitted,
		StatusHistory: []models.StatusHistoryEntry{
			{Status: models.StatusSubmitted, Timestamp: now},
		},
		CVFile:      cv,
		SubmittedAt: now,
		UpdatedAt:   now,
		Version:     1,
	}

	if _, err := e.store.Insert(ctx, app); err != nil {
		if rmErr := e.files.Remove(cv); rmErr != nil {
			e.log.WithError(rmErr).WithField("path", cv.Path).Warn("⚠️ could not remove orphaned cv")
		}
		return models.Application{}, fmt.Errorf("failed to save application: %w", err)
	}

	e.log.WithFields(log.Fields{
		"application_id": app.ID,
		"faculty":        app.FacultyMember.Email,
		"approvers":      len(app.ApprovalChain),
	}).Info("📥 application submitted")
	e.observer.TransitionRecorded("submit", app.Status)

	e.notifyApprover(ctx, app)
	return app, nil
}

func (e *Engine) Approve(ctx context.Context, id string, in ActionInput) (models.Application, error) {
	return e.decide(ctx, id, DecisionApprove, in)
}

func (e *Engine) Deny(ctx context.Context, id string, in ActionInput) (models.Application, error) {
	return e.decide(ctx, id, DecisionDeny, in)
}

// Act applies an approve or deny decision named by action.
func (e *Engine) Act(ctx context.Context, id, action string, in ActionInput) (models.Application, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(action))) {
	case DecisionApprove:
		return e.Approve(ctx, id, in)
	case DecisionDeny:
		return e.Deny(ctx, id, in)
	default:
		return models.Application{}, apperror.Validation("unknown action", map[string]string{
			"action": `must be "approve" or "deny"`,
		})
	}
}

func (e *Engine) decide(ctx context.Context, id string, decision Decision, in ActionInput) (models.Application, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	app, err := e.load(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	pending, err := e.authorize(app, in)
	if err != nil {
		return models.Application{}, err
	}

	now := e.now().UTC()
	switch decision {
	case DecisionApprove:
		app.CurrentStep++
		if next, ok := app.PendingApprover(); ok {
			app.Status = models.PendingStatus(next.Role)
		} else {
			app.Status = models.StatusApproved
		}
	case DecisionDeny:
		app.Status = models.StatusDenied
	}
	app.StatusHistory = append(app.StatusHistory, models.StatusHistoryEntry{
		Status:    app.Status,
		Timestamp: now,
		Approver:  pending.Email,
		Signature: strings.TrimSpace(in.Signature),
		Notes:     strings.TrimSpace(in.Notes),
	})
	app.UpdatedAt = now

	expected := app.Version
	if err := e.store.Update(ctx, app, expected); err != nil {
		switch {
		case errors.Is(err, database.ErrVersionConflict):
			return models.Application{}, apperror.InvalidState("application was changed by another request; reload it and try again")
		case errors.Is(err, database.ErrNotFound):
			return models.Application{}, apperror.NotFound(fmt.Sprintf("application %s not found", id))
		}
		return models.Application{}, fmt.Errorf("failed to update application %s: %w", id, err)
	}
	app.Version = expected + 1

	e.log.WithFields(log.Fields{
		"application_id": app.ID,
		"approver":       pending.Email,
		"role":           pending.Role,
		"status":         app.Status,
	}).Infof("✍️ %s recorded", decision)
	e.observer.TransitionRecorded(string(decision), app.Status)

	switch app.Status {
	case models.StatusApproved:
		e.notifyOutcome(ctx, app, models.OutcomeApproved)
	case models.StatusDenied:
		e.notifyOutcome(ctx, app, models.OutcomeDenied)
	default:
		e.notifyApprover(ctx, app)
	}
	return app, nil
}

// authorize checks that the caller is the pending approver and returns them.
func (e *Engine) authorize(app models.Application, in ActionInput) (models.Approver, error) {
	if app.Status.IsTerminal() {
		return models.Approver{}, apperror.InvalidState(fmt.Sprintf("application is already %s", app.Status))
	}
	pending, ok := app.PendingApprover()
	if !ok {
		return models.Approver{}, apperror.InvalidState("application has no pending approver")
	}

	email := strings.TrimSpace(in.ApproverEmail)
	if email == "" {
		return models.Approver{}, apperror.Authorization(fmt.Sprintf("only the pending %s approver may act on this application", pending.Role))
	}
	if !filter.SameEmail(email, pending.Email) {
		if actedBefore(app, email) {
			return models.Approver{}, apperror.InvalidState("this approver has already acted on the application")
		}
		return models.Approver{}, apperror.Authorization(fmt.Sprintf("only the pending %s approver may act on this application", pending.Role))
	}

	if in.Token != "" || e.requireToken {
		if err := e.checkToken(app, pending, in.Token); err != nil {
			return models.Approver{}, err
		}
	}

	if strings.TrimSpace(in.Signature) == "" {
		return models.Approver{}, apperror.Validation("signature is required", map[string]string{
			"signature": "is required",
		})
	}
	return pending, nil
}

func (e *Engine) checkToken(app models.Application, pending models.Approver, raw string) error {
	if e.tokens == nil {
		return apperror.Authorization("action tokens are not configured")
	}
	claims, err := e.tokens.Verify(raw)
	if err != nil {
		return apperror.Wrap(apperror.KindAuthorization, "invalid or expired action token", err)
	}
	if claims.ApplicationID() != app.ID {
		return apperror.Authorization("action token belongs to another application")
	}
	if claims.Step < app.CurrentStep {
		return apperror.InvalidState("this approval link has already been used")
	}
	if claims.Step != app.CurrentStep || !filter.SameEmail(claims.Email, pending.Email) {
		return apperror.Authorization("action token does not match this approval")
	}
	return nil
}

// actedBefore reports whether email belongs to an approver earlier in the chain.
func actedBefore(app models.Application, email string) bool {
	for i := 0; i < app.CurrentStep && i < len(app.ApprovalChain); i++ {
		if filter.SameEmail(app.ApprovalChain[i].Email, email) {
			return true
		}
	}
	return false
}

func (e *Engine) GetByID(ctx context.Context, id string) (models.Application, error) {
	return e.load(ctx, id)
}

func (e *Engine) load(ctx context.Context, id string) (models.Application, error) {
	if strings.TrimSpace(id) == "" {
		return models.Application{}, apperror.NotFound("application id is required")
	}
	app, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Application{}, apperror.NotFound(fmt.Sprintf("application %s not found", id))
		}
		return models.Application{}, fmt.Errorf("failed to load application %s: %w", id, err)
	}
	return app, nil
}

// Search matches query against faculty name and email, ignoring case.
// A blank query returns every application.
func (e *Engine) Search(ctx context.Context, query string) ([]models.Application, error) {
	apps, err := e.store.SearchByText(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

func (e *Engine) ListAll(ctx context.Context) ([]models.Application, error) {
	apps, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// PendingOlderThan lists open applications untouched for longer than age.
func (e *Engine) PendingOlderThan(ctx context.Context, age time.Duration) ([]models.Application, error) {
	apps, err := e.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := e.now().Add(-age)
	stale := make([]models.Application, 0)
	for _, app := range apps {
		if !app.Status.IsTerminal() && app.UpdatedAt.Before(cutoff) {
			stale = append(stale, app)
		}
	}
	return stale, nil
}

// Remind re-sends the approval request to the pending approver with a fresh link.
// app may be a stale listing; nothing is sent unless the stored record is
// still at the same version.
func (e *Engine) Remind(ctx context.Context, app models.Application) bool {
	unlock := e.locks.Lock(app.ID)
	defer unlock()

	current, err := e.load(ctx, app.ID)
	if err != nil {
		e.log.WithError(err).WithField("application_id", app.ID).Warn("⚠️ reminder skipped")
		return false
	}
	if current.Version != app.Version || current.CurrentStep != app.CurrentStep {
		return false
	}
	if _, ok := current.PendingApprover(); !ok {
		return false
	}
	return e.notifyApprover(ctx, current)
}

// notifyApprover mails the pending approver. Failures are logged and counted;
// they never undo the transition that triggered them.
func (e *Engine) notifyApprover(ctx context.Context, app models.Application) bool {
	approver, ok := app.PendingApprover()
	if !ok {
		return false
	}

	var actionToken string
	if e.tokens != nil {
		t, err := e.tokens.Issue(app.ID, approver.Email, app.CurrentStep)
		if err != nil {
			e.notificationFailed("approver_request", app, err)
			return false
		}
		actionToken = t
	}

	if err := e.notifier.NotifyApprover(ctx, app, approver, actionToken); err != nil {
		e.notificationFailed("approver_request", app, err)
		return false
	}
	return true
}

func (e *Engine) notifyOutcome(ctx context.Context, app models.Application, outcome models.Outcome) {
	if err := e.notifier.NotifyOutcome(ctx, app, outcome); err != nil {
		e.notificationFailed("outcome", app, err)
	}
}

func (e *Engine) notificationFailed(kind string, app models.Application, err error) {
	e.log.WithError(apperror.NotificationDelivery(err)).WithFields(log.Fields{
		"application_id": app.ID,
		"kind":           kind,
	}).Warn("⚠️ notification not delivered")
	e.observer.NotificationFailed(kind)
}
