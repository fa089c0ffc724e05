package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// LogNotifier writes notices to the log instead of delivering them. It is the
// fallback when no SMTP host is configured.
type LogNotifier struct {
	Logger  log.FieldLogger
	BaseURL string
}

var _ Dispatcher = (*LogNotifier)(nil)

func (l *LogNotifier) NotifyApprover(_ context.Context, app models.Application, approver models.Approver, actionToken string) error {
	l.Logger.WithFields(log.Fields{
		"application_id": app.ID,
		"approver_role":  approver.Role,
		"approver_email": approver.Email,
		"link":           SignLink(l.BaseURL, app.ID, actionToken),
	}).Info("📧 approval request")
	return nil
}

func (l *LogNotifier) NotifyOutcome(_ context.Context, app models.Application, outcome models.Outcome) error {
	l.Logger.WithFields(log.Fields{
		"application_id": app.ID,
		"faculty_email":  app.FacultyMember.Email,
		"outcome":        outcome,
	}).Info("📧 outcome notice")
	return nil
}
