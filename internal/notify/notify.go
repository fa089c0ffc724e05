package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// Dispatcher delivers workflow notices. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	NotifyApprover(ctx context.Context, app models.Application, approver models.Approver, actionToken string) error
	NotifyOutcome(ctx context.Context, app models.Application, outcome models.Outcome) error
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcMap = map[string]any{
	"join": strings.Join,
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// SignLink is the URL an approver follows to review and sign an application.
func SignLink(baseURL, applicationID, actionToken string) string {
	link := strings.TrimRight(baseURL, "/") + "/sign/" + url.PathEscape(applicationID)
	if actionToken != "" {
		link += "?token=" + url.QueryEscape(actionToken)
	}
	return link
}

type approverView struct {
	App      models.Application
	Approver models.Approver
	Link     string
	Roles    []string
}

type outcomeView struct {
	App     models.Application
	Outcome models.Outcome
	Last    *models.StatusHistoryEntry
}

func newApproverView(app models.Application, approver models.Approver, link string) approverView {
	roles := make([]string, 0, len(app.ApprovalChain))
	for _, a := range app.ApprovalChain {
		roles = append(roles, a.Role)
	}
	return approverView{App: app, Approver: approver, Link: link, Roles: roles}
}

func newOutcomeView(app models.Application, outcome models.Outcome) outcomeView {
	view := outcomeView{App: app, Outcome: outcome}
	if n := len(app.StatusHistory); n > 0 {
		last := app.StatusHistory[n-1]
		view.Last = &last
	}
	return view
}

// render produces the plain text and HTML bodies for the named template pair.
func render(name string, data any) (string, string, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to execute text template %s: %w", name, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to execute html template %s: %w", name, err)
	}
	return text.String(), html.String(), nil
}

// Multi fans a notice out to every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) NotifyApprover(ctx context.Context, app models.Application, approver models.Approver, actionToken string) error {
	var errs []error
	for _, d := range m {
		if err := d.NotifyApprover(ctx, app, approver, actionToken); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyOutcome(ctx context.Context, app models.Application, outcome models.Outcome) error {
	var errs []error
	for _, d := range m {
		if err := d.NotifyOutcome(ctx, app, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
