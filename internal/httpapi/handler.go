package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
	"github.com/tvan04/workflow-management-system-sub001/internal/workflow"
)

// Workflow is the part of the engine the HTTP layer drives.
type Workflow interface {
	Submit(ctx context.Context, in workflow.SubmitInput) (models.Application, error)
	Act(ctx context.Context, id, action string, in workflow.ActionInput) (models.Application, error)
	GetByID(ctx context.Context, id string) (models.Application, error)
	Search(ctx context.Context, query string) ([]models.Application, error)
	ListAll(ctx context.Context) ([]models.Application, error)
	Metrics(ctx context.Context) (workflow.Metrics, error)
}

// CVOpener opens stored CV documents for download.
type CVOpener interface {
	Open(cv models.CVFile) (*os.File, error)
}

type Handler struct {
	wf  Workflow
	cvs CVOpener
	log log.FieldLogger
	//request body cap for submissions, CV plus form fields
	maxBody int64
}

func NewHandler(wf Workflow, cvs CVOpener, maxUploadBytes int64, logger log.FieldLogger) *Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{wf: wf, cvs: cvs, log: logger, maxBody: maxUploadBytes + 1<<20}
}

type submitResponse struct {
	ApplicationID string                   `json:"applicationId"`
	Status        models.ApplicationStatus `json:"status"`
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, apperror.Validation("upload too large", map[string]string{
				"cv": fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit),
			}))
			return
		}
		h.respondError(c, apperror.Validation("expected a multipart/form-data body", nil))
		return
	}

	in := workflow.SubmitInput{
		FacultyName:     c.PostForm("facultyName"),
		FacultyEmail:    c.PostForm("facultyEmail"),
		FacultyTitle:    c.PostForm("facultyTitle"),
		Department:      c.PostForm("department"),
		College:         c.PostForm("college"),
		AppointmentType: c.PostForm("appointmentType"),
		EffectiveDate:   c.PostForm("effectiveDate"),
		Duration:        c.PostForm("duration"),
		Rationale:       c.PostForm("rationale"),
	}

	approvers, err := parseApprovers(form.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	in.Approvers = approvers

	if headers := form.File["cv"]; len(headers) > 0 {
		f, err := headers[0].Open()
		if err != nil {
			h.respondError(c, fmt.Errorf("open uploaded cv: %w", err))
			return
		}
		defer f.Close()
		in.CV = f
		in.CVFileName = headers[0].Filename
	}

	app, err := h.wf.Submit(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, submitResponse{ApplicationID: app.ID, Status: app.Status})
}

// parseApprovers reads the chain either from a JSON "approvers" field or from
// parallel approverRole[]/approverName[]/approverEmail[] fields.
func parseApprovers(values map[string][]string) ([]workflow.ApproverInput, error) {
	if raw := first(values["approvers"]); raw != "" {
		var approvers []workflow.ApproverInput
		if err := json.Unmarshal([]byte(raw), &approvers); err != nil {
			return nil, apperror.Validation("invalid approvers", map[string]string{
				"approvers": "must be a JSON array of {role, name, email}",
			})
		}
		return approvers, nil
	}

	roles := formArray(values, "approverRole")
	names := formArray(values, "approverName")
	emails := formArray(values, "approverEmail")

	n := max(len(names), len(emails))
	approvers := make([]workflow.ApproverInput, 0, n)
	for i := 0; i < n; i++ {
		approvers = append(approvers, workflow.ApproverInput{
			Role:  at(roles, i),
			Name:  at(names, i),
			Email: at(emails, i),
		})
	}
	return approvers, nil
}

func formArray(values map[string][]string, key string) []string {
	if v := values[key+"[]"]; len(v) > 0 {
		return v
	}
	return values[key]
}

func first(v []string) string {
	return at(v, 0)
}

func at(v []string, i int) string {
	if i < len(v) {
		return v[i]
	}
	return ""
}

func (h *Handler) list(c *gin.Context) {
	apps, err := h.wf.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, apps)
}

func (h *Handler) search(c *gin.Context) {
	apps, err := h.wf.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, apps)
}

func (h *Handler) get(c *gin.Context) {
	app, err := h.wf.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, app)
}

func (h *Handler) downloadCV(c *gin.Context) {
	app, err := h.wf.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	f, err := h.cvs.Open(app.CVFile)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondError(c, fmt.Errorf("stat cv file: %w", err))
		return
	}

	c.Header("Content-Type", app.CVFile.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.CVFile.FileName))
	http.ServeContent(c.Writer, c.Request, app.CVFile.FileName, info.ModTime(), f)
}

type actionRequest struct {
	ApproverEmail string `json:"approverEmail" form:"approverEmail"`
	Action        string `json:"action" form:"action"`
	Signature     string `json:"signature" form:"signature"`
	Notes         string `json:"notes" form:"notes"`
	Token         string `json:"token" form:"token"`
}

type actionResponse struct {
	ApplicationID string                   `json:"applicationId"`
	NewStatus     models.ApplicationStatus `json:"newStatus"`
}

// approve handles both JSON calls and the signature page's form post. Form
// posts get an HTML page back.
func (h *Handler) approve(c *gin.Context) {
	id := c.Param("id")
	fromPage := c.ContentType() == gin.MIMEPOSTForm

	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondAction(c, fromPage, id, models.Application{}, apperror.Validation("malformed request body", nil))
		return
	}
	if req.Action == "" {
		req.Action = string(workflow.DecisionApprove)
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	app, err := h.wf.Act(c.Request.Context(), id, req.Action, workflow.ActionInput{
		ApproverEmail: req.ApproverEmail,
		Signature:     req.Signature,
		Notes:         req.Notes,
		Token:         req.Token,
	})
	h.respondAction(c, fromPage, id, app, err)
}

func (h *Handler) respondAction(c *gin.Context, fromPage bool, id string, app models.Application, err error) {
	if !fromPage {
		if err != nil {
			h.respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, actionResponse{ApplicationID: app.ID, NewStatus: app.Status})
		return
	}

	if err != nil {
		status, body := h.errorPayload(c, err)
		msg := body.Message
		for field, m := range body.Fields {
			msg += fmt.Sprintf(" (%s %s)", field, m)
		}
		c.HTML(status, "result.html.tmpl", resultPage{Title: "Your decision was not recorded", Message: msg, ApplicationID: id})
		return
	}
	c.HTML(http.StatusOK, "result.html.tmpl", resultPage{
		Title:         "Thank you",
		Message:       fmt.Sprintf("Your decision has been recorded. The application is now %s.", app.Status),
		ApplicationID: app.ID,
	})
}

func (h *Handler) metrics(c *gin.Context) {
	m, err := h.wf.Metrics(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, m)
}

type signPage struct {
	App     models.Application
	Pending models.Approver
	Token   string
	Closed  bool
}

type resultPage struct {
	Title         string
	Message       string
	ApplicationID string
}

func (h *Handler) sign(c *gin.Context) {
	app, err := h.wf.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, body := h.errorPayload(c, err)
		c.HTML(status, "result.html.tmpl", resultPage{Title: "Application unavailable", Message: body.Message})
		return
	}

	pending, ok := app.PendingApprover()
	c.HTML(http.StatusOK, "sign.html.tmpl", signPage{
		App:     app,
		Pending: pending,
		Token:   c.Query("token"),
		Closed:  !ok,
	})
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
