package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/tvan04/workflow-management-system-sub001/internal/app"
	"github.com/tvan04/workflow-management-system-sub001/internal/config"
	"github.com/tvan04/workflow-management-system-sub001/internal/workflow"
)

//smallest document the CV sniffing accepts as a PDF
const demoPDF = "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n"

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	var count, approveSteps int
	var deny bool
	var cvPath string

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.IntVar(&count, "count", 1, "number of demo applications to submit")
	flagSet.IntVar(&approveSteps, "approve", 0, "approve this many chain steps on each application")
	flagSet.BoolVar(&deny, "deny", false, "deny at the step after the approved ones")
	flagSet.StringVar(&cvPath, "cv", "", "CV document to attach (default: a built-in one page PDF)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	cv := []byte(demoPDF)
	cvName := "demo-cv.pdf"
	if cvPath != "" {
		if cv, err = os.ReadFile(cvPath); err != nil {
			return fmt.Errorf("could not read cv: %w", err)
		}
		cvName = filepath.Base(cvPath)
	}

	chain := []workflow.ApproverInput{
		{Role: "chair", Name: "Department Chair", Email: "chair@example.edu"},
		{Role: "dean", Name: "Dean of the College", Email: "dean@example.edu"},
		{Role: "provost", Name: "Vice Provost", Email: "provost@example.edu"},
	}

	for i := 1; i <= count; i++ {
		rec, err := svc.Engine.Submit(ctx, demoInput(i, chain, cvName, bytes.NewReader(cv)))
		if err != nil {
			return fmt.Errorf("submit #%d: %w", i, err)
		}
		id := rec.ID
		fmt.Printf("📥 %s submitted for %s\n", id, rec.FacultyMember.Name)

		for step := 0; step < approveSteps && step < len(chain); step++ {
			link, err := svc.Tokens.Issue(id, chain[step].Email, step)
			if err != nil {
				return fmt.Errorf("issue token for %s: %w", id, err)
			}
			rec, err = svc.Engine.Approve(ctx, id, workflow.ActionInput{
				ApproverEmail: chain[step].Email,
				Signature:     chain[step].Name,
				Notes:         "approved by seed",
				Token:         link,
			})
			if err != nil {
				return fmt.Errorf("approve %s at step %d: %w", id, step, err)
			}
		}

		if deny && approveSteps < len(chain) {
			approver := chain[approveSteps]
			link, err := svc.Tokens.Issue(id, approver.Email, approveSteps)
			if err != nil {
				return fmt.Errorf("issue token for %s: %w", id, err)
			}
			rec, err = svc.Engine.Deny(ctx, id, workflow.ActionInput{
				ApproverEmail: approver.Email,
				Signature:     approver.Name,
				Notes:         "denied by seed",
				Token:         link,
			})
			if err != nil {
				return fmt.Errorf("deny %s: %w", id, err)
			}
		}
		fmt.Printf("✅ %s is %s (%d history entries)\n", rec.ID, rec.Status, len(rec.StatusHistory))
	}
	return nil
}

func demoInput(n int, chain []workflow.ApproverInput, cvName string, cv io.Reader) workflow.SubmitInput {
	return workflow.SubmitInput{
		FacultyName:     fmt.Sprintf("Demo Faculty %d", n),
		FacultyEmail:    fmt.Sprintf("faculty%d@example.edu", n),
		FacultyTitle:    "Associate Professor",
		Department:      "Biomedical Engineering",
		College:         "School of Engineering",
		AppointmentType: "Secondary",
		EffectiveDate:   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Duration:        "3 years",
		Rationale:       "Joint appointment supporting shared research and teaching.",
		Approvers:       append([]workflow.ApproverInput(nil), chain...),
		CVFileName:      cvName,
		CV:              cv,
	}
}
