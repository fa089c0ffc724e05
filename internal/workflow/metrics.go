package workflow

import (
	"context"
	"math"

	"github.com/tvan04/workflow-management-system-sub001/internal/filter"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// Metrics is the dashboard summary. It is derived from stored applications on
// every call and never persisted.
type Metrics struct {
	TotalApplications int            `json:"totalApplications"`
	ByStatus          map[string]int `json:"byStatus"`
	Pending           int            `json:"pending"`
	Approved          int            `json:"approved"`
	Denied            int            `json:"denied"`
	//submit to final decision, over decided applications only
	AverageProcessingHours float64 `json:"averageProcessingTimeHours"`
	//approved / decided, 0 when nothing is decided yet
	ApprovalRate float64 `json:"approvalRate"`
}

func (e *Engine) Metrics(ctx context.Context) (Metrics, error) {
	apps, err := e.ListAll(ctx)
	if err != nil {
		return Metrics{}, err
	}
	return summarize(apps), nil
}

func summarize(apps []models.Application) Metrics {
	m := Metrics{TotalApplications: len(apps), ByStatus: map[string]int{}}

	var totalHours float64
	for _, app := range apps {
		m.ByStatus[string(app.Status)]++

		switch app.Status {
		case models.StatusApproved:
			m.Approved++
		case models.StatusDenied:
			m.Denied++
		default:
			m.Pending++
			continue
		}

		decidedAt := app.UpdatedAt
		if n := len(app.StatusHistory); n > 0 {
			decidedAt = app.StatusHistory[n-1].Timestamp
		}
		totalHours += filter.ProcessingHours(app.SubmittedAt, decidedAt)
	}

	if decided := m.Approved + m.Denied; decided > 0 {
		m.AverageProcessingHours = round2(totalHours / float64(decided))
		m.ApprovalRate = round2(float64(m.Approved) / float64(decided))
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
