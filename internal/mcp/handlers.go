package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/errors"
	"github.com/dratasich/log-activity/internal/ops"
	"github.com/dratasich/log-activity/internal/report"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{cfg: cfg}
}

// RangeRequest carries the shared date-range arguments.
type RangeRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// ClassifyRequest represents the arguments for classify.
type ClassifyRequest struct {
	Text  string `json:"text"`
	Group string `json:"group"`
	All   bool   `json:"all,omitempty"`
}

// ActivityReportResponse is the activity_report payload.
type ActivityReportResponse struct {
	Rows    []ops.ActivityRow   `json:"rows"`
	Skipped []report.Diagnostic `json:"skipped,omitempty"`
}

// WorkingTimeReportResponse is the working_time_report payload.
type WorkingTimeReportResponse struct {
	Rows    []ops.WorkingTimeRow `json:"rows"`
	Skipped []report.Diagnostic  `json:"skipped,omitempty"`
}

// HandleActivityReport handles the activity_report tool call.
func (h *Handlers) HandleActivityReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := h.run(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(&ActivityReportResponse{
		Rows:    ops.ActivityRows(result.Activities, h.cfg.Policy.Rounding.Std()),
		Skipped: result.Skipped,
	})
}

// HandleWorkingTimeReport handles the working_time_report tool call.
func (h *Handlers) HandleWorkingTimeReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RangeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := h.run(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(&WorkingTimeReportResponse{
		Rows:    ops.WorkingTimeRows(result.WorkingDays),
		Skipped: result.Skipped,
	})
}

// HandleClassify handles the classify tool call.
func (h *Handlers) HandleClassify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Classify(h.cfg, ops.ClassifyInput{
		Text:  input.Text,
		Group: input.Group,
		All:   input.All,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// run resolves the range arguments and executes the pipeline.
func (h *Handlers) run(ctx context.Context, input RangeRequest) (report.Result, error) {
	loc, err := h.cfg.Location()
	if err != nil {
		return report.Result{}, err
	}
	from, to := ops.DefaultRange(time.Now(), loc)
	if input.From != "" {
		if from, err = time.ParseInLocation("2006-01-02", input.From, loc); err != nil {
			return report.Result{}, errors.NewInvalidRequest("from: want yyyy-mm-dd")
		}
	}
	if input.To != "" {
		if to, err = time.ParseInLocation("2006-01-02", input.To, loc); err != nil {
			return report.Result{}, errors.NewInvalidRequest("to: want yyyy-mm-dd")
		}
	}
	return ops.Run(ctx, h.cfg, from, to)
}
