package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
	"github.com/medeasy-dev/medeasy-mcp/internal/reconcile"
)

const dateLayout = "2006-01-02"

// ScheduleCheckTool handles the check_medication_schedule MCP tool. It
// fetches the schedule for a date range, reconciles it against the
// current time, and returns a Korean narrative plus the structured
// report.
type ScheduleCheckTool struct {
	api    *medeasy.Client
	engine *reconcile.Engine
	loc    *time.Location

	// now is swappable for tests.
	now func() time.Time
}

// NewScheduleCheckTool creates a ScheduleCheckTool.
func NewScheduleCheckTool(api *medeasy.Client, engine *reconcile.Engine, loc *time.Location) *ScheduleCheckTool {
	return &ScheduleCheckTool{api: api, engine: engine, loc: loc, now: time.Now}
}

// Definition returns the MCP tool definition for registration.
func (t *ScheduleCheckTool) Definition() mcp.Tool {
	return mcp.NewTool("check_medication_schedule",
		mcp.WithDescription(
			"복약 일정 확인. 기간 내 복용 일정을 조회해 아직 복용하지 않은 약과 "+
				"곧 복용할 약을 알려준다. 날짜를 생략하면 오늘 일정을 확인한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
		mcp.WithString("start_date",
			mcp.Description("조회 시작일, YYYY-MM-DD. 생략하면 오늘"),
		),
		mcp.WithString("end_date",
			mcp.Description("조회 종료일, YYYY-MM-DD. 생략하면 시작일과 동일"),
		),
	)
}

// Handle processes the check_medication_schedule tool call.
func (t *ScheduleCheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	now := t.now().In(t.loc)

	start, err := parseDateOr(req.GetString("start_date", ""), now, t.loc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("start_date 형식이 올바르지 않습니다 (YYYY-MM-DD): %v", err)), nil
	}
	end, err := parseDateOr(req.GetString("end_date", ""), start, t.loc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end_date 형식이 올바르지 않습니다 (YYYY-MM-DD): %v", err)), nil
	}
	if end.Before(start) {
		return mcp.NewToolResultError("end_date는 start_date보다 빠를 수 없습니다."), nil
	}

	days, err := t.api.ScheduleRange(ctx, token, start, end)
	if err != nil {
		return backendFailure("복약 일정 조회", err), nil
	}

	report := t.engine.Reconcile(start, end, now, days)

	resp := struct {
		Narrative string            `json:"narrative"`
		Report    *reconcile.Report `json:"report"`
	}{reconcile.Render(report), report}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// parseDateOr parses a YYYY-MM-DD date in loc, falling back to the
// date part of fallback when raw is empty.
func parseDateOr(raw string, fallback time.Time, loc *time.Location) (time.Time, error) {
	if raw == "" {
		y, m, d := fallback.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(dateLayout, raw, loc)
}
