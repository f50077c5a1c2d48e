package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/match"
	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// ScheduleTimeTool handles the modify_schedule_time MCP tool. It
// resolves one schedule name and changes its take time. A name that
// resolves to nothing is a clarification message to the user, not a
// failure.
type ScheduleTimeTool struct {
	api     *medeasy.Client
	matcher match.Matcher
}

// NewScheduleTimeTool creates a ScheduleTimeTool.
func NewScheduleTimeTool(api *medeasy.Client, matcher match.Matcher) *ScheduleTimeTool {
	return &ScheduleTimeTool{api: api, matcher: matcher}
}

// Definition returns the MCP tool definition for registration.
func (t *ScheduleTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("modify_schedule_time",
		mcp.WithDescription(
			"사용자의 복용 일정 시간 변경. 시간대 이름으로 스케줄을 찾아 복용 시간을 수정한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
		mcp.WithString("schedule_name",
			mcp.Required(),
			mcp.Description("변경할 시간대 이름. 예: \"아침\""),
		),
		mcp.WithString("take_time",
			mcp.Required(),
			mcp.Description("복용 시간, HH:MM 또는 HH:MM:SS"),
		),
	)
}

// Handle processes the modify_schedule_time tool call.
func (t *ScheduleTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	name := req.GetString("schedule_name", "")
	if name == "" {
		return mcp.NewToolResultError("schedule_name이 필요합니다."), nil
	}

	takeTime, err := normalizeTakeTime(req.GetString("take_time", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := t.api.UserSchedules(ctx, token)
	if err != nil {
		return backendFailure("스케줄 조회", err), nil
	}

	results, err := t.matcher.Match(ctx, scheduleCandidates(slots), []string{name})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("시간대 이름 매칭에 실패했어요: %v", err)), nil
	}
	if len(results) == 0 || !results[0].Found {
		return mcp.NewToolResultText(fmt.Sprintf("'%s'에 해당하는 스케줄이 없습니다. 등록된 시간대: %s", name, slotNames(slots))), nil
	}

	body, err := t.api.UpdateScheduleTime(ctx, token, results[0].ID, takeTime)
	if err != nil {
		return backendFailure("복약 시간 변경", err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// normalizeTakeTime validates the requested time and widens it to the
// HH:MM:SS form the backend expects.
func normalizeTakeTime(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("take_time이 필요합니다. 몇 시로 변경할까요?")
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("take_time 형식이 올바르지 않습니다 (HH:MM 또는 HH:MM:SS): %q", raw)
}
