package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/match"
	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// Parameter bounds enforced before the backend ever sees the request.
const (
	minDose          = 1
	maxDose          = 10
	minTotalQuantity = 1
	maxTotalQuantity = 200
	minIntervalDays  = 1
	maxIntervalDays  = 30
)

// RegisterRoutineTool handles the register_medicine_routine MCP tool.
// Free-text schedule names ("아침", "저녁약") are resolved to schedule
// ids through the matcher before the routine is created.
type RegisterRoutineTool struct {
	api     *medeasy.Client
	matcher match.Matcher
}

// NewRegisterRoutineTool creates a RegisterRoutineTool.
func NewRegisterRoutineTool(api *medeasy.Client, matcher match.Matcher) *RegisterRoutineTool {
	return &RegisterRoutineTool{api: api, matcher: matcher}
}

// Definition returns the MCP tool definition for registration.
func (t *RegisterRoutineTool) Definition() mcp.Tool {
	return mcp.NewTool("register_medicine_routine",
		mcp.WithDescription(
			"의약품 복용 루틴을 등록한다. 사용자가 말한 시간대 이름(아침, 점심, 저녁 등)을 "+
				"등록된 스케줄에 매칭한 뒤 루틴을 생성한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
		mcp.WithString("medicine_id",
			mcp.Required(),
			mcp.Description("등록할 의약품 식별자"),
		),
		mcp.WithString("nickname",
			mcp.Description("의약품 별명"),
		),
		mcp.WithNumber("dose",
			mcp.Description("1회 복용량 (1~10)"),
			mcp.DefaultNumber(1),
		),
		mcp.WithNumber("total_quantity",
			mcp.Required(),
			mcp.Description("의약품 총 수량 (1~200)"),
		),
		mcp.WithNumber("interval_days",
			mcp.Description("복용 주기, 일 단위 (1~30)"),
			mcp.DefaultNumber(1),
		),
		mcp.WithString("schedule_names",
			mcp.Required(),
			mcp.Description("복용 시간대 이름, 쉼표로 구분. 예: \"아침, 저녁\""),
		),
	)
}

// Handle processes the register_medicine_routine tool call.
func (t *RegisterRoutineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	medicineID := req.GetString("medicine_id", "")
	if medicineID == "" {
		return mcp.NewToolResultError("medicine_id가 필요합니다."), nil
	}

	names := splitNames(req.GetString("schedule_names", ""))
	if len(names) == 0 {
		return mcp.NewToolResultError("schedule_names가 필요합니다. 언제 복용하실지 알려주세요 (예: 아침, 저녁)."), nil
	}

	dose := int(req.GetFloat("dose", 1))
	if dose < minDose || dose > maxDose {
		return mcp.NewToolResultError(fmt.Sprintf("dose는 %d에서 %d 사이여야 합니다.", minDose, maxDose)), nil
	}
	totalQuantity := int(req.GetFloat("total_quantity", 0))
	if totalQuantity < minTotalQuantity || totalQuantity > maxTotalQuantity {
		return mcp.NewToolResultError(fmt.Sprintf("total_quantity는 %d에서 %d 사이여야 합니다.", minTotalQuantity, maxTotalQuantity)), nil
	}
	intervalDays := int(req.GetFloat("interval_days", 1))
	if intervalDays < minIntervalDays || intervalDays > maxIntervalDays {
		return mcp.NewToolResultError(fmt.Sprintf("interval_days는 %d에서 %d 사이여야 합니다.", minIntervalDays, maxIntervalDays)), nil
	}

	slots, err := t.api.UserSchedules(ctx, token)
	if err != nil {
		return backendFailure("스케줄 조회", err), nil
	}

	results, err := t.matcher.Match(ctx, scheduleCandidates(slots), names)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("시간대 이름 매칭에 실패했어요: %v", err)), nil
	}

	var (
		ids       []int64
		seen      = make(map[int64]bool)
		unmatched []string
	)
	for _, r := range results {
		if !r.Found {
			unmatched = append(unmatched, r.Query)
			continue
		}
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"'%s'에 해당하는 스케줄이 없습니다. 등록된 시간대: %s",
			strings.Join(names, ", "), slotNames(slots),
		)), nil
	}

	body, err := t.api.CreateRoutine(ctx, token, medeasy.RoutineCreation{
		MedicineID:      medicineID,
		Nickname:        req.GetString("nickname", ""),
		Dose:            dose,
		TotalQuantity:   totalQuantity,
		IntervalDays:    intervalDays,
		UserScheduleIDs: ids,
	})
	if err != nil {
		return backendFailure("루틴 생성", err), nil
	}

	resp := struct {
		MatchedScheduleIDs []int64         `json:"matched_schedule_ids"`
		UnmatchedNames     []string        `json:"unmatched_names,omitempty"`
		Result             json.RawMessage `json:"result"`
	}{ids, unmatched, body}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func slotNames(slots []medeasy.ScheduleSlot) string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, s.Name)
	}
	if len(names) == 0 {
		return "(없음)"
	}
	return strings.Join(names, ", ")
}
