package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// MedicineDetailTool handles the get_medicine_by_id MCP tool.
type MedicineDetailTool struct {
	api *medeasy.Client
}

// NewMedicineDetailTool creates a MedicineDetailTool.
func NewMedicineDetailTool(api *medeasy.Client) *MedicineDetailTool {
	return &MedicineDetailTool{api: api}
}

// Definition returns the MCP tool definition for registration.
func (t *MedicineDetailTool) Definition() mcp.Tool {
	return mcp.NewTool("get_medicine_by_id",
		mcp.WithDescription(
			"medicine_id를 통한 단일 의약품 조회.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
		mcp.WithString("medicine_id",
			mcp.Required(),
			mcp.Description("조회할 의약품 식별자"),
		),
	)
}

// Handle processes the get_medicine_by_id tool call.
func (t *MedicineDetailTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	id := req.GetString("medicine_id", "")
	if id == "" {
		return mcp.NewToolResultError("medicine_id가 필요합니다."), nil
	}

	body, err := t.api.MedicineByID(ctx, token, id)
	if err != nil {
		return backendFailure("의약품 조회", err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
