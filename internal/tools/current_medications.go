package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// CurrentMedicationsTool handles the get_current_medications MCP tool.
type CurrentMedicationsTool struct {
	api *medeasy.Client
}

// NewCurrentMedicationsTool creates a CurrentMedicationsTool.
func NewCurrentMedicationsTool(api *medeasy.Client) *CurrentMedicationsTool {
	return &CurrentMedicationsTool{api: api}
}

// Definition returns the MCP tool definition for registration.
func (t *CurrentMedicationsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_current_medications",
		mcp.WithDescription(
			"사용자가 현재 복용 중인 의약품 목록을 조회한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
	)
}

// Handle processes the get_current_medications tool call.
func (t *CurrentMedicationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	body, err := t.api.CurrentMedications(ctx, token)
	if err != nil {
		return backendFailure("복용 중인 약 조회", err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
