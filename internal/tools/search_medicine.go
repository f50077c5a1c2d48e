package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// SearchMedicineTool handles the search_medicine MCP tool. It proxies
// the backend's medicine search and returns the body untouched.
type SearchMedicineTool struct {
	api *medeasy.Client
}

// NewSearchMedicineTool creates a SearchMedicineTool.
func NewSearchMedicineTool(api *medeasy.Client) *SearchMedicineTool {
	return &SearchMedicineTool{api: api}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchMedicineTool) Definition() mcp.Tool {
	return mcp.NewTool("search_medicine",
		mcp.WithDescription(
			"의약품 검색 기능. 검색어와 연관이 있는 의약품 리스트를 리턴한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰"),
		),
		mcp.WithString("medicine_name",
			mcp.Required(),
			mcp.Description("검색할 의약품 이름"),
		),
		mcp.WithNumber("size",
			mcp.Description("결과 개수"),
			mcp.DefaultNumber(1),
		),
	)
}

// Handle processes the search_medicine tool call.
func (t *SearchMedicineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	name := req.GetString("medicine_name", "")
	if name == "" {
		return mcp.NewToolResultError("medicine_name이 필요합니다. 어떤 약을 찾으시나요?"), nil
	}

	size := int(req.GetFloat("size", 1))
	if size < 1 {
		size = 1
	}

	body, err := t.api.SearchMedicine(ctx, token, name, size)
	if err != nil {
		return backendFailure("의약품 검색", err), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
