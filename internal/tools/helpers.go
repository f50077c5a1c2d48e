// Package tools contains the MCP tools exposed to the assistant. Each
// tool lives in its own file and follows the same shape: a struct
// holding its dependencies, a Definition() for registration, and a
// Handle method. User-facing failures come back as tool results in
// Korean; only infrastructure bugs surface as Go errors.
package tools

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/match"
	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// requireToken pulls the jwt_token parameter every tool needs. The
// backend authorizes each request itself; tools only forward the token.
func requireToken(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	token := strings.TrimSpace(req.GetString("jwt_token", ""))
	if token == "" {
		return "", mcp.NewToolResultError("jwt_token이 필요합니다. 로그인 후 다시 시도해주세요.")
	}
	return token, nil
}

// backendFailure converts a medeasy client error into a Korean tool
// result. op names the action that failed, in user terms.
func backendFailure(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, medeasy.ErrBadEnvelope):
		return mcp.NewToolResultError(fmt.Sprintf("%s 중 서버 응답을 해석하지 못했어요: %v", op, err))
	case errors.Is(err, medeasy.ErrUnavailable):
		return mcp.NewToolResultError(fmt.Sprintf("%s에 실패했어요. 잠시 후 다시 시도해주세요: %v", op, err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s 중 오류가 발생했어요: %v", op, err))
	}
}

// scheduleCandidates adapts backend schedule slots to matcher input.
func scheduleCandidates(slots []medeasy.ScheduleSlot) []match.Candidate {
	out := make([]match.Candidate, 0, len(slots))
	for _, s := range slots {
		out = append(out, match.Candidate{ID: s.ID, Name: s.Name})
	}
	return out
}

// splitNames parses a comma-separated list of schedule names, dropping
// empties.
func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// optionalInt reads a numeric parameter that may be absent. JSON
// numbers arrive as float64; anything fractional or non-numeric is
// rejected so a bad delta never silently truncates.
func optionalInt(req mcp.CallToolRequest, name string) (*int, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, fmt.Errorf("%s은(는) 정수여야 합니다", name)
	}
	v := int(f)
	return &v, nil
}
