package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/auth"
	"github.com/medeasy-dev/medeasy-mcp/internal/voice"
)

// VoiceResetTool handles the reset_voice_setting MCP tool. It removes
// the stored record so the user falls back to defaults on the next
// read.
type VoiceResetTool struct {
	decoder *auth.Decoder
	repo    *voice.Repository
}

// NewVoiceResetTool creates a VoiceResetTool.
func NewVoiceResetTool(decoder *auth.Decoder, repo *voice.Repository) *VoiceResetTool {
	return &VoiceResetTool{decoder: decoder, repo: repo}
}

// Definition returns the MCP tool definition for registration.
func (t *VoiceResetTool) Definition() mcp.Tool {
	return mcp.NewTool("reset_voice_setting",
		mcp.WithDescription(
			"사용자의 음성 설정을 기본값으로 초기화한다. 저장된 설정을 삭제하며 "+
				"다음 조회부터 기본값이 적용된다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰 (인증용)"),
		),
	)
}

// Handle processes the reset_voice_setting tool call.
func (t *VoiceResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	userID, err := t.decoder.Decode(token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("유효하지 않은 JWT 토큰: %v", err)), nil
	}

	deleted, err := t.repo.Delete(ctx, userID)
	if errors.Is(err, voice.ErrStoreUnavailable) {
		return mcp.NewToolResultError("음성 설정 서비스를 사용할 수 없습니다. 잠시 후 다시 시도해주세요."), nil
	}
	if err != nil {
		return nil, fmt.Errorf("deleting voice settings: %w", err)
	}

	message := "저장된 음성 설정이 없어 기본값이 그대로 적용됩니다."
	if deleted {
		message = "음성 설정이 기본값으로 초기화되었습니다."
	}

	resp := struct {
		Success         bool           `json:"success"`
		Message         string         `json:"message"`
		UserID          string         `json:"user_id"`
		Deleted         bool           `json:"deleted"`
		DefaultSettings voice.Settings `json:"default_settings"`
	}{true, message, userID, deleted, voice.Defaults()}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
