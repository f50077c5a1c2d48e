package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/medeasy-dev/medeasy-mcp/internal/auth"
	"github.com/medeasy-dev/medeasy-mcp/internal/voice"
)

// VoiceUpdateTool handles the update_voice_setting MCP tool. The user
// identity comes from the JWT, never from a parameter: a bad token is
// a hard stop.
type VoiceUpdateTool struct {
	decoder *auth.Decoder
	repo    *voice.Repository
	loc     *time.Location

	now func() time.Time
}

// NewVoiceUpdateTool creates a VoiceUpdateTool.
func NewVoiceUpdateTool(decoder *auth.Decoder, repo *voice.Repository, loc *time.Location) *VoiceUpdateTool {
	return &VoiceUpdateTool{decoder: decoder, repo: repo, loc: loc, now: time.Now}
}

// Definition returns the MCP tool definition for registration.
func (t *VoiceUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_voice_setting",
		mcp.WithDescription(
			"사용자별 커스텀 AI TTS 음성 설정을 부분 업데이트한다. "+
				"speaker는 절대값으로 변경되고 speed, pitch, volume은 기존값에 +/- 상대 조절 후 "+
				"-5~5 범위로 제한된다. 변경할 항목을 하나 이상 전달해야 한다.",
		),
		mcp.WithString("jwt_token",
			mcp.Required(),
			mcp.Description("사용자 JWT 토큰 (인증용)"),
		),
		mcp.WithString("speaker",
			mcp.Description("음성 화자 선택 (절대값으로 변경)"),
			mcp.Enum(voice.SpeakerIDs()...),
		),
		mcp.WithNumber("speed",
			mcp.Description("말하기 속도 상대 조절 (기존값에 +/- 적용, -5~5)"),
		),
		mcp.WithNumber("pitch",
			mcp.Description("음성 높낮이 상대 조절 (기존값에 +/- 적용, -5~5)"),
		),
		mcp.WithNumber("volume",
			mcp.Description("음성 볼륨 상대 조절 (기존값에 +/- 적용, -5~5)"),
		),
	)
}

// Handle processes the update_voice_setting tool call.
func (t *VoiceUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, fail := requireToken(req)
	if fail != nil {
		return fail, nil
	}

	userID, err := t.decoder.Decode(token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("유효하지 않은 JWT 토큰: %v", err)), nil
	}

	update := voice.UpdateRequest{}
	if speaker := req.GetString("speaker", ""); speaker != "" {
		if _, ok := voice.AvailableSpeakers[speaker]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("알 수 없는 화자 %q. 선택 가능: %v", speaker, voice.SpeakerIDs())), nil
		}
		update.Speaker = &speaker
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"speed", &update.SpeedDelta},
		{"pitch", &update.PitchDelta},
		{"volume", &update.VolumeDelta},
	} {
		delta, err := optionalInt(req, p.name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if delta != nil && (*delta < voice.MinLevel || *delta > voice.MaxLevel) {
			return mcp.NewToolResultError(fmt.Sprintf("%s 조절값은 %d에서 %d 사이여야 합니다.", p.name, voice.MinLevel, voice.MaxLevel)), nil
		}
		*p.dst = delta
	}

	result, err := t.repo.Update(ctx, userID, update)
	switch {
	case errors.Is(err, voice.ErrNoFields):
		return mcp.NewToolResultError("업데이트할 필드가 없습니다. speaker, speed, pitch, volume 중 하나 이상을 전달해주세요."), nil
	case errors.Is(err, voice.ErrStoreUnavailable):
		return mcp.NewToolResultError("음성 설정 서비스를 사용할 수 없습니다. 잠시 후 다시 시도해주세요."), nil
	case err != nil:
		return nil, fmt.Errorf("updating voice settings: %w", err)
	}

	resp := struct {
		Success            bool           `json:"success"`
		Message            string         `json:"message"`
		UserID             string         `json:"user_id"`
		PreviousSettings   voice.Settings `json:"previous_settings"`
		CalculationLog     []string       `json:"calculation_log"`
		FinalSettings      voice.Settings `json:"final_settings"`
		FinalSpeakerDetail string         `json:"speaker_info"`
		Timestamp          string         `json:"timestamp"`
	}{
		Success:            true,
		Message:            fmt.Sprintf("음성 설정이 성공적으로 업데이트되었습니다 (%d개 항목)", len(result.Log)),
		UserID:             userID,
		PreviousSettings:   result.Previous,
		CalculationLog:     result.Log,
		FinalSettings:      result.Current,
		FinalSpeakerDetail: speakerInfo(result.Current.Speaker),
		Timestamp:          t.now().In(t.loc).Format(time.RFC3339),
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func speakerInfo(id string) string {
	if info, ok := voice.AvailableSpeakers[id]; ok {
		return info
	}
	return "알 수 없는 화자"
}
