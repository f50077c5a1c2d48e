// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it resolves configuration, builds the
// backend client, matcher chain, voice settings store, and token
// decoder, and injects them into the tools. No business logic lives
// here.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/medeasy-dev/medeasy-mcp/internal/auth"
	"github.com/medeasy-dev/medeasy-mcp/internal/config"
	"github.com/medeasy-dev/medeasy-mcp/internal/match"
	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
	"github.com/medeasy-dev/medeasy-mcp/internal/reconcile"
	"github.com/medeasy-dev/medeasy-mcp/internal/tools"
	"github.com/medeasy-dev/medeasy-mcp/internal/voice"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the redis connection and must
// be called on shutdown (typically via defer). It is always non-nil.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, noop, fmt.Errorf("loading configuration: %w", err)
	}

	// --- Create shared dependencies ---

	api := medeasy.New(cfg.MedeasyAPIURL, cfg.Timeout)

	// The matcher chain always resolves exact normalized names. The
	// remote fuzzy stage only joins when an API key is configured;
	// without one the server still works, just stricter about names.
	var fuzzy match.Matcher
	if cfg.OpenAIAPIKey != "" {
		fuzzy = match.NewOpenAIMatcher(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Timeout)
	} else {
		log.Printf("WARNING: OPENAI_API_KEY not set, schedule name matching is exact-only")
	}
	matcher := match.NewChain(fuzzy)

	kv := voice.NewRedisKV(cfg.RedisAddr, cfg.RedisPassword)
	voiceRepo := voice.NewRepository(kv)

	decoder := auth.NewDecoder(cfg.TokenSecret)
	engine := reconcile.NewEngine(cfg.Location)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"medeasy",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register medicine tools ---

	searchTool := tools.NewSearchMedicineTool(api)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	detailTool := tools.NewMedicineDetailTool(api)
	s.AddTool(detailTool.Definition(), detailTool.Handle)

	currentTool := tools.NewCurrentMedicationsTool(api)
	s.AddTool(currentTool.Definition(), currentTool.Handle)

	// --- Register routine and schedule tools ---

	registerTool := tools.NewRegisterRoutineTool(api, matcher)
	s.AddTool(registerTool.Definition(), registerTool.Handle)

	scheduleTimeTool := tools.NewScheduleTimeTool(api, matcher)
	s.AddTool(scheduleTimeTool.Definition(), scheduleTimeTool.Handle)

	scheduleCheckTool := tools.NewScheduleCheckTool(api, engine, cfg.Location)
	s.AddTool(scheduleCheckTool.Definition(), scheduleCheckTool.Handle)

	// --- Register voice setting tools ---

	voiceUpdateTool := tools.NewVoiceUpdateTool(decoder, voiceRepo, cfg.Location)
	s.AddTool(voiceUpdateTool.Definition(), voiceUpdateTool.Handle)

	voiceResetTool := tools.NewVoiceResetTool(decoder, voiceRepo)
	s.AddTool(voiceResetTool.Definition(), voiceResetTool.Handle)

	cleanup := func() {
		if err := kv.Close(); err != nil {
			log.Printf("WARNING: closing redis connection: %v", err)
		}
	}
	return s, cleanup, nil
}

// noop is the cleanup returned when initialization fails early.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the MedEasy tools effectively.
func serverInstructions() string {
	return `You are connected to MedEasy, a medication management service for Korean users.

## TOOLS

- search_medicine / get_medicine_by_id: look up medicines before registering routines.
- get_current_medications: what the user currently takes.
- register_medicine_routine: create a dosing routine. Pass the schedule
  names the user said (아침, 점심, 저녁, ...) as a comma-separated list;
  they are matched to the user's registered schedules automatically.
- modify_schedule_time: change when a schedule occurs.
- check_medication_schedule: ALWAYS use this when the user asks whether
  they took their medicine or what is coming up. It returns a ready-made
  Korean narrative plus a structured report.
- update_voice_setting / reset_voice_setting: TTS voice preferences.
  speed/pitch/volume are RELATIVE adjustments, not absolute values.

## RULES

- Every tool needs the user's jwt_token.
- Answer in Korean unless the user speaks another language.
- When check_medication_schedule returns a narrative, relay it
  conversationally instead of dumping the raw JSON.`
}
