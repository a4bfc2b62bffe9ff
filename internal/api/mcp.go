package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/mood"
	"github.com/unwindhq/unwind/internal/prefs"
	"github.com/unwindhq/unwind/internal/recommend"
	"github.com/unwindhq/unwind/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store      *storage.Store
	Prefs      *prefs.Manager
	Engine     *recommend.Engine
	Normalizer *content.Normalizer
}

// NewMCPServer creates an MCP server exposing the recommendation engine to
// LLM clients over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"unwind",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("unwind — mood-aware content recommendations for the current user."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("recommend",
			mcp.WithDescription("Generate ranked content recommendations for an emotional state, activity focus, time window, and energy level."),
			mcp.WithString("state", mcp.Description("Emotional state: calm-seeking, high-energy-release, growth-seeking, low-stimulation, undecided"), mcp.Required()),
			mcp.WithString("focus", mcp.Description("Activity focus: listen, watch, read, move, create, reset"), mcp.Required()),
			mcp.WithNumber("minutes", mcp.Description("Available minutes (default 60)")),
			mcp.WithNumber("energy", mcp.Description("Energy level 1–5 (default 3)")),
			mcp.WithBoolean("no_heavy", mcp.Description("Avoid emotionally heavy content")),
		),
		mcpRecommend(deps),
	)

	s.AddTool(
		mcp.NewTool("add_content",
			mcp.WithDescription("Normalize and cache one raw provider record so it becomes recommendable."),
			mcp.WithString("provider", mcp.Description("Provider kind: movie, tv, book, curated"), mcp.Required()),
			mcp.WithString("record", mcp.Description("The raw provider record as a JSON object"), mcp.Required()),
		),
		mcpAddContent(deps),
	)

	s.AddTool(
		mcp.NewTool("set_preference",
			mcp.WithDescription("Update a user preference field (liked_tags, disliked_tags, liked_genres, disliked_genres, intensity_tolerance, novelty_tolerance)."),
			mcp.WithString("key", mcp.Description("Preference key"), mcp.Required()),
			mcp.WithString("value", mcp.Description("JSON array for list keys, number for scalar keys"), mcp.Required()),
		),
		mcpSetPreference(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"mood://profiles",
			"State Profiles",
			mcp.WithResourceDescription("Static per-state scoring profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(),
	)

	return s
}

func mcpRecommend(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stateStr, err := req.RequireString("state")
		if err != nil {
			return mcpError("state is required"), nil
		}
		focusStr, err := req.RequireString("focus")
		if err != nil {
			return mcpError("focus is required"), nil
		}

		state, err := mood.ParseState(stateStr)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		focus, err := mood.ParseFocus(focusStr)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		minutes := req.GetInt("minutes", 60)
		energy := req.GetInt("energy", 3)

		pool, err := deps.Store.AllItems()
		if err != nil {
			return mcpError(fmt.Sprintf("loading candidate pool failed: %v", err)), nil
		}

		userPrefs, err := deps.Prefs.GetPreferences()
		if err != nil {
			userPrefs = content.Preferences{}
		}

		result, err := deps.Engine.Generate(ctx, recommend.Request{
			State:        state,
			Focus:        focus,
			AvailableMin: minutes,
			EnergyLevel:  energy,
			NoHeavy:      req.GetBool("no_heavy", false),
		}, pool, userPrefs)
		if err != nil {
			return mcpError(fmt.Sprintf("recommendation failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddContent(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider, err := req.RequireString("provider")
		if err != nil {
			return mcpError("provider is required"), nil
		}
		recordJSON, err := req.RequireString("record")
		if err != nil {
			return mcpError("record is required"), nil
		}

		var raw content.RawRecord
		if err := json.Unmarshal([]byte(recordJSON), &raw); err != nil {
			return mcpError(fmt.Sprintf("invalid record JSON: %v", err)), nil
		}

		item, err := deps.Normalizer.Normalize(raw, content.Provider(provider))
		if err != nil {
			return mcpError(fmt.Sprintf("record rejected: %v", err)), nil
		}

		if err := deps.Store.SaveItem(item); err != nil {
			return mcpError(fmt.Sprintf("failed to save item: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Cached item %s", item.ID)), nil
	}
}

func mcpSetPreference(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}

		if err := deps.Prefs.SetField(key, value); err != nil {
			return mcpError(fmt.Sprintf("failed to set preference: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Set %s = %s", key, value)), nil
	}
}

func mcpResourceProfiles() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		profiles := make(map[mood.State]mood.StateProfile, len(mood.States))
		for _, st := range mood.States {
			profiles[st] = mood.ProfileOf(st)
		}

		b, err := json.Marshal(map[string]any{
			"profiles":          profiles,
			"focus_multipliers": mood.FocusMultipliers(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profiles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
