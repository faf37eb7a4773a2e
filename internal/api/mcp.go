package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lynxprompt/lynxprompt/internal/scan"
	"github.com/lynxprompt/lynxprompt/internal/synth"
	"github.com/lynxprompt/lynxprompt/internal/variables"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// NewMCPServer exposes detection, generation, scanning, and the
// blueprint catalog as MCP tools for AI assistants.
func NewMCPServer(deps AppDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"lynxprompt",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("detect_project",
		mcp.WithDescription("Inspect a local directory or remote git URL and report the project's stack, commands, and metadata."),
		mcp.WithString("source", mcp.Description("Local path or git URL to inspect."), mcp.Required()),
	), handleMCPDetect(deps))

	s.AddTool(mcp.NewTool("generate_config",
		mcp.WithDescription("Generate AI assistant configuration files from a project description."),
		mcp.WithString("name", mcp.Description("Project name."), mcp.Required()),
		mcp.WithString("description", mcp.Description("Short project description.")),
		mcp.WithArray("platforms", mcp.Description("Target platform ids, e.g. agents, claude, cursor.")),
		mcp.WithArray("stack", mcp.Description("Technology stack entries.")),
		mcp.WithString("persona", mcp.Description("Developer persona for the AI instructions section.")),
	), handleMCPGenerate(deps))

	s.AddTool(mcp.NewTool("scan_content",
		mcp.WithDescription("Scan text for secrets such as API keys, passwords, and connection strings."),
		mcp.WithString("content", mcp.Description("Text to scan."), mcp.Required()),
	), handleMCPScan())

	s.AddTool(mcp.NewTool("list_blueprints",
		mcp.WithDescription("List published configuration blueprints."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of blueprints to return (default 5).")),
	), handleMCPListBlueprints(deps))

	return s
}

func handleMCPDetect(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := req.RequireString("source")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		project := deps.Detector.Detect(ctx, source)
		if project == nil {
			return mcpError("no project signals detected at " + source), nil
		}
		out, err := json.MarshalIndent(project, "", "  ")
		if err != nil {
			return mcpError("encoding result: " + err.Error()), nil
		}
		return mcpText(string(out)), nil
	}
}

func handleMCPGenerate(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		b := wizard.NewBuilder().
			SetName(name).
			SetDescription(req.GetString("description", "")).
			SetPersona(req.GetString("persona", ""))
		if platforms := req.GetStringSlice("platforms", nil); len(platforms) > 0 {
			b.SetPlatforms(platforms)
		}
		if stack := req.GetStringSlice("stack", nil); len(stack) > 0 {
			b.SetStack(stack)
		}

		cfg, err := b.Finalize(wizard.TierForPlan(deps.Plan))
		if err != nil {
			return mcpError(err.Error()), nil
		}

		prof, err := deps.Profile.Get()
		if err != nil {
			return mcpError("loading profile: " + err.Error()), nil
		}
		saved, err := deps.Store.GetAllVariables()
		if err != nil {
			return mcpError("loading variables: " + err.Error()), nil
		}

		files, warnings, err := synth.Generate(cfg, prof, saved)
		if err != nil {
			return mcpError("generation failed: " + err.Error()), nil
		}

		var sb strings.Builder
		for _, w := range warnings {
			fmt.Fprintf(&sb, "warning: %s\n", w)
		}
		for i, f := range files {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "=== %s ===\n%s", f.FileName, f.Content)
		}
		return mcpText(sb.String()), nil
	}
}

func handleMCPScan() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		matches := scan.Scan(content)
		if len(matches) == 0 {
			return mcpText("No potential secrets found."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d potential secret(s):\n", len(matches))
		for _, m := range matches {
			fmt.Fprintf(&sb, "- line %d: %s (%s)\n", m.Line, m.Type, m.Snippet)
		}
		return mcpText(sb.String()), nil
	}
}

func handleMCPListBlueprints(deps AppDeps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 5)
		bps, err := deps.Store.ListBlueprints(limit, 0)
		if err != nil {
			return mcpError("listing blueprints: " + err.Error()), nil
		}
		if len(bps) == 0 {
			return mcpText("No blueprints published yet."), nil
		}
		var sb strings.Builder
		for _, bp := range bps {
			fmt.Fprintf(&sb, "%s  %s", bp.ID, bp.Title)
			if bp.Platform != "" {
				if p, ok := synth.ParsePlatform(bp.Platform); ok {
					fmt.Fprintf(&sb, " [%s]", p.Label())
				}
			}
			if vars := variables.Extract(bp.Content); len(vars) > 0 {
				fmt.Fprintf(&sb, " (variables: %s)", strings.Join(vars, ", "))
			}
			sb.WriteString("\n")
		}
		return mcpText(sb.String()), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}}}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: msg}}, IsError: true}
}
