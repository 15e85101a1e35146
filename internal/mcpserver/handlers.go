package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultStatusLimit = 10

type handlers struct {
	svc    *syncer.Service
	logger *slog.Logger
}

func (h *handlers) listModes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.svc.Status(ctx)
	if err != nil {
		return toolError(err), nil
	}

	modes := st.Modes
	if c := req.GetString("category", ""); c != "" {
		modes = modes[:0:0]
		for _, m := range st.Modes {
			if m.Category == mode.Category(c) {
				modes = append(modes, m)
			}
		}
	}
	return jsonResult(struct {
		ModesDir string              `json:"modes_dir"`
		Modes    []syncer.ModeStatus `json:"modes"`
	}{st.ModesDir, modes})
}

func (h *handlers) previewOrder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := h.svc.Preview(ctx, overrides(req))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(struct {
		Strategy ordering.Strategy           `json:"strategy"`
		Order    []string                    `json:"order"`
		Skipped  []syncer.SkippedMode        `json:"skipped,omitempty"`
		Warnings []ordering.ReferenceWarning `json:"warnings,omitempty"`
	}{plan.Strategy, plan.Order, plan.Skipped, plan.Warnings})
}

func (h *handlers) syncModes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.svc.Sync(ctx, syncer.SyncOptions{
		Overrides:  overrides(req),
		DryRun:     req.GetBool("dry_run", false),
		ProjectDir: req.GetString("project_dir", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	h.logger.Info("sync requested over MCP", "target", report.Target, "modes", len(report.Modes), "dry_run", report.DryRun)
	return jsonResult(report)
}

func (h *handlers) validateModes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.svc.Validate(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(report)
}

func (h *handlers) syncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultStatusLimit)
	if limit <= 0 {
		limit = defaultStatusLimit
	}
	runs, err := h.svc.History(ctx, limit)
	if errors.Is(err, syncer.ErrHistoryDisabled) {
		return mcp.NewToolResultText("Sync history is disabled."), nil
	}
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(runs)
}

func overrides(req mcp.CallToolRequest) config.Overrides {
	var categories []mode.Category
	for _, c := range req.GetStringSlice("category_order", nil) {
		categories = append(categories, mode.Category(c))
	}
	return config.Overrides{
		Strategy:           ordering.Strategy(req.GetString("strategy", "")),
		CategoryOrder:      categories,
		WithinCategorySort: ordering.SortMode(req.GetString("within_category_sort", "")),
		CustomOrder:        req.GetStringSlice("custom_order", nil),
		PriorityModes:      req.GetStringSlice("priority_modes", nil),
		ExcludeModes:       req.GetStringSlice("exclude_modes", nil),
	}.Normalized()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func joinComma(list []string) string { return strings.Join(list, ", ") }
