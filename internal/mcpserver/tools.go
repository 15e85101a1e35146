package mcpserver

import (
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/mark3labs/mcp-go/mcp"
)

func strategyNames() []string {
	var out []string
	for _, s := range ordering.Strategies() {
		out = append(out, string(s))
	}
	return out
}

func categoryNames() []string {
	var out []string
	for _, c := range mode.AllCategories() {
		out = append(out, string(c))
	}
	return out
}

// orderingOptions are the arguments shared by preview_order and sync_modes.
func orderingOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("strategy",
			mcp.Description("Ordering strategy. Defaults to the configured one."),
			mcp.Enum(strategyNames()...),
		),
		mcp.WithArray("priority_modes",
			mcp.Description("Slugs moved to the front, in this order."),
			mcp.WithStringItems(),
		),
		mcp.WithArray("exclude_modes",
			mcp.Description("Slugs left out of the output."),
			mcp.WithStringItems(),
		),
		mcp.WithArray("custom_order",
			mcp.Description("Explicit order for the custom strategy."),
			mcp.WithStringItems(),
		),
		mcp.WithArray("category_order",
			mcp.Description("Category precedence for the category strategy: "+joinComma(categoryNames())+"."),
			mcp.WithStringItems(),
		),
		mcp.WithString("within_category_sort",
			mcp.Description("Sort inside a category for the category strategy."),
			mcp.Enum(string(ordering.SortAlphabetical), string(ordering.SortManual)),
		),
	}
}

func listModesTool() mcp.Tool {
	return mcp.NewTool("list_modes",
		mcp.WithDescription("List the discovered modes with their category and validity."),
		mcp.WithString("category",
			mcp.Description("Only list modes of this category."),
			mcp.Enum(categoryNames()...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func previewOrderTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Resolve the order modes would be written in, without writing anything."),
		mcp.WithReadOnlyHintAnnotation(true),
	}, orderingOptions()...)
	return mcp.NewTool("preview_order", opts...)
}

func syncModesTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Order the discovered modes and write them to the target configuration. The previous file is backed up."),
		mcp.WithString("project_dir",
			mcp.Description("Write the project configuration of this directory instead of the configured target."),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Render the configuration without writing it."),
		),
		mcp.WithDestructiveHintAnnotation(true),
	}, orderingOptions()...)
	return mcp.NewTool("sync_modes", opts...)
}

func validateModesTool() mcp.Tool {
	return mcp.NewTool("validate_modes",
		mcp.WithDescription("Strictly validate every mode file and report the problems found."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func syncStatusTool() mcp.Tool {
	return mcp.NewTool("sync_status",
		mcp.WithDescription("Show the most recent sync runs, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Number of runs to return (default 10)."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
