package mcp

import "github.com/mark3labs/mcp-go/mcp"

var registerToolDef = mcp.NewTool("user_register",
	mcp.WithDescription("Register a new user. Usernames are unique and contain no whitespace."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Username")),
	mcp.WithBoolean("login", mcp.Description("Log the new user in (default false)")),
)

var loginToolDef = mcp.NewTool("user_login",
	mcp.WithDescription("Log in and load the user's food log and profile history. The current user, if any, is saved first. Undo history starts empty."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Username")),
)

var logoutToolDef = mcp.NewTool("user_logout",
	mcp.WithDescription("Save and log out. Clears both undo stacks."),
)

var saveToolDef = mcp.NewTool("user_save",
	mcp.WithDescription("Save the current user's log, profile history and strategy."),
)

var addFoodToolDef = mcp.NewTool("food_add",
	mcp.WithDescription("Add a basic food with calories per serving to the shared catalog. Foods cannot be edited or removed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Unique food ID, no whitespace")),
	mcp.WithString("name", mcp.Description("Display name (default: the ID)")),
	mcp.WithArray("keywords", mcp.WithStringItems(), mcp.Description("Search keywords")),
	mcp.WithNumber("calories", mcp.Required(), mcp.Min(0), mcp.Description("Calories per serving")),
)

var composeFoodToolDef = mcp.NewTool("food_compose",
	mcp.WithDescription("Add a composite food made of servings of existing foods. Its calories per serving are computed once now."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Unique food ID, no whitespace")),
	mcp.WithString("name", mcp.Description("Display name (default: the ID)")),
	mcp.WithArray("keywords", mcp.WithStringItems(), mcp.Description("Search keywords")),
	mcp.WithArray("components", mcp.Required(),
		mcp.Description("Component foods"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"food_id":  map[string]any{"type": "string"},
				"servings": map[string]any{"type": "number", "exclusiveMinimum": 0},
			},
			"required": []string{"food_id", "servings"},
		}),
	),
)

var searchFoodsToolDef = mcp.NewTool("food_search",
	mcp.WithDescription("Search foods by keyword. Each term matches keywords containing it, case-insensitively."),
	mcp.WithString("query", mcp.Description("Whitespace-separated terms; empty lists all foods")),
	mcp.WithBoolean("match_all", mcp.Description("Require every term to match (default: any term)")),
	mcp.WithBoolean("ranked", mcp.Description("List exact keyword matches first")),
	mcp.WithNumber("limit", mcp.Description("Max results (default 20, max 100)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getFoodToolDef = mcp.NewTool("food_get",
	mcp.WithDescription("Get one food by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Food ID")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var importFoodsToolDef = mcp.NewTool("food_import",
	mcp.WithDescription("Import food definitions from a JSONL file in the exports directory. Invalid definitions are reported and skipped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("File name in the exports directory (.jsonl)")),
)

var exportFoodsToolDef = mcp.NewTool("food_export",
	mcp.WithDescription("Export the food catalog as JSONL to the exports directory."),
	mcp.WithString("path", mcp.Description("File name (default: foods-<timestamp>.jsonl)")),
)

var addEntryToolDef = mcp.NewTool("log_add",
	mcp.WithDescription("Log servings of a food. Undo with log_undo."),
	mcp.WithString("food_id", mcp.Required(), mcp.Description("Food ID")),
	mcp.WithNumber("servings", mcp.Description("Servings, > 0 (default 1)")),
	mcp.WithString("date", mcp.Description("YYYY-MM-DD, today, yesterday or tomorrow (default: active date)")),
)

var listEntriesToolDef = mcp.NewTool("log_list",
	mcp.WithDescription("List a date's log entries with positions and calories."),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var removeEntryToolDef = mcp.NewTool("log_remove",
	mcp.WithDescription("Remove the entry at a 1-based position. Later entries shift down. Undo with log_undo."),
	mcp.WithNumber("position", mcp.Required(), mcp.Min(1), mcp.Description("1-based position from log_list")),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
)

var undoLogToolDef = mcp.NewTool("log_undo",
	mcp.WithDescription("Undo the most recent log_add or log_remove. Profile changes are not affected."),
)

var updateProfileToolDef = mcp.NewTool("profile_update",
	mcp.WithDescription("Set profile values for a date. Omitted values carry over from the profile in effect; the first record needs all of them. Undo with profile_undo."),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
	mcp.WithString("gender", mcp.Enum("male", "female", "other")),
	mcp.WithNumber("height_cm", mcp.Description("Height in centimetres")),
	mcp.WithNumber("age", mcp.Description("Age in years")),
	mcp.WithNumber("weight_kg", mcp.Description("Weight in kilograms")),
	mcp.WithString("activity_level", mcp.Description("sedentary, lightly_active, moderately_active, very_active, extremely_active, or 1-5")),
)

var getProfileToolDef = mcp.NewTool("profile_get",
	mcp.WithDescription("Get the profile in effect on a date and its calorie target."),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var undoProfileToolDef = mcp.NewTool("profile_undo",
	mcp.WithDescription("Undo the most recent profile_update. Log changes are not affected."),
)

var setDateToolDef = mcp.NewTool("date_set",
	mcp.WithDescription("Set the active date used when a command names no date."),
	mcp.WithString("date", mcp.Description("YYYY-MM-DD, today, yesterday or tomorrow (default today)")),
)

var setStrategyToolDef = mcp.NewTool("strategy_set",
	mcp.WithDescription("Switch the calorie target formula. Logged entries and profiles are unchanged."),
	mcp.WithString("name", mcp.Required(), mcp.Enum("harris-benedict", "mifflin-st-jeor")),
)

var summaryToolDef = mcp.NewTool("summary_get",
	mcp.WithDescription("Consumed calories, target and difference (consumed - target) for a date."),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var reportToolDef = mcp.NewTool("summary_report",
	mcp.WithDescription("A date's entries and summary as Markdown."),
	mcp.WithString("date", mcp.Description("Date (default: active date)")),
	mcp.WithReadOnlyHintAnnotation(true),
)
