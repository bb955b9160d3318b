package mcp

import (
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/ops"
)

// KnownTypes lists all valid tool groups.
var KnownTypes = []string{"user", "food", "log", "profile", "date", "strategy", "summary"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"user_register": {
		def:     registerToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRegister },
	},
	"user_login": {
		def:     loginToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogin },
	},
	"user_logout": {
		def:     logoutToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogout },
	},
	"user_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"food_add": {
		def:     addFoodToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddFood },
	},
	"food_compose": {
		def:     composeFoodToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleComposeFood },
	},
	"food_search": {
		def:     searchFoodsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearchFoods },
	},
	"food_get": {
		def:     getFoodToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetFood },
	},
	"food_import": {
		def:     importFoodsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportFoods },
	},
	"food_export": {
		def:     exportFoodsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportFoods },
	},
	"log_add": {
		def:     addEntryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddEntry },
	},
	"log_list": {
		def:     listEntriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListEntries },
	},
	"log_remove": {
		def:     removeEntryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemoveEntry },
	},
	"log_undo": {
		def:     undoLogToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndoLog },
	},
	"profile_update": {
		def:     updateProfileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateProfile },
	},
	"profile_get": {
		def:     getProfileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetProfile },
	},
	"profile_undo": {
		def:     undoProfileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndoProfile },
	},
	"date_set": {
		def:     setDateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetDate },
	},
	"strategy_set": {
		def:     setStrategyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetStrategy },
	},
	"summary_get": {
		def:     summaryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummary },
	},
	"summary_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDayReport },
	},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(KnownTypes, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the group from a tool name.
// Tool names follow the pattern "type_action" (e.g., "log_add" → "log").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	tools := make([]string, 0)
	for name := range toolRegistry {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server whose tools drive session. Tools listed in
// cfg.DisabledTools or belonging to cfg.DisabledTypes are not registered.
func NewServer(session *ops.Session, cfg *config.Config, logger *zap.Logger, version string) *server.MCPServer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := server.NewMCPServer(
		"yada",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(session, logger)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves session over stdio until the client disconnects.
func Run(session *ops.Session, cfg *config.Config, logger *zap.Logger, version string) error {
	s := NewServer(session, cfg, logger, version)
	return server.ServeStdio(s)
}
