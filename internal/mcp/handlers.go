package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/ops"
)

// Handlers holds the session driven by MCP tool calls. The transport may
// dispatch calls concurrently; mu runs them one at a time.
type Handlers struct {
	mu      sync.Mutex
	session *ops.Session
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(session *ops.Session, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{session: session, logger: logger}
}

// Request types for each tool

// UserRequest represents the arguments for user_register and user_login.
type UserRequest struct {
	Name  string `json:"name"`
	Login bool   `json:"login,omitempty"`
}

// AddFoodRequest represents the arguments for food_add.
type AddFoodRequest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Calories *float64 `json:"calories"`
}

// ComponentRef is one component in food_compose.
type ComponentRef struct {
	FoodID   string  `json:"food_id"`
	Servings float64 `json:"servings"`
}

// ComposeFoodRequest represents the arguments for food_compose.
type ComposeFoodRequest struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Components []ComponentRef `json:"components"`
}

// SearchFoodsRequest represents the arguments for food_search.
type SearchFoodsRequest struct {
	Query    string `json:"query,omitempty"`
	MatchAll bool   `json:"match_all,omitempty"`
	Ranked   bool   `json:"ranked,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// IDRequest represents the arguments for food_get.
type IDRequest struct {
	ID string `json:"id"`
}

// PathRequest represents the arguments for food_import and food_export.
type PathRequest struct {
	Path string `json:"path,omitempty"`
}

// AddEntryRequest represents the arguments for log_add.
type AddEntryRequest struct {
	FoodID   string   `json:"food_id"`
	Servings *float64 `json:"servings,omitempty"`
	Date     string   `json:"date,omitempty"`
}

// DateRequest represents the arguments for tools taking only a date.
type DateRequest struct {
	Date string `json:"date,omitempty"`
}

// RemoveEntryRequest represents the arguments for log_remove.
type RemoveEntryRequest struct {
	Position int    `json:"position"`
	Date     string `json:"date,omitempty"`
}

// UpdateProfileRequest represents the arguments for profile_update.
type UpdateProfileRequest struct {
	Date     string   `json:"date,omitempty"`
	Gender   *string  `json:"gender,omitempty"`
	HeightCM *float64 `json:"height_cm,omitempty"`
	Age      *int     `json:"age,omitempty"`
	WeightKG *float64 `json:"weight_kg,omitempty"`
	Activity *string  `json:"activity_level,omitempty"`
}

// StrategyRequest represents the arguments for strategy_set.
type StrategyRequest struct {
	Name string `json:"name"`
}

// Handler implementations

// HandleRegister handles the user_register tool call.
func (h *Handlers) HandleRegister(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UserRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.Register(ctx, ops.RegisterInput{Name: input.Name, Login: input.Login}))
}

// HandleLogin handles the user_login tool call.
func (h *Handlers) HandleLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UserRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.Login(ctx, ops.LoginInput{Name: input.Name}))
}

// HandleLogout handles the user_logout tool call.
func (h *Handlers) HandleLogout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.Logout(ctx))
}

// HandleSave handles the user_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.Save(ctx))
}

// HandleAddFood handles the food_add tool call.
func (h *Handlers) HandleAddFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddFoodRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Calories == nil {
		return errorResult(errors.NewInvalidRequest("calories is required")), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.AddBasicFood(ops.AddBasicFoodInput{
		ID:       input.ID,
		Name:     input.Name,
		Keywords: input.Keywords,
		Calories: *input.Calories,
	}))
}

// HandleComposeFood handles the food_compose tool call.
func (h *Handlers) HandleComposeFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ComposeFoodRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	components := make([]ops.ComponentInput, len(input.Components))
	for i, c := range input.Components {
		components[i] = ops.ComponentInput{FoodID: c.FoodID, Servings: c.Servings}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.AddCompositeFood(ops.AddCompositeFoodInput{
		ID:         input.ID,
		Name:       input.Name,
		Keywords:   input.Keywords,
		Components: components,
	}))
}

// HandleSearchFoods handles the food_search tool call.
func (h *Handlers) HandleSearchFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchFoodsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.SearchFoods(ops.SearchFoodsInput{
		Query:    input.Query,
		MatchAll: input.MatchAll,
		Ranked:   input.Ranked,
		Limit:    input.Limit,
	}))
}

// HandleGetFood handles the food_get tool call.
func (h *Handlers) HandleGetFood(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.GetFood(ops.GetFoodInput{ID: input.ID}))
}

// HandleImportFoods handles the food_import tool call.
func (h *Handlers) HandleImportFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.ImportFile(ctx, ops.ImportFileInput{Path: input.Path}))
}

// HandleExportFoods handles the food_export tool call.
func (h *Handlers) HandleExportFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.ExportFoods(ctx, ops.ExportFoodsInput{Path: input.Path}))
}

// HandleAddEntry handles the log_add tool call.
func (h *Handlers) HandleAddEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddEntryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	servings := 1.0
	if input.Servings != nil {
		servings = *input.Servings
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.AddEntry(ops.AddEntryInput{
		Date:     input.Date,
		FoodID:   input.FoodID,
		Servings: servings,
	}))
}

// HandleListEntries handles the log_list tool call.
func (h *Handlers) HandleListEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.ListEntries(ops.ListEntriesInput{Date: input.Date}))
}

// HandleRemoveEntry handles the log_remove tool call.
func (h *Handlers) HandleRemoveEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveEntryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.RemoveEntry(ops.RemoveEntryInput{Date: input.Date, Position: input.Position}))
}

// HandleUndoLog handles the log_undo tool call.
func (h *Handlers) HandleUndoLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.UndoLog())
}

// HandleUpdateProfile handles the profile_update tool call.
func (h *Handlers) HandleUpdateProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateProfileRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.UpdateProfile(ops.UpdateProfileInput{
		Date:     input.Date,
		Gender:   input.Gender,
		HeightCM: input.HeightCM,
		Age:      input.Age,
		WeightKG: input.WeightKG,
		Activity: input.Activity,
	}))
}

// HandleGetProfile handles the profile_get tool call.
func (h *Handlers) HandleGetProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.GetProfile(ops.GetProfileInput{Date: input.Date}))
}

// HandleUndoProfile handles the profile_undo tool call.
func (h *Handlers) HandleUndoProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.UndoProfile())
}

// HandleSetDate handles the date_set tool call.
func (h *Handlers) HandleSetDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.SetDate(ops.SetDateInput{Date: input.Date}))
}

// HandleSetStrategy handles the strategy_set tool call.
func (h *Handlers) HandleSetStrategy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StrategyRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.SetStrategy(ops.SetStrategyInput{Name: input.Name}))
}

// HandleSummary handles the summary_get tool call.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.result(h.session.Summary(ops.SummaryInput{Date: input.Date}))
}

// HandleDayReport handles the summary_report tool call.
func (h *Handlers) HandleDayReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	out, err := h.session.DayReport(ops.SummaryInput{Date: input.Date})
	if err != nil {
		return h.result(out, err)
	}
	return mcp.NewToolResultText(out.Markdown), nil
}

// Result helpers

// result converts an ops return pair into a tool result, logging failures.
func (h *Handlers) result(data any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		h.logger.Debug("tool call failed", zap.String("code", string(errors.CodeOf(err))), zap.Error(err))
		if errors.Is(err, errors.ErrInternal) || errors.Is(err, errors.ErrInternalConsistency) {
			h.logger.Error("internal error", zap.Error(err))
		}
		return errorResult(err), nil
	}
	return successResult(data)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var yadaErr *errors.YadaError
	if stderrors.As(err, &yadaErr) {
		// Keep wrapper context such as "components[1]: " when present
		msg := yadaErr.Message
		if err != error(yadaErr) {
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    yadaErr.Code,
			"message": msg,
			"status":  yadaErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if yadaErr.Code != errors.ErrInternal && yadaErr.Details != nil {
			errorObj["details"] = yadaErr.Details
		}
		if yadaErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
