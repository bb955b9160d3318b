package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/ops"
)

// testSetup creates a temporary database, a seeded session and a config.
func testSetup(t *testing.T) (*ops.Session, *config.Config) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	session, err := ops.NewSession(context.Background(), database, cfg, ops.Options{
		Now:        func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) },
		ExportsDir: filepath.Join(tmpDir, "exports"),
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// loggedInHandlers returns handlers whose session has user "alice" logged in.
func loggedInHandlers(t *testing.T) *Handlers {
	t.Helper()
	session, _ := testSetup(t)
	h := NewHandlers(session, nil)
	result, err := h.HandleRegister(context.Background(), makeRequest(map[string]any{"name": "alice", "login": true}))
	if err != nil {
		t.Fatalf("HandleRegister error: %v", err)
	}
	parseOutput(t, result)
	return h
}

func TestHandleRegisterLogin(t *testing.T) {
	session, _ := testSetup(t)
	h := NewHandlers(session, nil)
	ctx := context.Background()

	result, err := h.HandleRegister(ctx, makeRequest(map[string]any{"name": "bob"}))
	if err != nil {
		t.Fatalf("HandleRegister error: %v", err)
	}
	out := parseOutput(t, result)
	if out["name"] != "bob" || out["logged_in"] != false {
		t.Errorf("register output = %v", out)
	}

	result, _ = h.HandleRegister(ctx, makeRequest(map[string]any{"name": "bob"}))
	assertErrorCode(t, result, "USER_EXISTS")

	result, _ = h.HandleLogin(ctx, makeRequest(map[string]any{"name": "carol"}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleLogin(ctx, makeRequest(map[string]any{"name": "bob"}))
	out = parseOutput(t, result)
	if out["date"] != "2024-01-01" || out["strategy"] != "harris-benedict" {
		t.Errorf("login output = %v", out)
	}

	result, _ = h.HandleLogout(ctx, makeRequest(nil))
	out = parseOutput(t, result)
	if out["name"] != "bob" {
		t.Errorf("logout output = %v", out)
	}

	result, _ = h.HandleSave(ctx, makeRequest(nil))
	assertErrorCode(t, result, "NO_SESSION")
}

func TestHandleFoods(t *testing.T) {
	session, _ := testSetup(t)
	h := NewHandlers(session, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		handler  func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args     map[string]any
		wantCode string
	}{
		{"add basic", h.HandleAddFood, map[string]any{"id": "APL", "calories": 95, "keywords": []any{"apple"}}, ""},
		{"add basic missing calories", h.HandleAddFood, map[string]any{"id": "X"}, "INVALID_REQUEST"},
		{"add basic duplicate", h.HandleAddFood, map[string]any{"id": "egg", "calories": 1}, "DUPLICATE_ID"},
		{"add basic bad type", h.HandleAddFood, map[string]any{"id": "Y", "calories": "lots"}, "INVALID_REQUEST"},
		{"add composite", h.HandleComposeFood, map[string]any{
			"id":         "SND",
			"components": []any{map[string]any{"food_id": "APL", "servings": 1}, map[string]any{"food_id": "bread", "servings": 2}},
		}, ""},
		{"composite unknown component", h.HandleComposeFood, map[string]any{
			"id":         "bad",
			"components": []any{map[string]any{"food_id": "nothing", "servings": 1}},
		}, "UNKNOWN_COMPONENT"},
		{"get", h.HandleGetFood, map[string]any{"id": "SND"}, ""},
		{"get unknown", h.HandleGetFood, map[string]any{"id": "bad"}, "UNKNOWN_FOOD"},
		{"search", h.HandleSearchFoods, map[string]any{"query": "apple", "limit": 5}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.handler(ctx, makeRequest(tc.args))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if tc.wantCode != "" {
				assertErrorCode(t, result, tc.wantCode)
				return
			}
			parseOutput(t, result)
		})
	}

	result, _ := h.HandleGetFood(ctx, makeRequest(map[string]any{"id": "SND"}))
	out := parseOutput(t, result)
	if out["calories_per_serving"] != 255.0 {
		t.Errorf("SND calories = %v, want 255", out["calories_per_serving"])
	}
}

func TestHandleLogAndUndo(t *testing.T) {
	h := loggedInHandlers(t)
	ctx := context.Background()

	// servings defaults to 1
	result, _ := h.HandleAddEntry(ctx, makeRequest(map[string]any{"food_id": "apple"}))
	out := parseOutput(t, result)
	if out["position"] != 1.0 || out["servings"] != 1.0 || out["calories"] != 95.0 {
		t.Errorf("log_add output = %v", out)
	}

	result, _ = h.HandleAddEntry(ctx, makeRequest(map[string]any{"food_id": "apple", "servings": -2}))
	assertErrorCode(t, result, "INVALID_SERVINGS")

	result, _ = h.HandleAddEntry(ctx, makeRequest(map[string]any{"food_id": "egg", "servings": 2, "date": "2024-01-02"}))
	parseOutput(t, result)

	result, _ = h.HandleListEntries(ctx, makeRequest(nil))
	out = parseOutput(t, result)
	if out["total_calories"] != 95.0 {
		t.Errorf("total = %v, want 95", out["total_calories"])
	}

	result, _ = h.HandleRemoveEntry(ctx, makeRequest(map[string]any{"position": 5}))
	assertErrorCode(t, result, "INDEX_OUT_OF_RANGE")

	result, _ = h.HandleRemoveEntry(ctx, makeRequest(map[string]any{"position": 1}))
	parseOutput(t, result)

	result, _ = h.HandleUndoLog(ctx, makeRequest(nil))
	out = parseOutput(t, result)
	if out["undone"] != "entry_removed" || out["remaining"] != 2.0 {
		t.Errorf("log_undo output = %v", out)
	}

	result, _ = h.HandleUndoProfile(ctx, makeRequest(nil))
	assertErrorCode(t, result, "EMPTY_UNDO_STACK")
}

func TestHandleProfileAndSummary(t *testing.T) {
	h := loggedInHandlers(t)
	ctx := context.Background()

	result, _ := h.HandleSummary(ctx, makeRequest(nil))
	out := parseOutput(t, result)
	if _, ok := out["target"]; ok {
		t.Errorf("summary without profile has target: %v", out)
	}

	result, _ = h.HandleUpdateProfile(ctx, makeRequest(map[string]any{"age": 30}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleUpdateProfile(ctx, makeRequest(map[string]any{
		"gender": "male", "height_cm": 180, "age": 30, "weight_kg": 80, "activity_level": "sedentary",
	}))
	out = parseOutput(t, result)
	if out["target_calories"] != 2224.4 {
		t.Errorf("target = %v, want 2224.4", out["target_calories"])
	}

	result, _ = h.HandleGetProfile(ctx, makeRequest(map[string]any{"date": "2024-02-01"}))
	out = parseOutput(t, result)
	if out["explicit"] != false || out["effective_from"] != "2024-01-01" {
		t.Errorf("profile_get output = %v", out)
	}

	result, _ = h.HandleSetStrategy(ctx, makeRequest(map[string]any{"name": "mifflin-st-jeor"}))
	parseOutput(t, result)

	result, _ = h.HandleAddEntry(ctx, makeRequest(map[string]any{"food_id": "rice"}))
	parseOutput(t, result)

	result, _ = h.HandleSummary(ctx, makeRequest(nil))
	out = parseOutput(t, result)
	if out["target"] != 2136.0 || out["consumed"] != 206.0 || out["status"] != "under" {
		t.Errorf("summary output = %v", out)
	}

	result, _ = h.HandleDayReport(ctx, makeRequest(nil))
	if result.IsError {
		t.Fatalf("summary_report failed: %s", extractErrorMessage(result))
	}
	if text := extractErrorMessage(result); !strings.Contains(text, "| 1 | White Rice | 1 | 206 |") {
		t.Errorf("report = %s", text)
	}

	result, _ = h.HandleSetDate(ctx, makeRequest(map[string]any{"date": "yesterday"}))
	out = parseOutput(t, result)
	if out["date"] != "2023-12-31" {
		t.Errorf("date_set output = %v", out)
	}
}

func TestHandleExportImport(t *testing.T) {
	h := loggedInHandlers(t)
	ctx := context.Background()

	result, _ := h.HandleExportFoods(ctx, makeRequest(map[string]any{"path": "backup.jsonl"}))
	out := parseOutput(t, result)
	if out["count"] != 16.0 {
		t.Errorf("export count = %v, want 16", out["count"])
	}

	// Everything already exists, so every definition fails as a duplicate.
	result, _ = h.HandleImportFoods(ctx, makeRequest(map[string]any{"path": "backup.jsonl"}))
	out = parseOutput(t, result)
	if failed := out["failed"].([]any); len(failed) != 16 {
		t.Errorf("import failed = %d, want 16", len(failed))
	}

	result, _ = h.HandleImportFoods(ctx, makeRequest(map[string]any{"path": "../etc/passwd.jsonl"}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandlers_RequireSession(t *testing.T) {
	session, _ := testSetup(t)
	h := NewHandlers(session, nil)
	ctx := context.Background()

	for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"log_add":        h.HandleAddEntry,
		"log_list":       h.HandleListEntries,
		"log_undo":       h.HandleUndoLog,
		"profile_get":    h.HandleGetProfile,
		"profile_update": h.HandleUpdateProfile,
		"summary_get":    h.HandleSummary,
	} {
		t.Run(name, func(t *testing.T) {
			result, err := handler(ctx, makeRequest(map[string]any{"food_id": "apple", "age": 3}))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			assertErrorCode(t, result, "NO_SESSION")
		})
	}
}

func TestHandlers_ConcurrentCallsAreSerialized(t *testing.T) {
	h := loggedInHandlers(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := h.HandleAddEntry(ctx, makeRequest(map[string]any{"food_id": "egg"}))
			if err != nil || result.IsError {
				t.Errorf("log_add failed: %v %s", err, extractErrorMessage(result))
			}
		}()
	}
	wg.Wait()

	result, _ := h.HandleListEntries(ctx, makeRequest(nil))
	out := parseOutput(t, result)
	entries := out["entries"].([]any)
	if len(entries) != n {
		t.Fatalf("entries = %d, want %d", len(entries), n)
	}
	for i, e := range entries {
		if pos := e.(map[string]any)["position"]; pos != float64(i+1) {
			t.Errorf("entries[%d].position = %v", i, pos)
		}
	}
}

func TestServerRegistration(t *testing.T) {
	session, cfg := testSetup(t)

	s := NewServer(session, cfg, nil, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"user_register", "user_login", "user_logout", "user_save",
		"food_add", "food_compose", "food_search", "food_get", "food_import", "food_export",
		"log_add", "log_list", "log_remove", "log_undo",
		"profile_update", "profile_get", "profile_undo",
		"date_set", "strategy_set", "summary_get", "summary_report",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTools = []string{"food_import", "food_export", "food_import"}
	s := NewServer(session, cfg, nil, "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"food_import", "food_export"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if _, ok := tools["food_add"]; !ok {
		t.Error("food_add should be registered")
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTypes = []string{"food"}
	cfg.DisabledTools = []string{"summary_report"}
	s := NewServer(session, cfg, nil, "test")
	tools := s.ListTools()

	for name := range tools {
		if strings.HasPrefix(name, "food_") || name == "summary_report" {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if len(tools) != len(toolRegistry)-7 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-7)
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(session, cfg, nil, "test")
	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"log_undo", "food_import"}, 0},
		{"one unknown", []string{"log_undo", "meal_plan"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if unknown := ValidateDisabledTools(tt.input); len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"food", "log", "meal"}); len(unknown) != 1 || unknown[0] != "meal" {
		t.Errorf("ValidateDisabledTypes() = %v, want [meal]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 21 {
		t.Errorf("AllToolNames() returned %d names, want 21", len(names))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	for _, name := range names {
		typ := GetTypeForTool(name)
		if len(ValidateDisabledTypes([]string{typ})) != 0 {
			t.Errorf("tool %q has unknown type %q", name, typ)
		}
	}
}

func TestDecode_TypeMismatchNamesField(t *testing.T) {
	h := loggedInHandlers(t)

	result, err := h.HandleAddEntry(context.Background(), makeRequest(map[string]any{
		"food_id":  "apple",
		"servings": "two",
	}))
	if err != nil {
		t.Fatalf("HandleAddEntry error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
	if msg := extractErrorMessage(result); !strings.Contains(msg, "servings must be a number") {
		t.Errorf("message = %q, want the field named", msg)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Errorf("message leaks internals: %v", errObj["message"])
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("components[1]: %w", errors.NewUnknownComponent("SND", "JAM"))

	errObj := errorObject(t, errorResult(wrapped))
	if errObj["code"] != string(errors.ErrUnknownComponent) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrUnknownComponent)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "components[1]") {
		t.Errorf("message should contain wrapper context, got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewIndexOutOfRange("2024-01-01", 4, 2)))
	if errObj["code"] != string(errors.ErrIndexOutOfRange) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrIndexOutOfRange)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != "INTERNAL" || errObj["status"] != 500.0 {
		t.Errorf("error = %v", errObj)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %s, got success: %s", expectedCode, extractErrorMessage(result))
		return
	}
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
