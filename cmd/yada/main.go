package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/logging"
	"github.com/hpungsan/yada/internal/mcp"
	"github.com/hpungsan/yada/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"register": true, "users": true, "food": true, "log": true,
	"profile": true, "summary": true, "report": true, "strategy": true,
	"ui": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags precede a subcommand.
	if arg == "--user" || arg == "-u" || arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return strings.HasPrefix(arg, "--user=") || strings.HasPrefix(arg, "-u=")
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  __  __         _
  \ \/ /__ _  __| | __ _
   \  // _' |/ _' |/ _' |
   /_/ \__,_|\__,_|\__,_|

  Yet another diet assistant

  Usage: yada [--user NAME] <command> [options]
         yada --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		app := newCLIApp(&cliEnv{cfg: config.DefaultConfig(), logger: zap.NewNop(), now: time.Now})
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fail("could not determine base directory: %v", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logger, closeLog, err := logging.New(baseDir, cfg)
	if err != nil {
		fail("failed to open log: %v", err)
	}
	defer closeLog()

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	env := &cliEnv{
		db:         database,
		cfg:        cfg,
		logger:     logger,
		exportsDir: filepath.Join(baseDir, "exports"),
		now:        time.Now,
	}

	if isCLIMode(os.Args) {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			logger.Debug("command failed", zap.Strings("args", os.Args[1:]), zap.Error(err))
			closeLog()
			database.Close()
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'yada --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", zap.Strings("types", unknown))
	}

	// MCP server mode (default)
	ctx := context.Background()
	session, err := ops.NewSession(ctx, database, cfg, ops.Options{
		Logger:     logger,
		ExportsDir: env.exportsDir,
	})
	if err != nil {
		fail("failed to start session: %v", err)
	}

	runErr := mcp.Run(session, cfg, logger, Version)

	// The client went away; keep what the logged-in user did.
	if session.User() != "" {
		if _, err := session.Save(ctx); err != nil {
			logger.Error("failed to save session on exit", zap.String("user", session.User()), zap.Error(err))
		}
	}
	if runErr != nil {
		logger.Error("mcp server stopped", zap.Error(runErr))
		closeLog()
		database.Close()
		fail("%v", runErr)
	}
}
