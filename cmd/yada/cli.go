package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/ops"
	"github.com/hpungsan/yada/internal/web"
)

// EnvUser names the user CLI commands act as when --user is not given.
const EnvUser = "YADA_USER"

// cliEnv carries what every command needs to open a session.
type cliEnv struct {
	db         *sql.DB
	cfg        *config.Config
	logger     *zap.Logger
	exportsDir string
	now        func() time.Time
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *cliEnv) *cli.App {
	app := &cli.App{
		Name:    "yada",
		Usage:   "Yet another diet assistant",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, EnvVars: []string{EnvUser}, Usage: "Act as this user; their state is saved afterwards"},
		},
		Commands: []*cli.Command{
			registerCmd(env),
			usersCmd(env),
			foodCmd(env),
			logCmd(env),
			profileCmd(env),
			summaryCmd(env),
			reportCmd(env),
			strategyCmd(env),
			uiCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "today, yesterday, tomorrow or YYYY-MM-DD (default: today)"}
}

// registerCmd creates the register command.
func registerCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Register a new user",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one user name is required"))
			}
			return env.run(c, false, func(s *ops.Session) (any, error) {
				return s.Register(c.Context, ops.RegisterInput{Name: c.Args().First()})
			})
		},
	}
}

// usersCmd creates the users command.
func usersCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "List registered users",
		Action: func(c *cli.Context) error {
			users, err := db.ListUsers(env.db)
			if err != nil {
				return outputError(err)
			}
			if users == nil {
				users = []db.User{}
			}
			return outputJSON(c.App.Writer, map[string]any{"users": users})
		},
	}
}

// foodCmd creates the food command group.
func foodCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "food",
		Usage: "Manage the shared food catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a basic food",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "Food ID"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to ID)"},
					&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
					&cli.Float64Flag{Name: "calories", Aliases: []string{"c"}, Required: true, Usage: "Calories per serving"},
				},
				Action: func(c *cli.Context) error {
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.AddBasicFood(ops.AddBasicFoodInput{
							ID:       c.String("id"),
							Name:     c.String("name"),
							Keywords: parseList(c.String("keywords")),
							Calories: c.Float64("calories"),
						})
					})
				},
			},
			{
				Name:  "compose",
				Usage: "Add a composite food built from existing foods",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "Food ID"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to ID)"},
					&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
					&cli.StringSliceFlag{Name: "component", Required: true, Usage: "Component as food_id[:servings], repeatable"},
				},
				Action: func(c *cli.Context) error {
					components, err := parseComponents(c.StringSlice("component"))
					if err != nil {
						return outputError(err)
					}
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.AddCompositeFood(ops.AddCompositeFoodInput{
							ID:         c.String("id"),
							Name:       c.String("name"),
							Keywords:   parseList(c.String("keywords")),
							Components: components,
						})
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Search foods by keyword",
				ArgsUsage: "[terms...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Require every term to match"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Max results"},
				},
				Action: func(c *cli.Context) error {
					query := strings.Join(c.Args().Slice(), " ")
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.SearchFoods(ops.SearchFoodsInput{
							Query:    query,
							MatchAll: c.Bool("all"),
							Ranked:   query != "",
							Limit:    c.Int("limit"),
						})
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Show one food",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.GetFood(ops.GetFoodInput{ID: c.Args().First()})
					})
				},
			},
			{
				Name:  "import",
				Usage: "Import foods from a JSONL file in the exports directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
				},
				Action: func(c *cli.Context) error {
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.ImportFile(c.Context, ops.ImportFileInput{Path: c.String("path")})
					})
				},
			},
			{
				Name:  "export",
				Usage: "Export the catalog to a JSONL file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: timestamped file in the exports directory)"},
				},
				Action: func(c *cli.Context) error {
					return env.run(c, false, func(s *ops.Session) (any, error) {
						return s.ExportFoods(c.Context, ops.ExportFoodsInput{Path: c.String("path")})
					})
				},
			},
		},
	}
}

// logCmd creates the log command group.
func logCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Manage the daily food log",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Log servings of a food",
				ArgsUsage: "<food_id> [servings]",
				Flags:     []cli.Flag{dateFlag()},
				Action: func(c *cli.Context) error {
					servings := 1.0
					if c.NArg() > 1 {
						v, err := strconv.ParseFloat(c.Args().Get(1), 64)
						if err != nil {
							return outputError(errors.NewInvalidRequest("servings must be a number"))
						}
						servings = v
					}
					return env.run(c, true, func(s *ops.Session) (any, error) {
						return s.AddEntry(ops.AddEntryInput{
							Date:     c.String("date"),
							FoodID:   c.Args().First(),
							Servings: servings,
						})
					})
				},
			},
			{
				Name:  "list",
				Usage: "List a day's entries",
				Flags: []cli.Flag{dateFlag()},
				Action: func(c *cli.Context) error {
					return env.run(c, true, func(s *ops.Session) (any, error) {
						return s.ListEntries(ops.ListEntriesInput{Date: c.String("date")})
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove the entry at a 1-based position",
				ArgsUsage: "<position>",
				Flags:     []cli.Flag{dateFlag()},
				Action: func(c *cli.Context) error {
					pos, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return outputError(errors.NewInvalidRequest("position must be an integer"))
					}
					return env.run(c, true, func(s *ops.Session) (any, error) {
						return s.RemoveEntry(ops.RemoveEntryInput{Date: c.String("date"), Position: pos})
					})
				},
			},
		},
	}
}

// profileCmd creates the profile command group.
func profileCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage the dated profile history",
		Subcommands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Record profile values from a date on; omitted values carry over",
				Flags: []cli.Flag{
					dateFlag(),
					&cli.StringFlag{Name: "gender", Usage: "male or female"},
					&cli.Float64Flag{Name: "height", Usage: "Height in cm"},
					&cli.IntFlag{Name: "age", Usage: "Age in years"},
					&cli.Float64Flag{Name: "weight", Usage: "Weight in kg"},
					&cli.StringFlag{Name: "activity", Usage: "Activity level name or 1-5"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateProfileInput{Date: c.String("date")}
					if c.IsSet("gender") {
						v := c.String("gender")
						input.Gender = &v
					}
					if c.IsSet("height") {
						v := c.Float64("height")
						input.HeightCM = &v
					}
					if c.IsSet("age") {
						v := c.Int("age")
						input.Age = &v
					}
					if c.IsSet("weight") {
						v := c.Float64("weight")
						input.WeightKG = &v
					}
					if c.IsSet("activity") {
						v := c.String("activity")
						input.Activity = &v
					}
					return env.run(c, true, func(s *ops.Session) (any, error) {
						return s.UpdateProfile(input)
					})
				},
			},
			{
				Name:  "show",
				Usage: "Show the profile in effect on a date",
				Flags: []cli.Flag{dateFlag()},
				Action: func(c *cli.Context) error {
					return env.run(c, true, func(s *ops.Session) (any, error) {
						return s.GetProfile(ops.GetProfileInput{Date: c.String("date")})
					})
				},
			},
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Compare a day's intake to its target",
		Flags: []cli.Flag{dateFlag()},
		Action: func(c *cli.Context) error {
			return env.run(c, true, func(s *ops.Session) (any, error) {
				return s.Summary(ops.SummaryInput{Date: c.String("date")})
			})
		},
	}
}

// reportCmd creates the report command. It prints Markdown, not JSON.
func reportCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print a day's Markdown report",
		Flags: []cli.Flag{dateFlag()},
		Action: func(c *cli.Context) error {
			var md string
			err := env.run(c, true, func(s *ops.Session) (any, error) {
				out, err := s.DayReport(ops.SummaryInput{Date: c.String("date")})
				if err != nil {
					return nil, err
				}
				md = out.Markdown
				return nil, nil
			})
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.App.Writer, md)
			return err
		},
	}
}

// strategyCmd creates the strategy command.
func strategyCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "strategy",
		Usage:     "Show or set the target calorie strategy",
		ArgsUsage: "[name]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return env.run(c, false, func(s *ops.Session) (any, error) {
					return s.Strategy(), nil
				})
			}
			return env.run(c, true, func(s *ops.Session) (any, error) {
				return s.SetStrategy(ops.SetStrategyInput{Name: c.Args().First()})
			})
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the read-only web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := env.cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}
			srv, err := web.NewServer(env.db, env.cfg, env.logger, Version, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			fmt.Fprintf(c.App.ErrWriter, "Yada dashboard running at http://%s\n", srv.Addr)
			return web.Run(c.Context, srv, env.logger)
		},
	}
}

// run opens a session, logs in the --user when given, runs fn and prints
// its result. The user's state is saved only when fn succeeds.
func (env *cliEnv) run(c *cli.Context, needUser bool, fn func(s *ops.Session) (any, error)) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := ops.NewSession(ctx, env.db, env.cfg, ops.Options{
		Logger:     env.logger,
		Now:        env.now,
		ExportsDir: env.exportsDir,
	})
	if err != nil {
		return outputError(err)
	}

	user := strings.TrimSpace(c.String("user"))
	if user != "" {
		if _, err := s.Login(ctx, ops.LoginInput{Name: user}); err != nil {
			return outputError(err)
		}
	} else if needUser {
		return outputError(errors.NewInvalidRequest("--user (or " + EnvUser + ") is required"))
	}

	out, err := fn(s)
	if err != nil {
		return outputError(err)
	}
	if user != "" {
		if _, err := s.Save(ctx); err != nil {
			return outputError(err)
		}
	}
	if out == nil {
		return nil
	}
	return outputJSON(c.App.Writer, out)
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var yErr *errors.YadaError
	if stderrors.As(err, &yErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", yErr.Code, yErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseList splits a comma-separated string, dropping empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			items = append(items, t)
		}
	}
	return items
}

// parseComponents parses "food_id[:servings]" specs. Servings default to 1.
func parseComponents(specs []string) ([]ops.ComponentInput, error) {
	components := make([]ops.ComponentInput, 0, len(specs))
	for _, spec := range specs {
		id, servStr, hasServ := strings.Cut(strings.TrimSpace(spec), ":")
		c := ops.ComponentInput{FoodID: strings.TrimSpace(id), Servings: 1}
		if hasServ {
			v, err := strconv.ParseFloat(strings.TrimSpace(servStr), 64)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid servings in component %q", spec))
			}
			c.Servings = v
		}
		components = append(components, c)
	}
	return components, nil
}
