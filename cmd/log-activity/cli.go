package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dratasich/log-activity/internal/config"
	"github.com/dratasich/log-activity/internal/logging"
	"github.com/dratasich/log-activity/internal/ops"
	"github.com/dratasich/log-activity/internal/report"
	"github.com/dratasich/log-activity/internal/rules"
	"github.com/dratasich/log-activity/internal/writer"
)

// appState holds what commands need after Before has run.
type appState struct {
	cfg *config.Config
	loc *time.Location
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	state := &appState{}
	app := &cli.App{
		Name:    "log-activity",
		Usage:   "Derive activity and working-time ledgers from activity logs",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultConfigPath(), Usage: "Config file path"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level: debug|info|warn|error"},
		},
		Before: func(c *cli.Context) error {
			logging.Init(false, logging.ParseLevel(c.String("log-level")))
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			loc, err := cfg.Location()
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			state.cfg = cfg
			state.loc = loc
			return nil
		},
		Commands: []*cli.Command{
			reportCmd(state),
			activitiesCmd(state),
			workingTimeCmd(state),
			classifyCmd(state),
			rulesCmd(state),
		},
	}
	return app
}

// defaultConfigPath returns ~/.config/log-activity/config.yaml, or a
// relative fallback when the home directory is unknown.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return home + "/.config/log-activity/config.yaml"
}

// rangeFlags are shared by all reporting commands.
func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "Start date (inclusive), yyyy-mm-dd; default: first of the current month"},
		&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Usage: "End date (exclusive), yyyy-mm-dd; default: tomorrow"},
	}
}

// parseRange resolves the --from/--to flags against the defaults.
func parseRange(c *cli.Context, loc *time.Location) (from, to time.Time, err error) {
	from, to = ops.DefaultRange(time.Now(), loc)
	if s := c.String("from"); s != "" {
		if from, err = time.ParseInLocation("2006-01-02", s, loc); err != nil {
			return from, to, cli.Exit(fmt.Sprintf("invalid --from %q (want yyyy-mm-dd)", s), 2)
		}
	}
	if s := c.String("to"); s != "" {
		if to, err = time.ParseInLocation("2006-01-02", s, loc); err != nil {
			return from, to, cli.Exit(fmt.Sprintf("invalid --to %q (want yyyy-mm-dd)", s), 2)
		}
	}
	if !from.Before(to) {
		return from, to, cli.Exit("--from must be before --to", 2)
	}
	return from, to, nil
}

// reportCmd creates the report command: both ledgers as CSV files.
func reportCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write the activity and working-time ledgers as CSV",
		Flags: append(rangeFlags(),
			&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "Output directory (default: config output_dir or cwd)"},
		),
		Action: func(c *cli.Context) error {
			from, to, err := parseRange(c, state.loc)
			if err != nil {
				return err
			}
			result, err := ops.Run(c.Context, state.cfg, from, to)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			dir := c.String("out-dir")
			if dir == "" {
				dir = state.cfg.OutputDir
			}
			if dir == "" {
				dir = "."
			}
			granule := state.cfg.Policy.Rounding.Std()
			if path, err := writer.SaveActivities(dir, result.Activities, granule); err != nil {
				return cli.Exit(err.Error(), 1)
			} else if path != "" {
				slog.Info("wrote activity ledger", "path", path, "rows", len(result.Activities))
			}
			if path, err := writer.SaveWorkingTime(dir, result.WorkingDays); err != nil {
				return cli.Exit(err.Error(), 1)
			} else if path != "" {
				slog.Info("wrote working-time ledger", "path", path, "rows", len(result.WorkingDays))
			}

			return skipSummary(result.Skipped)
		},
	}
}

// activitiesCmd creates the activities command: one ledger only.
func activitiesCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "activities",
		Usage: "Compute the per-day, per-project activity ledger",
		Flags: append(rangeFlags(),
			&cli.BoolFlag{Name: "json", Usage: "Print rows as JSON instead of CSV"},
		),
		Action: func(c *cli.Context) error {
			from, to, err := parseRange(c, state.loc)
			if err != nil {
				return err
			}
			result, err := ops.Run(c.Context, state.cfg, from, to)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			granule := state.cfg.Policy.Rounding.Std()
			if c.Bool("json") {
				if err := outputJSON(ops.ActivityRows(result.Activities, granule)); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			} else if err := writer.WriteActivities(os.Stdout, result.Activities, granule); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return skipSummary(result.Skipped)
		},
	}
}

// workingTimeCmd creates the working-time command.
func workingTimeCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "working-time",
		Usage: "Compute the aligned working-time ledger with violation notes",
		Flags: append(rangeFlags(),
			&cli.BoolFlag{Name: "json", Usage: "Print rows as JSON instead of CSV"},
		),
		Action: func(c *cli.Context) error {
			from, to, err := parseRange(c, state.loc)
			if err != nil {
				return err
			}
			result, err := ops.Run(c.Context, state.cfg, from, to)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if c.Bool("json") {
				if err := outputJSON(ops.WorkingTimeRows(result.WorkingDays)); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			} else if err := writer.WriteWorkingTime(os.Stdout, result.WorkingDays); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return skipSummary(result.Skipped)
		},
	}
}

// classifyCmd creates the classify command, a debugging aid for rule
// authoring.
func classifyCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify a text against a configured rule group",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Required: true, Usage: "Rule group name, e.g. project-by-issue"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Return all matching labels instead of the first match"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("text argument is required", 2)
			}
			out, err := ops.Classify(state.cfg, ops.ClassifyInput{
				Text:  c.Args().First(),
				Group: c.String("group"),
				All:   c.Bool("all"),
			})
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if err := outputJSON(out); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// rulesCmd creates the rules command: list the loaded rule groups in
// declared (tie-break) order.
func rulesCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List configured category rule groups and patterns",
		Action: func(c *cli.Context) error {
			sets, err := rules.CompileAll(state.cfg.Rules)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			for _, name := range sets.Names() {
				fmt.Printf("%s:\n", name)
				for _, r := range sets.Get(name).Rules() {
					fmt.Printf("  %-20s %s\n", r.Label, r.Pattern)
				}
			}
			return nil
		},
	}
}

// skipSummary reports dropped records and turns them into a non-zero
// exit. Outputs are already written at this point; the run fails
// loudly but keeps its partial results.
func skipSummary(skipped []report.Diagnostic) error {
	if len(skipped) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, d := range skipped {
		counts[d.Source+": "+d.Reason]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		slog.Warn("skipped records", "what", k, "count", counts[k])
	}
	return cli.Exit(fmt.Sprintf("skipped %d records", len(skipped)), 1)
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
