package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"blogbuilder/internal/config"
	"blogbuilder/internal/history"
	"blogbuilder/internal/linkcheck"
	"blogbuilder/internal/lint"
	"blogbuilder/internal/metrics"
	"blogbuilder/internal/render"
	"blogbuilder/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blog.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Drafts bool   `help:"Include draft posts in the output"`
		Output string `short:"o" help:"Override the output directory"`
	} `cmd:"" help:"Build the site into the output directory"`

	Init struct {
		Dir   string `arg:"" optional:"" help:"Directory to initialize" default:"."`
		Force bool   `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Initialize a new blog with a starter configuration and sample post"`

	New struct {
		Title string `arg:"" help:"Title of the new post"`
	} `cmd:"" help:"Create a new draft post"`

	Lint struct {
		Links bool `help:"Also verify internal links in the rendered output"`
	} `cmd:"" help:"Check content for front matter and markup problems"`

	Serve struct {
		Drafts bool   `help:"Include draft posts in the preview" default:"true"`
		Addr   string `help:"Override the listen address"`
	} `cmd:"" help:"Build, serve and rebuild the site on changes"`

	History struct {
		Limit int `short:"n" help:"Number of builds to show" default:"20"`
	} `cmd:"" help:"Show recent build history"`
}

func main() {
	// A local .env can hold NATS credentials and similar. Missing file is fine.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("blogbuilder"),
		kong.Description("Markdown blog compiler with preview server."),
		kong.Vars{"version": version.String()},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		// init must work before any configuration exists
		if kctx.Command() == "init <dir>" || kctx.Command() == "init" {
			cfg = config.Default()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	setupLogging(cfg, CLI.Verbose)

	var runErr error
	switch kctx.Command() {
	case "build":
		runErr = runBuild(cfg)
	case "init <dir>", "init":
		runErr = runInit(CLI.Init.Dir, CLI.Init.Force)
	case "new <title>":
		runErr = runNew(cfg, CLI.New.Title)
	case "lint":
		runErr = runLint(cfg)
	case "serve":
		runErr = runServe(cfg)
	case "history":
		runErr = runHistory(cfg)
	default:
		runErr = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if runErr != nil {
		slog.Error("Command failed", "command", kctx.Command(), "error", runErr)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config, verbose bool) {
	level := cfg.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runBuild(cfg *config.Config) error {
	if CLI.Build.Output != "" {
		cfg.Output.Dir = CLI.Build.Output
	}

	gen, err := render.NewGenerator(cfg,
		render.WithDrafts(cfg.Content.IncludeDrafts || CLI.Build.Drafts),
		render.WithRecorder(metrics.NoopRecorder{}),
	)
	if err != nil {
		return err
	}

	report, err := gen.Build(context.Background())
	if err != nil {
		return err
	}
	recordBuild(cfg, report)

	if report.Outcome == render.OutcomeWarning {
		for _, w := range report.Warnings {
			slog.Warn("Build warning", "error", w)
		}
	}
	return nil
}

func runLint(cfg *config.Config) error {
	linter := lint.NewLinter(lint.DefaultRules())
	result, err := linter.Run(cfg.Content.Dir)
	if err != nil {
		return err
	}

	for _, issue := range result.Issues {
		line := ""
		if issue.Line > 0 {
			line = fmt.Sprintf(":%d", issue.Line)
		}
		fmt.Printf("%s%s: %s: [%s] %s\n", issue.FilePath, line, issue.Severity, issue.Rule, issue.Message)
	}

	if CLI.Lint.Links {
		if err := runLinkCheck(cfg); err != nil {
			return err
		}
	}

	if result.HasErrors() {
		return fmt.Errorf("%d error(s) found", result.ErrorCount())
	}
	slog.Info("Lint finished", "issues", len(result.Issues))
	return nil
}

func runLinkCheck(cfg *config.Config) error {
	if _, err := os.Stat(cfg.Output.Dir); os.IsNotExist(err) {
		return fmt.Errorf("output directory %s does not exist; run build first", cfg.Output.Dir)
	}
	broken, err := linkcheck.Check(cfg.Output.Dir, cfg.Site.BaseURL)
	if err != nil {
		return err
	}
	for _, b := range broken {
		fmt.Printf("%s: error: [links] broken link to %s\n", b.Page, b.Target)
	}
	if len(broken) > 0 {
		return fmt.Errorf("%d broken link(s) found", len(broken))
	}
	slog.Info("Link check passed")
	return nil
}

func runHistory(cfg *config.Config) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no builds recorded yet")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-8s  %s  published=%d drafts=%d pages=%d took=%s\n",
			e.Started.Format("2006-01-02 15:04:05"),
			e.Outcome, e.BuildID, e.Published, e.Drafts, e.Pages, e.Duration)
	}
	return nil
}

// recordBuild writes the report to the history database. History failures
// never fail the build itself.
func recordBuild(cfg *config.Config, report *render.BuildReport) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Failed to open build history", "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(context.Background(), report); err != nil {
		slog.Warn("Failed to record build history", "error", err)
	}
}
