package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
	"github.com/fwojciec/revise/bubbletea"
	"github.com/fwojciec/revise/chroma"
	"github.com/fwojciec/revise/clipboard"
	"github.com/fwojciec/revise/config"
	"github.com/fwojciec/revise/fs"
	"github.com/fwojciec/revise/gemini"
	"github.com/fwojciec/revise/git"
	"github.com/fwojciec/revise/gitdiff"
	"github.com/fwojciec/revise/jsonl"
	"github.com/fwojciec/revise/lipgloss"
	"github.com/fwojciec/revise/logger"
	"github.com/fwojciec/revise/merge"
	"github.com/fwojciec/revise/worddiff"
)

const usage = `usage: revise <command> [flags]

Commands:
  merge    Merge reviewer copies into a base text
  diff     Show the changes one reviewer copy makes
  status   List the conflicts recorded for a base text
  resolve  Pick winners for recorded conflicts
  history  List past merges of a base text

Run 'revise <command> -h' for the flags of a command.`

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "merge":
		return runMerge(ctx, args[1:])
	case "diff":
		return runDiff(ctx, args[1:])
	case "status":
		return runStatus(ctx, args[1:])
	case "resolve":
		return runResolve(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%w", args[0], ErrUsage)
	}
}

// parse parses args into fset. Asking for help is not an error.
func parse(fset *flag.FlagSet, args []string) (bool, error) {
	err := fset.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return false, nil
	}
	return err == nil, err
}

// commonFlags registers the flags every command accepts.
type commonFlags struct {
	configPath string
	logLevel   string
	logFile    string
}

func (c *commonFlags) register(fset *flag.FlagSet) {
	fset.StringVar(&c.configPath, "config", config.DefaultPath(), "path to the TOML config file")
	fset.StringVar(&c.logLevel, "log-level", "", "override the configured log level")
	fset.StringVar(&c.logFile, "log-file", "", "override the configured log file (- for stderr)")
}

// setup loads configuration and builds the App. The returned function
// releases the log file.
func (c *commonFlags) setup() (*App, func(), error) {
	cfg, unknown, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if c.logLevel != "" {
		cfg.Logger.LogLevel = c.logLevel
	}
	if c.logFile != "" {
		cfg.Logger.LogFilePath = c.logFile
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range unknown {
		log.Warn("unknown config key", "key", key, "path", c.configPath)
	}

	app := &App{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Config:      cfg,
		Logger:      log,
		Coordinator: merge.NewCoordinator(),
		Extractor:   fs.NewExtractor(),
		Patches: func(base string) revise.TextExtractor {
			return gitdiff.NewPatchExtractor(base)
		},
		Git: git.NewRunner(),
		Store: fs.NewConflictStore(
			fs.WithStrict(cfg.Merge.StrictRecord),
			fs.WithLogger(logger.Component(log, "store")),
		),
		Journal: jsonl.NewJournal(),
		Color:   !color.NoColor,
	}
	return app, func() { _ = closeLog() }, nil
}

func runMerge(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("merge", flag.ContinueOnError)
	var common commonFlags
	common.register(fset)
	base := fset.String("base", "", "base text (when no manifest is given)")
	baseRev := fset.String("rev", "", "load the base from this git revision")
	repo := fset.String("repo", ".", "git repository for -rev")
	granularity := fset.String("granularity", "", "diff granularity: word, clause or sentence")
	output := fset.String("o", "", "write the merged text here instead of stdout")
	record := fset.String("record", "", "conflict record path (default <base>.conflicts.json)")
	accept := fset.Bool("accept", false, "apply non-conflicting changes without markup")
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: revise merge [flags] manifest.yaml\n       revise merge [flags] -base paper.md ID=path ...")
		fset.PrintDefaults()
	}
	if ok, err := parse(fset, args); !ok {
		return err
	}

	var manifest *config.Manifest
	var err error
	if *base == "" {
		if fset.NArg() != 1 {
			fset.Usage()
			return ErrUsage
		}
		manifest, err = config.LoadManifest(fset.Arg(0))
	} else {
		manifest, err = manifestFromFlags(*base, *baseRev, *repo, *granularity, fset.Args())
	}
	if err != nil {
		return err
	}
	if *granularity != "" {
		manifest.Granularity = *granularity
	}
	if *output != "" {
		manifest.Output = *output
	}
	if *record != "" {
		manifest.Record = *record
	}

	app, cleanup, err := common.setup()
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = app.Merge(ctx, manifest, MergeOptions{Accept: *accept})
	return err
}

// manifestFromFlags builds a manifest from -base and ID=path arguments.
func manifestFromFlags(base, rev, repo, granularity string, reviews []string) (*config.Manifest, error) {
	m := &config.Manifest{Base: base, Granularity: granularity}
	if rev != "" {
		m.BaseRev = rev
		m.Repo = repo
	}
	for _, r := range reviews {
		id, path, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("reviewer %q: want ID=path", r)
		}
		m.Reviewers = append(m.Reviewers, config.ManifestReview{ID: id, Path: path})
	}
	if err := m.Prepare(""); err != nil {
		return nil, err
	}
	return m, nil
}

func runDiff(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("diff", flag.ContinueOnError)
	var common commonFlags
	common.register(fset)
	granularity := fset.String("granularity", "", "diff granularity: word, clause or sentence")
	dump := fset.Bool("dump", false, "dump the change list as Go values")
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: revise diff [flags] base.md reviewer.md")
		fset.PrintDefaults()
	}
	if ok, err := parse(fset, args); !ok {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		return ErrUsage
	}

	app, cleanup, err := common.setup()
	if err != nil {
		return err
	}
	defer cleanup()

	path := fset.Arg(1)
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return app.Diff(ctx, fset.Arg(0), config.ManifestReview{ID: id, Path: path}, *granularity, *dump)
}

func runStatus(_ context.Context, args []string) error {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	var common commonFlags
	common.register(fset)
	record := fset.String("record", "", "conflict record path (default <base>.conflicts.json)")
	if ok, err := parse(fset, args); !ok {
		return err
	}
	if fset.NArg() != 1 {
		return ErrUsage
	}

	app, cleanup, err := common.setup()
	if err != nil {
		return err
	}
	defer cleanup()
	return app.Status(fset.Arg(0), *record)
}

// picks collects repeated -pick flags.
type picks []string

func (p *picks) String() string     { return strings.Join(*p, ",") }
func (p *picks) Set(v string) error { *p = append(*p, v); return nil }

func runResolve(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("resolve", flag.ContinueOnError)
	var common commonFlags
	common.register(fset)
	record := fset.String("record", "", "conflict record path (default <base>.conflicts.json)")
	var chosen picks
	fset.Var(&chosen, "pick", "decide a conflict without the TUI, e.g. c1=2 (0 keeps the original); repeatable")
	if ok, err := parse(fset, args); !ok {
		return err
	}
	if fset.NArg() != 1 {
		return ErrUsage
	}
	basePath := fset.Arg(0)

	app, cleanup, err := common.setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if len(chosen) == 0 {
		resolver, closeExplainer, err := newResolver(ctx, app, basePath, *record)
		if err != nil {
			return err
		}
		defer closeExplainer()
		app.Resolver = resolver
	}
	return app.Resolve(ctx, basePath, *record, chosen)
}

// newResolver wires the terminal resolver from configuration. Explanations
// are offered only when GEMINI_API_KEY is set.
func newResolver(ctx context.Context, app *App, basePath, recordPath string) (*bubbletea.Resolver, func(), error) {
	cfg := app.Config
	theme, err := lipgloss.ThemeByName(cfg.Display.Theme)
	if err != nil {
		return nil, nil, err
	}
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return nil, nil, fmt.Errorf("error setting up syntax highlighting: %w", err)
	}
	if recordPath == "" {
		recordPath = fs.RecordPath(basePath)
	}

	opts := []bubbletea.Option{
		bubbletea.WithTheme(theme),
		bubbletea.WithHighlighting(tokenizer, chroma.NewDetector().DetectFromPath(basePath)),
		bubbletea.WithWordDiffer(worddiff.NewDiffer()),
		bubbletea.WithDisplay(annotate.Display{Context: cfg.Display.Context, Preview: cfg.Display.Preview}),
		bubbletea.WithStore(app.Store, recordPath),
		bubbletea.WithClipboard(clipboard.Default()),
	}

	cleanup := func() {}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := gemini.NewClient(ctx, apiKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		cleanup = func() { _ = client.Close() }
		cacheDir := cfg.Explain.CacheDir
		if cacheDir == "" {
			cacheDir = fs.DefaultCacheDir()
		}
		explainer := fs.NewExplainCache(gemini.NewExplainer(client, cfg.Explain.Model), filepath.Join(cacheDir, "explain"))
		opts = append(opts, bubbletea.WithExplainer(explainer))
	} else {
		app.logger().Debug("GEMINI_API_KEY not set, explanations disabled")
	}
	return bubbletea.NewResolver(opts...), cleanup, nil
}

func runHistory(_ context.Context, args []string) error {
	fset := flag.NewFlagSet("history", flag.ContinueOnError)
	var common commonFlags
	common.register(fset)
	if ok, err := parse(fset, args); !ok {
		return err
	}
	if fset.NArg() != 1 {
		return ErrUsage
	}

	app, cleanup, err := common.setup()
	if err != nil {
		return err
	}
	defer cleanup()
	return app.History(fset.Arg(0))
}
