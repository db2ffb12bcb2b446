package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/tabask/internal/applog"
	"github.com/lotas/tabask/internal/assistant"
	"github.com/lotas/tabask/internal/browser"
	"github.com/lotas/tabask/internal/completion"
	"github.com/lotas/tabask/internal/config"
	"github.com/lotas/tabask/internal/export"
	"github.com/lotas/tabask/internal/firefox"
	"github.com/lotas/tabask/internal/prompt"
	"github.com/lotas/tabask/internal/server"
	"github.com/lotas/tabask/internal/storage"
	"github.com/lotas/tabask/internal/tui"
	"github.com/lotas/tabask/internal/types"
)

func main() {
	cfg := config.Load()
	if err := applog.Init(cfg.LogDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer applog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "ask":
			exit(runAsk(ctx, cfg, os.Args[2:]))
			return
		case "tabs":
			exit(runTabs(ctx, cfg, os.Args[2:]))
			return
		case "history":
			exit(runHistory(ctx, cfg, os.Args[2:]))
			return
		case "profiles":
			exit(runProfiles())
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	exit(runPopup(ctx, cfg, os.Args[1:]))
}

// errReported means the failure was already rendered to the user.
var errReported = errors.New("reported")

func exit(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	applog.Close()
	os.Exit(1)
}

func printHelp() {
	fmt.Print(`tabask — ask an LLM about your open browser tabs

Usage:
  tabask                                   Start the popup (default)
    --pick                 Choose the tab source interactively

  tabask ask "<query>"                     Ask once and print the answer
    --no-open              Print the resolved tab instead of activating it

  tabask tabs                              Print the tab list the model sees
    --json                 Output as JSON
    --md                   Output as markdown

  tabask history                           Show recorded queries (newest first)
    --limit <n>            Number of entries (default: 20, 0 for all)
    --clear                Delete all recorded queries

  tabask profiles                          List Firefox profiles

Common flags (popup, ask, tabs):
  --source <name>          live, chrome or firefox (env: TABASK_SOURCE, default: live)
  --profile <name>         Firefox profile for --source firefox (env: TABASK_PROFILE)
  --port <n>               WebSocket port for the extension (env: TABASK_PORT, default: 19191)
  --cdp <url>              Chrome DevTools endpoint (env: TABASK_CDP_URL)
  --provider <name>        openai or ollama (env: TABASK_PROVIDER, default: openai)
  --model <name>           Model name (env: TABASK_MODEL)
  --history                Record queries (env: TABASK_HISTORY)

Environment:
  OPENAI_API_KEY           API key for the openai provider
  OPENAI_BASE_URL          OpenAI-compatible endpoint (default: https://api.openai.com/v1)
  OLLAMA_HOST              Ollama server URL (default: http://localhost:11434)
  TABASK_TEMPERATURE       Sampling temperature (default: 0.7)
  TABASK_TIMEOUT           Per-query timeout, e.g. 30s (default: none)
  TABASK_DATA_DIR          Log and history directory (default: ~/.local/share/tabask)
`)
}

// bindCommon registers the flags shared by the popup, ask and tabs.
func bindCommon(fs *flag.FlagSet, cfg *config.Config) (model *string) {
	fs.StringVar(&cfg.Source, "source", cfg.Source, "Tab source: live, chrome or firefox")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "Firefox profile name")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "WebSocket port for the extension")
	fs.StringVar(&cfg.CDPURL, "cdp", cfg.CDPURL, "Chrome DevTools endpoint")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Completion provider: openai or ollama")
	fs.BoolVar(&cfg.History, "history", cfg.History, "Record queries in the history database")
	return fs.String("model", "", "Model name")
}

// applyModel resolves the model after flags are parsed so that switching
// --provider also switches the default model.
func applyModel(cfg *config.Config, flagValue string) {
	cfg.Source = strings.ToLower(cfg.Source)
	cfg.Provider = strings.ToLower(cfg.Provider)
	switch {
	case flagValue != "":
		cfg.Model = flagValue
	case os.Getenv("TABASK_MODEL") == "":
		cfg.Model = config.DefaultModel(cfg.Provider)
	}
}

func newCompleter(cfg *config.Config) (completion.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return completion.NewOpenAI(completion.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
	case config.ProviderOllama:
		return &completion.Ollama{
			Host:        cfg.OllamaHost,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or ollama)", cfg.Provider)
	}
}

func newBrowser(ctx context.Context, cfg *config.Config) (browser.Browser, error) {
	switch cfg.Source {
	case config.SourceLive:
		live := browser.NewLive(server.New(cfg.Port))
		live.Start(ctx)
		return live, nil
	case config.SourceChrome:
		return browser.NewChrome(cfg.CDPURL), nil
	case config.SourceFirefox:
		profiles, err := firefox.DiscoverProfiles()
		if err != nil {
			return nil, fmt.Errorf("discover Firefox profiles: %w", err)
		}
		p, err := firefox.PickProfile(profiles, cfg.Profile)
		if err != nil {
			return nil, err
		}
		return browser.NewSession(p), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want live, chrome or firefox)", cfg.Source)
	}
}

// allSources lists every source the popup picker offers. The extension
// listener is started up front; it is just a struct and an idle socket.
func allSources(ctx context.Context, cfg *config.Config) []tui.Source {
	live := browser.NewLive(server.New(cfg.Port))
	live.Start(ctx)
	sources := []tui.Source{
		{Label: fmt.Sprintf("Live extension (port %d)", cfg.Port), Browser: live, IsDefault: cfg.Source == config.SourceLive},
		{Label: "Chrome (" + cfg.CDPURL + ")", Browser: browser.NewChrome(cfg.CDPURL), IsDefault: cfg.Source == config.SourceChrome},
	}

	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		applog.Error("profiles.discover", err)
	}
	for _, p := range profiles {
		sources = append(sources, tui.Source{
			Label:     "Firefox: " + p.Name,
			Browser:   browser.NewSession(p),
			IsDefault: cfg.Source == config.SourceFirefox && (p.Name == cfg.Profile || (cfg.Profile == "" && p.IsDefault)),
		})
	}
	return sources
}

func openHistory(cfg *config.Config) (*storage.History, func(), error) {
	if !cfg.History {
		return nil, func() {}, nil
	}
	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	return storage.NewHistory(db), func() { db.Close() }, nil
}

func sourceLabel(cfg *config.Config) string {
	switch cfg.Source {
	case config.SourceLive:
		return fmt.Sprintf("Live extension (port %d)", cfg.Port)
	case config.SourceChrome:
		return "Chrome"
	case config.SourceFirefox:
		if cfg.Profile != "" {
			return "Firefox: " + cfg.Profile
		}
		return "Firefox"
	}
	return cfg.Source
}

func runPopup(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tabask", flag.ExitOnError)
	model := bindCommon(fs, cfg)
	pick := fs.Bool("pick", false, "Choose the tab source interactively")
	fs.Parse(args)
	applyModel(cfg, *model)

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}
	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	var sources []tui.Source
	if *pick {
		sources = allSources(ctx, cfg)
	} else {
		b, err := newBrowser(ctx, cfg)
		if err != nil {
			return err
		}
		sources = []tui.Source{{Label: sourceLabel(cfg), Browser: b, IsDefault: true}}
	}

	m := tui.NewModel(ctx, tui.Options{
		Sources:       sources,
		Completer:     completer,
		Model:         cfg.Model,
		History:       history,
		ActivateDelay: assistant.DefaultActivateDelay,
		Timeout:       cfg.Timeout,
	})
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runAsk(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	model := bindCommon(fs, cfg)
	noOpen := fs.Bool("no-open", false, "Print the resolved tab instead of activating it")
	fs.Parse(reorderArgs(args))
	applyModel(cfg, *model)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: tabask ask \"<query>\"")
	}

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}
	b, err := newBrowser(ctx, cfg)
	if err != nil {
		return err
	}
	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if cfg.Source == config.SourceLive {
		fmt.Fprintf(os.Stderr, "Waiting for the browser extension on port %d...\n", cfg.Port)
	}

	s, err := assistant.NewSession(ctx, b, completer)
	if err != nil {
		return err
	}
	s.Model = cfg.Model
	s.History = history

	ui := newCLIUI(os.Stdout, os.Stderr)
	if *noOpen {
		// Render the outcome but leave focus where it is.
		s.Browser = dryRun{b}
		s.ActivateDelay = 0
	}
	if err := assistant.RoundTrip(ctx, s, query, ui); err != nil {
		return errReported
	}
	return nil
}

func runTabs(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tabs", flag.ExitOnError)
	bindCommon(fs, cfg)
	jsonFlag := fs.Bool("json", false, "Output as JSON")
	mdFlag := fs.Bool("md", false, "Output as markdown")
	fs.Parse(args)
	cfg.Source = strings.ToLower(cfg.Source)

	b, err := newBrowser(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.Source == config.SourceLive {
		fmt.Fprintf(os.Stderr, "Waiting for the browser extension on port %d...\n", cfg.Port)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tabs, err := b.Tabs(ctx)
	if err != nil {
		return err
	}
	snap := &types.Snapshot{Tabs: tabs, Source: b.Name(), TakenAt: time.Now()}

	switch {
	case *jsonFlag:
		out, err := export.JSON(snap)
		if err != nil {
			return fmt.Errorf("generate JSON: %w", err)
		}
		fmt.Print(out)
	case *mdFlag:
		fmt.Print(export.Markdown(snap))
	default:
		fmt.Println(prompt.ListTabs(tabs))
	}
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Number of entries (0 for all)")
	clearFlag := fs.Bool("clear", false, "Delete all recorded queries")
	fs.Parse(args)

	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()
	h := storage.NewHistory(db)

	if *clearFlag {
		n, err := h.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries.\n", n)
		return nil
	}

	entries, err := h.List(ctx, *limit)
	if err != nil {
		return err
	}
	fmt.Print(export.History(entries))
	return nil
}

func runProfiles() error {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return fmt.Errorf("discover Firefox profiles: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no Firefox profiles found")
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
	return nil
}

// reorderArgs moves flags ahead of positional arguments so that
// `tabask ask "query" --source chrome` parses.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if !strings.Contains(args[i], "=") && !isBoolFlag(args[i]) && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "history", "no-open":
		return true
	}
	return false
}
