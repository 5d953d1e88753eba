package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/batch"
	"github.com/fwojciec/idmbatch/exec"
	"github.com/fwojciec/idmbatch/gopsutil"
	"github.com/fwojciec/idmbatch/goquery"
	idmnet "github.com/fwojciec/idmbatch/net"
	"github.com/fwojciec/idmbatch/rod"
	idmslog "github.com/fwojciec/idmbatch/slog"
	"github.com/fwojciec/idmbatch/sqlite"
	"github.com/fwojciec/idmbatch/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	m.Interrupts = interrupts

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Settings file path. Set before calling Run().
	SettingsPath string

	// Stdin answers the continue/abort prompt.
	Stdin io.Reader

	// Interrupts abort the operation in flight. Nil disables it.
	Interrupts <-chan os.Signal

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Controller for end-to-end testing. Built from real collaborators when nil.
	Controller *batch.Controller
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:       defaultDBPath(),
		SettingsPath: defaultSettingsPath(),
		Stdin:        os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:        ctx,
		Stdout:     stdout,
		Stderr:     stderr,
		Stdin:      m.Stdin,
		Interrupts: m.Interrupts,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("idmbatch"),
		kong.Description("Send the download links of a page to Internet Download Manager in batches"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'idmbatch --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Load settings
	settingsPath := m.SettingsPath
	if cli.Settings != "" {
		settingsPath = cli.Settings
	}
	store := yaml.NewSettingsStore(settingsPath)
	settings, err := store.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Hint: fix or delete %s to start from defaults\n", settingsPath)
		return err
	}
	deps.SettingsStore = store
	deps.SettingsPath = settingsPath
	deps.Settings = settings

	if cmd == "config" {
		return kongCtx.Run(deps)
	}

	// Open database
	dbPath := m.DBPath
	if cli.DB != "" {
		dbPath = cli.DB
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set IDMBATCH_DB or pass --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()
	deps.Batches = sqlite.NewBatchService(m.DB)

	if cmd == "run" {
		output := batch.NewAsyncSink(newConsoleSink(stdout, idmslog.NewSink(logger)))
		defer output.Close()
		deps.Output = output

		ctrl := m.Controller
		if ctrl == nil {
			ctrl = newController(cli.Run.Drivers, logger, cli.Verbose)
		}
		if ctrl.Sink == nil {
			ctrl.Sink = output
		}
		if ctrl.Batches == nil {
			ctrl.Batches = deps.Batches
		}
		deps.Controller = ctrl
	}

	return kongCtx.Run(deps)
}

// newController wires the production collaborators.
func newController(driversDir string, logger *slog.Logger, verbose bool) *batch.Controller {
	if driversDir == "" {
		driversDir = defaultDriversDir()
	}

	var (
		fetcher    idmbatch.Fetcher        = rod.NewFetcher(rod.WithDriversDir(driversDir))
		extractor  idmbatch.LinkExtractor  = goquery.NewExtractor()
		dispatcher idmbatch.Dispatcher     = exec.NewDispatcher()
		processes  idmbatch.ProcessManager = gopsutil.NewProcessManager()
	)
	if verbose {
		fetcher = idmslog.NewLoggingFetcher(fetcher, logger)
		extractor = idmslog.NewLoggingExtractor(extractor, logger)
		dispatcher = idmslog.NewLoggingDispatcher(dispatcher, logger)
		processes = idmslog.NewLoggingProcessManager(processes, logger)
	}

	return &batch.Controller{
		Fetcher:    fetcher,
		Extractor:  extractor,
		Dispatcher: dispatcher,
		Processes:  processes,
		Network:    idmnet.NewChecker(),
	}
}

func defaultDBPath() string {
	if path := os.Getenv("IDMBATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "idmbatch.db"
	}
	dir := filepath.Join(home, ".idmbatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}

func defaultSettingsPath() string {
	if path := os.Getenv("IDMBATCH_SETTINGS"); path != "" {
		return path
	}
	path, err := yaml.DefaultPath()
	if err != nil {
		return "settings.yaml"
	}
	return path
}

// defaultDriversDir is the drivers directory next to the executable.
func defaultDriversDir() string {
	exe, err := os.Executable()
	if err != nil {
		return rod.DefaultDriversDir
	}
	return filepath.Join(filepath.Dir(exe), rod.DefaultDriversDir)
}
