package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/config"
	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var (
	configPath  string
	dataDirFlag string
	backendFlag string
	verbose     bool
)

// app is the state shared by all commands, set up before each run.
var app struct {
	cfg     config.Config
	dataDir string
	logger  *slog.Logger
	store   storage.Store
}

var rootCmd = &cobra.Command{
	Use:   "flex",
	Short: "flex – track work hours and your flex-time balance",
	Long: `flex logs worked time per project and compares it against the expected
8 hours per weekday since the project start, showing the remaining flex time.
Configuration lives in ~/.flex/config.toml.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called from main.
func Execute() {
	err := rootCmd.Execute()
	if closeErr := teardown(nil, nil); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $FLEX_CONFIG or ~/.flex/config.toml)")
	pf.StringVar(&dataDirFlag, "data-dir", "", "Directory holding ledgers (overrides data_dir)")
	pf.StringVar(&backendFlag, "backend", "", "Ledger store: json, buntdb or sqlite (overrides backend)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.dataDir = dataDir
	app.logger = newLogger(cfg.LogLevel, verbose)
	slog.SetDefault(app.logger)

	store, err := storage.Open(cfg.Backend, dataDir, app.logger)
	if err != nil {
		return storageFailure(err)
	}
	app.store = store
	app.logger.Debug("store opened", "backend", cfg.Backend, "data_dir", dataDir)
	return nil
}

func teardown(*cobra.Command, []string) error {
	if app.store == nil {
		return nil
	}
	err := app.store.Close()
	app.store = nil
	return storageFailure(err)
}

func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// today is the date commands compute balances against.
func today() timecalc.Date {
	return timecalc.DateOf(time.Now())
}

// projectArg returns the project named on the command line, falling back to
// default_project.
func projectArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if app.cfg.DefaultProject != "" {
		return app.cfg.DefaultProject, nil
	}
	return "", errors.New("no project given and no default_project configured")
}

// exitError carries a process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// storageFailure marks err as a storage error (exit status 2) unless it is
// a project state or naming error.
func storageFailure(err error) error {
	if err == nil || ledger.IsStateError(err) || errors.Is(err, storage.ErrInvalidName) {
		return err
	}
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// describeError turns known error kinds into a message for the user.
func describeError(err error) string {
	var se *ledger.StateError
	if errors.As(err, &se) {
		switch {
		case errors.Is(err, ledger.ErrNotInitialized):
			return fmt.Sprintf("Project %q is not initialized. Run `flex init %s` first.", se.Project, se.Project)
		case errors.Is(err, ledger.ErrAlreadyExists):
			return fmt.Sprintf("Project %q already exists. Use `flex clear %s` to start over.", se.Project, se.Project)
		}
	}
	if errors.Is(err, parse.ErrInvalid) || errors.Is(err, storage.ErrInvalidName) {
		return "Invalid input: " + err.Error()
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "Error") {
		msg = "Error: " + msg
	}
	return msg
}
