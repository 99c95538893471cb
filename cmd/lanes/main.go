package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/config"
	"github.com/baiirun/lanes/internal/db"
	"github.com/baiirun/lanes/internal/logging"
	"github.com/baiirun/lanes/internal/model"
	"github.com/baiirun/lanes/internal/store"
	"github.com/baiirun/lanes/internal/tui"
)

var (
	flagDB       string
	flagKey      string
	flagLogLevel string
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "lanes",
	Short: "A three-lane kanban board for your todos",
	Long: `lanes keeps todos on a board with three lanes: todo, doing and done.

Run without arguments in a terminal to open the interactive board, or use
the subcommands to script it. Everything is stored in a local SQLite file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmd.Help()
		}
		return runUI(cmd)
	},
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUI(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default ~/.lanes/lanes.db)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "", "storage key the board is saved under (default \"todos\")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(uiCmd)
}

// app is everything a command needs, opened from config and flags.
type app struct {
	cfg    *config.Config
	db     *db.DB
	store  *store.Store
	board  *board.Board
	logger *log.Logger
}

// openApp loads config, opens the database and, when withBoard is set,
// loads the board. Callers must Close the app.
func openApp(cmd *cobra.Command, withBoard bool) (*app, error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagKey != "" {
		cfg.StorageKey = flagKey
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return openAppWith(cmd.Context(), cfg, logger, withBoard)
}

func openAppWith(ctx context.Context, cfg *config.Config, logger *log.Logger, withBoard bool) (*app, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Init(); err != nil {
		database.Close()
		return nil, err
	}
	logger.Debug("opened database", "path", path)

	a := &app{
		cfg:    cfg,
		db:     database,
		store:  store.New(database, cfg.StorageKey),
		logger: logger,
	}
	if !withBoard {
		return a, nil
	}

	a.board, err = board.Open(ctx, a.store,
		board.WithLogger(logger),
		board.WithJournal(database),
		board.WithDraft(board.Draft{
			Status:   model.StatusTodo,
			Priority: model.PriorityMedium,
			Color:    cfg.Color(),
		}),
	)
	if err != nil {
		database.Close()
		if errors.Is(err, store.ErrMalformedState) {
			return nil, fmt.Errorf("%w\nrun 'lanes reset --yes' to start over with an empty board", err)
		}
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func runUI(cmd *cobra.Command) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	logPath := a.cfg.LogFile
	if logPath == "" {
		logPath, err = logging.DefaultFile()
		if err != nil {
			return err
		}
	}
	fileLogger, f, err := logging.OpenFile(logPath, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	defer f.Close()

	// The board logs through the file while the screen is taken.
	a.board = board.New(a.store, a.board.Todos(),
		board.WithLogger(fileLogger),
		board.WithJournal(a.db),
		board.WithDraft(a.board.Draft()),
	)
	fileLogger.Info("starting board", "todos", len(a.board.Todos()))

	return tui.Run(a.board, tui.Options{
		Palette: a.cfg.Swatches(),
		Logger:  fileLogger,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
