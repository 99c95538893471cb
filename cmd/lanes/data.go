package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baiirun/lanes/internal/model"
	"github.com/baiirun/lanes/internal/store"
)

var (
	flagStrict bool
	flagMerge  bool
	flagYes    bool
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show what happened to a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		logs, err := a.db.GetLogs(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			items := make([]LogJSON, 0, len(logs))
			for _, l := range logs {
				items = append(items, LogJSON{Message: l.Message, CreatedAt: l.CreatedAt})
			}
			return writeJSON(out, items)
		}
		if len(logs) == 0 {
			fmt.Fprintf(out, "No history for %s\n", args[0])
			return nil
		}
		for _, l := range logs {
			fmt.Fprintf(out, "%s  %s\n", l.CreatedAt.Local().Format("2006-01-02 15:04:05"), l.Message)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the board to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		todos := a.board.Todos()
		if err := store.WriteFile(args[0], todos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d todos to %s\n", len(todos), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load todos from a JSON file",
	Long: `Load todos from a JSON file written by 'lanes export' or an older
browser board.

By default the file replaces the board. With --merge, only todos whose
ids are not on the board yet are added. Records are normalized like
stored ones; --strict rejects files that do not match the export schema.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagStrict {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			problems, err := store.Validate(data)
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				errOut := cmd.ErrOrStderr()
				for _, p := range problems {
					fmt.Fprintf(errOut, "  %v\n", p)
				}
				return fmt.Errorf("%s failed validation with %d problem(s)", args[0], len(problems))
			}
		}

		todos, err := store.ReadFile(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if flagMerge {
			added, err := a.board.Merge(todos)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d of %d todos\n", added, len(todos))
			return nil
		}

		if err := a.board.Replace(todos); err != nil {
			return err
		}
		if _, err := a.db.PruneLogs(cmd.Context(), ids(a.board.Todos())); err != nil {
			a.logger.Warn("failed to prune history", "err", err)
		}
		fmt.Fprintf(out, "Imported %d todos\n", len(a.board.Todos()))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the stored board with an empty one",
	Long: `Overwrite the stored board with an empty one.

This is the way out when the stored board cannot be read. It needs --yes
because everything on the board is lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagYes {
			return errors.New("reset deletes every todo; rerun with --yes to confirm")
		}

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Reset(cmd.Context()); err != nil {
			return err
		}
		if _, err := a.db.PruneLogs(cmd.Context(), nil); err != nil {
			a.logger.Warn("failed to prune history", "err", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset board %q\n", a.store.Key())
		return nil
	},
}

func ids(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func init() {
	historyCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")
	importCmd.Flags().BoolVar(&flagStrict, "strict", false, "reject files that do not match the export schema")
	importCmd.Flags().BoolVar(&flagMerge, "merge", false, "add new todos instead of replacing the board")
	resetCmd.Flags().BoolVar(&flagYes, "yes", false, "confirm the reset")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}
