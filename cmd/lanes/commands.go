package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/model"
)

const dueLayout = "2006-01-02"

var (
	flagStatus   string
	flagPriority string
	flagColor    string
	flagDue      string
	flagTitle    string
	flagFilter   string
	flagSearch   string
	flagTodo     string
	flagDoing    string
	flagDone     string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Long: `Add a todo to the bottom of a lane.

The title is every argument joined with spaces. Blank titles are rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		d := a.board.Draft()
		if flagStatus != "" {
			if !model.Status(flagStatus).IsValid() {
				return fmt.Errorf("invalid status: %s (valid: todo, doing, done)", flagStatus)
			}
			d.Status = model.Status(flagStatus)
		}
		if flagPriority != "" {
			if !model.Priority(flagPriority).IsValid() {
				return fmt.Errorf("invalid priority: %s (valid: low, medium, high)", flagPriority)
			}
			d.Priority = model.Priority(flagPriority)
		}
		if flagColor != "" {
			d.Color = flagColor
		}
		if flagDue != "" {
			if err := validateDue(flagDue); err != nil {
				return err
			}
			d.DueDate = flagDue
		}

		t, err := a.board.AddWith(title, d)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return writeJSON(out, t)
		}
		fmt.Fprintf(out, "Created %s: %s\n", t.ID, t.Title)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the board",
	Long: `Show the three lanes in display order.

Pinned todos come first, then by position, then newest first. Counts and
"items left" always cover the whole board, whatever the filter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if flagFilter != "" {
			if !model.Filter(flagFilter).IsValid() {
				return fmt.Errorf("invalid filter: %s (valid: all, active, completed)", flagFilter)
			}
			a.board.SetFilter(model.Filter(flagFilter))
		}
		a.board.SetSearch(flagSearch)

		snap := a.board.View()
		out := cmd.OutOrStdout()
		if flagJSON {
			return writeJSON(out, snapshotJSON(snap))
		}
		printBoard(out, snap)
		return nil
	},
}

// todoCommand builds a command that applies op to one existing todo.
func todoCommand(use, short, verb string, op func(b *board.Board, t model.Todo) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := requireTodo(a.board, args[0])
			if err != nil {
				return err
			}
			if err := op(a.board, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, describe(a.board, t.ID))
			return nil
		},
	}
}

var doneCmd = todoCommand("done", "Mark a todo done", "Completed", func(b *board.Board, t model.Todo) error {
	return b.ToggleDone(t.ID, true)
})

var undoCmd = todoCommand("undo", "Send a todo back to the todo lane", "Reopened", func(b *board.Board, t model.Todo) error {
	return b.ToggleDone(t.ID, false)
})

var moveCmd = todoCommand("move", "Move a todo to the next lane (todo, doing, done, todo)", "Moved", func(b *board.Board, t model.Todo) error {
	return b.Move(t.ID)
})

var pinCmd = todoCommand("pin", "Pin or unpin a todo", "Toggled pin on", func(b *board.Board, t model.Todo) error {
	return b.TogglePin(t.ID)
})

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := requireTodo(a.board, args[0])
		if err != nil {
			return err
		}
		if err := a.board.Delete(t.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", t.ID, t.Title)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <title>",
	Short: "Change a todo's title",
	Long: `Change a todo's title.

Committing a blank title deletes the todo, like clearing it on the board.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := requireTodo(a.board, args[0])
		if err != nil {
			return err
		}
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if err := a.board.CommitEdit(t.ID, title); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if title == "" {
			fmt.Fprintf(out, "Deleted %s: %s\n", t.ID, t.Title)
			return nil
		}
		fmt.Fprintf(out, "Renamed %s: %s\n", t.ID, title)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update fields of a todo",
	Example: `  lanes set td-1a2b3c4d --priority high --due 2025-03-01
  lanes set td-1a2b3c4d --due ""   # clear the due date`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p board.Patch
		flags := cmd.Flags()
		if flags.Changed("priority") {
			prio := model.Priority(flagPriority)
			if !prio.IsValid() {
				return fmt.Errorf("invalid priority: %s (valid: low, medium, high)", flagPriority)
			}
			p.Priority = &prio
		}
		if flags.Changed("status") {
			status := model.Status(flagStatus)
			if !status.IsValid() {
				return fmt.Errorf("invalid status: %s (valid: todo, doing, done)", flagStatus)
			}
			p.Status = &status
		}
		if flags.Changed("color") {
			if flagColor == "" {
				return fmt.Errorf("color must not be empty")
			}
			p.Color = &flagColor
		}
		if flags.Changed("due") {
			if flagDue != "" {
				if err := validateDue(flagDue); err != nil {
					return err
				}
			}
			p.DueDate = &flagDue
		}
		if flags.Changed("title") {
			title := strings.TrimSpace(flagTitle)
			if title == "" {
				return fmt.Errorf("title must not be empty (use 'lanes rm' to delete)")
			}
			p.Title = &title
		}
		if p == (board.Patch{}) {
			return fmt.Errorf("nothing to set (use --priority, --status, --color, --due or --title)")
		}

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := requireTodo(a.board, args[0])
		if err != nil {
			return err
		}
		if err := a.board.Update(t.ID, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", describe(a.board, t.ID))
		return nil
	},
}

var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete every todo in the done lane",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		before := len(a.board.Todos())
		if err := a.board.ClearCompleted(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed\n", before-len(a.board.Todos()))
		return nil
	},
}

var clearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Delete every todo",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		n := len(a.board.Todos())
		if err := a.board.ClearAll(); err != nil {
			return err
		}
		if _, err := a.db.PruneLogs(cmd.Context(), nil); err != nil {
			a.logger.Warn("failed to prune history", "err", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d todos\n", n)
		return nil
	},
}

var toggleAllCmd = &cobra.Command{
	Use:   "toggle-all",
	Short: "Complete every todo, or reopen all if all are done",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.board.ToggleAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), board.ItemsLeftLabel(board.ItemsLeft(a.board.Todos())))
		return nil
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Set lane membership and order from id lists",
	Long: `Set lane membership and order, as if the cards had been dragged.

Each flag takes comma-separated ids in display order. Listed todos take
that lane and their index as position. Todos not listed keep their place.`,
	Example: `  lanes reorder --doing td-1a2b3c4d,td-5e6f7a8b --done td-9c0d1e2f`,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := board.Layout{
			model.StatusTodo:  splitIDs(flagTodo),
			model.StatusDoing: splitIDs(flagDoing),
			model.StatusDone:  splitIDs(flagDone),
		}
		if len(layout[model.StatusTodo])+len(layout[model.StatusDoing])+len(layout[model.StatusDone]) == 0 {
			return fmt.Errorf("no ids given (use --todo, --doing or --done)")
		}

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, ids := range layout {
			for _, id := range ids {
				if _, ok := a.board.Get(id); !ok {
					a.logger.Warn("skipping unknown id", "id", id)
				}
			}
		}
		if err := a.board.ReorderFromLayout(layout); err != nil {
			return err
		}
		printBoard(cmd.OutOrStdout(), a.board.View())
		return nil
	},
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func validateDue(s string) error {
	if _, err := time.Parse(dueLayout, s); err != nil {
		return fmt.Errorf("invalid due date: %s (use YYYY-MM-DD)", s)
	}
	return nil
}

func requireTodo(b *board.Board, id string) (model.Todo, error) {
	t, ok := b.Get(id)
	if !ok {
		return model.Todo{}, fmt.Errorf("todo not found: %s (use 'lanes list' to see available todos)", id)
	}
	return t, nil
}

// describe renders "<id>: <title> [<status>]" for a todo after a change.
func describe(b *board.Board, id string) string {
	t, ok := b.Get(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%s: %s [%s]", t.ID, t.Title, t.Status)
}

func init() {
	addCmd.Flags().StringVar(&flagStatus, "status", "", "lane to add to: todo, doing, done")
	addCmd.Flags().StringVar(&flagPriority, "priority", "", "priority: low, medium, high")
	addCmd.Flags().StringVar(&flagColor, "color", "", "card color, e.g. #caffbf")
	addCmd.Flags().StringVar(&flagDue, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")

	listCmd.Flags().StringVar(&flagFilter, "filter", "", "show all, active or completed todos")
	listCmd.Flags().StringVar(&flagSearch, "search", "", "only show titles containing this text")
	listCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")

	setCmd.Flags().StringVar(&flagPriority, "priority", "", "priority: low, medium, high")
	setCmd.Flags().StringVar(&flagStatus, "status", "", "lane: todo, doing, done")
	setCmd.Flags().StringVar(&flagColor, "color", "", "card color")
	setCmd.Flags().StringVar(&flagDue, "due", "", "due date (YYYY-MM-DD, empty clears)")
	setCmd.Flags().StringVar(&flagTitle, "title", "", "new title")

	reorderCmd.Flags().StringVar(&flagTodo, "todo", "", "ids for the todo lane, in order")
	reorderCmd.Flags().StringVar(&flagDoing, "doing", "", "ids for the doing lane, in order")
	reorderCmd.Flags().StringVar(&flagDone, "done", "", "ids for the done lane, in order")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(clearCompletedCmd)
	rootCmd.AddCommand(clearAllCmd)
	rootCmd.AddCommand(toggleAllCmd)
	rootCmd.AddCommand(reorderCmd)
}
