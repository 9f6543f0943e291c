package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/view"
)

type tasksOptions struct {
	status   string
	priority string
}

func NewTasksCommand(root *RootOptions) *cobra.Command {
	opts := &tasksOptions{}

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Long: `List your tasks, newest first.

Use --status to show only todo, in-progress or done tasks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksList(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.status, "status", view.FilterAll, "filter by status (all|todo|in-progress|done)")

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksAdd(cmd, root, opts, strings.Join(args, " "))
		},
	}
	add.Flags().StringVarP(&opts.priority, "priority", "p", string(model.PriorityMedium), "priority (low|medium|high)")

	cycle := &cobra.Command{
		Use:   "cycle <id>",
		Short: "Move a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksCycle(cmd, root, args[0])
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasksDelete(cmd, root, args[0])
		},
	}

	cmd.AddCommand(add, cycle, rm)
	return cmd
}

func runTasksList(cmd *cobra.Command, root *RootOptions, opts *tasksOptions) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	tasks, unbind := a.tasks(ctx)
	defer unbind()

	filtered, err := tasks.Filter(opts.status)
	if err != nil {
		return err
	}
	if err := a.report(); err != nil {
		return err
	}
	if a.json() {
		return a.printJSON(filtered)
	}
	return view.RenderTasks(a.out, filtered, opts.status, tasks.Total())
}

func runTasksAdd(cmd *cobra.Command, root *RootOptions, opts *tasksOptions, title string) error {
	priority, err := model.ParsePriority(opts.priority)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	tasks, unbind := a.tasks(ctx)
	defer unbind()

	task, err := tasks.Add(ctx, title, priority)
	if err != nil {
		return err
	}
	tasks.Store().Wait()
	if err := a.report(); err != nil {
		return err
	}
	return a.printTask(task)
}

func runTasksCycle(cmd *cobra.Command, root *RootOptions, ref string) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	tasks, unbind := a.tasks(ctx)
	defer unbind()

	id, err := resolveID(ref, tasks.Store().Items())
	if err != nil {
		return err
	}
	task, err := tasks.CycleStatus(ctx, id)
	if err != nil {
		return err
	}
	tasks.Store().Wait()
	if err := a.report(); err != nil {
		return err
	}
	return a.printTask(task)
}

func runTasksDelete(cmd *cobra.Command, root *RootOptions, ref string) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	tasks, unbind := a.tasks(ctx)
	defer unbind()

	id, err := resolveID(ref, tasks.Store().Items())
	if err != nil {
		return err
	}
	if err := tasks.Delete(ctx, id); err != nil {
		return err
	}
	tasks.Store().Wait()
	return a.report()
}

func (a *app) printTask(t model.Task) error {
	if a.json() {
		return a.printJSON(t)
	}
	_, err := fmt.Fprintf(a.out, "%s  %s [%s, %s]\n", t.ID, t.Title, t.Status, t.Priority)
	return err
}

// resolveID accepts a full id or an unambiguous prefix of one.
func resolveID[T model.Entity[T]](ref string, items []T) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: id is required", model.ErrValidation)
	}

	var matches []string
	for _, e := range items {
		id := e.EntityID()
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no item matches %q", model.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d items", model.ErrValidation, ref, len(matches))
	}
}
