package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/view"
)

type notesOptions struct {
	search  string
	title   string
	content string
	color   string
}

func NewNotesCommand(root *RootOptions) *cobra.Command {
	opts := &notesOptions{}

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List notes",
		Long: `List your notes, most recently edited first.

Use --search to show only notes whose title or content contains the text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotesList(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "case-insensitive text to search for")

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotesAdd(cmd, root, opts, strings.Join(args, " "))
		},
	}
	add.Flags().StringVarP(&opts.content, "content", "c", "", "note body")
	add.Flags().StringVar(&opts.color, "color", string(model.ColorDefault), "color label")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note",
		Long:  "Edit a note. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotesEdit(cmd, root, opts, args[0])
		},
	}
	edit.Flags().StringVarP(&opts.title, "title", "t", "", "new title")
	edit.Flags().StringVarP(&opts.content, "content", "c", "", "new body")
	edit.Flags().StringVar(&opts.color, "color", "", "new color label")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotesDelete(cmd, root, args[0])
		},
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

func runNotesList(cmd *cobra.Command, root *RootOptions, opts *notesOptions) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	notes, unbind := a.notes(ctx)
	defer unbind()

	found := notes.Search(opts.search)
	if err := a.report(); err != nil {
		return err
	}
	if a.json() {
		return a.printJSON(found)
	}
	return view.RenderNotes(a.out, found, opts.search, notes.Store().Len())
}

func runNotesAdd(cmd *cobra.Command, root *RootOptions, opts *notesOptions, title string) error {
	color, err := model.ParseColor(opts.color)
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

	notes, unbind := a.notes(ctx)
	defer unbind()

	note, err := notes.Create(ctx, title, opts.content, color)
	if err != nil {
		return err
	}
	notes.Store().Wait()
	if err := a.report(); err != nil {
		return err
	}
	return a.printNote(note)
}

func runNotesEdit(cmd *cobra.Command, root *RootOptions, opts *notesOptions, ref string) error {
	patch, err := notePatchFromFlags(cmd, opts)
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

	notes, unbind := a.notes(ctx)
	defer unbind()

	id, err := resolveID(ref, notes.Store().Items())
	if err != nil {
		return err
	}
	note, err := notes.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	notes.Store().Wait()
	if err := a.report(); err != nil {
		return err
	}
	return a.printNote(note)
}

func runNotesDelete(cmd *cobra.Command, root *RootOptions, ref string) error {
	ctx := cmd.Context()
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	notes, unbind := a.notes(ctx)
	defer unbind()

	id, err := resolveID(ref, notes.Store().Items())
	if err != nil {
		return err
	}
	if err := notes.Delete(ctx, id); err != nil {
		return err
	}
	notes.Store().Wait()
	return a.report()
}

func notePatchFromFlags(cmd *cobra.Command, opts *notesOptions) (model.NotePatch, error) {
	var patch model.NotePatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &opts.title
	}
	if flags.Changed("content") {
		patch.Content = &opts.content
	}
	if flags.Changed("color") {
		color, err := model.ParseColor(opts.color)
		if err != nil {
			return patch, err
		}
		patch.Color = &color
	}
	if patch.Title == nil && patch.Content == nil && patch.Color == nil {
		return patch, fmt.Errorf("%w: nothing to change, pass --title, --content or --color", model.ErrValidation)
	}
	return patch, nil
}

func (a *app) printNote(n model.Note) error {
	if a.json() {
		return a.printJSON(n)
	}
	_, err := fmt.Fprintf(a.out, "%s  %s [%s]\n", n.ID, n.Title, n.Color)
	return err
}
