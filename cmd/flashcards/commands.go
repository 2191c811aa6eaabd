package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mathflash/internal/models"
	"mathflash/internal/service"
	"mathflash/internal/utils"
)

const previewLength = 80

// run builds the command tree, executes it with args and releases resources
func run(args []string, in io.Reader, out io.Writer) error {
	a := newApp(in, out)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "flashcards",
		Short: "Personal math flashcards",
		Long:  "flashcards keeps math question/answer cards and runs study sessions over them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newCategoriesCmd(a),
		newClearCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newStudyCmd(a),
	)
	return root
}

func newAddCmd(a *app) *cobra.Command {
	var category, difficulty, question, answer string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a flashcard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if !cmd.Flags().Changed("question") {
				if question, err = a.prompt.Ask("Question", ""); err != nil && !errors.Is(err, io.EOF) {
					return err
				}
			}
			if !cmd.Flags().Changed("answer") {
				if answer, err = a.prompt.Ask("Answer", ""); err != nil && !errors.Is(err, io.EOF) {
					return err
				}
			}

			card, err := a.store.Add(category, difficulty, question, answer)
			var verr utils.ValidationError
			if errors.As(err, &verr) {
				a.notify(cmd.Context(), "Please fill in both question and answer")
				return nil
			}
			if err != nil {
				return err
			}
			a.notify(cmd.Context(), fmt.Sprintf("Flashcard added successfully! (id %d)", card.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "general", "card category")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "card difficulty")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question text (prompted when omitted)")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "answer text (prompted when omitted)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit the question and answer of a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			card, ok := a.store.Get(id)
			if !ok {
				a.notify(cmd.Context(), fmt.Sprintf("No flashcard with id %d", id))
				return nil
			}

			if !cmd.Flags().Changed("question") {
				if question, err = a.prompt.Ask("Edit question", card.Question); err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
			}
			if !cmd.Flags().Changed("answer") {
				if answer, err = a.prompt.Ask("Edit answer", card.Answer); err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
			}

			_, _, err = a.store.Edit(id, question, answer)
			var verr utils.ValidationError
			if errors.As(err, &verr) {
				a.notify(cmd.Context(), "Please fill in both question and answer")
				return nil
			}
			if err != nil {
				return err
			}
			a.notify(cmd.Context(), "Flashcard updated.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "new question text")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "new answer text")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm("Are you sure you want to delete this flashcard?")
			if err != nil || !ok {
				return err
			}
			removed, err := a.store.Delete(id)
			if err != nil {
				return err
			}
			if !removed {
				a.notify(cmd.Context(), fmt.Sprintf("No flashcard with id %d", id))
				return nil
			}
			a.notify(cmd.Context(), "Flashcard deleted.")
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flashcards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards := a.store.Cards()
			if category != "" {
				cards = service.FilterByCategory(cards, category)
			}
			if len(cards) == 0 {
				fmt.Fprintln(a.out, "No flashcards yet. Add some to get started!")
				return nil
			}
			return writeCardTable(a.out, cards)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list cards in this category")
	return cmd
}

func writeCardTable(w io.Writer, cards []models.Card) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDIFFICULTY\tSTUDIED\tCREATED\tQUESTION")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.Category, c.Difficulty, c.TimesStudied, c.Created, preview(c.Question))
	}
	return tw.Flush()
}

// preview shortens text to previewLength runes
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range a.store.ListCategories() {
				fmt.Fprintln(a.out, c)
			}
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every flashcard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.confirm("Are you sure you want to delete ALL flashcards? This cannot be undone.")
			if err != nil || !ok {
				return err
			}
			if err := a.store.ClearAll(); err != nil {
				return err
			}
			a.notify(cmd.Context(), "All flashcards deleted.")
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var dir string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every flashcard to a dated JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdout {
				err := a.backup.ExportToWriter(a.out)
				if errors.Is(err, service.ErrEmptyCollection) {
					a.notify(cmd.Context(), "No flashcards to export")
					return nil
				}
				return err
			}

			if dir == "" {
				dir = a.cfg.ExportDir
			}
			path, err := a.backup.ExportToFile(dir)
			if errors.Is(err, service.ErrEmptyCollection) {
				a.notify(cmd.Context(), "No flashcards to export")
				return nil
			}
			if err != nil {
				return err
			}
			a.notify(cmd.Context(), fmt.Sprintf("Exported %d flashcards to %s", a.store.Len(), path))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to write the export to (default EXPORT_DIR)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write the export to standard output instead of a file")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add the flashcards from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				a.notify(cmd.Context(), "Error reading file")
				return err
			}

			count, err := a.backup.PeekImportCount(data)
			var ferr *service.ImportFormatError
			if errors.As(err, &ferr) {
				a.logger.Sugar().Infow("rejected import", "file", args[0], "error", err)
				if ferr.Reason == service.ImportReasonInvalidJSON {
					a.notify(cmd.Context(), "Error reading file")
				} else {
					a.notify(cmd.Context(), "Invalid file format")
				}
				return nil
			}
			if err != nil {
				return err
			}

			ok, err := a.confirm(fmt.Sprintf("Import %d flashcards? This will add to existing cards.", count))
			if err != nil || !ok {
				return err
			}
			if _, err := a.backup.ImportFromFile(args[0]); err != nil {
				return err
			}
			a.notify(cmd.Context(), "Flashcards imported successfully!")
			return nil
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flashcard id %q", arg)
	}
	return id, nil
}
