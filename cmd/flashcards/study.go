package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mathflash/internal/models"
	"mathflash/internal/service"
)

const studyHelp = "[f]lip  [n]ext  [p]rev  [s]huffle  [q]uit"

func newStudyCmd(a *app) *cobra.Command {
	var category string
	var pick bool

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Study flashcards interactively",
		Long: "study walks through every flashcard, or one category, showing the question first.\n" +
			"Each card shown counts towards its study total.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if pick {
				categories := a.store.ListCategories()
				if len(categories) == 0 {
					a.notify(ctx, "Add some flashcards first!")
					return nil
				}
				choice, ok, err := a.prompt.Choose("Choose category:", categories)
				if err != nil || !ok {
					return err
				}
				category = choice
			}

			if _, err := a.study.Start(category); err != nil {
				switch {
				case errors.Is(err, service.ErrEmptyCollection):
					a.notify(ctx, "Add some flashcards first!")
					return nil
				case errors.Is(err, service.ErrEmptyFilterResult):
					a.notify(ctx, "No cards found for this category")
					return nil
				default:
					return err
				}
			}
			return a.studyLoop(ctx)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only study cards in this category")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the category from a list")
	return cmd
}

// studyLoop reads study commands until the session completes or the user quits
func (a *app) studyLoop(ctx context.Context) error {
	defer a.study.End()

	fmt.Fprintln(a.out, studyHelp)
	a.showCurrent()

	for a.study.Active() {
		fmt.Fprint(a.out, "> ")
		line, err := a.prompt.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "f", "flip", "":
			text, err := a.study.Flip()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", faceLabel(a), text)
		case "n", "next":
			complete, err := a.study.Next()
			if err != nil {
				return err
			}
			if complete {
				a.notify(ctx, "Session complete! Great job studying!")
				return nil
			}
			a.showCurrent()
		case "p", "prev":
			if err := a.study.Prev(); err != nil {
				return err
			}
			a.showCurrent()
		case "s", "shuffle":
			if err := a.study.Shuffle(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Shuffled.")
			a.showCurrent()
		case "q", "quit", "exit":
			return nil
		default:
			fmt.Fprintln(a.out, studyHelp)
		}
	}
	return nil
}

func (a *app) showCurrent() {
	card, err := a.study.Current()
	if err != nil {
		return
	}
	current, total := a.study.Progress()
	fmt.Fprintf(a.out, "\nCard %d of %d (%s, %s)\n", current, total, card.Category, card.Difficulty)
	fmt.Fprintf(a.out, "%s: %s\n", faceLabel(a), card.Text(a.study.Face()))
}

func faceLabel(a *app) string {
	if a.study.Face() == models.FaceAnswer {
		return "A"
	}
	return "Q"
}
