package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"deckbox/internal/builder"
	"deckbox/internal/deck"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var deckName string
	var outputRoot string
	var showCards bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and archive one deck from a decklist file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(outputRoot) != "" {
				cfg.Deck.OutputRoot = outputRoot
			}

			text, err := readDecklist(cmd.InOrStdin(), filePath)
			if err != nil {
				return err
			}

			result, err := builder.FromConfig(cfg).Build(cmd.Context(), builder.Request{
				Decklist: text,
				Name:     deckName,
			})
			if err != nil {
				return fmt.Errorf("build failed (%s): %w", builder.Category(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(result))
			if showCards {
				fmt.Fprintln(out, renderCards(result.Cards))
			}
			if result.Errors > 0 {
				fmt.Fprintf(out, "%d problem(s) recorded in %s\n", result.Errors, result.ManifestPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Decklist file, or - for stdin")
	cmd.Flags().StringVarP(&deckName, "name", "n", "", "Deck name (generated when empty or invalid)")
	cmd.Flags().StringVarP(&outputRoot, "output", "o", "", "Override the configured output root")
	cmd.Flags().BoolVar(&showCards, "cards", false, "List every card with its artwork URL")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readDecklist(stdin io.Reader, path string) (string, error) {
	path = strings.TrimSpace(path)
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read decklist: %w", err)
	}
	return string(data), nil
}

func renderSummary(result *builder.Result) string {
	size := "-"
	if info, err := os.Stat(result.ArchivePath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	rows := [][]string{{
		result.Name,
		strconv.Itoa(result.DeckSize),
		strconv.Itoa(result.Images),
		strconv.Itoa(result.Errors),
		result.ArchivePath,
		size,
	}}
	return renderTable(
		[]string{"Deck", "Cards", "Images", "Errors", "Archive", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
	)
}

func renderCards(cards []*deck.Card) string {
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		url := c.ImageURL
		if url == "" {
			url = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Quantity),
			c.Name,
			strings.ToUpper(c.SetCode),
			c.CollectorNumber,
			url,
		})
	}
	return renderTable(
		[]string{"Qty", "Name", "Set", "Number", "Artwork"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
