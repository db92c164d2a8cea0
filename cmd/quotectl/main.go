// Package main implements quotectl, the operations CLI for the quote
// catalog. It talks to the same tables as the API and is meant for
// backups, restores and bulk maintenance from an operator's machine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quoteme-backend/infrastructure/config"
	"quoteme-backend/infrastructure/di"
)

var container *di.Container

func main() {
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Operations CLI for the quote catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			container, err = di.InitializeContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			return nil
		},
	}

	root.AddCommand(backupCmd())
	root.AddCommand(restoreCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(generateTagsCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func backupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full catalog snapshot to a local JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := container.ExportService.BuildDocument(cmd.Context())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			fmt.Printf("Wrote %d quotes and %d tags to %s\n", doc.QuoteCount, doc.TagCount, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "quotes-backup.json", "output file path")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a full catalog snapshot to the export bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := container.ExportService.ExportAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Exported %d quotes and %d tags to %s\n", result.QuoteCount, result.TagCount, result.Key)
			fmt.Printf("Download (valid %ds): %s\n", result.ExpiresIn, result.DownloadURL)
			return nil
		},
	}
}

// restoreQuote is the subset of the backup document needed to recreate
// a quote
type restoreQuote struct {
	Text   string   `json:"quote"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
}

type restoreDocument struct {
	Quotes []restoreQuote `json:"quotes"`
}

func restoreCmd() *cobra.Command {
	var input string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Recreate quotes from a backup file",
		Long:  "Reads a backup produced by quotectl backup and recreates every quote. Existing near-duplicates are skipped, not overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			var doc restoreDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse backup: %w", err)
			}

			created, skipped := 0, 0
			for _, q := range doc.Quotes {
				if dryRun {
					fmt.Printf("would create: %q by %s\n", q.Text, q.Author)
					continue
				}

				_, err := container.QuoteService.CreateQuote(cmd.Context(), q.Text, q.Author, q.Tags, "quotectl", false)
				if err != nil {
					container.Logger.Warn("Skipping quote",
						zap.String("author", q.Author),
						zap.Error(err))
					skipped++
					continue
				}
				created++
			}

			fmt.Printf("Restored %d quotes, skipped %d\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "quotes-backup.json", "backup file path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be created without writing")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := container.QuoteService.TotalQuotes(cmd.Context())
			if err != nil {
				return err
			}

			tags, err := container.TagService.ListTags(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Quotes: %d\n", total)
			fmt.Printf("Tags:   %d\n", len(tags))
			for _, t := range tags {
				fmt.Printf("  %-20s %d\n", t.Name, t.QuoteCount)
			}
			return nil
		},
	}
}

func generateTagsCmd() *cobra.Command {
	var limit int
	var apply bool

	cmd := &cobra.Command{
		Use:   "generate-tags",
		Short: "Suggest tags for untagged quotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _, err := container.QuoteService.ListQuotes(cmd.Context(), "", "", limit, nil)
			if err != nil {
				return err
			}

			for _, q := range all {
				if len(q.Tags) > 0 {
					continue
				}

				suggested, err := container.TagService.SuggestTags(cmd.Context(), q.Text, q.Author)
				if err != nil {
					container.Logger.Warn("Suggestion failed",
						zap.String("quote_id", q.ID),
						zap.Error(err))
					continue
				}
				if len(suggested) == 0 {
					continue
				}

				fmt.Printf("%s: %v\n", q.ID, suggested)
				if apply {
					if _, err := container.QuoteService.UpdateQuote(cmd.Context(), q.ID, q.Text, q.Author, suggested, "quotectl"); err != nil {
						container.Logger.Warn("Update failed",
							zap.String("quote_id", q.ID),
							zap.Error(err))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "how many recent quotes to scan")
	cmd.Flags().BoolVar(&apply, "apply", false, "write suggested tags back to the quotes")
	return cmd
}
