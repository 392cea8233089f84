package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talentflow/dedupe/internal/app"
	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/config"
	"github.com/talentflow/dedupe/internal/format"
	import_pkg "github.com/talentflow/dedupe/internal/import"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/merge"
	"github.com/talentflow/dedupe/internal/review"
	"github.com/talentflow/dedupe/internal/service"
	"github.com/talentflow/dedupe/internal/web"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// createCheckCmd checks one candidate-in-progress against the store
func createCheckCmd() *cobra.Command {
	var in candidate.Input
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a new candidate for duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), func(b *app.Backend) error {
				result, err := b.Service.CheckCandidate(cmd.Context(), in, nil)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(result)
				}
				review.NewPrompter(os.Stdin, os.Stdout).ShowMatches(result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "ID of the record being edited (excluded from results)")
	cmd.Flags().StringVar(&in.Name, "name", "", "candidate name")
	cmd.Flags().StringVar(&in.Email, "email", "", "candidate email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "candidate phone")
	cmd.Flags().StringVar(&in.LinkedIn, "linkedin", "", "LinkedIn profile URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw detection result")
	return cmd
}

// createGroupsCmd clusters every stored candidate
func createGroupsCmd() *cobra.Command {
	var workers int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Find groups of duplicate candidates across the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), func(b *app.Backend) error {
				groups, err := b.Service.DuplicateGroups(cmd.Context(), workers)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(groups)
				}
				printGroups(groups)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print groups as JSON")
	return cmd
}

func printGroups(groups []match.DuplicateGroup) {
	if len(groups) == 0 {
		fmt.Println("No duplicate groups found")
		return
	}
	fmt.Printf("Found %d duplicate groups\n\n", len(groups))
	for i, g := range groups {
		fmt.Printf("Group %d %s\n", i+1, format.ConfidenceBadge(g.Confidence, g.TopScore))
		for _, m := range g.Members {
			fmt.Printf("  %s  %-25s %-30s %s\n", m.ID, m.Name, m.Email, m.Phone)
		}
		for _, p := range g.Pairs {
			fmt.Printf("    %s <-> %s %s\n", p.FirstID, p.SecondID, format.FormatScore(p.MatchScore))
		}
		fmt.Println()
	}
}

// createMergeCmd merges a duplicate into a primary record
func createMergeCmd() *cobra.Command {
	var auto, yes, dropNotes, dropHistory bool
	var mergedBy string

	cmd := &cobra.Command{
		Use:   "merge [primary-id] [duplicate-id]",
		Short: "Merge a duplicate candidate into a primary candidate",
		Long:  `Shows the conflicts between the two records, asks how to resolve each one (unless --auto), then updates the primary and removes the duplicate`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withBackend(ctx, func(b *app.Backend) error {
				preview, err := b.Service.PreviewMerge(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				req := service.MergeRequest{
					PrimaryID:   args[0],
					DuplicateID: args[1],
					DropNotes:   dropNotes,
					DropHistory: dropHistory,
					MergedBy:    mergedBy,
				}
				prompter := review.NewPrompter(os.Stdin, os.Stdout)

				if auto {
					req.Decisions = merge.SuggestedDecisions(preview)
				} else {
					res, err := prompter.ResolveConflicts(preview)
					if errors.Is(err, review.ErrAborted) {
						fmt.Println("Merge cancelled")
						return nil
					}
					if err != nil {
						return err
					}
					req.Decisions = res.Decisions
					req.DropNotes = req.DropNotes || res.DropNotes
					req.DropHistory = req.DropHistory || res.DropHistory
				}

				if !yes {
					ok, err := prompter.Confirm(fmt.Sprintf("Merge %s into %s?", args[1], args[0]), false)
					if err != nil || !ok {
						fmt.Println("Merge cancelled")
						return nil
					}
				}

				result, err := b.Service.Merge(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("Merged %s into %s (%d conflicts)\n", args[1], args[0], result.Conflicts)
				if result.AuditID != "" {
					fmt.Printf("Audit record: %s\n", result.AuditID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "accept the suggested value for every conflict")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&dropNotes, "drop-notes", false, "do not carry over the duplicate's notes")
	cmd.Flags().BoolVar(&dropHistory, "drop-history", false, "do not carry over the duplicate's change history")
	cmd.Flags().StringVar(&mergedBy, "by", config.GetEnv("USER", ""), "name recorded in the audit trail")
	return cmd
}

// createImportCmd imports candidates from CSV
func createImportCmd() *cobra.Command {
	var skipDuplicates bool
	var createdBy string

	cmd := &cobra.Command{
		Use:   "import [filename]",
		Short: "Import candidates from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", args[0], err)
			}
			defer file.Close()

			return withBackend(cmd.Context(), func(b *app.Backend) error {
				importer := import_pkg.NewCSVImporter(b.Repo, b.Service.Detector(), logger)
				stats, err := importer.ImportCSV(cmd.Context(), file, import_pkg.Options{
					SkipDuplicates: skipDuplicates,
					CreatedBy:      createdBy,
				})
				if err != nil {
					return err
				}
				for _, msg := range stats.Messages {
					fmt.Println(msg)
				}
				fmt.Printf("Import complete: %d imported, %d duplicates skipped, %d errors\n",
					stats.Imported, stats.Duplicates, stats.Errors)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", true, "skip rows that duplicate an existing candidate")
	cmd.Flags().StringVar(&createdBy, "created-by", "import", "created_by recorded on imported candidates")
	return cmd
}

// createServeCmd starts the HTTP API
func createServeCmd() *cobra.Command {
	var webConfigFile string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			webConfig := web.DefaultConfig()
			if webConfigFile != "" {
				loaded, err := web.LoadConfig(webConfigFile)
				if err != nil {
					return fmt.Errorf("loading web config: %w", err)
				}
				webConfig = loaded
			}
			if port > 0 {
				webConfig.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withBackend(ctx, func(b *app.Backend) error {
				logger.Info("serving candidates", "storage", b.Describe())
				return web.NewServer(webConfig, b.Service, logger).Start(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&webConfigFile, "web-config", "", "web server JSON config")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides the web config)")
	return cmd
}

// createPingCmd checks storage connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test storage connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), func(b *app.Backend) error {
				all, err := b.Repo.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Connected to %s\n", b.Describe())
				fmt.Printf("Candidates stored: %d\n", len(all))
				return nil
			})
		},
	}
}

// createConfigCmd shows or writes the effective detection configuration
func createConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the detection configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDetectionConfig(opts.DetectionConfig)
			if err != nil {
				return err
			}
			fmt.Println(cfg.String())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "write [filename]",
		Short: "Write the effective configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDetectionConfig(opts.DetectionConfig)
			if err != nil {
				return err
			}
			if err := config.WriteDetectionConfig(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", args[0])
			return nil
		},
	})

	return configCmd
}

