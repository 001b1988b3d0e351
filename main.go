package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var (
	rootFlag string

	fillDryRun bool
	fillForce  bool
	fillLimit  int
	fillSlug   string
	fillNoGate bool
	fillNoQA   bool
	fillBlock  bool

	refreshDays   int
	refreshLimit  int
	refreshDryRun bool

	costsReset bool
)

var rootCmd = &cobra.Command{
	Use:   "draftmill",
	Short: "Editorial content-production pipeline",
	Long:  `draftmill turns curated business-problem use cases into filled, quality-gated articles via a remote model.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Turn use cases into queue entries and draft skeletons",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		j := newJournal(cfg.JournalPath())

		var client *modelClient
		if cfg.APIKey != "" {
			client = newModelClient(cfg.APIKey, cfg.APIBase, cfg.Model)
		} else {
			log.Printf("Warning: no API credential, unmapped problems stay unassigned")
		}

		stats, err := runGenerate(cfg, client, j)
		if err != nil {
			log.Fatalf("Generate failed: %v", err)
		}
		fmt.Printf("Generate: %d mapping(s) assigned, %d queued, %d draft(s) written\n",
			stats.Assigned, stats.Queued, stats.Skeletons)
		stampLastRun(cfg.LogsDir(), "generate")
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill placeholder drafts through the remote model",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		if err := cfg.RequireAPIKey(); err != nil && !fillDryRun {
			log.Fatalf("%v", err)
		}
		j := newJournal(cfg.JournalPath())
		costs, err := loadCostLedger(cfg.CostsPath())
		if err != nil {
			log.Fatalf("Cost ledger: %v", err)
		}

		engine := newFillEngine(cfg, newModelClient(cfg.APIKey, cfg.APIBase, cfg.Model), j, costs, fillOptions{
			Write:  !fillDryRun,
			Force:  fillForce,
			Gate:   !fillNoGate,
			QA:     !fillNoQA,
			Block:  fillBlock || cfg.Settings.BlockOnFailure,
			Strict: cfg.Settings.StrictQA,
		})
		results, err := engine.FillAll(fillLimit, fillSlug)
		if err != nil {
			log.Fatalf("Fill failed: %v", err)
		}
		printSummary("Fill", results)
		stampLastRun(cfg.LogsDir(), "fill")
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fill articles whose last update exceeds the threshold",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		if err := cfg.RequireAPIKey(); err != nil && !refreshDryRun {
			log.Fatalf("%v", err)
		}
		j := newJournal(cfg.JournalPath())
		costs, err := loadCostLedger(cfg.CostsPath())
		if err != nil {
			log.Fatalf("Cost ledger: %v", err)
		}

		days := refreshDays
		if days <= 0 {
			days = cfg.Settings.RefreshDays
		}
		client := newModelClient(cfg.APIKey, cfg.APIBase, cfg.Model)
		results, err := runRefresh(cfg, client, j, costs, days, refreshLimit, refreshDryRun)
		if err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		printSummary("Refresh", results)
		stampLastRun(cfg.LogsDir(), "refresh")
	},
}

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show or reset the daily model-spend ledger",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		ledger, err := loadCostLedger(cfg.CostsPath())
		if err != nil {
			log.Fatalf("Cost ledger: %v", err)
		}
		if costsReset {
			if err := ledger.Reset(); err != nil {
				log.Fatalf("Resetting cost ledger: %v", err)
			}
			fmt.Println("Cost ledger reset")
			return
		}
		dates := ledger.Dates()
		if len(dates) == 0 {
			fmt.Println("No recorded costs")
			return
		}
		var total float64
		for _, d := range dates {
			fmt.Printf("%s  %.6f\n", d, ledger.Total(d))
			total += ledger.Total(d)
		}
		fmt.Printf("total       %.6f\n", total)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the content tree by status and category",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig()
		if err := printStats(cfg); err != nil {
			log.Fatalf("Stats failed: %v", err)
		}
		stampLastRun(cfg.LogsDir(), "stats")
	},
}

// mustConfig resolves configuration or exits non-zero: configuration
// faults are the only fatal ones.
func mustConfig() *Config {
	cfg, err := NewConfig(rootFlag)
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}
	return cfg
}

// printSummary writes the human-readable per-outcome counts. Per-article
// failures never change the exit code.
func printSummary(stage string, results []FillResult) {
	counts := map[FillOutcome]int{}
	for _, r := range results {
		counts[r.Outcome]++
	}
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)
	fmt.Printf("%s: %d article(s)", stage, len(results))
	for _, o := range outcomes {
		fmt.Printf(", %d %s", counts[FillOutcome(o)], o)
	}
	fmt.Println()
}

// printStats counts articles per status and category.
func printStats(cfg *Config) error {
	paths, err := listArticleFiles(cfg.ArticlesDir())
	if err != nil {
		return err
	}
	conv := newBodyConverter()
	statuses := map[string]int{}
	categories := map[string]int{}
	for _, path := range paths {
		a, err := readArticleFile(path, conv)
		if err != nil {
			continue
		}
		statuses[a.FM.Get(keyStatus)]++
		categories[a.FM.Get(keyCategory)]++
	}
	fmt.Printf("Articles: %d\n", len(paths))
	for _, s := range []string{StatusDraft, StatusGenerated, StatusFilled, StatusBlocked} {
		if statuses[s] > 0 {
			fmt.Printf("  %-10s %d\n", s, statuses[s])
		}
	}
	cats := make([]string, 0, len(categories))
	for c := range categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("  category %-20s %d\n", c, categories[c])
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default . or DRAFTMILL_ROOT)")

	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "Report what would change without calling the model")
	fillCmd.Flags().BoolVar(&fillForce, "force", false, "Process regardless of status and placeholders")
	fillCmd.Flags().IntVar(&fillLimit, "limit", 0, "Maximum articles to process")
	fillCmd.Flags().StringVar(&fillSlug, "slug", "", "Process only articles whose filename starts with this slug")
	fillCmd.Flags().BoolVar(&fillNoGate, "no-gate", false, "Skip the quality gate")
	fillCmd.Flags().BoolVar(&fillNoQA, "no-qa", false, "Skip structural QA")
	fillCmd.Flags().BoolVar(&fillBlock, "block", false, "Mark exhausted articles as blocked")

	refreshCmd.Flags().IntVar(&refreshDays, "days", 0, "Staleness threshold in days (default from config)")
	refreshCmd.Flags().IntVar(&refreshLimit, "limit", 0, "Maximum articles to refresh")
	refreshCmd.Flags().BoolVar(&refreshDryRun, "dry-run", false, "List stale articles without refilling")

	costsCmd.Flags().BoolVar(&costsReset, "reset", false, "Clear the ledger")

	rootCmd.AddCommand(generateCmd, fillCmd, refreshCmd, costsCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
