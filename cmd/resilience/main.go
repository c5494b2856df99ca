// Package main provides the resilience CLI for supply chain operators.
// It drives the exposure, scenario, and memory engines against a local
// fact snapshot and prints machine-readable output for scripting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"disruption-response/api"
	"disruption-response/db/clickhouse"
	"disruption-response/internal/embedding"
	"disruption-response/internal/exposure"
	"disruption-response/internal/facts"
	"disruption-response/internal/ledger"
	"disruption-response/internal/recall"
	"disruption-response/internal/scenario"
	"disruption-response/internal/vector"
	"disruption-response/pkg/platform"
)

var logger = platform.InitLogger("resilience-cli")

func main() {
	// Best-effort: a missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "resilience",
		Usage: "supply chain disruption response engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Usage:   "directory holding profile.json, erp.json, planning.json",
				Value:   platform.GetEnv("RESILIENCE_DATA_DIR", "data"),
				EnvVars: []string{"RESILIENCE_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "ledger",
				Usage:   "path to the JSON event ledger",
				Value:   platform.GetEnv("RESILIENCE_LEDGER_PATH", "data/disruption_history.json"),
				EnvVars: []string{"RESILIENCE_LEDGER_PATH"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "Postgres connection string; when set the ledger lives in Postgres",
				EnvVars: []string{"RESILIENCE_POSTGRES_DSN"},
			},
			&cli.StringFlag{
				Name:    "index-url",
				Usage:   "similarity index base URL (empty disables index recall)",
				EnvVars: []string{"RESILIENCE_INDEX_URL"},
			},
			&cli.StringFlag{
				Name:    "embedder-url",
				Usage:   "embedding service endpoint (empty disables index recall)",
				EnvVars: []string{"RESILIENCE_EMBEDDER_URL"},
			},
		},
		Commands: []*cli.Command{
			exposureCommand(),
			runwayCommand(),
			slaCommand(),
			supplierCommand(),
			simulateCommand(),
			rankCommand(),
			recallCommand(),
			logEventCommand(),
			patternsCommand(),
			mirrorCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("error: %v", err)
		platform.LogFatal(logger, "command failed", err)
	}
}

// =============================================================================
// ENGINE WIRING
// =============================================================================

func loadStore(c *cli.Context) (*facts.Store, error) {
	store, err := facts.Load(c.String("data"))
	if err != nil {
		return nil, fmt.Errorf("loading fact snapshot: %w", err)
	}
	return store, nil
}

func openLedger(c *cli.Context) (ledger.Store, error) {
	if dsn := c.String("postgres-dsn"); dsn != "" {
		return ledger.NewPostgresStore(dsn)
	}
	return ledger.NewFileStore(c.String("ledger")), nil
}

func buildRecall(c *cli.Context) (*recall.Engine, ledger.Store, error) {
	store, err := openLedger(c)
	if err != nil {
		return nil, nil, err
	}
	var index *vector.Client
	if url := c.String("index-url"); url != "" {
		index = vector.NewClient(url)
	}
	var embedder *embedding.Client
	if url := c.String("embedder-url"); url != "" {
		embedder = embedding.NewClient(url, vector.EmbeddingDim)
	}
	return recall.NewEngine(store, index, embedder), store, nil
}

// =============================================================================
// EXPOSURE COMMANDS
// =============================================================================

func exposureCommand() *cli.Command {
	return &cli.Command{
		Name:  "exposure",
		Usage: "revenue at risk for a delayed supplier",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "supplier", Required: true},
			&cli.IntFlag{Name: "delay-days", Required: true},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			calc := exposure.NewCalculator(store)
			result, err := calc.RevenueAtRisk(c.String("supplier"), c.Int("delay-days"))
			if err != nil {
				return err
			}
			printHeadline("Total exposure: $%.2f", result.TotalExposureUSD)
			return printJSON(result)
		},
	}
}

func runwayCommand() *cli.Command {
	return &cli.Command{
		Name:  "runway",
		Usage: "inventory runway and reorder urgency for an item",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "item", Required: true},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			calc := exposure.NewCalculator(store)
			result, err := calc.InventoryRunway(c.String("item"))
			if err != nil {
				return err
			}
			printHeadline("Runway: %.1f days (%s)", result.DaysOnHand, result.AlertLevel)
			return printJSON(result)
		},
	}
}

func slaCommand() *cli.Command {
	return &cli.Command{
		Name:  "sla",
		Usage: "SLA breach probability for a production halt",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "halt-days", Required: true},
			&cli.StringFlag{Name: "customer", Required: true},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			calc := exposure.NewCalculator(store)
			result, err := calc.SLABreachProbability(c.Float64("halt-days"), c.String("customer"))
			if err != nil {
				return err
			}
			printHeadline("Breach probability: %.0f%% (%s)", result.BreachProbability*100, result.Severity)
			return printJSON(result)
		},
	}
}

func supplierCommand() *cli.Command {
	return &cli.Command{
		Name:  "supplier",
		Usage: "concentration risk profile for a supplier",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			calc := exposure.NewCalculator(store)
			result, err := calc.SupplierExposure(c.String("id"))
			if err != nil {
				return err
			}
			printHeadline("Risk rating: %s", result.OverallRiskRating)
			return printJSON(result)
		},
	}
}

// =============================================================================
// SCENARIO COMMANDS
// =============================================================================

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "simulate one mitigation scenario",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario", Required: true,
				Usage: "airfreight, alternate_supplier, buffer_build, demand_deferral, or spot_market"},
			&cli.StringFlag{Name: "item", Required: true},
			&cli.IntFlag{Name: "disruption-days", Required: true},
			&cli.IntFlag{Name: "quantity", Required: true},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			sim := scenario.NewSimulator(store)
			result, err := sim.Simulate(c.String("scenario"), c.String("item"), c.Int("disruption-days"), c.Int("quantity"))
			if err != nil {
				return err
			}
			printHeadline("%s scores %.1f/100", result.ScenarioType, result.CompositeScore)
			return printJSON(result)
		},
	}
}

func rankCommand() *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "simulate several scenarios and rank them by risk appetite",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "scenario", Required: true, Usage: "repeatable scenario type"},
			&cli.StringFlag{Name: "item", Required: true},
			&cli.IntFlag{Name: "disruption-days", Required: true},
			&cli.IntFlag{Name: "quantity", Required: true},
			&cli.StringFlag{Name: "risk-appetite", Value: "medium"},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			sim := scenario.NewSimulator(store)
			var results []scenario.Result
			for _, name := range c.StringSlice("scenario") {
				r, err := sim.Simulate(name, c.String("item"), c.Int("disruption-days"), c.Int("quantity"))
				if err != nil {
					return err
				}
				results = append(results, *r)
			}
			ranking, err := scenario.NewRanker(store).Rank(results, c.String("risk-appetite"))
			if err != nil {
				return err
			}
			printHeadline("Recommended: %s", ranking.TopRecommendation)
			return printJSON(ranking)
		},
	}
}

// =============================================================================
// MEMORY COMMANDS
// =============================================================================

func recallCommand() *cli.Command {
	return &cli.Command{
		Name:  "recall",
		Usage: "retrieve similar historical disruptions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type"},
			&cli.StringFlag{Name: "region"},
			&cli.IntFlag{Name: "top-k", Value: recall.DefaultTopK},
		},
		Action: func(c *cli.Context) error {
			engine, store, err := buildRecall(c)
			if err != nil {
				return err
			}
			defer store.Close()
			result, err := engine.RetrieveSimilar(c.Context, c.String("type"), c.String("region"), c.Int("top-k"))
			if err != nil {
				return err
			}
			printHeadline("%d similar cases (%s)", result.CasesFound, result.Source)
			return printJSON(result)
		},
	}
}

func logEventCommand() *cli.Command {
	return &cli.Command{
		Name:  "log-event",
		Usage: "append a finished disruption cycle to the ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Required: true},
			&cli.StringFlag{Name: "region"},
			&cli.StringFlag{Name: "severity"},
			&cli.StringSliceFlag{Name: "supplier", Usage: "repeatable affected supplier id"},
			&cli.StringFlag{Name: "description"},
			&cli.StringFlag{Name: "action"},
			&cli.Float64Flag{Name: "cost"},
			&cli.StringFlag{Name: "outcome"},
		},
		Action: func(c *cli.Context) error {
			engine, store, err := buildRecall(c)
			if err != nil {
				return err
			}
			defer store.Close()
			result, err := engine.LogEvent(c.Context, recall.LogRequest{
				EventType:         c.String("type"),
				Region:            c.String("region"),
				Severity:          c.String("severity"),
				AffectedSuppliers: c.StringSlice("supplier"),
				Description:       c.String("description"),
				MitigationAction:  c.String("action"),
				EstimatedCostUSD:  c.Float64("cost"),
				Outcome:           c.String("outcome"),
			})
			if err != nil {
				return err
			}
			if result.Warning != nil {
				color.Yellow("warning: %s", result.Warning.Message)
			}
			printHeadline("Logged %s (%s)", result.EventID, result.StorageStatus)
			return printJSON(result)
		},
	}
}

func patternsCommand() *cli.Command {
	return &cli.Command{
		Name:  "patterns",
		Usage: "mine recurring risk patterns from the ledger",
		Action: func(c *cli.Context) error {
			engine, store, err := buildRecall(c)
			if err != nil {
				return err
			}
			defer store.Close()
			result, err := engine.RecurringPatterns(c.Context)
			if err != nil {
				return err
			}
			printHeadline("%d events analyzed, %d patterns", result.TotalEventsAnalyzed, len(result.Patterns))
			return printJSON(result)
		},
	}
}

// =============================================================================
// ANALYTICS MIRROR
// =============================================================================

func mirrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "manage the ClickHouse analytics mirror of the ledger",
		Subcommands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "copy all ledger events into ClickHouse",
				Action: func(c *cli.Context) error {
					store, err := openLedger(c)
					if err != nil {
						return err
					}
					defer store.Close()

					ch, err := openClickHouse()
					if err != nil {
						return err
					}
					defer ch.Close()

					ctx, cancel := context.WithTimeout(c.Context, 60*time.Second)
					defer cancel()
					if err := ch.Migrate(ctx); err != nil {
						return fmt.Errorf("migrating mirror schema: %w", err)
					}
					events, err := store.All(ctx)
					if err != nil {
						return err
					}
					if err := ch.AppendEvents(ctx, events); err != nil {
						return fmt.Errorf("mirroring events: %w", err)
					}
					printHeadline("Mirrored %d events", len(events))
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "print aggregate counts from the analytics mirror",
				Action: func(c *cli.Context) error {
					ch, err := openClickHouse()
					if err != nil {
						return err
					}
					defer ch.Close()

					ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
					defer cancel()

					total, err := ch.EventCount(ctx)
					if err != nil {
						return err
					}
					byType, err := ch.CountByType(ctx)
					if err != nil {
						return err
					}
					byRegion, err := ch.CountByRegion(ctx)
					if err != nil {
						return err
					}
					bySupplier, err := ch.CountBySupplier(ctx)
					if err != nil {
						return err
					}
					losses, costs, err := ch.HistoricalTotals(ctx)
					if err != nil {
						return err
					}

					printHeadline("%d events in mirror", total)
					printTallies("By type", byType)
					printTallies("By region", byRegion)
					printTallies("By supplier", bySupplier)
					fmt.Printf("Total losses:          $%s\n", losses.StringFixed(2))
					fmt.Printf("Total mitigation cost: $%s\n", costs.StringFixed(2))
					return nil
				},
			},
		},
	}
}

func openClickHouse() (*clickhouse.Store, error) {
	cfg := clickhouse.DefaultConfig()
	cfg.Host = platform.GetEnv("CLICKHOUSE_HOST", cfg.Host)
	cfg.Port = platform.GetEnvInt("CLICKHOUSE_PORT", cfg.Port)
	cfg.Database = platform.GetEnv("CLICKHOUSE_DB", cfg.Database)
	cfg.Username = platform.GetEnv("CLICKHOUSE_USER", cfg.Username)
	cfg.Password = platform.GetEnv("CLICKHOUSE_PASSWORD", cfg.Password)
	cfg.Debug = platform.GetEnvBool("CLICKHOUSE_DEBUG", cfg.Debug)
	return clickhouse.NewStore(cfg)
}

// =============================================================================
// SERVER
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, EnvVars: []string{"RESILIENCE_PORT"}},
		},
		Action: func(c *cli.Context) error {
			store, err := loadStore(c)
			if err != nil {
				return err
			}
			engine, ledgerStore, err := buildRecall(c)
			if err != nil {
				return err
			}
			defer ledgerStore.Close()

			cfg := api.DefaultConfig()
			cfg.Port = c.Int("port")
			server := api.NewServer(
				exposure.NewCalculator(store),
				scenario.NewSimulator(store),
				scenario.NewRanker(store),
				engine,
				cfg,
				logger,
			)
			return server.StartWithGracefulShutdown()
		},
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func printHeadline(format string, args ...any) {
	color.New(color.FgCyan, color.Bold).Printf(format+"\n", args...)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTallies(label string, tallies []clickhouse.DimensionTally) {
	fmt.Printf("%s:\n", label)
	for _, t := range tallies {
		fmt.Printf("  %-24s %d\n", t.Value, t.Count)
	}
}
