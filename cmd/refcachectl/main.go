// refcachectl inspects metric requirement catalogs and running cache
// deployments: which periods/stages a metric set needs, the superset load
// shape, and the statistics endpoint of a live batch run.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"modelcache/internal/refcache"
	"modelcache/internal/require"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cliConfig struct {
	CatalogFile string
	Format      string
	LogLvl      string
}

func buildRootCmd() *cobra.Command {
	cfg := &cliConfig{Format: "yaml", LogLvl: "info"}
	if v := os.Getenv("MODELCACHE_CATALOG"); v != "" {
		cfg.CatalogFile = v
	}

	root := &cobra.Command{
		Use:           "refcachectl",
		Short:         "Inspect reference-model cache catalogs and deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile,
		"Catalog file (yaml/json/toml); empty uses the built-in metric table (defaults MODELCACHE_CATALOG)")
	root.PersistentFlags().StringVar(&cfg.Format, "format", cfg.Format, "Output format: yaml|json")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		lvl, err := zerolog.ParseLevel(cfg.LogLvl)
		if err != nil {
			lvl = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(lvl)
	}

	root.AddCommand(
		metricsCmd(cfg),
		requirementsCmd(cfg),
		supersetCmd(cfg),
		statsCmd(cfg),
		telemetryCmd(cfg),
	)
	return root
}

func loadCatalog(cfg *cliConfig) (*require.Catalog, error) {
	if cfg.CatalogFile == "" {
		return require.Default(), nil
	}
	return require.LoadFile(cfg.CatalogFile)
}

func emit(cfg *cliConfig, v any) error {
	switch cfg.Format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	case "yaml", "":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
	default:
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}
	return nil
}

func metricsCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "metrics",
		Short:   "List catalog metrics and whether each is a comparison metric",
		Example: "  refcachectl metrics --catalog runs/catalog.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			type row struct {
				Name       string `json:"name" yaml:"name"`
				Comparison bool   `json:"comparison" yaml:"comparison"`
			}
			var rows []row
			for _, name := range cat.Metrics() {
				rows = append(rows, row{Name: name, Comparison: require.IsComparison(name)})
			}
			return emit(cfg, rows)
		},
	}
}

func requirementsCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "requirements <metric>...",
		Short:   "Show the combined load requirement for a set of metrics",
		Example: "  refcachectl requirements euler_error dev_c_L2",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			return emit(cfg, cat.Combined(args))
		},
	}
}

func supersetCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "superset",
		Short:   "Show the superset load shape used for every reference load",
		Example: "  refcachectl superset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			return emit(cfg, cat.Superset())
		},
	}
}

func statsCmd(cfg *cliConfig) *cobra.Command {
	addr := os.Getenv("MODELCACHE_STATS_ADDR")
	if addr == "" {
		addr = "http://127.0.0.1:9090"
	}
	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Fetch cache statistics from a running batch's diagnostics endpoint",
		Example: "  refcachectl stats --addr http://127.0.0.1:9090",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(addr + "/stats")
			if err != nil {
				return fmt.Errorf("fetch stats: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch stats: unexpected status %s", resp.Status)
			}
			var v any
			if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&v); err != nil {
				return fmt.Errorf("decode stats: %w", err)
			}
			return emit(cfg, v)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "Diagnostics endpoint base URL (defaults MODELCACHE_STATS_ADDR)")
	return cmd
}

func telemetryCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "telemetry <file>",
		Short:   "Show per-key access counts from a telemetry sidecar file",
		Example: "  refcachectl telemetry runs/telemetry.json",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := refcache.LoadTelemetry(args[0])
			if err != nil {
				return err
			}
			return emit(cfg, counts)
		},
	}
}
