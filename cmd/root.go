package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"smatch/lexgraph/internal/catalog"
	"smatch/lexgraph/internal/db"
	"smatch/lexgraph/internal/db/pg"
	"smatch/lexgraph/internal/logger"
	"smatch/lexgraph/internal/logger/console"
	"smatch/lexgraph/internal/util"
)

const dbFileName = ".lexgraph.db"

var (
	dbPath      string
	pgURL       string
	catalogPath string
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:           "lexgraph",
	Short:         "Normalize and transitively close a lexical relation graph",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv()
		logger.Init(console.New(console.Params{
			Debug: debug || util.GetEnvBool("LEXGRAPH_DEBUG", false),
		}))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to a "+dbFileName+" SQLite database")
	rootCmd.PersistentFlags().StringVar(&pgURL, "pg", "", "PostgreSQL connection URL (overrides --db)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML relation catalog (default: built-in)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up.
// With create set, a --db path that does not exist yet is accepted.
func DiscoverDB(create bool) (string, error) {
	// 1. Environment variable
	if envPath := util.GetEnvString("LEXGRAPH_DB", ""); envPath != "" {
		if _, err := os.Stat(envPath); err == nil || create {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil || create {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	return "", fmt.Errorf("no %s found (set LEXGRAPH_DB, use --db or --pg, or run from a directory containing %s)", dbFileName, dbFileName)
}

// OpenBackend opens PostgreSQL when a URL is configured, SQLite otherwise.
func OpenBackend(ctx context.Context, create bool) (backend, error) {
	url := pgURL
	if url == "" {
		url = util.GetEnvString("LEXGRAPH_PG_URL", "")
	}
	if url != "" {
		d, err := pg.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		logger.Debug("Opened postgres relation store")
		return pgBackend{d}, nil
	}

	path, err := DiscoverDB(create)
	if err != nil {
		return nil, err
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened sqlite relation store", "path", path)
	return sqliteBackend{d}, nil
}

// LoadCatalog returns the catalog named by --catalog or LEXGRAPH_CATALOG,
// or the built-in default.
func LoadCatalog() (*catalog.Catalog, error) {
	path := catalogPath
	if path == "" {
		path = util.GetEnvString("LEXGRAPH_CATALOG", "")
	}
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return c, nil
}

// parseRelNames splits a comma-separated relation list, dropping blanks.
func parseRelNames(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
