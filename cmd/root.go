package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/meysamhadeli/codesnap/code_snapshot"
	"github.com/meysamhadeli/codesnap/code_snapshot/contracts"
	"github.com/meysamhadeli/codesnap/config"
	"github.com/meysamhadeli/codesnap/constants/lipgloss"
	"github.com/meysamhadeli/codesnap/token_management"
	contracts_token "github.com/meysamhadeli/codesnap/token_management/contracts"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// RootDependencies holds everything a subcommand needs, built once per invocation.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	Fs              afero.Fs
	Gatherer        contracts.IGatherer
	TokenManagement contracts_token.ITokenManagement
}

var rootCmd = &cobra.Command{
	Use:   "codesnap",
	Short: "Snapshot project sources into a single text file and chart load-test results.",
	Long: `codesnap collects the source files of a project into one plain text snapshot,
filtered by extension and skipping build and vendor directories, and renders the
scalability chart of the server load test.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			rootDependencies, err := handleRootCommand(cmd, withoutCache)
			if err != nil {
				return err
			}
			fmt.Printf("codesnap version %s\n", rootDependencies.Config.Version)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

// cacheUse tells handleRootCommand whether a subcommand touches the manifest cache.
type cacheUse int

const (
	// withoutCache never opens the cache, so no cache directory is created.
	withoutCache cacheUse = iota
	// trackChanges opens the cache when enable_cache is set.
	trackChanges
	// maintainCache also opens a cache directory left by an earlier run with enable_cache set.
	maintainCache
)

func handleRootCommand(cmd *cobra.Command, use cacheUse) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd, cwd)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()

	cacheDir := cfg.CacheDir
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(cwd, cacheDir)
	}

	var cacheManager *code_snapshot.CacheManager
	if openCache(fs, cfg, cacheDir, use) {
		cacheManager, err = code_snapshot.NewCacheManager(fs, cacheDir)
		if err != nil {
			// Change tracking is optional, the snapshot itself does not need it
			log.Printf("Warning: Failed to initialize cache manager: %v", err)
			cacheManager = nil
		}
	}

	return &RootDependencies{
		Cwd:             cwd,
		Config:          cfg,
		Fs:              fs,
		Gatherer:        code_snapshot.NewGatherer(fs, cacheManager, newConsoleReporter(os.Stdout)),
		TokenManagement: token_management.NewTokenManager(),
	}, nil
}

func openCache(fs afero.Fs, cfg *config.Config, cacheDir string, use cacheUse) bool {
	switch use {
	case trackChanges:
		return cfg.EnableCache
	case maintainCache:
		if cfg.EnableCache {
			return true
		}
		exists, _ := afero.DirExists(fs, cacheDir)
		return exists
	default:
		return false
	}
}
