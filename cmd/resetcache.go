package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/meysamhadeli/codesnap/code_snapshot"
	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/constants/lipgloss"
	"github.com/meysamhadeli/codesnap/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache [profile]",
	Short: "Forget the manifests of previous snapshots",
	Long: `The 'reset-cache' command removes the manifests stored in the cache directory.
They only serve to report which files changed between two gathers, so the next gather
after a reset reports every file as new. With a profile name only that profile is forgotten.
With --prune only manifests older than --max-age, or beyond the newest --max-files, are removed.`,
	Example: `  codesnap reset-cache --stats
  codesnap reset-cache android --force
  codesnap reset-cache --prune --max-age 168h --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, maintainCache)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		force, _ := flags.GetBool("force")
		showStats, _ := flags.GetBool("stats")
		prune, _ := flags.GetBool("prune")

		switch {
		case showStats:
			return handleCacheStats(rootDependencies, os.Stdout)
		case prune:
			options := code_snapshot.DefaultCleanupOptions()
			options.MaxAge, _ = flags.GetDuration("max-age")
			options.MaxFiles, _ = flags.GetInt("max-files")
			options.DryRun, _ = flags.GetBool("dry-run")
			return handlePruneCache(rootDependencies, options, os.Stdout)
		case len(args) == 1:
			return handleForgetProfile(rootDependencies, args[0], force)
		default:
			return handleResetCacheCommand(rootDependencies, force)
		}
	},
}

func init() {
	defaults := code_snapshot.DefaultCleanupOptions()

	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics instead of resetting")
	resetCacheCmd.Flags().Bool("prune", false, "Remove only old manifests instead of resetting everything")
	resetCacheCmd.Flags().Duration("max-age", defaults.MaxAge, "With --prune, remove manifests older than this")
	resetCacheCmd.Flags().Int("max-files", defaults.MaxFiles, "With --prune, keep at most this many manifests (0 for no limit)")
	resetCacheCmd.Flags().Bool("dry-run", false, "With --prune, only report what would be removed")

	rootCmd.AddCommand(resetCacheCmd)
}

func confirm(question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	confirmed, err := utils.ConfirmPrompt(question, bufio.NewReader(os.Stdin))
	if err != nil {
		return false, err
	}
	if !confirmed {
		fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
	}
	return confirmed, nil
}

func handleResetCacheCommand(rootDependencies *RootDependencies, force bool) error {
	confirmed, err := confirm("Are you sure you want to reset the snapshot cache?", force)
	if err != nil || !confirmed {
		return err
	}

	spinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true).
		Start("Resetting snapshot cache...")

	err = rootDependencies.Gatherer.ClearCache()
	_ = spinner.Stop()
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Println(lipgloss.Green.Render("✓ Snapshot cache has been successfully reset!"))
	return nil
}

func handleForgetProfile(rootDependencies *RootDependencies, name string, force bool) error {
	profile, err := rootDependencies.Config.Profile(name)
	if err != nil {
		return err
	}

	confirmed, err := confirm(fmt.Sprintf("Forget the previous snapshot of %s?", profile.Name), force)
	if err != nil || !confirmed {
		return err
	}

	if err := rootDependencies.Gatherer.ForgetProfile(*profile); err != nil {
		return fmt.Errorf("error forgetting %s: %w", profile.Name, err)
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ The next %s gather will start a fresh comparison.", profile.Name)))
	return nil
}

func handlePruneCache(rootDependencies *RootDependencies, options models.CacheCleanupOptions, out io.Writer) error {
	report, err := rootDependencies.Gatherer.CleanupCache(options)
	if err != nil {
		return fmt.Errorf("error pruning cache: %w", err)
	}

	if enabled, ok := report["cache_enabled"].(bool); ok && !enabled {
		fmt.Fprintln(out, "  Cache is disabled")
		return nil
	}

	verb := "Removed"
	count := report["files_actually_deleted"]
	if options.DryRun {
		verb = "Would remove"
		count = report["files_marked_for_delete"]
	}
	fmt.Fprintln(out, lipgloss.Info.Render(fmt.Sprintf("%s %v of %v manifests (%v by age, %v by count).",
		verb, count, report["files_before_cleanup"], report["deleted_by_age"], report["deleted_by_count"])))
	return nil
}

func handleCacheStats(rootDependencies *RootDependencies, out io.Writer) error {
	cacheStats, err := rootDependencies.Gatherer.GetCacheStats()
	if err != nil {
		return fmt.Errorf("could not read cache statistics: %w", err)
	}
	printCacheStats(cacheStats, out)
	return nil
}

func printCacheStats(cacheStats map[string]interface{}, out io.Writer) {
	fmt.Fprintln(out, lipgloss.Info.Render("Cache Statistics:"))

	if enabled, ok := cacheStats["cache_enabled"].(bool); !ok || !enabled {
		fmt.Fprintln(out, "  Cache is disabled")
		return
	}

	labels := map[string]string{
		"cache_dir":    "Cache Directory",
		"cache_files":  "Stored Manifests",
		"newest_entry": "Newest Manifest",
		"oldest_entry": "Oldest Manifest",
	}
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if value, ok := cacheStats[key]; ok {
			fmt.Fprintf(out, "  %s: %v\n", labels[key], value)
		}
	}
	if size, ok := cacheStats["total_size"].(int64); ok {
		fmt.Fprintf(out, "  Total Size: %.2f KB\n", float64(size)/1024)
	}
}
