package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/constants/lipgloss"
	"github.com/meysamhadeli/codesnap/token_management"
	"github.com/spf13/cobra"
)

// gatherCmd: codesnap gather <profile>
var gatherCmd = &cobra.Command{
	Use:   "gather <profile>",
	Short: "Concatenate the source files of a project into one text snapshot.",
	Long: `The 'gather' subcommand walks the root directory of a profile, keeps the files whose
names end with one of the profile extensions, skips every directory whose name is in the
ignore list, and writes all of them into a single snapshot file, each one preceded by a
'--- FILE: <path> ---' header. Built-in profiles are 'android' and 'server'.`,
	Example: `  codesnap gather android
  codesnap gather server --root ../api --output api_snapshot.txt
  codesnap gather android --ext .kt,.kts --ignore build,.git`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, trackChanges)
		if err != nil {
			return err
		}

		profile, err := rootDependencies.Config.Profile(args[0])
		if err != nil {
			return err
		}

		return handleGatherCommand(rootDependencies, applyProfileOverrides(cmd, *profile))
	},
}

func init() {
	addGatherFlags(gatherCmd)
	rootCmd.AddCommand(gatherCmd)
}

func addGatherFlags(cmd *cobra.Command) {
	cmd.Flags().String("root", "", "Directory to snapshot instead of the profile root")
	cmd.Flags().StringP("output", "o", "", "Snapshot file to write instead of the profile output")
	cmd.Flags().StringSlice("ext", nil, "File name suffixes to include, replacing the profile extensions (e.g. .kt,.kts)")
	cmd.Flags().StringSlice("ignore", nil, "Directory names to skip, replacing the profile ignore list (e.g. build,.git)")
}

// applyProfileOverrides replaces profile fields with the flags the user set explicitly.
func applyProfileOverrides(cmd *cobra.Command, profile models.Profile) models.Profile {
	flags := cmd.Flags()
	if flags.Changed("root") {
		profile.Root, _ = flags.GetString("root")
	}
	if flags.Changed("output") {
		profile.Output, _ = flags.GetString("output")
	}
	if flags.Changed("ext") {
		profile.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("ignore") {
		profile.IgnoreDirs, _ = flags.GetStringSlice("ignore")
	}
	return profile
}

func handleGatherCommand(rootDependencies *RootDependencies, profile models.Profile) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := rootDependencies.Gatherer.Gather(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to gather %s snapshot: %w", profile.Name, err)
	}

	if result.Failures != nil {
		count := 1
		if merr, ok := result.Failures.(*multierror.Error); ok {
			count = len(merr.Errors)
		}
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("%d file(s) could not be read and were recorded inline.", count)))
	}

	if summary := formatChanges(result.Changes); summary != "" {
		fmt.Println(lipgloss.Info.Render(summary))
	}

	rootDependencies.TokenManagement.UsedTokens(token_management.EstimateTokens(int(result.Characters)))
	rootDependencies.TokenManagement.DisplayTokens(profile.Name, len(result.Files), result.Bytes)

	return nil
}

// formatChanges describes how the tree moved since the previous snapshot.
func formatChanges(changes *models.ChangeSummary) string {
	if changes == nil || changes.FirstRun {
		return ""
	}
	if len(changes.Added)+len(changes.Changed)+len(changes.Removed) == 0 {
		return "No changes since the previous snapshot."
	}

	var parts []string
	for _, group := range []struct {
		label string
		paths []string
	}{
		{"added", changes.Added},
		{"changed", changes.Changed},
		{"removed", changes.Removed},
	} {
		if len(group.paths) > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", len(group.paths), group.label))
		}
	}
	return fmt.Sprintf("Since the previous snapshot: %s.", strings.Join(parts, ", "))
}
