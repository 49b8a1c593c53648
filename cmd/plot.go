package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/codesnap/constants/lipgloss"
	"github.com/meysamhadeli/codesnap/load_plot"
	"github.com/meysamhadeli/codesnap/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// plotCmd: codesnap plot
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the load-test scalability chart.",
	Long: `The 'plot' subcommand draws the average response time against the number of
concurrent users measured by the server load test, annotates the heaviest load, saves the
chart as a PNG image and opens it in the default image viewer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, withoutCache)
		if err != nil {
			return err
		}

		options := rootDependencies.Config.Plot.Options
		if cmd.Flags().Changed("output") {
			options.Output, _ = cmd.Flags().GetString("output")
		}

		return handlePlotCommand(rootDependencies, options)
	},
}

func init() {
	defaults := load_plot.DefaultOptions()
	plotCmd.Flags().StringP("output", "o", defaults.Output, "Image file to write")
	plotCmd.Flags().Int("dpi", defaults.DPI, "Raster resolution in dots per inch")
	plotCmd.Flags().Bool("open", true, "Open the image in the default viewer after saving it")

	rootCmd.AddCommand(plotCmd)
}

func handlePlotCommand(rootDependencies *RootDependencies, options load_plot.Options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true).
		Start("Rendering chart...")

	renderer := load_plot.NewRenderer(rootDependencies.Fs)
	err := renderer.Render(rootDependencies.Config.Plot.Series, options)
	_ = spinner.Stop()
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Plot saved successfully as %s", options.Output)))

	if rootDependencies.Config.Plot.OpenViewer {
		if err := utils.OpenInViewer(ctx, options.Output); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: could not open the plot: %v", err)))
		}
	}

	return nil
}
