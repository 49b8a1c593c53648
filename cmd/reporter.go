package cmd

import (
	"fmt"
	"io"

	"github.com/meysamhadeli/codesnap/constants/lipgloss"
)

// consoleReporter prints gather progress one line per file.
type consoleReporter struct {
	out io.Writer
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	return &consoleReporter{out: out}
}

func (r *consoleReporter) Start(root string) {
	fmt.Fprintf(r.out, "Starting code gathering from %s...\n", root)
}

func (r *consoleReporter) FileAdded(relativePath string) {
	fmt.Fprintln(r.out, lipgloss.Gray.Render("Added: "+relativePath))
}

func (r *consoleReporter) FileFailed(relativePath string, err error) {
	fmt.Fprintln(r.out, lipgloss.Red.Render(fmt.Sprintf("ERROR reading %s: %v", relativePath, err)))
}

func (r *consoleReporter) Warn(message string) {
	fmt.Fprintln(r.out, lipgloss.Yellow.Render("Warning: "+message))
}

func (r *consoleReporter) Done(outputPath string) {
	fmt.Fprintln(r.out, lipgloss.Green.Render(fmt.Sprintf("\nDone! Code snapshot saved to: %s", outputPath)))
}
