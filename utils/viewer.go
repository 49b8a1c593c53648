package utils

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// ViewerCommand returns the platform command that opens a file in its default application.
func ViewerCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "darwin":
		return "open", []string{path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("no viewer known for %s", goos)
	}
}

// OpenInViewer presents a file with the desktop's default viewer.
func OpenInViewer(ctx context.Context, path string) error {
	name, args, err := ViewerCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("viewer %q is not available: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, name, err)
	}
	return nil
}
