package code_snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/meysamhadeli/codesnap/code_snapshot/contracts"
	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/utils"
	"github.com/spf13/afero"
)

var (
	ErrRootNotFound     = errors.New("root directory does not exist")
	ErrRootNotDirectory = errors.New("root path is not a directory")
	ErrInvalidText      = errors.New("content is not valid UTF-8 text")
)

// Gatherer concatenates the matching files of a tree into one snapshot file.
type Gatherer struct {
	fs           afero.Fs
	cacheManager *CacheManager
	reporter     contracts.IReporter
}

// NewGatherer initializes a Gatherer. A nil cacheManager disables change tracking,
// a nil reporter discards progress.
func NewGatherer(fs afero.Fs, cacheManager *CacheManager, reporter contracts.IReporter) contracts.IGatherer {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Gatherer{
		fs:           fs,
		cacheManager: cacheManager,
		reporter:     reporter,
	}
}

// FileHeader is the separator written in front of every file.
func FileHeader(relativePath string) string {
	return fmt.Sprintf("\n\n--- FILE: %s ---\n\n", relativePath)
}

// ReadErrorMarker replaces the content of a file that could not be read.
func ReadErrorMarker(err error) string {
	return fmt.Sprintf("!!! ERROR READING FILE: %v !!!\n", err)
}

func (g *Gatherer) Gather(ctx context.Context, profile models.Profile) (*models.GatherResult, error) {
	root := profile.Root

	rootInfo, err := g.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("failed to access root directory %s: %w", root, err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}
	walkRoot := g.walkRoot(root)

	outputDir := filepath.Dir(profile.Output)
	tmp, err := afero.TempFile(g.fs, outputDir, ".codesnap-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary output in %s: %w", outputDir, err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = g.fs.Remove(tmpName)
		}
	}()

	writer := bufio.NewWriter(tmp)
	result := &models.GatherResult{OutputPath: profile.Output}
	manifest := newProjectSnapshot(root)
	var failures *multierror.Error

	write := func(text string) error {
		n, err := writer.WriteString(text)
		result.Bytes += int64(n)
		result.Characters += int64(utf8.RuneCountInString(text[:n]))
		return err
	}

	g.reporter.Start(root)

	err = afero.Walk(g.fs, walkRoot, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == walkRoot {
				return fmt.Errorf("failed to read root directory %s: %w", root, walkErr)
			}
			// Unreadable entries below the root are skipped, not fatal
			g.reporter.Warn(fmt.Sprintf("skipping %s: %v", path, walkErr))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != walkRoot && utils.IsIgnoredDir(info.Name(), profile.IgnoreDirs) {
				return filepath.SkipDir
			}
			return nil
		}

		if path == tmpName || !utils.HasAllowedExtension(info.Name(), profile.Extensions) {
			return nil
		}

		// Symlinked directories are neither followed nor emitted
		if info.Mode()&os.ModeSymlink != 0 {
			if target, err := g.fs.Stat(path); err == nil && target.IsDir() {
				return nil
			}
		}

		relativePath, err := utils.RelativeSlashPath(root, path)
		if err != nil {
			return err
		}

		if err := write(FileHeader(relativePath)); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}

		raw, text, readErr := g.readText(path)
		if readErr != nil {
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", relativePath, readErr))
			g.reporter.FileFailed(relativePath, readErr)
			result.Files = append(result.Files, models.FileData{RelativePath: relativePath, Failed: true})
			if err := write(ReadErrorMarker(readErr)); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			return nil
		}

		if err := write(text); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}

		g.reporter.FileAdded(relativePath)
		result.Files = append(result.Files, models.FileData{RelativePath: relativePath, Size: int64(len(raw))})
		manifest.Files[relativePath] = models.FileSnapshot{
			RelativePath: relativePath,
			ModTime:      info.ModTime(),
			Size:         int64(len(raw)),
			Hash:         hashContent(raw),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := utils.CommitTempFile(g.fs, tmpName, profile.Output); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	committed = true

	result.Failures = failures.ErrorOrNil()
	result.Changes = g.trackChanges(profile, manifest)

	g.reporter.Done(profile.Output)

	return result, nil
}

// walkRoot returns the path to start walking from. A root that is a symlink to a directory
// gets a trailing separator so the walk lists its target instead of reporting the link itself.
func (g *Gatherer) walkRoot(root string) string {
	lstater, ok := g.fs.(afero.Lstater)
	if !ok {
		return root
	}
	info, lstatCalled, err := lstater.LstatIfPossible(root)
	if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
		return root
	}
	if strings.HasSuffix(root, string(filepath.Separator)) {
		return root
	}
	return root + string(filepath.Separator)
}

// readText reads a file as UTF-8 text with universal newlines.
func (g *Gatherer) readText(path string) ([]byte, string, error) {
	raw, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return nil, "", err
	}
	if !utf8.Valid(raw) {
		return nil, "", ErrInvalidText
	}

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return raw, text, nil
}

// trackChanges compares the manifest with the one stored by the previous run and replaces it.
func (g *Gatherer) trackChanges(profile models.Profile, manifest *models.ProjectSnapshot) *models.ChangeSummary {
	if g.cacheManager == nil {
		return nil
	}

	key := manifestKey(profile)
	previous, _ := g.cacheManager.GetProjectSnapshot(key)
	summary := DiffSnapshots(previous, manifest)

	if err := g.cacheManager.SetProjectSnapshot(key, manifest); err != nil {
		log.Printf("Warning: failed to store snapshot manifest: %v", err)
	}

	return summary
}

// ForgetProfile drops the manifest of profile so its next gather starts a fresh comparison.
func (g *Gatherer) ForgetProfile(profile models.Profile) error {
	if g.cacheManager == nil {
		return nil
	}
	return g.cacheManager.DeleteProjectSnapshot(manifestKey(profile))
}

func (g *Gatherer) CleanupCache(options models.CacheCleanupOptions) (map[string]interface{}, error) {
	if g.cacheManager == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}
	return g.cacheManager.SmartCleanupCache(options)
}

func (g *Gatherer) ClearCache() error {
	if g.cacheManager == nil {
		return nil
	}
	return g.cacheManager.ClearCache()
}

func (g *Gatherer) GetCacheStats() (map[string]interface{}, error) {
	if g.cacheManager == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}
	return g.cacheManager.GetCacheStats()
}

type nopReporter struct{}

func (nopReporter) Start(string)             {}
func (nopReporter) FileAdded(string)         {}
func (nopReporter) FileFailed(string, error) {}
func (nopReporter) Warn(string)              {}
func (nopReporter) Done(string)              {}
