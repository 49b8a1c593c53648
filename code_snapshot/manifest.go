package code_snapshot

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/zeebo/xxh3"
)

func newProjectSnapshot(root string) *models.ProjectSnapshot {
	return &models.ProjectSnapshot{
		RootDir:   root,
		Timestamp: time.Now(),
		Files:     make(map[string]models.FileSnapshot),
	}
}

func hashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

// manifestKey identifies the manifest of one profile rooted at one directory.
func manifestKey(profile models.Profile) string {
	root := profile.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return profile.Name + "|" + filepath.ToSlash(root)
}

// DiffSnapshots compares the previous manifest with the current one.
// A nil previous manifest marks the first run, every file counts as added.
func DiffSnapshots(previous, current *models.ProjectSnapshot) *models.ChangeSummary {
	summary := &models.ChangeSummary{FirstRun: previous == nil}

	var before map[string]models.FileSnapshot
	if previous != nil {
		before = previous.Files
	}

	for path, file := range current.Files {
		old, existed := before[path]
		switch {
		case !existed:
			summary.Added = append(summary.Added, path)
		case old.Hash != file.Hash || old.Size != file.Size:
			summary.Changed = append(summary.Changed, path)
		default:
			summary.Unchanged++
		}
	}

	for path := range before {
		if _, ok := current.Files[path]; !ok {
			summary.Removed = append(summary.Removed, path)
		}
	}

	sort.Strings(summary.Added)
	sort.Strings(summary.Changed)
	sort.Strings(summary.Removed)

	return summary
}
