package models

import "time"

// FileData describes one file written into a snapshot.
type FileData struct {
	RelativePath string
	Size         int64
	Failed       bool
}

// GatherResult is what a single gather run produced.
type GatherResult struct {
	OutputPath string
	Files      []FileData
	Bytes      int64
	Characters int64
	Changes    *ChangeSummary
	// Failures aggregates the per-file read errors recorded inline; nil when every file was read.
	Failures error
}

// ProjectSnapshot represents the file states seen by the last gather of a profile
type ProjectSnapshot struct {
	RootDir   string                  `json:"root_dir"`
	Timestamp time.Time               `json:"timestamp"`
	Files     map[string]FileSnapshot `json:"files"`
}

// FileSnapshot represents the state of a single file
type FileSnapshot struct {
	RelativePath string    `json:"relative_path"`
	ModTime      time.Time `json:"mod_time"`
	Size         int64     `json:"size"`
	Hash         string    `json:"hash"`
}

// ChangeSummary compares two project snapshots.
type ChangeSummary struct {
	Added     []string
	Changed   []string
	Removed   []string
	Unchanged int
	// FirstRun is set when no previous snapshot existed for the profile.
	FirstRun bool
}

// CacheCleanupOptions defines options for pruning stored manifests
type CacheCleanupOptions struct {
	MaxAge   time.Duration // Remove entries older than this
	MaxFiles int           // Remove oldest entries if cache exceeds this number of files
	DryRun   bool          // If true, only report what would be cleaned without actual deletion
}
