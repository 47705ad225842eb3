package video

import "context"

// Source is a materialized video file ready for clip extraction
type Source struct {
	Path     string
	Duration int // total length in whole seconds

	// Owned is true when the source was fetched by the pipeline and must be removed
	// once every interval has been attempted. Caller-supplied files are never removed.
	Owned bool
}

// AcquireOptions carries hints passed through to a SourceProvider unexamined
type AcquireOptions struct {
	Resolution string // e.g. "720p"; empty lets the provider choose
	FileName   string // base name without extension; empty lets the provider choose
}

// SourceProvider defines the interface for obtaining a local copy of a video
// This is a port that can be implemented by different infrastructure adapters
type SourceProvider interface {
	// Acquire returns a local file for identifier (URL or path), fetching into outputDir if needed.
	// Implementations return an error wrapping ErrSourceUnavailable when the video cannot be accessed.
	Acquire(ctx context.Context, identifier, outputDir string, opts AcquireOptions) (*Source, error)
}

// ClipRequest describes a single clip to cut out of a source file
type ClipRequest struct {
	SourcePath string
	Start      int // seconds
	End        int // seconds, ignored when OpenEnd is set
	OpenEnd    bool
	OutputPath string
}

// ClipExtractor defines the interface for cutting a clip from a source video
type ClipExtractor interface {
	// Extract writes the clip described by req to req.OutputPath
	Extract(ctx context.Context, req ClipRequest) error
}

// Metadata is what a MetadataProvider knows about a video
type Metadata struct {
	ID          string
	URL         string
	Title       string
	Description string
	Duration    ISODuration
}

// MetadataProvider defines the interface for looking up video metadata
type MetadataProvider interface {
	Lookup(ctx context.Context, identifier string) (*Metadata, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// FileSystem is the subset of file operations the segmentation run needs
type FileSystem interface {
	FileChecker
	Remove(path string) error
	Rename(oldPath, newPath string) error
}
