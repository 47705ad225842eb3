package segment

import (
	"fmt"
	"path/filepath"
	"strings"

	"chaptercut/domain/chapter"
	"chaptercut/domain/video"
)

// PlannedClip pairs an interval with the file it will be written to
type PlannedClip struct {
	Interval chapter.Interval
	Path     string
}

// PlanClips assigns an output path to every interval. Titles that sanitize to the
// same name get _2, _3, ... suffixes in interval order so reruns map titles to the
// same files. Clip names never start with a dot; those names belong to part files,
// the downloaded source and the directory lock.
func PlanClips(outputDir string, intervals []chapter.Interval) []PlannedClip {
	used := make(map[string]bool, len(intervals))
	plan := make([]PlannedClip, 0, len(intervals))
	for _, iv := range intervals {
		base := clipName(iv.Title)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		plan = append(plan, PlannedClip{
			Interval: iv,
			Path:     filepath.Join(outputDir, name+ClipExtension),
		})
	}
	return plan
}

// clipName sanitizes title and replaces leading dots with underscores
func clipName(title string) string {
	name := video.SanitizeFilename(title)
	visible := strings.TrimLeft(name, ".")
	return strings.Repeat("_", len(name)-len(visible)) + visible
}

// PartPath returns the hidden temporary path a clip is written to before it is renamed
func PartPath(clipPath string) string {
	dir, file := filepath.Split(clipPath)
	return filepath.Join(dir, "."+strings.TrimSuffix(file, ClipExtension)+".part"+ClipExtension)
}
