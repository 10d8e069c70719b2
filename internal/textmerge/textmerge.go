// Package textmerge implements the 3-way line merge of spec.md §4.4
// for files treated as opaque text: files whose extension is not one
// of the structured formats C2 understands.
package textmerge

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Config controls marker labels and the diff3 base band.
type Config struct {
	OursLabel   string
	TheirsLabel string
	ShowBase    bool
	BaseLabel   string
}

// DefaultConfig returns the conventional git-style labels.
func DefaultConfig() Config {
	return Config{OursLabel: "ours", TheirsLabel: "theirs", BaseLabel: "base"}
}

// Result is the outcome of a 3-way merge: either Clean or Conflict.
type Result struct {
	Clean         bool
	Content       string
	ConflictCount int
	Regions       []Region
}

// Region describes one conflict's line span in the merged output
// (1-indexed, inclusive) and its two (or three, with diff3) sides.
type Region struct {
	StartLine int
	EndLine   int
	Ours      string
	Theirs    string
	Base      string // empty unless diff3 was requested
	HasBase   bool
}

const (
	oursMarker  = "<<<<<<<"
	baseMarker  = "|||||||"
	sepMarker   = "======="
	theirsMarker = ">>>>>>>"
)

// Merge computes a 3-way line merge of base/ours/theirs per spec.md
// §4.4. ours is the content accumulated from lower-precedence layers;
// theirs is the next layer up.
func Merge(base, ours, theirs []byte, cfg Config) (Result, error) {
	if len(base) == 0 && len(ours) == 0 && len(theirs) == 0 {
		return Result{Clean: true, Content: ""}, nil
	}

	baseLines := splitLines(string(base))
	oursLines := splitLines(string(ours))
	theirsLines := splitLines(string(theirs))

	oursHunks := diffHunks(baseLines, oursLines)
	theirsHunks := diffHunks(baseLines, theirsLines)

	merged, regions := mergeHunks(baseLines, oursHunks, theirsHunks, cfg)

	trailingNewline := hasTrailingNewline(theirs, ours, base)
	content := strings.Join(merged, "\n")
	if trailingNewline && len(merged) > 0 {
		content += "\n"
	}

	if len(regions) == 0 {
		return Result{Clean: true, Content: content}, nil
	}
	return Result{
		Clean:         false,
		Content:       content,
		ConflictCount: len(regions),
		Regions:       regions,
	}, nil
}

func hasTrailingNewline(candidates ...[]byte) bool {
	for _, c := range candidates {
		if len(c) > 0 {
			return c[len(c)-1] == '\n'
		}
	}
	return false
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// hunk is a contiguous run of base lines [baseStart, baseEnd) replaced
// by newLines. Equal (unchanged) spans are never represented as hunks.
type hunk struct {
	baseStart, baseEnd int
	newLines           []string
}

// diffHunks computes the edit script turning base into modified, using
// go-diff's line-mode diff: lines are hashed to runes (that package's
// documented technique for line-granularity diffs over its
// character-oriented Myers implementation), diffed, then decoded back
// to per-line equal/insert/delete operations.
func diffHunks(base, modified []string) []hunk {
	dmp := diffmatchpatch.New()
	baseText, modText, lineArray := dmp.DiffLinesToChars(strings.Join(base, "\n"), strings.Join(modified, "\n"))
	diffs := dmp.DiffMain(baseText, modText, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var hunks []hunk
	baseIdx := 0
	var pendingDelStart = -1
	var pendingNew []string

	flush := func() {
		if pendingDelStart == -1 && len(pendingNew) == 0 {
			return
		}
		start := pendingDelStart
		end := baseIdx
		if start == -1 {
			start = baseIdx
			end = baseIdx
		}
		hunks = append(hunks, hunk{baseStart: start, baseEnd: end, newLines: pendingNew})
		pendingDelStart = -1
		pendingNew = nil
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			baseIdx += len(lines)
		case diffmatchpatch.DiffDelete:
			if pendingDelStart == -1 {
				pendingDelStart = baseIdx
			}
			baseIdx += len(lines)
		case diffmatchpatch.DiffInsert:
			if pendingDelStart == -1 {
				pendingDelStart = baseIdx
			}
			pendingNew = append(pendingNew, lines...)
		}
	}
	flush()
	return hunks
}

// mergeHunks walks base line-by-line, applying ours/theirs hunks.
// Overlapping hunks (both sides touch an intersecting base range)
// become a conflict region; disjoint hunks apply independently.
func mergeHunks(base []string, oursHunks, theirsHunks []hunk, cfg Config) ([]string, []Region) {
	var out []string
	var regions []Region

	oi, ti := 0, 0
	pos := 0

	for pos <= len(base) {
		var oh, th *hunk
		if oi < len(oursHunks) && oursHunks[oi].baseStart == pos {
			oh = &oursHunks[oi]
		}
		if ti < len(theirsHunks) && theirsHunks[ti].baseStart == pos {
			th = &theirsHunks[ti]
		}

		switch {
		case oh == nil && th == nil:
			if pos >= len(base) {
				pos++
				continue
			}
			out = append(out, base[pos])
			pos++
		case oh != nil && th == nil:
			out = append(out, oh.newLines...)
			pos = oh.baseEnd
			oi++
		case oh == nil && th != nil:
			out = append(out, th.newLines...)
			pos = th.baseEnd
			ti++
		default:
			// Both sides changed starting here.
			if oh.baseEnd == th.baseEnd && linesEqual(oh.newLines, th.newLines) {
				// Identical change on both sides: clean.
				out = append(out, oh.newLines...)
				pos = oh.baseEnd
				oi++
				ti++
				continue
			}
			end := oh.baseEnd
			if th.baseEnd > end {
				end = th.baseEnd
			}
			startLine := len(out) + 1
			region := Region{
				StartLine: startLine,
				Ours:      strings.Join(oh.newLines, "\n"),
				Theirs:    strings.Join(th.newLines, "\n"),
			}
			out = append(out, renderConflict(base, pos, end, oh, th, cfg, &region)...)
			region.EndLine = len(out)
			regions = append(regions, region)
			pos = end
			oi++
			ti++
		}
	}

	return out, regions
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func renderConflict(base []string, start, end int, oh, th *hunk, cfg Config, region *Region) []string {
	var lines []string
	lines = append(lines, oursMarker+" "+cfg.OursLabel)
	lines = append(lines, oh.newLines...)
	if cfg.ShowBase {
		region.HasBase = true
		baseSlice := base[start:end]
		region.Base = strings.Join(baseSlice, "\n")
		lines = append(lines, baseMarker+" "+cfg.BaseLabel)
		lines = append(lines, baseSlice...)
	}
	lines = append(lines, sepMarker)
	lines = append(lines, th.newLines...)
	lines = append(lines, theirsMarker+" "+cfg.TheirsLabel)
	return lines
}

// HasConflictMarkers is a cheap presence check, scanning for a
// column-0 "<<<<<<< " marker.
func HasConflictMarkers(content []byte) bool {
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, oursMarker) {
			return true
		}
	}
	return false
}

// ParseConflicts is the strict inverse of the marker format emitted by
// Merge/renderConflict: malformed markers (unterminated, nested, or
// out of order) fail rather than silently skipping.
func ParseConflicts(content []byte) ([]Region, error) {
	lines := splitLines(string(content))
	var regions []Region

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], oursMarker) {
			i++
			continue
		}
		region := Region{StartLine: i + 1}
		i++

		oursStart := i
		for i < len(lines) && !strings.HasPrefix(lines[i], baseMarker) && !strings.HasPrefix(lines[i], sepMarker) {
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("textmerge: unterminated ours section starting at line %d", region.StartLine)
		}
		region.Ours = strings.Join(lines[oursStart:i], "\n")

		if strings.HasPrefix(lines[i], baseMarker) {
			region.HasBase = true
			i++
			baseStart := i
			for i < len(lines) && !strings.HasPrefix(lines[i], sepMarker) {
				if strings.HasPrefix(lines[i], oursMarker) {
					return nil, fmt.Errorf("textmerge: nested conflict marker at line %d", i+1)
				}
				i++
			}
			if i >= len(lines) {
				return nil, fmt.Errorf("textmerge: unterminated base section starting at line %d", region.StartLine)
			}
			region.Base = strings.Join(lines[baseStart:i], "\n")
		}

		if !strings.HasPrefix(lines[i], sepMarker) {
			return nil, fmt.Errorf("textmerge: expected %q at line %d", sepMarker, i+1)
		}
		i++

		theirsStart := i
		for i < len(lines) && !strings.HasPrefix(lines[i], theirsMarker) {
			if strings.HasPrefix(lines[i], oursMarker) {
				return nil, fmt.Errorf("textmerge: nested conflict marker at line %d", i+1)
			}
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("textmerge: unterminated theirs section starting at line %d", region.StartLine)
		}
		region.Theirs = strings.Join(lines[theirsStart:i], "\n")
		region.EndLine = i + 1
		i++

		regions = append(regions, region)
	}

	return regions, nil
}
