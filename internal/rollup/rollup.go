// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rollup merges extracted ambient module augmentations into the
// per-tier declaration rollup files.
package rollup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/dts-augment/internal/config"
	"github.com/petar-djukic/dts-augment/internal/fsutil"
	"github.com/petar-djukic/dts-augment/internal/modpath"
	"github.com/petar-djukic/dts-augment/pkg/types"
)

// Section delimiters. A rerun replaces everything between them instead of
// stacking a second copy.
const (
	beginMarker = "// === BEGIN ambient module augmentations (generated by dts-augment) ==="
	endMarker   = "// === END ambient module augmentations ==="
)

// Augmenter writes augmentation sections into the configured rollup tiers.
// Fields are set once by the caller; Apply may be called repeatedly.
type Augmenter struct {
	Rollups  types.RollupPaths
	Resolver *modpath.Resolver
	Policy   config.TagPolicy
	DryRun   bool
	Log      *slog.Logger
}

// Outcome reports one augmentation pass. ShouldStop is raised when the
// missing-release-tag policy aborts the run; nothing has been written in
// that case. Previews is populated only on dry runs, keyed by rollup path.
type Outcome struct {
	ShouldStop     bool
	AugmentedFiles []string
	SkippedFiles   []string
	Previews       map[string]string
	Errors         []string
	Warnings       []string
}

// Apply routes every declaration to the rollup tiers its release level
// belongs in and merges one rendered section per touched rollup. The
// missing-release-tag policy runs first and may stop the whole operation
// before anything is grouped or written. Write failures on one rollup do
// not prevent the remaining rollups from being processed.
func (a *Augmenter) Apply(augs []types.ModuleAugmentation, untagged []types.UntaggedDeclaration) *Outcome {
	out := &Outcome{Previews: map[string]string{}}

	a.applyPolicy(untagged, out)
	if out.ShouldStop {
		return out
	}

	groups := a.group(augs)
	for _, rollupPath := range groups.order {
		section := a.renderSection(groups.specs[rollupPath], untagged)
		a.applyToRollup(rollupPath, section, out)
	}
	return out
}

// applyPolicy reports each untagged declaration through the configured
// channel. At LevelError without AddToReport the run aborts before any
// grouping; with AddToReport the errors are recorded but non-blocking.
func (a *Augmenter) applyPolicy(untagged []types.UntaggedDeclaration, out *Outcome) {
	for _, u := range untagged {
		switch a.Policy.LogLevel {
		case config.LevelError:
			out.Errors = append(out.Errors, missingTagMessage(u))
		case config.LevelWarning:
			out.Warnings = append(out.Warnings, missingTagMessage(u))
		case config.LevelInfo:
			a.logger().Info("missing release tag",
				"name", u.Name, "kind", u.Kind.String(),
				"module", u.ModuleSpecifier, "source", u.SourceFile)
		case config.LevelVerbose:
			a.logger().Debug("missing release tag",
				"name", u.Name, "kind", u.Kind.String(),
				"module", u.ModuleSpecifier, "source", u.SourceFile)
		}
	}
	if a.Policy.LogLevel == config.LevelError && !a.Policy.AddToReport && len(untagged) > 0 {
		out.ShouldStop = true
	}
}

func missingTagMessage(u types.UntaggedDeclaration) string {
	return fmt.Sprintf("(ae-missing-release-tag) %q (%s) in module %q declared in %s is missing a release tag",
		u.Name, u.Kind, u.ModuleSpecifier, u.SourceFile)
}

// groupIndex is the three-level insertion-ordered index rollup path →
// resolved specifier → source file → declarations. Insertion order at every
// level is the only ordering guarantee.
type groupIndex struct {
	order []string
	seen  map[string]bool
	specs map[string]*specIndex
}

type specIndex struct {
	order []string
	seen  map[string]bool
	files map[string]*fileIndex
}

type fileIndex struct {
	order []string
	seen  map[string]bool
	decls map[string][]types.ExtractedDeclaration
}

func (g *groupIndex) insert(rollup, spec, file string, decl types.ExtractedDeclaration) {
	if !g.seen[rollup] {
		g.seen[rollup] = true
		g.order = append(g.order, rollup)
		g.specs[rollup] = &specIndex{seen: map[string]bool{}, files: map[string]*fileIndex{}}
	}
	s := g.specs[rollup]
	if !s.seen[spec] {
		s.seen[spec] = true
		s.order = append(s.order, spec)
		s.files[spec] = &fileIndex{seen: map[string]bool{}, decls: map[string][]types.ExtractedDeclaration{}}
	}
	f := s.files[spec]
	if !f.seen[file] {
		f.seen[file] = true
		f.order = append(f.order, file)
	}
	f.decls[file] = append(f.decls[file], decl)
}

// group resolves each augmentation's specifier once and fans every
// declaration out to the configured tiers that carry its release level.
func (a *Augmenter) group(augs []types.ModuleAugmentation) *groupIndex {
	index := &groupIndex{seen: map[string]bool{}, specs: map[string]*specIndex{}}
	levels := a.Rollups.Levels()
	for _, aug := range augs {
		resolved := a.Resolver.Resolve(aug.ModuleSpecifier, aug.SourceFile)
		for _, decl := range aug.Declarations {
			for _, tier := range levels {
				if tier.Includes(decl.ReleaseLevel) {
					index.insert(a.Rollups.ForLevel(tier), resolved, aug.SourceFile, decl)
				}
			}
		}
	}
	return index
}

// renderSection builds the delimited text for one rollup: an optional
// warning section when the policy embeds diagnostics, then one region per
// contributing source file per resolved specifier, each wrapping the
// declarations in a synthetic ambient module block.
func (a *Augmenter) renderSection(specs *specIndex, untagged []types.UntaggedDeclaration) string {
	var b strings.Builder
	b.WriteString(beginMarker + "\n")
	if a.Policy.AddToReport {
		for _, u := range untagged {
			fmt.Fprintf(&b, "// Warning: (ae-missing-release-tag) %q (%s) in module %q\n", u.Name, u.Kind, u.ModuleSpecifier)
			fmt.Fprintf(&b, "//   declared in %s is missing a release tag\n", u.SourceFile)
		}
	}
	for _, spec := range specs.order {
		files := specs.files[spec]
		for _, file := range files.order {
			fmt.Fprintf(&b, "// #region ambient augmentations for %q (from %s)\n", spec, file)
			fmt.Fprintf(&b, "declare module %q {\n", spec)
			for _, decl := range files.decls[file] {
				b.WriteString(indent(decl.Text, "  "))
				b.WriteString("\n")
			}
			b.WriteString("}\n")
			b.WriteString("// #endregion\n")
		}
	}
	b.WriteString(endMarker)
	return b.String()
}

// applyToRollup merges section into the rollup at path. A rollup missing
// from disk is skipped, never created.
func (a *Augmenter) applyToRollup(path, section string, out *Outcome) {
	original, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		out.SkippedFiles = append(out.SkippedFiles, path)
		return
	}
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("reading %s: %v", path, err))
		return
	}

	updated := merge(string(original), section)
	if a.DryRun {
		out.AugmentedFiles = append(out.AugmentedFiles, path)
		out.Previews[path] = previewPatch(string(original), updated)
		return
	}
	if err := fsutil.AtomicWrite(path, []byte(updated)); err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("writing %s: %v", path, err))
		return
	}
	out.AugmentedFiles = append(out.AugmentedFiles, path)
}

// merge splices section into content. When a delimited section already
// exists it is replaced in place, making reruns idempotent; otherwise the
// section is appended to the right-trimmed content after a single newline.
func merge(content, section string) string {
	if start := strings.Index(content, beginMarker); start >= 0 {
		if end := strings.Index(content[start:], endMarker); end >= 0 {
			endOff := start + end + len(endMarker)
			return content[:start] + section + content[endOff:]
		}
	}
	trimmed := strings.TrimRight(content, " \t\r\n")
	if trimmed == "" {
		return section + "\n"
	}
	return trimmed + "\n" + section + "\n"
}

// previewPatch renders the pending change as patch text for dry runs.
func previewPatch(before, after string) string {
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(before, after))
}

// indent prefixes every non-blank line with prefix.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (a *Augmenter) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}
