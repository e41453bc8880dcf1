// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package rollup

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/dts-augment/internal/config"
	"github.com/petar-djukic/dts-augment/internal/modpath"
	"github.com/petar-djukic/dts-augment/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRollup(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("export {};\n"), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// entryResolver anchors specifiers to <dir>/src/index.ts.
func entryResolver(dir string) *modpath.Resolver {
	return modpath.New(dir, filepath.Join(dir, "src", "index.ts"))
}

func interfaceDecl(name string, level types.ReleaseLevel) types.ExtractedDeclaration {
	return types.ExtractedDeclaration{
		Text:         "/** @" + level.String() + " */\ninterface " + name + " {\n  x: number;\n}",
		Name:         name,
		Kind:         types.Interface,
		ReleaseLevel: level,
	}
}

func TestApply_MaturityFanOut(t *testing.T) {
	dir := t.TempDir()
	rollups := types.RollupPaths{
		Public:   writeRollup(t, dir, "pkg-public.d.ts"),
		Beta:     writeRollup(t, dir, "pkg-beta.d.ts"),
		Alpha:    writeRollup(t, dir, "pkg-alpha.d.ts"),
		Internal: writeRollup(t, dir, "pkg.d.ts"),
	}
	aug := types.ModuleAugmentation{
		ModuleSpecifier: "../registry",
		SourceFile:      "src/plugins/widget.ts",
		Declarations: []types.ExtractedDeclaration{
			interfaceDecl("PublicWidget", types.Public),
			interfaceDecl("BetaWidget", types.Beta),
			interfaceDecl("AlphaWidget", types.Alpha),
			interfaceDecl("InternalWidget", types.Internal),
		},
	}

	a := &Augmenter{Rollups: rollups, Resolver: entryResolver(dir), Log: discardLogger()}
	out := a.Apply([]types.ModuleAugmentation{aug}, nil)

	require.Empty(t, out.Errors)
	assert.False(t, out.ShouldStop)
	assert.Len(t, out.AugmentedFiles, 4)
	assert.Empty(t, out.SkippedFiles)

	pub := readFile(t, rollups.Public)
	assert.Contains(t, pub, "PublicWidget")
	assert.NotContains(t, pub, "BetaWidget")
	assert.NotContains(t, pub, "AlphaWidget")
	assert.NotContains(t, pub, "InternalWidget")

	beta := readFile(t, rollups.Beta)
	assert.Contains(t, beta, "PublicWidget")
	assert.Contains(t, beta, "BetaWidget")
	assert.NotContains(t, beta, "AlphaWidget")
	assert.NotContains(t, beta, "InternalWidget")

	alpha := readFile(t, rollups.Alpha)
	assert.Contains(t, alpha, "AlphaWidget")
	assert.NotContains(t, alpha, "InternalWidget")

	internal := readFile(t, rollups.Internal)
	for _, name := range []string{"PublicWidget", "BetaWidget", "AlphaWidget", "InternalWidget"} {
		assert.Contains(t, internal, name)
	}
}

func TestApply_AppendsAfterExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg-public.d.ts")
	require.NoError(t, os.WriteFile(path, []byte("export interface Registry {}\n"), 0o644))

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "../registry",
		SourceFile:      "src/plugins/widget.ts",
		Declarations: []types.ExtractedDeclaration{{
			Text:         "/** @public */\ninterface Registry {\n  first: Widget;\n}",
			Name:         "Registry",
			Kind:         types.Interface,
			ReleaseLevel: types.Public,
		}},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Public: path},
		Resolver: entryResolver(dir),
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, nil)

	require.Empty(t, out.Errors)
	require.Equal(t, []string{path}, out.AugmentedFiles)

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "export interface Registry {}\n"), "original content must stay first")
	assert.Contains(t, content, beginMarker)
	assert.Contains(t, content, `// #region ambient augmentations for "./registry" (from src/plugins/widget.ts)`)
	assert.Contains(t, content, `declare module "./registry" {`)
	assert.Contains(t, content, "first:")
	assert.Contains(t, content, "// #endregion")
	assert.True(t, strings.HasSuffix(content, endMarker+"\n"))
}

func TestApply_RerunReplacesSection(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")
	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations:    []types.ExtractedDeclaration{interfaceDecl("Widget", types.Public)},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Log:      discardLogger(),
	}

	a.Apply([]types.ModuleAugmentation{aug}, nil)
	first := readFile(t, path)

	a.Apply([]types.ModuleAugmentation{aug}, nil)
	second := readFile(t, path)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(second, beginMarker))
	assert.Equal(t, 1, strings.Count(second, endMarker))
}

func TestApply_ErrorPolicyAborts(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")
	before := readFile(t, path)

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations: []types.ExtractedDeclaration{{
			Text: "interface Widget {\n  x: number;\n}", Name: "Widget",
			Kind: types.Interface, ReleaseLevel: types.Public, IsUntagged: true,
		}},
	}
	untagged := []types.UntaggedDeclaration{{
		Name: "Widget", SourceFile: "src/widget.ts", ModuleSpecifier: "./registry", Kind: types.Interface,
	}}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Policy:   config.TagPolicy{LogLevel: config.LevelError},
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, untagged)

	assert.True(t, out.ShouldStop)
	assert.Empty(t, out.AugmentedFiles)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "ae-missing-release-tag")
	assert.Contains(t, out.Errors[0], "Widget")
	assert.Equal(t, before, readFile(t, path), "aborted run must not touch the rollup")
}

func TestApply_ErrorPolicyWithEmbedStillWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations: []types.ExtractedDeclaration{{
			Text: "interface Widget {\n  x: number;\n}", Name: "Widget",
			Kind: types.Interface, ReleaseLevel: types.Public, IsUntagged: true,
		}},
	}
	untagged := []types.UntaggedDeclaration{{
		Name: "Widget", SourceFile: "src/widget.ts", ModuleSpecifier: "./registry", Kind: types.Interface,
	}}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Policy:   config.TagPolicy{LogLevel: config.LevelError, AddToReport: true},
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, untagged)

	assert.False(t, out.ShouldStop)
	require.Len(t, out.Errors, 1, "errors recorded but non-blocking")
	require.Equal(t, []string{path}, out.AugmentedFiles)

	content := readFile(t, path)
	warningIdx := strings.Index(content, `// Warning: (ae-missing-release-tag) "Widget" (interface) in module "./registry"`)
	regionIdx := strings.Index(content, "// #region")
	require.GreaterOrEqual(t, warningIdx, 0)
	require.GreaterOrEqual(t, regionIdx, 0)
	assert.Less(t, warningIdx, regionIdx, "warning section precedes the regions")
}

func TestApply_WarningPolicyCollectsWithoutEmbedding(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations: []types.ExtractedDeclaration{{
			Text: "interface Widget {\n  x: number;\n}", Name: "Widget",
			Kind: types.Interface, ReleaseLevel: types.Public, IsUntagged: true,
		}},
	}
	untagged := []types.UntaggedDeclaration{{
		Name: "Widget", SourceFile: "src/widget.ts", ModuleSpecifier: "./registry", Kind: types.Interface,
	}}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Policy:   config.TagPolicy{LogLevel: config.LevelWarning},
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, untagged)

	assert.False(t, out.ShouldStop)
	assert.Empty(t, out.Errors)
	require.Len(t, out.Warnings, 1)
	assert.NotContains(t, readFile(t, path), "// Warning:")
}

func TestApply_InfoPolicyLogs(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")
	var buf bytes.Buffer

	untagged := []types.UntaggedDeclaration{{
		Name: "Widget", SourceFile: "src/widget.ts", ModuleSpecifier: "./registry", Kind: types.Interface,
	}}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Policy:   config.TagPolicy{LogLevel: config.LevelInfo},
		Log:      slog.New(slog.NewTextHandler(&buf, nil)),
	}
	out := a.Apply(nil, untagged)

	assert.False(t, out.ShouldStop)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Warnings)
	assert.Contains(t, buf.String(), "missing release tag")
}

func TestApply_MissingRollupSkipped(t *testing.T) {
	dir := t.TempDir()
	absent := filepath.Join(dir, "absent.d.ts")

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations:    []types.ExtractedDeclaration{interfaceDecl("Widget", types.Public)},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Public: absent},
		Resolver: entryResolver(dir),
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, nil)

	assert.Empty(t, out.Errors)
	assert.Empty(t, out.AugmentedFiles)
	assert.Equal(t, []string{absent}, out.SkippedFiles)
	assert.NoFileExists(t, absent)
}

func TestApply_DryRunLeavesFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")
	before := readFile(t, path)

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations:    []types.ExtractedDeclaration{interfaceDecl("Widget", types.Public)},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		DryRun:   true,
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, nil)

	assert.Equal(t, []string{path}, out.AugmentedFiles)
	assert.NotEmpty(t, out.Previews[path])
	assert.Equal(t, before, readFile(t, path))
}

func TestApply_GroupingOrderIsInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")

	augs := []types.ModuleAugmentation{
		{
			ModuleSpecifier: "./registry",
			SourceFile:      "src/a.ts",
			Declarations:    []types.ExtractedDeclaration{interfaceDecl("FromA", types.Public)},
		},
		{
			ModuleSpecifier: "./other",
			SourceFile:      "src/b.ts",
			Declarations:    []types.ExtractedDeclaration{interfaceDecl("FromB", types.Public)},
		},
		{
			// Written differently but resolves to the same specifier as src/a.ts.
			ModuleSpecifier: "../registry",
			SourceFile:      "src/plugins/c.ts",
			Declarations:    []types.ExtractedDeclaration{interfaceDecl("FromC", types.Public)},
		},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Log:      discardLogger(),
	}
	out := a.Apply(augs, nil)
	require.Empty(t, out.Errors)

	content := readFile(t, path)
	regA := strings.Index(content, `(from src/a.ts)`)
	regC := strings.Index(content, `(from src/plugins/c.ts)`)
	regB := strings.Index(content, `(from src/b.ts)`)
	require.GreaterOrEqual(t, regA, 0)
	require.GreaterOrEqual(t, regC, 0)
	require.GreaterOrEqual(t, regB, 0)

	// Both ./registry regions come before the ./other region, and within a
	// specifier the contributing files keep first-insertion order.
	assert.Less(t, regA, regC)
	assert.Less(t, regC, regB)
	assert.Equal(t, 2, strings.Count(content, `declare module "./registry" {`))
	assert.Equal(t, 1, strings.Count(content, `declare module "./other" {`))
}

func TestApply_DeclarationsFromOneFileShareARegion(t *testing.T) {
	dir := t.TempDir()
	path := writeRollup(t, dir, "pkg.d.ts")

	aug := types.ModuleAugmentation{
		ModuleSpecifier: "./registry",
		SourceFile:      "src/widget.ts",
		Declarations: []types.ExtractedDeclaration{
			interfaceDecl("First", types.Public),
			interfaceDecl("Second", types.Public),
		},
	}

	a := &Augmenter{
		Rollups:  types.RollupPaths{Internal: path},
		Resolver: entryResolver(dir),
		Log:      discardLogger(),
	}
	out := a.Apply([]types.ModuleAugmentation{aug}, nil)
	require.Empty(t, out.Errors)

	content := readFile(t, path)
	assert.Equal(t, 1, strings.Count(content, "// #region"))
	assert.Contains(t, content, "  interface First {")
	assert.Contains(t, content, "  interface Second {")
	assert.Contains(t, content, "    x: number;", "declaration bodies re-indent by one level")
}
