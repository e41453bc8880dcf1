// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package extract scans TypeScript sources for ambient module augmentation
// blocks and classifies every contained declaration's release level.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/dts-augment/internal/tsdoc"
	"github.com/petar-djukic/dts-augment/pkg/types"
)

// DefaultInclude and DefaultExclude are the glob patterns applied when the
// caller passes none. Generated declaration files and build output are
// excluded so the extractor only sees hand-written sources.
var (
	DefaultInclude = []string{"**/*.ts"}
	DefaultExclude = []string{"**/*.d.ts", "**/node_modules/**", "**/lib/**", "**/dist/**"}
)

// FileError records a read or parse failure for a single source file.
type FileError struct {
	FilePath string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.FilePath, e.Err)
}

// Result holds everything found in one extraction pass. Untagged carries a
// side record for every declaration that fell back to the public level.
type Result struct {
	Augmentations []types.ModuleAugmentation
	Untagged      []types.UntaggedDeclaration
	Errors        []FileError
}

// Extract walks projectFolder, parses every source file matched by the
// include/exclude globs, and returns all ambient module augmentation blocks
// found at the top level of those files. Enumeration completes before any
// parsing starts. Per-file failures are collected in Result.Errors and do
// not halt the scan; the returned error is reserved for an unusable project
// folder or a cancelled context.
func Extract(ctx context.Context, projectFolder string, include, exclude []string) (*Result, error) {
	absRoot, err := filepath.Abs(projectFolder)
	if err != nil {
		return nil, fmt.Errorf("resolving project folder: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat project folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	// Enumerate matching files up front; globs match the forward-slash
	// project-relative path.
	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // skip inaccessible entries
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if d.Name() == ".git" && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(include, rel) || matchAny(exclude, rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking project folder: %w", err)
	}

	result := &Result{}
	lang := typescript.GetLanguage()
	for _, rel := range paths {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		content, readErr := os.ReadFile(filepath.Join(absRoot, filepath.FromSlash(rel)))
		if readErr != nil {
			result.Errors = append(result.Errors, FileError{FilePath: rel, Err: readErr})
			continue
		}
		if parseErr := extractFile(ctx, content, rel, lang, result); parseErr != nil {
			result.Errors = append(result.Errors, FileError{FilePath: rel, Err: parseErr})
		}
	}

	return result, nil
}

// matchAny reports whether rel matches at least one doublestar pattern.
func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// extractFile parses one file and appends its augmentation blocks to result.
func extractFile(ctx context.Context, content []byte, relPath string, lang *sitter.Language, result *Result) error {
	root, err := sitter.ParseCtx(ctx, content, lang)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if root == nil {
		return nil
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		module := ambientModule(stmt)
		if module == nil {
			continue
		}
		aug, untagged := extractBlock(module, stmt, relPath, content)
		if aug != nil {
			result.Augmentations = append(result.Augmentations, *aug)
			result.Untagged = append(result.Untagged, untagged...)
		}
	}
	return nil
}

// ambientModule unwraps a top-level statement into a module node with a
// string-literal name and a body, or nil when the statement is not an
// augmentation block. Both `declare module "x" {}` and a bare
// `module "x" {}` qualify; `declare global` and identifier-named namespaces
// do not.
func ambientModule(stmt *sitter.Node) *sitter.Node {
	switch stmt.Type() {
	case "ambient_declaration":
		inner := stmt.NamedChild(0)
		if inner != nil && inner.Type() == "module" {
			return stringNamedModule(inner)
		}
		return nil
	case "module":
		return stringNamedModule(stmt)
	default:
		return nil
	}
}

func stringNamedModule(module *sitter.Node) *sitter.Node {
	name := module.ChildByFieldName("name")
	if name == nil || name.Type() != "string" {
		return nil
	}
	if module.ChildByFieldName("body") == nil {
		return nil
	}
	return module
}

// extractBlock lifts the supported declarations out of one augmentation
// block. Blocks yielding zero supported declarations return (nil, nil) and
// are never materialized.
func extractBlock(module, stmt *sitter.Node, relPath string, content []byte) (*types.ModuleAugmentation, []types.UntaggedDeclaration) {
	specifier := stringValue(module.ChildByFieldName("name"), content)
	if specifier == "" {
		return nil, nil
	}
	body := module.ChildByFieldName("body")

	var decls []types.ExtractedDeclaration
	var untagged []types.UntaggedDeclaration
	var run []*sitter.Node // contiguous comments preceding the next statement

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if !child.IsNamed() {
			continue // block braces
		}
		if child.Type() == "comment" {
			run = append(run, child)
			continue
		}

		kind, name, ok := classify(child)
		if !ok {
			run = nil
			continue
		}

		start := int(child.StartByte())
		if len(run) > 0 {
			start = int(run[0].StartByte())
		}
		start = lineStart(content, start)
		text := strings.TrimRight(dedent(string(content[start:child.EndByte()])), " \t\n")

		level, tagged := releaseLevel(run, content)
		decls = append(decls, types.ExtractedDeclaration{
			Text:         text,
			Name:         nodeName(name, content),
			Kind:         kind,
			ReleaseLevel: level,
			IsUntagged:   !tagged,
		})
		if !tagged {
			untagged = append(untagged, types.UntaggedDeclaration{
				Name:            nodeName(name, content),
				SourceFile:      relPath,
				ModuleSpecifier: specifier,
				Kind:            kind,
			})
		}
		run = nil
	}

	if len(decls) == 0 {
		return nil, nil
	}
	return &types.ModuleAugmentation{
		ModuleSpecifier: specifier,
		SourceFile:      relPath,
		Declarations:    decls,
		BlockText:       stmt.Content(content),
	}, untagged
}

// unwrap peels export_statement and ambient_declaration wrappers off a block
// statement. Text capture still spans the outer statement so the export and
// declare keywords survive verbatim.
func unwrap(stmt *sitter.Node) *sitter.Node {
	for stmt != nil {
		switch stmt.Type() {
		case "export_statement":
			stmt = stmt.ChildByFieldName("declaration")
		case "ambient_declaration":
			stmt = stmt.NamedChild(0)
		default:
			return stmt
		}
	}
	return nil
}

// classify maps a block statement to one of the seven supported declaration
// kinds and its name node. Statements of any other kind report ok=false and
// are ignored by the caller.
func classify(stmt *sitter.Node) (types.DeclarationKind, *sitter.Node, bool) {
	inner := unwrap(stmt)
	if inner == nil {
		return 0, nil, false
	}
	switch inner.Type() {
	case "interface_declaration":
		return types.Interface, inner.ChildByFieldName("name"), true
	case "type_alias_declaration":
		return types.TypeAlias, inner.ChildByFieldName("name"), true
	case "function_declaration", "function_signature":
		return types.Function, inner.ChildByFieldName("name"), true
	case "variable_declaration", "lexical_declaration":
		return types.Variable, firstDeclaratorName(inner), true
	case "class_declaration":
		return types.Class, inner.ChildByFieldName("name"), true
	case "enum_declaration":
		return types.Enum, inner.ChildByFieldName("name"), true
	case "internal_module", "module":
		return types.Namespace, inner.ChildByFieldName("name"), true
	default:
		return 0, nil, false
	}
}

func firstDeclaratorName(decl *sitter.Node) *sitter.Node {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() == "variable_declarator" {
			return child.ChildByFieldName("name")
		}
	}
	return nil
}

// nodeName renders a name node as text. String-literal names (nested module
// declarations) lose their quotes.
func nodeName(name *sitter.Node, content []byte) string {
	if name == nil {
		return ""
	}
	if name.Type() == "string" {
		return stringValue(name, content)
	}
	return name.Content(content)
}

// stringValue returns the unquoted content of a string literal node.
func stringValue(str *sitter.Node, content []byte) string {
	if str == nil {
		return ""
	}
	for i := 0; i < int(str.NamedChildCount()); i++ {
		child := str.NamedChild(i)
		if child.Type() == "string_fragment" {
			return child.Content(content)
		}
	}
	return ""
}

// releaseLevel reads the release tag from the statement's doc comment, the
// last /** */ comment of the leading run. The first tag found in priority
// order wins; no tag means public with the untagged flag raised.
func releaseLevel(run []*sitter.Node, content []byte) (types.ReleaseLevel, bool) {
	var doc string
	for i := len(run) - 1; i >= 0; i-- {
		if text := run[i].Content(content); strings.HasPrefix(text, "/**") {
			doc = text
			break
		}
	}
	if doc == "" {
		return types.Public, false
	}
	comment := tsdoc.Parse(doc)
	for _, level := range types.ReleaseTagPriority {
		if comment.HasTag(level.String()) {
			return level, true
		}
	}
	return types.Public, false
}

// lineStart walks offset back to the start of its line, but only when the
// intervening bytes are indentation; a comment trailing other code on the
// same line keeps its own start.
func lineStart(content []byte, offset int) int {
	start := offset
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	for i := start; i < offset; i++ {
		if content[i] != ' ' && content[i] != '\t' {
			return offset
		}
	}
	return start
}

// dedent strips the common leading whitespace shared by every non-blank
// line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
