// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// ModuleAugmentation is one `declare module "<specifier>"` block found in a
// source file. Blocks that contain no supported declarations are discarded
// during extraction, so Declarations is never empty.
type ModuleAugmentation struct {
	ModuleSpecifier string                 // Specifier exactly as written in the source
	SourceFile      string                 // Project-relative path, forward slashes
	Declarations    []ExtractedDeclaration // Supported declarations, in source order
	BlockText       string                 // Verbatim block text, kept for diagnostics only
}

// UntaggedDeclaration records a declaration that carried no release tag.
// It feeds the missing-release-tag policy; the declaration itself still
// flows through the augmentation list classified as Public.
type UntaggedDeclaration struct {
	Name            string          // Declared name
	SourceFile      string          // Project-relative path of the declaring file
	ModuleSpecifier string          // Specifier of the enclosing block, as written
	Kind            DeclarationKind // Syntax kind
}
