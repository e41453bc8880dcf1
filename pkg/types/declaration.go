// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// DeclarationKind identifies the syntax kind of a declaration found inside
// an ambient module augmentation block. Only these seven kinds are
// extracted; statements of any other kind inside a block are ignored.
type DeclarationKind int

const (
	Interface DeclarationKind = iota // interface declaration
	TypeAlias                        // type alias declaration
	Function                         // function declaration or ambient signature
	Variable                         // var/let/const statement
	Class                            // class declaration
	Enum                             // enum declaration
	Namespace                        // namespace or nested module
)

// String returns the human-readable name of the declaration kind.
func (k DeclarationKind) String() string {
	switch k {
	case Interface:
		return "interface"
	case TypeAlias:
		return "type"
	case Function:
		return "function"
	case Variable:
		return "variable"
	case Class:
		return "class"
	case Enum:
		return "enum"
	case Namespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// ExtractedDeclaration is one declaration lifted out of an augmentation
// block. Text holds the dedented verbatim source including the leading
// comment run; it is emitted as-is and never reparsed.
type ExtractedDeclaration struct {
	Text         string          // Verbatim source, dedented, leading comments included
	Name         string          // Declared name
	Kind         DeclarationKind // Syntax kind
	ReleaseLevel ReleaseLevel    // Tier derived from the doc comment
	IsUntagged   bool            // True when no release tag was found and Public was assumed
}
