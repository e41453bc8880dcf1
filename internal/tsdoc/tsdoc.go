// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tsdoc scans TSDoc documentation comments for modifier tags.
//
// The scanner understands comment structure instead of pattern-matching raw
// text: tags are recognized only at block level, so an "@" inside an inline
// code span, a fenced code block, a {@link}-style inline tag, or the middle
// of an email address never produces a false positive.
package tsdoc

import "strings"

// Comment is the parsed form of a documentation comment.
type Comment struct {
	ModifierTags []string // Tag names without the "@", in order of appearance
}

// HasTag reports whether the comment carries the named modifier tag. Names
// are compared whole, so a comment tagged "@betaDocs" does not have "beta".
func (c *Comment) HasTag(name string) bool {
	for _, t := range c.ModifierTags {
		if t == name {
			return true
		}
	}
	return false
}

// Parse scans a documentation comment and collects its modifier tags. The
// comment framing (the /** and */ delimiters, per-line "*" gutters, or "//"
// prefixes) is tolerated but not required.
func Parse(comment string) *Comment {
	c := &Comment{}

	inFence := false
	for _, line := range gutterStrippedLines(comment) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		scanLine(line, c)
	}
	return c
}

// scanLine extracts modifier tags from a single gutter-stripped line. A tag
// is "@" followed by an identifier, at line start or after whitespace, and
// outside inline code spans and {@...} inline tags.
func scanLine(line string, c *Comment) {
	inCodeSpan := false
	inInlineTag := false
	prev := byte(' ') // Start-of-line counts as whitespace.

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inInlineTag {
			if ch == '}' {
				inInlineTag = false
			}
			prev = ch
			continue
		}
		if ch == '`' {
			inCodeSpan = !inCodeSpan
			prev = ch
			continue
		}
		if inCodeSpan {
			prev = ch
			continue
		}
		if ch == '{' && i+1 < len(line) && line[i+1] == '@' {
			inInlineTag = true
			prev = ch
			continue
		}
		if ch == '@' && isSpace(prev) {
			if name := tagName(line[i+1:]); name != "" {
				c.ModifierTags = append(c.ModifierTags, name)
				i += len(name)
				prev = line[i]
				continue
			}
		}
		prev = ch
	}
}

// gutterStrippedLines removes the comment framing: the opening /** or /*,
// the closing */, the leading "*" gutter of block comment continuation
// lines, and "//" prefixes of line comments.
func gutterStrippedLines(comment string) []string {
	s := strings.TrimSpace(comment)
	if strings.HasPrefix(s, "/**") {
		s = s[3:]
	} else if strings.HasPrefix(s, "/*") {
		s = s[2:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "*/")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(line, "*"):
			line = strings.TrimPrefix(line[1:], " ")
		case strings.HasPrefix(line, "//"):
			line = strings.TrimPrefix(line[2:], " ")
		}
		lines[i] = line
	}
	return lines
}

// tagName returns the identifier immediately following an "@", or "" when
// the next character does not begin one.
func tagName(s string) string {
	n := 0
	for n < len(s) && isTagChar(s[n], n == 0) {
		n++
	}
	return s[:n]
}

// isTagChar reports whether ch may appear in a tag name. The first
// character must be a letter; later ones may be digits.
func isTagChar(ch byte, first bool) bool {
	if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
		return true
	}
	return !first && ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}
