// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tsdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_SingleModifierTag(t *testing.T) {
	c := Parse(`/**
 * The plugin registry.
 * @public
 */`)

	assert.Equal(t, []string{"public"}, c.ModifierTags)
	assert.True(t, c.HasTag("public"))
}

func TestParse_MultipleTagsInOrder(t *testing.T) {
	c := Parse(`/**
 * @beta @sealed
 * @internal
 */`)

	assert.Equal(t, []string{"beta", "sealed", "internal"}, c.ModifierTags)
}

func TestParse_SingleLineComment(t *testing.T) {
	c := Parse(`/** @alpha */`)

	assert.Equal(t, []string{"alpha"}, c.ModifierTags)
}

func TestParse_EmailIsNotATag(t *testing.T) {
	c := Parse(`/**
 * Contact user@beta.example with questions.
 */`)

	assert.Empty(t, c.ModifierTags)
	assert.False(t, c.HasTag("beta"))
}

func TestParse_TagNameMatchedWhole(t *testing.T) {
	c := Parse(`/**
 * See @betaDocs for details.
 */`)

	assert.Equal(t, []string{"betaDocs"}, c.ModifierTags)
	assert.False(t, c.HasTag("beta"))
}

func TestParse_InlineCodeSpanIgnored(t *testing.T) {
	c := Parse("/**\n * Write `@internal` to hide a member.\n * @public\n */")

	assert.Equal(t, []string{"public"}, c.ModifierTags)
	assert.False(t, c.HasTag("internal"))
}

func TestParse_FencedBlockIgnored(t *testing.T) {
	c := Parse("/**\n * ```\n * @internal\n * ```\n * @beta\n */")

	assert.Equal(t, []string{"beta"}, c.ModifierTags)
}

func TestParse_InlineTagIgnored(t *testing.T) {
	c := Parse(`/**
 * {@link RegistryEntry.name | the entry name}
 * {@inheritDoc Widget}
 * @alpha
 */`)

	assert.Equal(t, []string{"alpha"}, c.ModifierTags)
	assert.False(t, c.HasTag("link"))
	assert.False(t, c.HasTag("inheritDoc"))
}

func TestParse_LineCommentFraming(t *testing.T) {
	c := Parse("// The widget helper.\n// @internal")

	assert.Equal(t, []string{"internal"}, c.ModifierTags)
}

func TestParse_NoTags(t *testing.T) {
	c := Parse(`/**
 * Plain prose with no tags at all.
 */`)

	assert.Empty(t, c.ModifierTags)
}

func TestParse_EmptyComment(t *testing.T) {
	c := Parse("")

	assert.Empty(t, c.ModifierTags)
}

func TestParse_TagAtVeryEndOfLine(t *testing.T) {
	c := Parse("/** Deprecated in v2. @internal */")

	assert.True(t, c.HasTag("internal"))
}
