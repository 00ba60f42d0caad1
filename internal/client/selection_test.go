package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSet_Basics(t *testing.T) {
	s := NewSelectionSet()

	s.Select("a")
	s.Select("b")
	s.Select("a")
	assert.Equal(t, 2, s.Count())
	assert.True(t, s.Contains("a"))

	s.Toggle("a")
	assert.False(t, s.Contains("a"))
	s.Toggle("c")
	assert.True(t, s.Contains("c"))

	s.Deselect("b")
	assert.Equal(t, 1, s.Count())

	s.Clear()
	assert.Equal(t, 0, s.Count())
}

func TestSelectionSet_SelectAllReplaces(t *testing.T) {
	s := NewSelectionSet()
	s.Select("old")

	s.SelectAll([]string{"a", "b"})
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.Contains("old"))
	assert.ElementsMatch(t, []string{"a", "b"}, s.IDs())
}

func TestSelectionSet_HeaderState(t *testing.T) {
	s := NewSelectionSet()
	assert.Equal(t, Unchecked, s.HeaderState(3))

	s.Select("a")
	assert.Equal(t, Indeterminate, s.HeaderState(3))

	s.Select("b")
	s.Select("c")
	assert.Equal(t, Checked, s.HeaderState(3))

	// An empty list can never be fully checked.
	assert.Equal(t, Indeterminate, s.HeaderState(0))
	s.Clear()
	assert.Equal(t, Unchecked, s.HeaderState(0))
}

func TestFormatBadge(t *testing.T) {
	assert.Equal(t, "", FormatBadge(0, 99))
	assert.Equal(t, "", FormatBadge(-1, 99))
	assert.Equal(t, "5", FormatBadge(5, 99))
	assert.Equal(t, "99", FormatBadge(99, 99))
	assert.Equal(t, "99+", FormatBadge(100, 99))
	assert.Equal(t, "9+", FormatBadge(12, 9), "the dropdown clamps at nine")
}
