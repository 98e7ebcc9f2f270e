package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupState(t *testing.T) {
	cases := []struct {
		input string
		code  string
		ok    bool
	}{
		{"IL", "IL", true},
		{"il", "IL", true},
		{"Il", "IL", true},
		{"Illinois", "IL", true},
		{"illinois", "IL", true},
		{"New Hampshire", "NH", true},
		{"district of columbia", "DC", true},
		{"D.C.", "DC", true},
		{"Atlantis", "", false},
		{"", "", false},
		{"123", "", false},
	}

	for _, tc := range cases {
		code, ok := LookupState(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.code, code, "input %q", tc.input)
	}
}

func TestIsValidState(t *testing.T) {
	assert.True(t, IsValidState("Texas"))
	assert.True(t, IsValidState("tx"))
	assert.False(t, IsValidState("Atlantis"))
}
