package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", CleanText("  hello   world  "))
	assert.Equal(t, "12 Maple St", CleanText("12  Maple\tSt."))
	assert.Equal(t, "name", CleanText("name.,"))
	assert.Equal(t, "", CleanText("   "))
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "New York", CleanTitle("  new   york  "))
	assert.Equal(t, "Springfield", CleanTitle("SPRINGFIELD."))
}

func TestNormalizeBuildingName(t *testing.T) {
	assert.Equal(t, "Maple Court", NormalizeBuildingName("Maple Court Apt 3"))
	assert.Equal(t, "Maple Court", NormalizeBuildingName("Maple Court Unit B"))
	assert.Equal(t, "Elm Towers", NormalizeBuildingName("Elm Towers #12"))
	assert.Equal(t, "St Mary's Tower", NormalizeBuildingName("St. Mary's Tower"))
	assert.Equal(t, "", NormalizeBuildingName("  "))

	// "Apts" is not a unit designation, only whole-word suffixes strip.
	assert.Equal(t, "Ave Apts", NormalizeBuildingName("Ave Apts"))

	// Stripped punctuation must not leave a doubled space behind.
	assert.Equal(t, "Maple Court", NormalizeBuildingName("Maple , Court"))
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "Illinois", NormalizeState("  illinois "))
	assert.Equal(t, "Il", NormalizeState("IL"))
	assert.Equal(t, "New Hampshire", NormalizeState("new hampshire"))
}

func TestNormalizeUnitNumber(t *testing.T) {
	cases := map[string]string{
		"Apt 101":      "101",
		"Unit 2B":      "2B",
		"#103":         "103",
		"Suite 300":    "300",
		"apartment 4":  "4",
		"007":          "7",
		"12.0":         "12",
		"2B!!":         "2B",
		"#--3":         "3",
		"A - 1":        "A-1",
		"0":            "",
		"  ":           "",
		"0-0-1":        "1",
		"aaptpt":       "",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeUnitNumber(input), "input %q", input)
	}
}

func TestNormalizeZipCode(t *testing.T) {
	assert.Equal(t, "62704", NormalizeZipCode("62704.0"))
	assert.Equal(t, "62704", NormalizeZipCode("62704-1234"))
	assert.Equal(t, "97205", NormalizeZipCode("  97205 "))
	assert.Equal(t, "", NormalizeZipCode("n/a"))
}

func TestNormalizersAreIdempotent(t *testing.T) {
	inputs := []string{
		"", "  ", "Maple Court Apt 3", "Ave Apts", "St. Mary's Tower",
		"12  Maple St.", "springfield", "IL", "illinois",
		"Apt 101", "007", "12.0", "#--3", "62704.0", "62704-1234",
		"Maple , Court", "0-0-1", "aaptpt", "Club Ap.t",
	}

	fns := map[string]func(string) string{
		"CleanText":              CleanText,
		"CleanTitle":             CleanTitle,
		"NormalizeBuildingName":  NormalizeBuildingName,
		"NormalizeStreetAddress": NormalizeStreetAddress,
		"NormalizeCity":          NormalizeCity,
		"NormalizeState":         NormalizeState,
		"NormalizeUnitNumber":    NormalizeUnitNumber,
		"NormalizeZipCode":       NormalizeZipCode,
	}

	for name, fn := range fns {
		for _, input := range inputs {
			once := fn(input)
			assert.Equal(t, once, fn(once), "%s not idempotent for %q", name, input)
		}
	}
}
