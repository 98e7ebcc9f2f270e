package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	nameSuffixRe     = regexp.MustCompile(`(?i)\s+(?:apt|unit)\b.*$|\s*#.*$`)
	punctuationRe    = regexp.MustCompile(`[.,;:]`)
	trailingFloatRe  = regexp.MustCompile(`\.0+$`)
	unitPrefixRe     = regexp.MustCompile(`(?i)apartment|suite|unit|apt|#`)
	unitCharsRe      = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedHyphenRe = regexp.MustCompile(`-{2,}`)
	nonDigitRe       = regexp.MustCompile(`[^0-9]`)
)

// titleCase title-cases a string. The caser is created per call because a
// cases.Caser carries state and is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.AmericanEnglish).String(s)
}

// CleanText trims, collapses internal whitespace runs to one space and
// strips trailing punctuation from {. , ; :}.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimRight(s, ".,;:")
	return strings.TrimSpace(s)
}

// CleanTitle is CleanText followed by title-casing.
func CleanTitle(s string) string {
	return titleCase(CleanText(s))
}

// NormalizeBuildingName cleans a building name cell. A trailing unit
// designation ("Apt ...", "Unit ...", "#...") is removed, then remaining
// punctuation is stripped. "Apts" and similar words survive because only
// whole-word suffixes count. The strip steps repeat until the value is
// stable, since removing punctuation can expose a new suffix or leave a
// doubled space.
func NormalizeBuildingName(s string) string {
	s = CleanText(s)
	for {
		next := nameSuffixRe.ReplaceAllString(s, "")
		next = punctuationRe.ReplaceAllString(next, "")
		next = CleanText(next)
		if next == s {
			return s
		}
		s = next
	}
}

func NormalizeStreetAddress(s string) string {
	return CleanText(s)
}

func NormalizeCity(s string) string {
	return CleanTitle(s)
}

// NormalizeState trims and title-cases only. State values are matched
// leniently against the canonical enumeration later, so punctuation is
// left alone here.
func NormalizeState(s string) string {
	return titleCase(strings.TrimSpace(s))
}

// NormalizeUnitNumber reduces a unit cell to its bare identifier: the
// float artifact spreadsheets add to numeric cells is dropped, unit
// designation prefixes are removed, and the result is restricted to
// letters, digits, hyphen and underscore with leading zeros stripped.
// Removing a prefix or trimming hyphens can expose another prefix or a new
// leading zero, so the strip steps repeat until the value is stable.
func NormalizeUnitNumber(s string) string {
	s = strings.TrimSpace(s)
	s = trailingFloatRe.ReplaceAllString(s, "")
	for {
		next := unitPrefixRe.ReplaceAllString(s, "")
		next = unitCharsRe.ReplaceAllString(next, "")
		next = repeatedHyphenRe.ReplaceAllString(next, "-")
		next = strings.Trim(next, "-")
		next = strings.TrimLeft(next, "0")
		next = strings.Trim(next, "-")
		if next == s {
			return s
		}
		s = next
	}
}

// NormalizeZipCode keeps the first five digits of a zip cell, dropping
// the float artifact first so "62704.0" stays "62704".
func NormalizeZipCode(s string) string {
	s = strings.TrimSpace(s)
	s = trailingFloatRe.ReplaceAllString(s, "")
	s = nonDigitRe.ReplaceAllString(s, "")
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}
