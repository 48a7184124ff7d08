// Package fuzzy normalizes song titles and artist names so that spelling variants of the same
// song compare equal.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// The suffix patterns run after punctuation folding, so brackets and dots are already gone.
var (
	featRegex       = regexp.MustCompile(`\s+(?:feat|ft|featuring)\b.*$`)
	remixRegex      = regexp.MustCompile(`\s+remix\b.*$`)
	versionRegex    = regexp.MustCompile(`\s+(?:remaster|remastered|deluxe|extended|radio edit|clean|explicit)\b.*$`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeArtist(artist string) string {
	return n.foldJoiners(n.basicNormalize(artist))
}

func (n *Normalizer) NormalizeTitle(title string) string {
	return n.stripSuffixes(n.basicNormalize(title))
}

// SongKey identifies a song by its artist and title. It equals QueryKey of the
// "artist title" string, so keys built from structured suggestions and from
// free-text exclusion lists compare equal.
func (n *Normalizer) SongKey(artist, title string) string {
	return n.QueryKey(artist + " " + title)
}

// QueryKey normalizes a free-text "artist title" string. Featured artists and
// remix, remaster or edit suffixes do not change the key.
func (n *Normalizer) QueryKey(query string) string {
	return n.foldJoiners(n.stripSuffixes(n.basicNormalize(query)))
}

// foldJoiners drops a spelled-out "and"; an ampersand is already folded away
// with the rest of the punctuation.
func (n *Normalizer) foldJoiners(text string) string {
	return strings.ReplaceAll(text, " and ", " ")
}

func (n *Normalizer) stripSuffixes(text string) string {
	text = featRegex.ReplaceAllString(text, "")
	text = remixRegex.ReplaceAllString(text, "")
	text = versionRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	// Hangul decomposes into conjoining jamo under NFKD; compose it back.
	text = norm.NFC.String(result.String())

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}
