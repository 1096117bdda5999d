// Package sanitizer turns untrusted markup scraped from third-party game
// pages into a fragment that is safe to embed.
//
// The rules are plain text transforms composed in a fixed order: executable
// content first, then structural noise, then attribute level threats, then
// cosmetic normalization, then extraction. Every rule accepts arbitrary input
// and never fails.
package sanitizer

import (
	"regexp"
	"strings"
)

// EmbedOpen and EmbedClose wrap the extracted iframe
const (
	EmbedOpen  = `<div class="game-embed" aria-label="Game player">`
	EmbedClose = `</div>`
)

var (
	iframeOpenRe  = regexp.MustCompile(`(?i)<iframe\b`)
	iframeCloseRe = regexp.MustCompile(`(?i)</iframe\s*>`)
)

// maxCleanPasses bounds the fixed-point loop in Clean; real pages settle in
// two or three passes
const maxCleanPasses = 16

// ScrapedGameRecord holds the stages of one sanitized page
type ScrapedGameRecord struct {
	RawHTML           string `json:"rawHtml"`
	CleanedHTML       string `json:"cleanedHtml"`
	ExtractedFragment string `json:"extractedFragment"`
}

// Clean applies every removal and normalization rule in order, repeating
// the whole chain until it no longer changes the markup. Removing a block
// can splice the text around it into a new tag, so a single pass is not
// enough.
func Clean(raw string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	s := raw
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanPass(s)
		if next == s {
			return s
		}
		s = next
	}
	// did not settle; drop whatever script markup is left
	return StripScripts(s)
}

func cleanPass(s string) string {
	s = StripScripts(s)
	s = StripDeniedBlocks(s)
	s = StripEventHandlers(s)
	s = NeutralizeDimensions(s)
	return AnnotateIframes(s)
}

// Extract selects the first iframe and the first game-description block of
// cleaned markup. Without a description block the whole input is used as the
// description.
func Extract(cleaned string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	if strings.TrimSpace(cleaned) == "" {
		return ""
	}

	iframe := firstIframe(cleaned)

	description := cleaned
	if _, blocks := scanClassBlocks(cleaned, DescriptionClass, 1); len(blocks) > 0 {
		description = blocks[0]
	}

	var b strings.Builder
	if iframe != "" {
		b.WriteString(EmbedOpen)
		b.WriteString(iframe)
		b.WriteString(EmbedClose)
	}
	b.WriteString(description)
	return b.String()
}

// firstIframe returns the first iframe start tag together with its body and
// closing tag. The closing tag is only attached when no other iframe opens
// before it, so an unclosed iframe never swallows the next one.
func firstIframe(s string) string {
	loc := iframeRe.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	open, rest := s[loc[0]:loc[1]], s[loc[1]:]

	closeLoc := iframeCloseRe.FindStringIndex(rest)
	if closeLoc == nil {
		return open
	}
	if next := iframeOpenRe.FindStringIndex(rest); next != nil && next[0] < closeLoc[0] {
		return open
	}
	return open + rest[:closeLoc[1]]
}

// Sanitize cleans raw markup and returns the embeddable fragment
func Sanitize(raw string) string {
	return Extract(Clean(raw))
}

// Process runs the pipeline and keeps every stage
func Process(raw string) ScrapedGameRecord {
	cleaned := Clean(raw)
	return ScrapedGameRecord{
		RawHTML:           raw,
		CleanedHTML:       cleaned,
		ExtractedFragment: Extract(cleaned),
	}
}
