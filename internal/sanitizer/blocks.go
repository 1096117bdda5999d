package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// DeniedClasses are class-name substrings whose elements are removed with all
// their descendants: ad slots, promo carousels, comment widgets and player
// chrome of the source sites.
var DeniedClasses = []string{
	"adsbygoogle",
	"ad-container",
	"ad-slot",
	"ad-banner",
	"advertisement",
	"sponsored",
	"promo",
	"carousel",
	"related-games",
	"comments",
	"comment-section",
	"disqus",
	"social-share",
	"player-footer",
	"game-footer",
}

// DescriptionClass marks the descriptive block kept by Extract
const DescriptionClass = "game-description"

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// StripDeniedBlocks runs one removal pass per entry of DeniedClasses
func StripDeniedBlocks(s string) string {
	for _, class := range DeniedClasses {
		s, _ = scanClassBlocks(s, class, -1)
	}
	return s
}

// scanClassBlocks tokenizes s and splits out elements whose class attribute
// contains pattern. It returns the markup outside those elements and the raw
// markup of up to limit matched elements (limit < 0 means all). Nesting is
// tracked by counting tags with the same name as the matched element; an
// element left open runs to the end of the input.
func scanClassBlocks(s, pattern string, limit int) (string, []string) {
	z := html.NewTokenizer(strings.NewReader(s))

	var (
		rest   strings.Builder
		block  strings.Builder
		blocks []string
		inTag  string
		depth  int
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		// TagName lower-cases in place, so copy the raw token first
		raw := string(z.Raw())

		if inTag != "" {
			block.WriteString(raw)
			switch tt {
			case html.StartTagToken:
				if name, _ := z.TagName(); string(name) == inTag {
					depth++
				}
			case html.EndTagToken:
				if name, _ := z.TagName(); string(name) == inTag {
					depth--
				}
			}
			if depth == 0 {
				blocks = append(blocks, block.String())
				block.Reset()
				inTag = ""
			}
			continue
		}

		if (tt == html.StartTagToken || tt == html.SelfClosingTagToken) && (limit < 0 || len(blocks) < limit) {
			name, hasAttr := z.TagName()
			tag := string(name)
			if hasAttr && classContains(z, pattern) {
				if tt == html.SelfClosingTagToken || voidElements[tag] {
					blocks = append(blocks, raw)
					continue
				}
				block.WriteString(raw)
				inTag, depth = tag, 1
				continue
			}
		}
		rest.WriteString(raw)
	}

	if inTag != "" {
		blocks = append(blocks, block.String())
	}
	return rest.String(), blocks
}

func classContains(z *html.Tokenizer, pattern string) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && strings.Contains(strings.ToLower(string(val)), pattern) {
			return true
		}
		if !more {
			return false
		}
	}
}
