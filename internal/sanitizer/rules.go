package sanitizer

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	noscriptBlockRe = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript\s*>`)
	orphanScriptRe  = regexp.MustCompile(`(?is)</?(?:no)?script[^>]*>?`)

	// start tags, honouring quoted attribute values that contain '>'
	startTagRe = regexp.MustCompile(`<[a-zA-Z][^\s/>]*(?:[^>"']|"[^"]*"|'[^']*')*>`)
	iframeRe   = regexp.MustCompile(`(?i)<iframe\b(?:[^>"']|"[^"]*"|'[^']*')*>`)
	// one attribute: separator, name, optional "=value"
	attrRe = regexp.MustCompile(`([\s/]+)([^\s"'>/=]+)(?:(\s*=\s*)("[^"]*"|'[^']*'|[^\s"'>]+))?`)

	heightRe = regexp.MustCompile(`(?i)(^|[;\s])(?:min-)?height\s*:\s*-?[\d.]+px\s*(?:!important)?\s*;?`)
	widthRe  = regexp.MustCompile(`(?i)(^|[;\s])width\s*:\s*-?[\d.]+px\s*(?:!important)?`)
)

// StripScripts removes every script and noscript block together with its
// content, then any orphaned opening or closing tag. It repeats until nothing
// changes so that a removal cannot splice a new tag together.
func StripScripts(s string) string {
	for {
		next := scriptBlockRe.ReplaceAllString(s, "")
		next = noscriptBlockRe.ReplaceAllString(next, "")
		next = orphanScriptRe.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

// StripEventHandlers removes on* attributes from every start tag
func StripEventHandlers(s string) string {
	return startTagRe.ReplaceAllStringFunc(s, func(tag string) string {
		return mapAttrs(tag, func(name string, m []string) string {
			if strings.HasPrefix(name, "on") {
				return ""
			}
			return m[0]
		})
	})
}

// NeutralizeDimensions drops pixel heights and forces pixel widths to fill
// the container, inside inline style attributes only
func NeutralizeDimensions(s string) string {
	return startTagRe.ReplaceAllStringFunc(s, func(tag string) string {
		return mapAttrs(tag, func(name string, m []string) string {
			if name != "style" || m[4] == "" {
				return m[0]
			}
			quote, value := `"`, m[4]
			if value[0] == '"' || value[0] == '\'' {
				quote, value = value[:1], value[1:len(value)-1]
			}
			value = heightRe.ReplaceAllString(value, "${1}")
			value = widthRe.ReplaceAllString(value, "${1}width:100% !important")
			return m[1] + m[2] + m[3] + quote + strings.TrimSpace(value) + quote
		})
	})
}

// AnnotateIframes sets loading="lazy" and referrerpolicy="no-referrer" on
// every iframe, replacing values already present
func AnnotateIframes(s string) string {
	return iframeRe.ReplaceAllStringFunc(s, func(tag string) string {
		tag = mapAttrs(tag, func(name string, m []string) string {
			if name == "loading" || name == "referrerpolicy" {
				return ""
			}
			return m[0]
		})
		body, closer := strings.TrimSuffix(tag, ">"), ">"
		if strings.HasSuffix(body, "/") {
			body, closer = strings.TrimSuffix(body, "/"), "/>"
		}
		body = strings.TrimRight(body, " \t\r\n")
		return body + ` loading="lazy" referrerpolicy="no-referrer"` + closer
	})
}

// mapAttrs rewrites each attribute of a start tag. fn gets the lower-cased
// attribute name and the submatches of attrRe and returns the replacement.
func mapAttrs(tag string, fn func(name string, m []string) string) string {
	return attrRe.ReplaceAllStringFunc(tag, func(attr string) string {
		m := attrRe.FindStringSubmatch(attr)
		return fn(strings.ToLower(m[2]), m)
	})
}
