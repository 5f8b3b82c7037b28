// Package sanitize neutralizes markup in untrusted text before it is echoed
// back to clients.
//
// Tags on the policy allow-list are kept with their allow-listed attributes
// only. Every other tag is entity-escaped so that its source is shown as text
// instead of being interpreted. Comments are dropped.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// urlAttrs are attributes whose value is a URL and must use a safe scheme.
var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"cite":       true,
	"background": true,
	"poster":     true,
}

var safeURLPrefixes = []string{
	"http://",
	"https://",
	"mailto:",
	"tel:",
	"ftp://",
	"data:image/",
	"./",
	"../",
	"#",
	"/",
}

// Policy is an allow-list of tags and, per tag, the attributes they may keep.
type Policy struct {
	tags map[string]map[string]bool
}

// NewPolicy builds a policy from a tag to attributes mapping.
func NewPolicy(allow map[string][]string) *Policy {
	tags := make(map[string]map[string]bool, len(allow))

	for tag, attrs := range allow {
		set := make(map[string]bool, len(attrs))
		for _, a := range attrs {
			set[strings.ToLower(a)] = true
		}
		tags[strings.ToLower(tag)] = set
	}

	return &Policy{tags: tags}
}

// Default returns the policy used for bookmark fields: common formatting and
// media tags, no scripting, no styling, no event handler attributes.
func Default() *Policy {
	return NewPolicy(map[string][]string{
		"a":          {"target", "href", "title"},
		"abbr":       {"title"},
		"address":    nil,
		"area":       {"shape", "coords", "href", "alt"},
		"article":    nil,
		"aside":      nil,
		"audio":      {"autoplay", "controls", "loop", "preload", "src"},
		"b":          nil,
		"bdi":        {"dir"},
		"bdo":        {"dir"},
		"big":        nil,
		"blockquote": {"cite"},
		"br":         nil,
		"caption":    nil,
		"center":     nil,
		"cite":       nil,
		"code":       nil,
		"col":        {"align", "valign", "span", "width"},
		"colgroup":   {"align", "valign", "span", "width"},
		"dd":         nil,
		"del":        {"datetime"},
		"details":    {"open"},
		"div":        nil,
		"dl":         nil,
		"dt":         nil,
		"em":         nil,
		"figcaption": nil,
		"figure":     nil,
		"font":       {"color", "size", "face"},
		"footer":     nil,
		"h1":         nil,
		"h2":         nil,
		"h3":         nil,
		"h4":         nil,
		"h5":         nil,
		"h6":         nil,
		"header":     nil,
		"hr":         nil,
		"i":          nil,
		"img":        {"src", "alt", "title", "width", "height"},
		"ins":        {"datetime"},
		"li":         nil,
		"mark":       nil,
		"nav":        nil,
		"ol":         nil,
		"p":          nil,
		"pre":        nil,
		"s":          nil,
		"section":    nil,
		"small":      nil,
		"span":       nil,
		"strike":     nil,
		"strong":     nil,
		"sub":        nil,
		"summary":    nil,
		"sup":        nil,
		"table":      {"width", "border", "align", "valign"},
		"tbody":      {"align", "valign"},
		"td":         {"width", "rowspan", "colspan", "align", "valign"},
		"tfoot":      {"align", "valign"},
		"th":         {"width", "rowspan", "colspan", "align", "valign"},
		"thead":      {"align", "valign"},
		"tr":         {"rowspan", "align", "valign"},
		"tt":         nil,
		"u":          nil,
		"ul":         nil,
		"video":      {"autoplay", "controls", "loop", "preload", "src", "height", "width"},
	})
}

// Sanitize returns s with disallowed markup escaped and disallowed
// attributes removed. Text content, quotes included, is left as is.
func (p *Policy) Sanitize(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))

	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			// strings.Reader only ever fails with io.EOF.
			return b.String()
		case html.TextToken:
			b.WriteString(escapeBrackets(string(z.Raw())))
		case html.CommentToken:
		case html.DoctypeToken:
			b.WriteString(escapeBrackets(string(z.Raw())))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Token lowercases the tag in the tokenizer buffer, copy the source first.
			raw := string(z.Raw())
			tok := z.Token()

			attrs, ok := p.tags[tok.Data]
			if !ok {
				b.WriteString(escapeBrackets(raw))
				continue
			}

			writeTag(&b, tok, attrs)
		}
	}
}

func writeTag(b *strings.Builder, tok html.Token, attrs map[string]bool) {
	b.WriteByte('<')

	if tok.Type == html.EndTagToken {
		b.WriteByte('/')
		b.WriteString(tok.Data)
		b.WriteByte('>')
		return
	}

	b.WriteString(tok.Data)

	for _, a := range tok.Attr {
		if a.Namespace != "" || !attrs[a.Key] {
			continue
		}
		if urlAttrs[a.Key] && !isSafeURL(a.Val) {
			continue
		}

		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}

	if tok.Type == html.SelfClosingTagToken {
		b.WriteString(" /")
	}

	b.WriteByte('>')
}

func isSafeURL(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)

	for _, prefix := range safeURLPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}

	return false
}

var bracketReplacer = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeBrackets(s string) string {
	return bracketReplacer.Replace(s)
}
