// Package delivery extracts a shipping address and a required delivery date
// from free-form email text using ordered keyword anchors with positional
// fallbacks and natural-language date parsing.
package delivery

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/orderflow/intake/internal/domain/order"
)

// AddressKeywords are scanned in order against each line; the first line
// containing any of them anchors address extraction. The order encodes
// precedence of the more specific phrasings and must not be resorted.
var AddressKeywords = []string{
	"ship to",
	"send to",
	"delivery address",
	"please deliver to",
	"deliver to",
	"recipient",
	"address is",
	"ship them to",
}

// DateKeywords anchor date extraction the same way. Loose anchors such as
// "by" and "before" sit in the list deliberately: a keyword hit only
// succeeds when the rest of the line actually parses as a date.
var DateKeywords = []string{
	"before",
	"by",
	"deadline",
	"requested delivery date",
	"deliver on",
	"deliver before",
	"delivery date",
	"needed on",
	"arrive by",
	"no later than",
	"expected on",
	"required delivery date",
}

var (
	// addressTokenRe recognizes lines that look like a street address.
	// Comma is part of the alternation: "Springfield, IL" qualifies even
	// without a street token.
	addressTokenRe = regexp.MustCompile(`(?i)(street|st|avenue|ave|road|rd|lane|ln|blvd|drive|dr|way|court|ct|plaza|circle|parkway|square|block|bldg|suite|apt|unit|room|po box|city|,)`)

	// productLineRe filters product mentions out of the address fallback scan.
	productLineRe = regexp.MustCompile(`(?i)(pcs|qty|x\s*\d+|need \d+)`)
)

// explicitLayouts are tried before the natural-language parser so fully
// qualified dates keep their stated year instead of being future-shifted.
var explicitLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// yearlessLayouts carry no year and therefore take the future bias.
var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
}

// Extractor pulls delivery details from raw email text. It is stateless
// apart from its clock and safe for concurrent use.
type Extractor struct {
	parser *when.Parser
	now    func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithNow injects the reference time used to resolve relative dates such as
// "next Friday". Tests rely on this for determinism.
func WithNow(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor builds an Extractor with English natural-language date rules.
func NewExtractor(opts ...Option) *Extractor {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)

	e := &Extractor{parser: p, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the address and date found in text. Both fields are empty
// when nothing matches; absence is a legitimate outcome, never an error.
func (e *Extractor) Extract(text string) order.DeliveryDetails {
	lines := nonEmptyLines(text)
	return order.DeliveryDetails{
		Address: e.extractAddress(lines),
		Date:    e.extractDate(text, lines),
	}
}

func (e *Extractor) extractAddress(lines []string) string {
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range AddressKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			if addr := addressAtAnchor(lines, i, line, keyword); addr != "" {
				return addr
			}
			// First keyword decides this line; a barren anchor means the
			// scan moves on to the next line.
			break
		}
	}

	// No keyword anchor: first address-looking line that is not a product
	// mention.
	for _, line := range lines {
		if productLineRe.MatchString(line) {
			continue
		}
		if addressTokenRe.MatchString(line) {
			return line
		}
	}
	return ""
}

// addressAtAnchor resolves the address for a line containing keyword.
// The remainder of the anchor line wins; otherwise the line(s) below it.
func addressAtAnchor(lines []string, i int, line, keyword string) string {
	afterColon := line
	if idx := strings.Index(line, ":"); idx >= 0 {
		afterColon = line[idx+1:]
	}
	afterColon = strings.TrimSpace(afterColon)
	if afterColon != "" && strings.ToLower(afterColon) != keyword {
		return afterColon
	}
	if i+1 >= len(lines) {
		return ""
	}
	next := lines[i+1]
	// Recipient name on one line, street on the next.
	if i+2 < len(lines) && addressTokenRe.MatchString(lines[i+2]) {
		return next + ", " + lines[i+2]
	}
	return next
}

func (e *Extractor) extractDate(text string, lines []string) string {
	base := e.now()

	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range DateKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			candidate := line
			if idx := strings.Index(line, ":"); idx >= 0 {
				candidate = line[idx+1:]
			}
			if t, ok := e.parseDate(candidate, base); ok {
				return t.Format("2006-01-02")
			}
		}
	}

	// Last resort: scan the whole body for any date-like phrase.
	if t, ok := e.searchDate(text, base); ok {
		return t.Format("2006-01-02")
	}
	return ""
}

// parseDate resolves a date string against base. Explicit layouts win so a
// stated year is never rewritten; everything else is biased toward the
// future, matching how buyers phrase deadlines.
func (e *Extractor) parseDate(s string, base time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range explicitLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.AddDate(base.Year()-t.Year(), 0, 0)
			return futureBias(t, base), true
		}
	}
	return e.searchDate(s, base)
}

// searchDate finds the first natural-language date phrase anywhere in s.
func (e *Extractor) searchDate(s string, base time.Time) (time.Time, bool) {
	r, err := e.parser.Parse(s, base)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return futureBias(r.Time, base), true
}

// futureBias shifts a year-ambiguous date forward so "June 10" asked in
// November means next June, not last June.
func futureBias(t, base time.Time) time.Time {
	baseDay := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	if t.Before(baseDay) {
		return t.AddDate(1, 0, 0)
	}
	return t
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
