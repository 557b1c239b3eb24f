package content

import "strings"

// element is one located <tag ...>inner</tag> occurrence.
type element struct {
	open  string // the opening tag including attributes
	inner string
	end   int // index just past the closing tag
}

// tagScanner finds tags in loosely formed markup. Matching is
// case-insensitive and non-recursive: an opening tag pairs with the nearest
// following closing tag of the same name, so nesting beyond one level and
// unclosed parents are tolerated rather than rejected.
type tagScanner struct {
	src   string
	lower string
}

func newTagScanner(src string) *tagScanner {
	return &tagScanner{src: src, lower: asciiLower(src)}
}

// find returns the first element named name starting at or after from.
func (s *tagScanner) find(name string, from int) (element, bool) {
	name = asciiLower(name)
	openPrefix := "<" + name
	closeTag := "</" + name + ">"

	for from <= len(s.lower) {
		i := strings.Index(s.lower[from:], openPrefix)
		if i < 0 {
			return element{}, false
		}
		start := from + i
		after := start + len(openPrefix)
		if after < len(s.lower) && !isTagBoundary(s.lower[after]) {
			from = start + 1
			continue
		}
		gt := strings.IndexByte(s.lower[after:], '>')
		if gt < 0 {
			return element{}, false
		}
		innerStart := after + gt + 1
		c := strings.Index(s.lower[innerStart:], closeTag)
		if c < 0 {
			return element{}, false
		}
		innerEnd := innerStart + c
		return element{
			open:  s.src[start:innerStart],
			inner: s.src[innerStart:innerEnd],
			end:   innerEnd + len(closeTag),
		}, true
	}
	return element{}, false
}

// content returns the trimmed inner text of the first name element, or "".
func (s *tagScanner) content(name string) string {
	el, ok := s.find(name, 0)
	if !ok {
		return ""
	}
	return strings.TrimSpace(el.inner)
}

// all returns every non-overlapping name element in document order.
func (s *tagScanner) all(name string) []element {
	var out []element
	from := 0
	for {
		el, ok := s.find(name, from)
		if !ok {
			return out
		}
		out = append(out, el)
		from = el.end
	}
}

// attribute extracts name="value" from an opening tag. Empty values count
// as absent.
func attribute(openTag, name string) string {
	lower := asciiLower(openTag)
	key := asciiLower(name) + `="`
	from := 0
	for {
		i := strings.Index(lower[from:], key)
		if i < 0 {
			return ""
		}
		start := from + i
		if start > 0 && isNameByte(lower[start-1]) {
			from = start + 1
			continue
		}
		valStart := start + len(key)
		end := strings.IndexByte(openTag[valStart:], '"')
		if end <= 0 {
			return ""
		}
		return openTag[valStart : valStart+end]
	}
}

func isTagBoundary(b byte) bool {
	switch b {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isNameByte(b byte) bool {
	return b == '-' || b == '_' || b == ':' ||
		(b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// asciiLower lowercases ASCII letters only so byte offsets stay aligned with
// the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
