package trigger

import (
	"fmt"
	"strings"

	"eduapp-backend/pkg/docstore"
)

// Params holds the wildcard values captured from a document path.
type Params map[string]string

// Pattern is a document path template such as "news/{newsId}/comments/{commentId}".
type Pattern struct {
	raw      string
	segments []string
}

// ParsePattern validates a template. It must address documents (even number
// of segments) and wildcard names must be unique.
func ParsePattern(raw string) (Pattern, error) {
	segs := docstore.Split(raw)
	if len(segs) == 0 || len(segs)%2 != 0 {
		return Pattern{}, fmt.Errorf("pattern %q must address a document", raw)
	}
	seen := make(map[string]bool)
	for _, s := range segs {
		name, ok := wildcard(s)
		if !ok {
			if strings.ContainsAny(s, "{}") {
				return Pattern{}, fmt.Errorf("pattern %q: malformed segment %q", raw, s)
			}
			continue
		}
		if name == "" || seen[name] {
			return Pattern{}, fmt.Errorf("pattern %q: empty or duplicate wildcard %q", raw, s)
		}
		seen[name] = true
	}
	return Pattern{raw: docstore.Join(segs...), segments: segs}, nil
}

// MustPattern is ParsePattern for static templates.
func MustPattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string { return p.raw }

// Match reports whether path fits the template, segment for segment.
func (p Pattern) Match(path string) (Params, bool) {
	segs := docstore.Split(path)
	if len(segs) != len(p.segments) {
		return nil, false
	}
	params := make(Params)
	for i, s := range p.segments {
		if name, ok := wildcard(s); ok {
			params[name] = segs[i]
			continue
		}
		if s != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func wildcard(seg string) (string, bool) {
	if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
