package playlist

import "strings"

// Attribute is one key="value" token from a directive head.
type Attribute struct {
	Key   string
	Value string
	// Quoted is false for key=value tokens without a leading quote.
	Quoted bool
	// Terminated is false when the closing quote is missing. Value then
	// holds the rest of the head.
	Terminated bool
}

// Attributes keeps tokens in the order they appear.
type Attributes []Attribute

// Lookup returns the first quoted attribute named key.
func (a Attributes) Lookup(key string) (Attribute, bool) {
	for _, attr := range a {
		if attr.Quoted && attr.Key == key {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Value returns the value of a closed, quoted attribute named key.
func (a Attributes) Value(key string) (string, bool) {
	attr, ok := a.Lookup(key)
	if !ok || !attr.Terminated {
		return "", false
	}
	return attr.Value, true
}

// scanAttributes tokenizes head in one pass. Anything that is not a
// key=value token is skipped.
func scanAttributes(head string) Attributes {
	var attrs Attributes
	i, n := 0, len(head)

	for i < n {
		for i < n && isSpace(head[i]) {
			i++
		}
		start := i
		for i < n && head[i] != '=' && !isSpace(head[i]) {
			i++
		}
		if i == start {
			// stray '='
			i++
			continue
		}
		if i >= n || head[i] != '=' {
			// bare word
			continue
		}
		key := head[start:i]
		i++ // '='

		if i < n && head[i] == '"' {
			i++
			end := strings.IndexByte(head[i:], '"')
			if end < 0 {
				attrs = append(attrs, Attribute{Key: key, Value: head[i:], Quoted: true})
				return attrs
			}
			attrs = append(attrs, Attribute{Key: key, Value: head[i : i+end], Quoted: true, Terminated: true})
			i += end + 1
			continue
		}

		vstart := i
		for i < n && !isSpace(head[i]) {
			i++
		}
		attrs = append(attrs, Attribute{Key: key, Value: head[vstart:i], Terminated: true})
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
