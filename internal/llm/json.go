package llm

import "fmt"

// FirstJSONObject returns the first balanced {...} block in b. The analysis
// collaborator may wrap its JSON in prose, so a plain unmarshal of the whole
// body is not enough. Braces inside JSON strings are ignored.
func FirstJSONObject(b []byte) ([]byte, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, c := range b {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return b[start : i+1], nil
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	return nil, fmt.Errorf("unbalanced JSON object in response")
}
