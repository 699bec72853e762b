// Package textscan finds structured fragments inside free-form model output.
package textscan

// FirstBraceBlock returns the first balanced top-level {...} block in s.
// Quotes are only tracked inside a block, so stray prose quotes before the
// object do not hide its opening brace.
func FirstBraceBlock(s string) (string, bool) {
	var (
		depth    int
		start    = -1
		inString bool
		escape   bool
	)

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
