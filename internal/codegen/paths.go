package codegen

// normalizeLiteral decodes a string literal's raw source text (escapes still
// visible) and rewrites path separators to the convention of the active
// target: `\` for batch, `/` for shell. Only separators that look like path
// components are touched (the literal contains a separator and no
// whitespace), and escaped separators (`\/`, `\\`) are never altered.
//
// Both emitters call this immediately before quoting a string literal; it is
// a shared helper, not a pipeline stage, since it needs no scope information.
func normalizeLiteral(raw string, target Target) string {
	decoded, escaped := decodeEscapes(raw)

	if !looksLikePath(decoded, escaped) {
		return decoded
	}

	out := make([]byte, len(decoded))
	for i := 0; i < len(decoded); i++ {
		ch := decoded[i]
		switch {
		case escaped[i]:
			out[i] = ch
		case ch == '/' && target == Batch:
			out[i] = '\\'
		case ch == '\\' && target == Shell:
			out[i] = '/'
		default:
			out[i] = ch
		}
	}
	return string(out)
}

// decodeEscapes resolves the literal's escape sequences and records, per
// decoded byte, whether it came from an escape. The lexer has already
// rejected unknown escapes, so every backslash here starts a valid one.
func decodeEscapes(raw string) (string, []bool) {
	var decoded []byte
	var escaped []bool
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				decoded = append(decoded, '\n')
			case 't':
				decoded = append(decoded, '\t')
			case '\\':
				decoded = append(decoded, '\\')
			case '/':
				decoded = append(decoded, '/')
			case '"':
				decoded = append(decoded, '"')
			default:
				decoded = append(decoded, raw[i])
			}
			escaped = append(escaped, true)
			continue
		}
		decoded = append(decoded, ch)
		escaped = append(escaped, false)
	}
	return string(decoded), escaped
}

// looksLikePath is the normalizer's heuristic: the decoded text contains an
// unescaped separator and no whitespace.
func looksLikePath(decoded string, escaped []bool) bool {
	hasSep := false
	for i := 0; i < len(decoded); i++ {
		ch := decoded[i]
		if ch == ' ' || ch == '\t' || ch == '\n' {
			return false
		}
		if (ch == '/' || ch == '\\') && !escaped[i] {
			hasSep = true
		}
	}
	return hasSep
}
