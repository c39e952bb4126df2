// Package mention extracts @mention tokens from note text and resolves them
// against the user directory.
package mention

// Parse returns the mention strings in text, first to last, without the
// leading '@'. Duplicates are kept.
//
// A token is '@' followed by word characters ([A-Za-z0-9_]), optionally
// extended by a single space and more word characters. The token must be
// followed by whitespace, end of text, or one of ". , ! ?". When the longest
// candidate is followed by anything else it is shortened one word at a time;
// an '@' with no acceptable prefix produces nothing.
func Parse(text string) []string {
	var out []string
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		end, ok := scanToken(text, i+1)
		if !ok {
			continue
		}
		out = append(out, text[i+1:end])
		i = end - 1
	}
	return out
}

// scanToken reads the token starting at start and returns the end offset of
// the longest prefix that ends on an accepted terminator.
func scanToken(text string, start int) (int, bool) {
	k := scanWord(text, start)
	if k == start {
		return 0, false
	}
	ends := []int{k}
	for k+1 < len(text) && text[k] == ' ' && isWord(text[k+1]) {
		k = scanWord(text, k+1)
		ends = append(ends, k)
	}
	for j := len(ends) - 1; j >= 0; j-- {
		if terminates(text, ends[j]) {
			return ends[j], true
		}
	}
	return 0, false
}

func scanWord(text string, i int) int {
	for i < len(text) && isWord(text[i]) {
		i++
	}
	return i
}

func terminates(text string, i int) bool {
	if i == len(text) {
		return true
	}
	switch text[i] {
	case ' ', '\t', '\n', '\r', '\f', '\v', '.', ',', '!', '?':
		return true
	}
	return false
}

func isWord(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
