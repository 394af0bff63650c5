package exec

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips ANSI escape codes and control characters from command
// output. Tabs and newlines are preserved; all other bytes <= 0x1F are
// removed. CRLF sequences are normalized to LF. A lone CR simulates terminal
// carriage return behavior: text after \r overwrites from the beginning of
// the line, so progress bars collapse to their final state.
func Sanitize(s string) string {
	s = ansi.Strip(s)

	// Normalize CRLF → LF before filtering, so the \r in \r\n isn't dropped.
	s = strings.ReplaceAll(s, "\r\n", "\n")

	// Filter control characters. \r survives temporarily so carriage return
	// overwrites can be resolved below.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r > 0x1F {
			b.WriteRune(r)
		}
	}
	s = b.String()

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = resolveCarriageReturns(line)
		}
	}
	return strings.Join(lines, "\n")
}

// resolveCarriageReturns simulates terminal CR behavior within a single line.
// Each \r resets the write position to 0; subsequent characters overwrite.
// If a segment is shorter than what came before, the trailing characters of
// the previous content remain, as in a real terminal.
func resolveCarriageReturns(line string) string {
	segments := strings.Split(line, "\r")
	buf := []rune(segments[0])
	for _, seg := range segments[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
