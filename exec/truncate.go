package exec

import "strings"

// TruncateResult describes the outcome of tail truncation.
type TruncateResult struct {
	Content     string
	Truncated   bool
	TotalLines  int
	OutputLines int
}

// TruncateTail keeps the last maxLines lines or maxBytes bytes of input,
// whichever limit is hit first. It works backwards from the end, collecting
// complete lines. If even a single line exceeds maxBytes, the tail of that
// line is returned.
func TruncateTail(s string, maxLines, maxBytes int) TruncateResult {
	if s == "" {
		return TruncateResult{}
	}

	hasTrailingNewline := strings.HasSuffix(s, "\n")
	lines := splitLines(s)
	totalLines := len(lines)

	if totalLines <= maxLines && len(s) <= maxBytes {
		return TruncateResult{
			Content:     s,
			TotalLines:  totalLines,
			OutputLines: totalLines,
		}
	}

	// Reserve one byte for the restored trailing newline.
	byteBudget := maxBytes
	if hasTrailingNewline {
		byteBudget--
	}

	var collected []string
	outputBytes := 0

	for i := len(lines) - 1; i >= 0 && len(collected) < maxLines; i-- {
		lineBytes := len(lines[i])
		if len(collected) > 0 {
			lineBytes++ // \n separator between lines
		}
		if outputBytes+lineBytes > byteBudget {
			// A single oversized line: return its tail without a newline.
			if len(collected) == 0 {
				tail := lines[i]
				if len(tail) > maxBytes {
					tail = tail[len(tail)-maxBytes:]
				}
				return TruncateResult{
					Content:     tail,
					Truncated:   true,
					TotalLines:  totalLines,
					OutputLines: 1,
				}
			}
			break
		}
		collected = append(collected, lines[i])
		outputBytes += lineBytes
	}

	// Collected back-to-front; reverse into reading order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}

	content := strings.Join(collected, "\n")
	if hasTrailingNewline {
		content += "\n"
	}

	return TruncateResult{
		Content:     content,
		Truncated:   true,
		TotalLines:  totalLines,
		OutputLines: len(collected),
	}
}

// splitLines splits s into lines, treating the final line as a line even
// without a trailing newline. A trailing newline does NOT produce an empty
// final element.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
