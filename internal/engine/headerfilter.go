package engine

import "strings"

// IsHeaderEcho reports whether a data row is a repeated header row.
// Concatenated exports interleave header lines between data blocks; this
// compares each cell against the header at the same index and treats the row
// as an echo when more than half the header positions match. A cell matches
// when it equals its header case-insensitively or when either contains the
// other. Empty cells never match.
func IsHeaderEcho(row, headers []string) bool {
	if len(headers) == 0 {
		return false
	}
	matches := 0
	for i, h := range headers {
		if i >= len(row) {
			break
		}
		if headerEchoMatch(row[i], h) {
			matches++
		}
	}
	return matches > len(headers)/2
}

func headerEchoMatch(cell, header string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	header = strings.ToLower(strings.TrimSpace(header))
	if cell == "" || header == "" {
		return false
	}
	return cell == header || strings.Contains(cell, header) || strings.Contains(header, cell)
}
