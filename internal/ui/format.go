package ui

import (
	"fmt"
	"os"
	"strings"
)

// FormatBytes formats a byte count as a human-readable string.
// Example: 1234567890 -> "1.1GB". Used to report the log file size in
// the logs command's header.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fGB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// ShortenPath replaces the home directory with ~ for cleaner display.
// Example: /Users/john/.ada/logs/web.log -> ~/.ada/logs/web.log
func ShortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
