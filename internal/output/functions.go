package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// FormatBytes converts bytes to human-readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatMbps renders a throughput figure with its MB/s equivalent.
func FormatMbps(mbps float64) string {
	return fmt.Sprintf("%.2f Mbps (%.2f MB/s)", mbps, mbps/8)
}

// FormatLatency renders a latency figure in milliseconds.
func FormatLatency(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}

// Truncate shortens s to fit max columns, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// PrintTable renders rows under a styled header, sized to the terminal.
func PrintTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	// Shrink the widest column until the table fits the terminal.
	for {
		total := len(widths) * 2
		for _, w := range widths {
			total += w
		}
		if total <= getTerminalWidth() {
			break
		}
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 8 {
			break
		}
		widths[widest]--
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(fmt.Sprintf("%-*s  ", widths[i], Truncate(h, widths[i])))
	}
	fmt.Println(headerStyle.Render(strings.TrimRight(b.String(), " ")))
	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			if i < len(widths) {
				b.WriteString(fmt.Sprintf("%-*s  ", widths[i], Truncate(cell, widths[i])))
			}
		}
		fmt.Println(strings.TrimRight(b.String(), " "))
	}
}

// ProgressLine renders a transient one-line progress report.
func ProgressLine(transferred int64, total int64, mbps float64) string {
	pct := 0.0
	if total > 0 {
		pct = float64(transferred) / float64(total) * 100
	}
	return dimStyle.Render(fmt.Sprintf("%s %.1f%% %s %.2f Mbps",
		StyleSymbols["bullet"], pct, StyleSymbols["arrow"], mbps))
}
