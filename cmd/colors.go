package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "success", "pass", "secure":
		return colorSuccess(status)
	case "error", "fail", "failed", "insecure":
		return colorError(status)
	case "warn", "warning":
		return colorWarn(status)
	case "info":
		return colorInfo(status)
	default:
		return status
	}
}

// printBanner writes the ASCII-art program name.
func printBanner(w io.Writer) {
	banner := figure.NewFigure("sitecheck", "", true)
	fmt.Fprint(w, colorInfo(banner.String()))
	fmt.Fprintln(w, colorInfo(strings.Repeat("═", 48)))
	fmt.Fprintln(w, "  Website security self-assessment")
	fmt.Fprintln(w, colorInfo(strings.Repeat("═", 48)))
}
