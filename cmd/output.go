package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Colors are disabled automatically when stdout is not a terminal or
// NO_COLOR is set.
var (
	errorPrefix = color.New(color.FgRed, color.Bold).Sprint("Error:")
	warnPrefix  = color.New(color.FgYellow).Sprint("warning:")
	okMark      = color.GreenString("ok:")
)

// printError writes an "Error:" line to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix, fmt.Sprintf(format, args...))
}

// printWarning writes a "warning:" line to stderr.
func printWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnPrefix, fmt.Sprintf(format, args...))
}

// printHint writes a follow-up line to stderr.
func printHint(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
