package logger

import "github.com/fatih/color"

// colorScheme defines consistent colors for summary output.
// Green: matches
// Yellow: skipped directories and files
// Bold: headers
type colorScheme struct {
	success *color.Color
	warn    *color.Color
	header  *color.Color
}

// newColorScheme creates the standard color scheme. Colors are forced on:
// callers only build a scheme once they decided to colorize.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: forced(color.FgGreen),
		warn:    forced(color.FgYellow),
		header:  forced(color.Bold),
	}
}

// levelColor returns the color of a level tag.
func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return forced(color.FgHiBlack)
	case "DEBUG":
		return forced(color.FgCyan)
	case "INFO":
		return forced(color.FgBlue)
	case "WARN":
		return forced(color.FgYellow)
	case "ERROR":
		return forced(color.FgRed)
	default:
		return forced(color.Reset)
	}
}

func forced(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}
