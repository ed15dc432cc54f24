// Package display renders search output for the terminal.
//
// ResultPrinter writes match results to stdout as they arrive:
//
//	printer := display.NewResultPrinter(os.Stdout, models.ModeContent, m, colored)
//	if err := printer.Print(result); err != nil {
//	    // the output is gone (closed pipe)
//	}
//
// Content mode writes the path on its own line followed by every matching
// line. Files-only mode writes one path per line. With color enabled, paths
// are bold magenta and the matched spans are bold red.
//
// Warning renders user-facing notices on stderr, for example when stages of
// a search failed and its output may be incomplete.
//
// Color decisions are made once, by ResolveColor, from the --color mode and
// whether the writer is a terminal.
package display
