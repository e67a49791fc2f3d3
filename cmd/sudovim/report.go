package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/sudovim/sudovim/internal/reconcile"
	"github.com/sudovim/sudovim/internal/session"
)

var (
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	outcomeStyles = map[reconcile.Outcome]lipgloss.Style{
		reconcile.Mirrored:        green,
		reconcile.AlreadyMirrored: cyan,
		reconcile.Unmodified:      gray,
		reconcile.NotCreated:      gray,
	}
)

func printReport(w io.Writer, report *session.Report) {
	for _, res := range report.Results {
		switch {
		case res.Err != nil && res.Record == nil:
			fmt.Fprintf(w, "%s %s: %v\n", red.Render(pad("not edited")), res.Input, res.Err)
			continue
		case res.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", red.Render(pad("error")), res.Input, res.Err)
			continue
		case res.DuplicateOf != "":
			fmt.Fprintf(w, "%s %s (same file as %s)\n", gray.Render(pad("duplicate")), res.Input, res.DuplicateOf)
			continue
		}
		label := outcomeStyles[res.Outcome].Render(pad(res.Outcome.String()))
		fmt.Fprintf(w, "%s %s\n", label, displayPath(res))
	}
}

func displayPath(res session.Result) string {
	if res.Record != nil && res.Record.Path != "" {
		return res.Record.Path
	}
	return res.Input
}

func pad(label string) string {
	return fmt.Sprintf("%-16s", label)
}
