package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles render the headline and result lines. Colors are dropped when out
// is not a terminal.
type styles struct {
	title  lipgloss.Style
	result lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		result: r.NewStyle().Foreground(lipgloss.Color("82")),
	}
}
