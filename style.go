package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})

	paragraphStyle = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2)
)

func keyword(s string) string {
	if !isTTY() {
		return s
	}
	return keywordStyle.Render(s)
}

func paragraph(s string) string {
	if !isTTY() {
		return strings.TrimSpace(s)
	}
	return paragraphStyle.Render(strings.TrimSpace(s))
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
