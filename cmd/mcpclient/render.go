package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

// renderTable prints headers/data as an ASCII table.
func renderTable(headers []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers)
	table.Bulk(data)
	table.Render()
}

var resultHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// renderText prints a text content block, running it through glamour's
// Markdown renderer when stdout is a terminal and printing it raw
// otherwise — piped output (a script, a test harness) should never have
// ANSI codes or box-drawing characters forced onto it.
func renderText(text string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println(text)
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(text)
		return
	}

	out, err := renderer.Render(text)
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Print(out)
}

func heading(s string) string {
	return resultHeadingStyle.Render(s)
}
