package controller

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "ilcheck/internal/model"
)

var (
	verifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// SimpleUI writes plain lines to an output writer, with optional color
// on the verdict lines when the output is a terminal.
type SimpleUI struct {
	output io.Writer
	color  bool
}

// NewSimpleUI creates a SimpleUI. Pass color=false for parseable output.
func NewSimpleUI(output io.Writer, color bool) *SimpleUI {
	return &SimpleUI{output: output, color: color}
}

// Diagnostic emits one formatted diagnostic line.
func (s *SimpleUI) Diagnostic(line string) {
	s.printf("%s\n", line)
}

// ModuleVerdict emits the final per-module line.
func (s *SimpleUI) ModuleVerdict(path m.Path, errorCount int) {
	if errorCount == 0 {
		s.printf("%s\n", s.style(fmt.Sprintf("%s Verified.", path), verifiedStyle))
		return
	}

	s.printf("%s\n", s.style(fmt.Sprintf("%d Error(s) Verifying %s", errorCount, path), failedStyle))
}

// DisplayModuleList renders module and method counts as a table.
func (s *SimpleUI) DisplayModuleList(rows []ModuleListRow) {
	table := tablewriter.NewWriter(s.output)
	table.SetHeader([]string{"Module", "Methods", "Eligible"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	totalMethods := 0
	totalEligible := 0

	for _, row := range rows {
		table.Append([]string{row.Module, fmt.Sprintf("%d", row.Methods), fmt.Sprintf("%d", row.Eligible)})
		totalMethods += row.Methods
		totalEligible += row.Eligible
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Modules %d", len(rows)),
		fmt.Sprintf("%d", totalMethods),
		fmt.Sprintf("%d", totalEligible),
	})

	table.Render()
}

func (s *SimpleUI) style(line string, style lipgloss.Style) string {
	if !s.color {
		return line
	}

	return style.Render(line)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.output, format, args...)
}
