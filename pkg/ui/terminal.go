package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logo is printed at the start of interactive commands
const Logo = `
  ╔╦╗╔═╗╔╦╗╔═╗╦ ╦  ╦ ╦╔═╗╦═╗╦  ╦╔═╗╔═╗╔╦╗
  ║║║╠═╣ ║ ║  ╠═╣  ╠═╣╠═╣╠╦╝╚╗╔╝║╣ ╚═╗ ║
  ╩ ╩╩ ╩ ╩ ╚═╝╩ ╩  ╩ ╩╩ ╩╩╚═ ╚╝ ╚═╝╚═╝ ╩
`

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	quiet  bool
)

// SetOutput redirects regular and error output. Nil restores the standard
// streams.
func SetOutput(stdout, stderr io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	out, errOut = stdout, stderr
}

// SetQuiet suppresses everything but errors
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// Quiet reports whether quiet mode is on
func Quiet() bool {
	mu.Lock()
	defer mu.Unlock()
	return quiet
}

func write(toErr bool, s string) {
	mu.Lock()
	defer mu.Unlock()
	if toErr {
		fmt.Fprintln(errOut, s)
		return
	}
	if !quiet {
		fmt.Fprintln(out, s)
	}
}

// PrintLogo prints the logo
func PrintLogo() {
	write(false, logoStyle.Render(Logo))
}

// PrintError prints an error message, also in quiet mode
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	write(true, errorStyle.Render("✗ "+msg))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	write(false, successStyle.Render("✓ "+msg))
}

// PrintInfo prints a label and its value
func PrintInfo(label string, value string) {
	write(false, fmt.Sprintf("%s: %s", labelStyle.Render(label), valueStyle.Render(value)))
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	write(false, warningStyle.Render("! "+msg))
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	write(false, highlightStyle.Render(msg))
}

// Print prints pre-rendered text such as tables
func Print(s string) {
	write(false, strings.TrimRight(s, "\n"))
}

// Panel renders labelled rows inside a titled border
func Panel(title string, rows [][2]string) string {
	width := 0
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		label := labelStyle.Width(width + 1).Render(row[0])
		lines = append(lines, label+" "+valueStyle.Render(row[1]))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		panelStyle.Render(strings.Join(lines, "\n")),
	)
}

// Dim renders secondary text
func Dim(s string) string {
	return dimStyle.Render(s)
}
