package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
)

// MessageType defines the type of message box to render.
type MessageType int

const (
	// InfoMessage represents an informational message.
	InfoMessage MessageType = iota
	// SuccessMessage represents a success message.
	SuccessMessage
	// WarningMessage represents a warning message.
	WarningMessage
	// ErrorMessage represents an error message.
	ErrorMessage
)

var prefixes = map[MessageType]string{
	InfoMessage:    "ℹ",
	SuccessMessage: "✓",
	WarningMessage: "⚠",
	ErrorMessage:   "✗",
}

var colors = map[MessageType]lipgloss.Color{
	InfoMessage:    lipgloss.Color("86"),
	SuccessMessage: lipgloss.Color("42"),
	WarningMessage: lipgloss.Color("178"),
	ErrorMessage:   lipgloss.Color("196"),
}

// Box is a builder for creating formatted message boxes.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	width       int
}

// NewBox creates a new message box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		width:       getTerminalWidth() - 8,
	}
}

// WithWidth caps the rendered width.
func (b *Box) WithWidth(width int) *Box {
	b.width = width
	return b
}

// AddLine adds a line of text to the message box content.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddBullet adds a bulleted line to the message box content.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, fmt.Sprintf("• %s", text))
	return b
}

// Render builds and returns the formatted message box as a string.
func (b *Box) Render() string {
	color := colors[b.messageType]

	header := lipgloss.NewStyle().Bold(true).Foreground(color).
		Render(prefixes[b.messageType] + " " + b.title)

	lines := []string{header}
	for _, line := range b.content {
		lines = append(lines, "  "+line)
	}

	body := strings.Join(lines, "\n")
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
	// Wrap only when the content would overflow; Width pads short boxes too
	if b.width > 10 && lipgloss.Width(body)+4 > b.width {
		style = style.Width(b.width - 2)
	}
	return style.Render(body)
}

// Info renders an informational box.
func Info(title string, lines ...string) string {
	return build(InfoMessage, title, lines)
}

// Success renders a success box.
func Success(title string, lines ...string) string {
	return build(SuccessMessage, title, lines)
}

// Warning renders a warning box.
func Warning(title string, lines ...string) string {
	return build(WarningMessage, title, lines)
}

// Error renders an error box.
func Error(title string, lines ...string) string {
	return build(ErrorMessage, title, lines)
}

// ErrorBox renders err with its context and troubleshooting steps. Errors
// of WARNING severity (bad input, unknown task) get a warning box.
func ErrorBox(err error) string {
	taskErr, ok := taskerrors.As(err)
	if !ok {
		return Error("Error", err.Error())
	}

	messageType := ErrorMessage
	if taskerrors.GetErrorSeverity(taskErr) == "WARNING" {
		messageType = WarningMessage
	}

	box := NewBox(messageType, fmt.Sprintf("%s [%s]", taskErr.Message, taskerrors.GetErrorCode(taskErr)))
	if taskErr.Operation != "" {
		box.AddLine("Operation: " + taskErr.Operation)
	}
	for _, line := range taskerrors.ContextLines(taskErr) {
		box.AddLine(line)
	}
	if taskErr.OriginalError != nil {
		box.AddLine("Cause: " + taskErr.OriginalError.Error())
	}
	if taskerrors.ShouldDisplayTroubleshooting(taskErr) {
		for _, step := range taskErr.Troubleshooting {
			box.AddBullet(step)
		}
	}
	return box.Render()
}

func build(messageType MessageType, title string, lines []string) string {
	box := NewBox(messageType, title)
	for _, line := range lines {
		box.AddLine(line)
	}
	return box.Render()
}

// getTerminalWidth returns the terminal width or defaults to 80 if unable to detect.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return width
}
