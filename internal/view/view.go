// Package view turns signal values into terminal text.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/validation"
)

// AboutText is the body of the about page.
const AboutText = "This is the about page"

// View renders pages with one lipgloss renderer, so color detection follows
// the writer the output goes to.
type View struct {
	done  lipgloss.Style
	nav   lipgloss.Style
	muted lipgloss.Style
}

// New creates a view. A nil renderer uses lipgloss's default (stdout).
func New(r *lipgloss.Renderer) *View {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &View{
		done:  r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245")),
		nav:   r.NewStyle().Underline(true),
		muted: r.NewStyle().Faint(true),
	}
}

// Task renders one row: checkbox, 1-based number and title, struck through
// once done.
func (v *View) Task(index int, task api.Task) string {
	box, title := "[ ]", task.Title
	if task.Done {
		box, title = "[x]", v.done.Render(task.Title)
	}
	return fmt.Sprintf("%s %d. %s", box, validation.DisplayNumber(index), title)
}

// TaskList renders every task, one per line.
func (v *View) TaskList(tasks []api.Task) string {
	if len(tasks) == 0 {
		return v.muted.Render("No tasks yet")
	}
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		lines = append(lines, v.Task(i, task))
	}
	return strings.Join(lines, "\n")
}

// Total renders the task counter.
func Total(n int) string {
	return fmt.Sprintf("Total: %d", n)
}

// Footer renders the clock label and the task counter on one line.
func (v *View) Footer(clock string, total int) string {
	return clock + "  " + Total(total)
}

// TasksPage renders the tasks page.
func (v *View) TasksPage(tasks []api.Task, clock string) string {
	return strings.Join([]string{
		v.nav.Render("about"),
		v.TaskList(tasks),
		v.Footer(clock, len(tasks)),
	}, "\n")
}

// AboutPage renders the about page.
func (v *View) AboutPage() string {
	return v.nav.Render("tasks") + "\n" + AboutText
}
