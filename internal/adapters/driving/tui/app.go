// Package tui implements the interactive review UI for analysis
// results, built on Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// viewState tracks which screen is active.
type viewState int

const (
	listView viewState = iota
	detailView
)

// item adapts an Analysis to the bubbles list.
type item struct {
	analysis domain.Analysis
}

func (i item) Title() string {
	subject := i.analysis.Subject
	if subject == "" {
		subject = i.analysis.URI
	}
	return fmt.Sprintf("[%s] %s", i.analysis.Tag, subject)
}

func (i item) Description() string {
	parts := []string{}
	if i.analysis.From != "" {
		parts = append(parts, i.analysis.From)
	}
	parts = append(parts,
		fmt.Sprintf("%d items", len(i.analysis.Items)),
		fmt.Sprintf("%.2f %s", i.analysis.Totals.Amount, i.analysis.Totals.Currency))
	return strings.Join(parts, " • ")
}

func (i item) FilterValue() string {
	return i.analysis.Subject
}

// Model is the top-level Bubble Tea model for the review UI.
type Model struct {
	list     list.Model
	state    viewState
	selected domain.Analysis
	styles   *Styles
	width    int
	height   int
}

// NewModel creates the review model over a set of analyses.
func NewModel(analyses []domain.Analysis) Model {
	items := make([]list.Item, len(analyses))
	for i, analysis := range analyses {
		items[i] = item{analysis: analysis}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("OrderLens — %d documents", len(analyses))
	l.SetShowStatusBar(false)

	return Model{
		list:   l,
		state:  listView,
		styles: NewStyles(DefaultTheme()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)

	case tea.KeyMsg:
		// Let the list's filter input consume keys first.
		if m.state == listView && m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.state == listView {
				if selected, ok := m.list.SelectedItem().(item); ok {
					m.selected = selected.analysis
					m.state = detailView
				}
				return m, nil
			}
		case "esc":
			if m.state == detailView {
				m.state = listView
				return m, nil
			}
		}
	}

	if m.state == listView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state == detailView {
		return m.detailView()
	}
	return m.list.View()
}

func (m Model) detailView() string {
	a := m.selected

	var b strings.Builder
	b.WriteString(m.styles.Tag(a.Tag).Render(string(a.Tag)))
	b.WriteString("\n\n")

	if a.Subject != "" {
		fmt.Fprintf(&b, "Subject:  %s\n", a.Subject)
	}
	if a.From != "" {
		fmt.Fprintf(&b, "From:     %s\n", a.From)
	}
	if a.Date != "" {
		fmt.Fprintf(&b, "Date:     %s\n", a.Date)
	}
	fmt.Fprintf(&b, "URI:      %s\n", a.URI)

	if len(a.Items) > 0 {
		b.WriteString("\nLine items:\n")
		for _, it := range a.Items {
			fmt.Fprintf(&b, "  %-36s qty %-4d @ %9.2f = %9.2f\n",
				it.Name, it.Quantity, it.UnitPrice, it.Total)
		}
	} else {
		b.WriteString("\n" + m.styles.Muted.Render("No line items found.") + "\n")
	}

	fmt.Fprintf(&b, "\nTotal: %.2f %s\n", a.Totals.Amount, a.Totals.Currency)
	b.WriteString("\n" + m.styles.Muted.Render("esc: back  •  q: quit"))

	return m.styles.Detail.Render(b.String())
}

// Run starts the review UI and blocks until the user quits.
func Run(analyses []domain.Analysis) error {
	program := tea.NewProgram(NewModel(analyses), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
