package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles for the review UI
var (
	reviewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("5"))

	reviewStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	approveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Background(lipgloss.Color("0")).
				Padding(0, 1).
				MarginRight(1)

	skipButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Background(lipgloss.Color("0")).
			Padding(0, 1).
			MarginRight(1)

	quitButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Background(lipgloss.Color("0")).
			Padding(0, 1)
)

const (
	defaultReviewWidth  = 80
	defaultReviewHeight = 20
	// title line, blank line, blank line, buttons
	reviewChromeHeight = 4
)

// ReviewItem is one file offered for review
type ReviewItem struct {
	Path    string
	Preview string
}

// ReviewKeyMap holds the key bindings of the review UI
type ReviewKeyMap struct {
	Approve key.Binding
	Skip    key.Binding
	Quit    key.Binding
}

// DefaultReviewKeys are the bindings used by NewReviewModel
var DefaultReviewKeys = ReviewKeyMap{
	Approve: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "approve")),
	Skip:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ReviewModel is a bubble tea model that walks through pending files one at a time
type ReviewModel struct {
	items    []ReviewItem
	index    int
	approved []string
	skipped  []string
	aborted  bool
	keys     ReviewKeyMap
	viewport viewport.Model
}

// NewReviewModel creates a review over items in order
func NewReviewModel(items []ReviewItem) ReviewModel {
	m := ReviewModel{
		items:    items,
		keys:     DefaultReviewKeys,
		viewport: viewport.New(defaultReviewWidth, defaultReviewHeight-reviewChromeHeight),
	}
	m.showCurrent()
	return m
}

// Init initializes the model
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update handles updates to the model
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Done() {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Approve):
			m.approved = append(m.approved, m.items[m.index].Path)
			return m.next()
		case key.Matches(msg, m.keys.Skip):
			m.skipped = append(m.skipped, m.items[m.index].Path)
			return m.next()
		}
	case tea.WindowSizeMsg:
		height := msg.Height - reviewChromeHeight
		if height < 1 {
			height = 1 // Ensure minimum height of 1
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = height
		return m, nil
	}

	// Everything else scrolls the preview
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	m.index++
	if m.Done() {
		return m, tea.Quit
	}
	m.showCurrent()
	return m, nil
}

func (m *ReviewModel) showCurrent() {
	if m.index < len(m.items) {
		m.viewport.SetContent(m.items[m.index].Preview)
		m.viewport.GotoTop()
	}
}

// View renders the model
func (m ReviewModel) View() string {
	if m.Done() {
		return ""
	}

	var sb strings.Builder
	current := m.items[m.index]

	sb.WriteString(reviewTitleStyle.Render(fmt.Sprintf("Reviewing %d/%d: %s", m.index+1, len(m.items), current.Path)))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")

	sb.WriteString(approveButtonStyle.Render("y approve"))
	sb.WriteString(skipButtonStyle.Render("n skip"))
	sb.WriteString(quitButtonStyle.Render("q quit"))
	sb.WriteString(reviewStatusStyle.Render(fmt.Sprintf("  %3.f%%", m.viewport.ScrollPercent()*100)))

	return sb.String()
}

// Done reports whether every file was decided or the review was aborted
func (m ReviewModel) Done() bool {
	return m.aborted || m.index >= len(m.items)
}

// Aborted reports whether the user quit before deciding every file
func (m ReviewModel) Aborted() bool {
	return m.aborted
}

// Approved returns the approved paths in review order
func (m ReviewModel) Approved() []string {
	return m.approved
}

// Skipped returns the skipped paths in review order
func (m ReviewModel) Skipped() []string {
	return m.skipped
}
