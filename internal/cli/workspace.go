package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/juli/internal/model"
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	workspaceNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	workspaceDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	workspaceActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	workspaceHibernatedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("214"))
)

// WorkspaceItem implements list.Item for workspace selection
type WorkspaceItem struct {
	workspace model.Workspace
	isNew     bool
}

// DisplayName returns the workspace name, or a placeholder for unnamed workspaces.
func DisplayName(w model.Workspace) string {
	if w.Name != "" {
		return w.Name
	}

	return fmt.Sprintf("Workspace %d", w.Order)
}

func (i WorkspaceItem) Title() string {
	if i.isNew {
		return "+ Create new workspace..."
	}

	state := ""

	switch {
	case i.workspace.Active:
		state = workspaceActiveStyle.Render(" (active)")
	case i.workspace.Hibernated:
		state = workspaceHibernatedStyle.Render(" (hibernated)")
	}

	return workspaceNameStyle.Render(DisplayName(i.workspace)) + state
}

func (i WorkspaceItem) Description() string {
	if i.isNew {
		return "Create a new isolated workspace"
	}

	parts := []string{fmt.Sprintf("order %d", i.workspace.Order)}

	if info := i.workspace.AccountInfo; info != nil && info.Email != "" {
		parts = append(parts, info.Email)
	}

	parts = append(parts, i.workspace.ID)

	return workspaceDetailStyle.Render(strings.Join(parts, " | "))
}

func (i WorkspaceItem) FilterValue() string {
	if i.isNew {
		return "create new"
	}

	if i.workspace.AccountInfo != nil {
		return DisplayName(i.workspace) + " " + i.workspace.AccountInfo.Email
	}

	return DisplayName(i.workspace)
}

// Selection is the outcome of the workspace selector.
type Selection struct {
	// Workspace is the chosen workspace; nil when the user quit
	Workspace *model.Workspace

	// Create is set when the user asked for a new workspace. Only Name is
	// filled on Workspace then.
	Create bool

	// Picture is the optional picture source for a new workspace
	Picture string
}

// WorkspaceSelectorModel is the TUI model for workspace selection
type WorkspaceSelectorModel struct {
	list         list.Model
	selection    Selection
	creating     bool
	nameInput    textinput.Model
	pictureInput textinput.Model
	focusIndex   int
	quitting     bool
}

// NewWorkspaceSelector creates a selector over workspaces, which must be in
// display order. With allowCreate an entry for a new workspace is appended.
func NewWorkspaceSelector(workspaces []model.Workspace, allowCreate bool) WorkspaceSelectorModel {
	items := make([]list.Item, 0, len(workspaces)+1)
	for _, w := range workspaces {
		items = append(items, WorkspaceItem{workspace: w})
	}

	if allowCreate {
		items = append(items, WorkspaceItem{isNew: true})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Workspace"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	nameInput := textinput.New()
	nameInput.Placeholder = "Work"
	nameInput.Focus()
	nameInput.CharLimit = 50
	nameInput.Width = 40

	pictureInput := textinput.New()
	pictureInput.Placeholder = "optional path or https:// URL"
	pictureInput.CharLimit = 500
	pictureInput.Width = 60

	return WorkspaceSelectorModel{
		list:         l,
		nameInput:    nameInput,
		pictureInput: pictureInput,
	}
}

func (m WorkspaceSelectorModel) Init() tea.Cmd {
	return nil
}

func (m WorkspaceSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m.updateCreating(msg)
	}

	switch keyMsg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(keyMsg.Width-h, keyMsg.Height-v)

		return m, nil

	case tea.KeyMsg:
		// let the list consume keys while the user types a filter
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch keyMsg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true

			return m, tea.Quit

		case "enter":
			i, ok := m.list.SelectedItem().(WorkspaceItem)
			if ok {
				if i.isNew {
					m.creating = true
					m.focusIndex = 0
					m.nameInput.Focus()

					return m, textinput.Blink
				}

				w := i.workspace
				m.selection = Selection{Workspace: &w}

				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m WorkspaceSelectorModel) updateCreating(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.creating = false
		m.nameInput.Reset()
		m.pictureInput.Reset()

		return m, nil

	case "tab", "shift+tab":
		m.toggleFocus()

		return m, textinput.Blink

	case "enter":
		if m.focusIndex == 0 {
			m.toggleFocus()

			return m, textinput.Blink
		}

		m.selection = Selection{
			Workspace: &model.Workspace{Name: strings.TrimSpace(m.nameInput.Value())},
			Create:    true,
			Picture:   strings.TrimSpace(m.pictureInput.Value()),
		}

		return m, tea.Quit
	}

	return m.updateFocused(msg)
}

func (m *WorkspaceSelectorModel) toggleFocus() {
	if m.focusIndex == 0 {
		m.focusIndex = 1
		m.nameInput.Blur()
		m.pictureInput.Focus()

		return
	}

	m.focusIndex = 0
	m.pictureInput.Blur()
	m.nameInput.Focus()
}

func (m WorkspaceSelectorModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.focusIndex == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.pictureInput, cmd = m.pictureInput.Update(msg)
	}

	return m, cmd
}

func (m WorkspaceSelectorModel) View() string {
	if m.quitting {
		return ""
	}

	if m.creating {
		return m.viewCreating()
	}

	return docStyle.Render(m.list.View())
}

func (m WorkspaceSelectorModel) viewCreating() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("Create New Workspace")

	instructions := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("Press Tab to switch fields, Enter to submit, Esc to cancel")

	nameLabel := "Name:"
	pictureLabel := "Picture:"

	if m.focusIndex == 0 {
		nameLabel = lipgloss.NewStyle().Bold(true).Render(nameLabel)
	} else {
		pictureLabel = lipgloss.NewStyle().Bold(true).Render(pictureLabel)
	}

	return docStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\n%s\n%s\n\n%s\n%s",
		title,
		instructions,
		nameLabel,
		m.nameInput.View(),
		pictureLabel,
		m.pictureInput.View(),
	))
}

// Selection returns what the user picked. Workspace is nil if they quit.
func (m WorkspaceSelectorModel) Selection() Selection {
	return m.selection
}

// RunWorkspaceSelector shows the selector and waits for the user.
func RunWorkspaceSelector(workspaces []model.Workspace, allowCreate bool, opts ...tea.ProgramOption) (Selection, error) {
	p := tea.NewProgram(NewWorkspaceSelector(workspaces, allowCreate), opts...)

	final, err := p.Run()
	if err != nil {
		return Selection{}, fmt.Errorf("workspace selector: %w", err)
	}

	m, ok := final.(WorkspaceSelectorModel)
	if !ok {
		return Selection{}, fmt.Errorf("workspace selector: unexpected model %T", final)
	}

	return m.Selection(), nil
}
