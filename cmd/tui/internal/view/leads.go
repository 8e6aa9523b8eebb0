package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/enerjios/enerjios/internal/projectrequest"
)

type leadsState int

const (
	leadsStateBrowse leadsState = iota
	leadsStateTransition
)

type LeadsModel struct {
	CommonModel
	requestService *projectrequest.Service

	state leadsState
	table table.Model
	reqs  []*projectrequest.ProjectRequest
	form  *huh.Form

	statusFilterIdx int

	filter  projectrequest.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formTarget string
	formNote   string
}

// statusCycle is the order the status filter key walks through.
var statusCycle = []projectrequest.Status{
	"",
	projectrequest.StatusOpen,
	projectrequest.StatusContacted,
	projectrequest.StatusAssigned,
	projectrequest.StatusSiteVisit,
	projectrequest.StatusConverted,
	projectrequest.StatusLost,
}

func NewLeadsModel(requestSvc *projectrequest.Service) LeadsModel {
	columns := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Name", Width: 24},
		{Title: "City", Width: 14},
		{Title: "Status", Width: 22},
		{Title: "Phone", Width: 14},
		{Title: "Source", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return LeadsModel{
		requestService: requestSvc,
		table:          t,
		filter:         projectrequest.ListFilter{},
	}
}

func (m LeadsModel) Title() string { return "Project Requests" }
func (m LeadsModel) ShortHelp() string {
	if m.state == leadsStateTransition {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | t: change status | s: status filter | r: refresh"
}

func (m LeadsModel) Init() tea.Cmd {
	return m.loadLeadsCmd()
}

func (m LeadsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLeadsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.reqs = msg.reqs
		m.refreshTable()
		return m, nil

	case leadTransitionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Moved to %s", msg.target.Label())
		}
		m.state = leadsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadLeadsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case leadsStateBrowse:
		return m.updateBrowse(msg)
	case leadsStateTransition:
		return m.updateTransition(msg)
	}

	return m, nil
}

func (m LeadsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadLeadsCmd()
		case "t":
			return m.enterTransitionMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusCycle)
			m.applyFilter()
			return m, m.loadLeadsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m LeadsModel) enterTransitionMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.reqs) {
		return m, nil
	}

	req := m.reqs[idx]

	targets := projectrequest.ValidTransitions(req.Status)
	if len(targets) == 0 {
		m.status = "No transitions available"
		return m, nil
	}

	options := make([]huh.Option[string], 0, len(targets))
	for _, t := range targets {
		options = append(options, huh.NewOption(t.Label(), string(t)))
	}

	m.formTarget = string(targets[0])
	m.formNote = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("target").
				Title("New status").
				Options(options...).
				Value(&m.formTarget),

			huh.NewInput().
				Key("note").
				Title("Note").
				Placeholder("optional").
				Value(&m.formNote),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = leadsStateTransition
	m.table.Blur()
	return m, m.form.Init()
}

func (m LeadsModel) updateTransition(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = leadsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.transitionCmd()
}

func (m LeadsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading project requests...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if s := statusCycle[m.statusFilterIdx]; s != "" {
		filterLabel = s.Label()
	}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(filterLabel))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == leadsStateTransition && m.form != nil {
		idx := m.table.Cursor()
		name := ""
		if idx >= 0 && idx < len(m.reqs) {
			name = m.reqs[idx].Name
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Change Status\n\nLead: %s\n\n%s", name, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *LeadsModel) applyFilter() {
	if s := statusCycle[m.statusFilterIdx]; s != "" {
		m.filter.Status = new(s)
	} else {
		m.filter.Status = nil
	}
}

func (m *LeadsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.reqs))
	for _, req := range m.reqs {
		rows = append(rows, table.Row{
			FormatDate(req.CreatedAt),
			req.Name,
			req.City,
			req.Status.Label(),
			req.Phone,
			req.Source,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadLeadsMsg struct {
	reqs []*projectrequest.ProjectRequest
	err  error
}

func (m LeadsModel) loadLeadsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		reqs, err := m.requestService.List(ctx, m.filter)
		return loadLeadsMsg{reqs: reqs, err: err}
	}
}

type leadTransitionMsg struct {
	target projectrequest.Status
	err    error
}

func (m LeadsModel) transitionCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.reqs) {
		return nil
	}

	req := m.reqs[idx]
	target := projectrequest.Status(m.formTarget)
	note := m.formNote

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.requestService.TransitionStatus(ctx, req.ID, target, nil, note)
		return leadTransitionMsg{target: target, err: err}
	}
}
