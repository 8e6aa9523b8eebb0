package view

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/quote"
)

type QuotesModel struct {
	CommonModel
	quoteService *quote.Service

	// actorID is the operator approvals are recorded under. Nil when no
	// operator is configured; approving is then disabled.
	actorID *uuid.UUID

	table  table.Model
	quotes []*quote.Quote

	statusFilterIdx int

	filter  quote.ListFilter
	loading bool
	err     error
	status  string
}

var quoteStatusCycle = []quote.Status{
	"",
	quote.StatusDraft,
	quote.StatusSent,
	quote.StatusViewed,
	quote.StatusApproved,
	quote.StatusRejected,
}

func NewQuotesModel(quoteSvc *quote.Service, actorID *uuid.UUID) QuotesModel {
	columns := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Total", Width: 14},
		{Title: "Items", Width: 7},
		{Title: "Quote ID", Width: 36},
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

	return QuotesModel{
		quoteService: quoteSvc,
		actorID:      actorID,
		table:        t,
		filter:       quote.ListFilter{},
	}
}

func (m QuotesModel) Title() string { return "Quotes" }
func (m QuotesModel) ShortHelp() string {
	return "Esc: back | a: approve | x: reject | s: status filter | r: refresh"
}

func (m QuotesModel) Init() tea.Cmd {
	return m.loadQuotesCmd()
}

func (m QuotesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQuotesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.quotes = msg.quotes
		m.refreshTable()
		return m, nil

	case quoteActionMsg:
		switch {
		case msg.err == nil:
			m.status = msg.done
		case errors.Is(msg.err, quote.ErrAlreadyApproved):
			m.status = "Quote is already approved"
		default:
			var stockErr *quote.InsufficientStockError
			if errors.As(msg.err, &stockErr) {
				m.status = fmt.Sprintf("Out of stock: %s (%d available, %d required)",
					stockErr.ProductName, stockErr.Available, stockErr.Required)
			} else {
				m.status = fmt.Sprintf("Error: %v", msg.err)
			}
		}
		return m, m.loadQuotesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadQuotesCmd()
		case "a":
			return m.approveSelected()
		case "x":
			return m.rejectSelected()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(quoteStatusCycle)
			m.applyFilter()
			return m, m.loadQuotesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m QuotesModel) approveSelected() (tea.Model, tea.Cmd) {
	q := m.selected()
	if q == nil {
		return m, nil
	}

	if m.actorID == nil {
		m.status = "Set TUI_OPERATOR_EMAIL to approve quotes"
		return m, nil
	}

	actorID := *m.actorID

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.quoteService.Approve(ctx, q.ID, actorID)
		return quoteActionMsg{done: "Quote approved, stock updated", err: err}
	}
}

func (m QuotesModel) rejectSelected() (tea.Model, tea.Cmd) {
	q := m.selected()
	if q == nil {
		return m, nil
	}

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.quoteService.Reject(ctx, q.ID)
		return quoteActionMsg{done: "Quote rejected", err: err}
	}
}

func (m QuotesModel) selected() *quote.Quote {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.quotes) {
		return nil
	}

	return m.quotes[idx]
}

func (m QuotesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading quotes...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if s := quoteStatusCycle[m.statusFilterIdx]; s != "" {
		filterLabel = string(s)
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

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *QuotesModel) applyFilter() {
	if s := quoteStatusCycle[m.statusFilterIdx]; s != "" {
		m.filter.Status = new(s)
	} else {
		m.filter.Status = nil
	}
}

func (m *QuotesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.quotes))
	for _, q := range m.quotes {
		rows = append(rows, table.Row{
			FormatDate(q.CreatedAt),
			string(q.Status),
			FormatMoney(q.Total),
			fmt.Sprintf("%d", len(q.Items)),
			q.ID.String(),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadQuotesMsg struct {
	quotes []*quote.Quote
	err    error
}

func (m QuotesModel) loadQuotesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		quotes, err := m.quoteService.List(ctx, m.filter)
		return loadQuotesMsg{quotes: quotes, err: err}
	}
}

type quoteActionMsg struct {
	done string
	err  error
}
