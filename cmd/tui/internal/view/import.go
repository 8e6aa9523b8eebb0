package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/enerjios/enerjios/internal/leadimport"
	"github.com/enerjios/enerjios/internal/projectrequest"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	requestService *projectrequest.Service

	state      importState
	filePicker filepicker.Model

	imported   int
	duplicates []projectrequest.Duplicate
	dupList    list.Model

	status string
	err    error
}

func NewImportModel(requestSvc *projectrequest.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		requestService: requestSvc,
		filePicker:     fp,
	}
}

func (m ImportModel) Title() string { return "Import Leads" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case leadImportResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.imported = len(msg.result.Imported)
		m.duplicates = msg.result.Duplicates
		m.status = fmt.Sprintf("Imported %d leads, %d duplicates skipped.",
			m.imported, len(m.duplicates))

		if len(m.duplicates) > 0 {
			items := make([]list.Item, len(m.duplicates))
			for i, d := range m.duplicates {
				items[i] = duplicateItem{dup: d}
			}

			m.dupList = list.New(items, duplicateDelegate{}, 80, 20)
			m.dupList.Title = "Skipped Duplicates"
			m.dupList.SetShowStatusBar(false)
			m.dupList.SetFilteringEnabled(false)
			m.dupList.SetShowHelp(false)
		}

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd

	case importStateResult:
		if len(m.duplicates) > 0 {
			var cmd tea.Cmd
			m.dupList, cmd = m.dupList.Update(msg)

			return m, cmd
		}
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.duplicates = nil

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select lead export to import:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status)

	if len(m.duplicates) > 0 {
		return style.Render(summary + "\n\n" + m.dupList.View())
	}

	return style.Render(summary + "\n\n(Esc to go back)")
}

// Messages

type leadImportResultMsg struct {
	result *projectrequest.ImportResult
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return leadImportResultMsg{err: err}
		}
		defer f.Close()

		params, err := leadimport.NewParser("tui-import").Parse(f)
		if err != nil {
			return leadImportResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.requestService.ImportBatch(ctx, params)
		if err != nil {
			return leadImportResultMsg{err: err}
		}

		return leadImportResultMsg{result: result}
	}
}

// Duplicate list item

type duplicateItem struct {
	dup projectrequest.Duplicate
}

func (i duplicateItem) Title() string       { return "" }
func (i duplicateItem) Description() string { return "" }
func (i duplicateItem) FilterValue() string { return "" }

// Duplicate list delegate

type duplicateDelegate struct{}

func (d duplicateDelegate) Height() int                             { return 3 }
func (d duplicateDelegate) Spacing() int                            { return 0 }
func (d duplicateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d duplicateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(duplicateItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.dup.Incoming
	existing := item.dup.Existing

	line1 := fmt.Sprintf("%s%s  %s  %s", cursor, incoming.Name, incoming.Email, incoming.Phone)
	line2 := fmt.Sprintf("      Existing: %s  %s [%s]",
		existing.Name,
		FormatDate(existing.CreatedAt),
		existing.Status.Label(),
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
