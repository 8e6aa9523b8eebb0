package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/enerjios/enerjios/cmd/tui/internal/view"
	authStore "github.com/enerjios/enerjios/internal/auth/store"
	"github.com/enerjios/enerjios/internal/config"
	"github.com/enerjios/enerjios/internal/database"
	"github.com/enerjios/enerjios/internal/projectrequest"
	requestStore "github.com/enerjios/enerjios/internal/projectrequest/store"
	"github.com/enerjios/enerjios/internal/quote"
	quoteStore "github.com/enerjios/enerjios/internal/quote/store"
)

type model struct {
	quoteService   *quote.Service
	requestService *projectrequest.Service

	operatorID *uuid.UUID

	currentView View

	leadsView  view.LeadsModel
	quotesView view.QuotesModel
	importView view.ImportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewLeads  View = 1
	ViewQuotes View = 2
	ViewImport View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	quoteSvc := quote.NewService(quoteStore.New(db))
	requestSvc := projectrequest.NewService(requestStore.New(db))

	var operatorID *uuid.UUID

	if cfg.TUI.OperatorEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		user, err := authStore.New(db).GetUserByEmail(ctx, cfg.TUI.OperatorEmail)
		if err != nil {
			slog.Error("failed to resolve operator", "email", cfg.TUI.OperatorEmail, "error", err)
			os.Exit(1)
		}

		operatorID = &user.ID
	}

	return model{
		quoteService:   quoteSvc,
		requestService: requestSvc,
		operatorID:     operatorID,
		currentView:    ViewMenu,
		leadsView:      view.NewLeadsModel(requestSvc),
		quotesView:     view.NewQuotesModel(quoteSvc, operatorID),
		importView:     view.NewImportModel(requestSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewLeads
				m.leadsView = view.NewLeadsModel(m.requestService)

				return m, m.leadsView.Init()
			case "2":
				m.currentView = ViewQuotes
				m.quotesView = view.NewQuotesModel(m.quoteService, m.operatorID)

				return m, m.quotesView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.requestService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLeads:
		var newModel tea.Model
		newModel, cmd = m.leadsView.Update(msg)
		m.leadsView = newModel.(view.LeadsModel)
	case ViewQuotes:
		var newModel tea.Model
		newModel, cmd = m.quotesView.Update(msg)
		m.quotesView = newModel.(view.QuotesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"EnerjiOS TUI\n\n" +
				"1. Project Requests\n" +
				"2. Quotes\n" +
				"3. Import Leads\n\n" +
				"q. Quit",
		)
	case ViewLeads:
		return m.leadsView.View()
	case ViewQuotes:
		return m.quotesView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
