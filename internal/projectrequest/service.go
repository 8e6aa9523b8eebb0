package projectrequest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=projectrequest
type Repository interface {
	CreateRequest(ctx context.Context, r *ProjectRequest, actorID *uuid.UUID) error
	GetRequest(ctx context.Context, id uuid.UUID) (*ProjectRequest, error)
	ListRequests(ctx context.Context, filter ListFilter) ([]*ProjectRequest, error)
	AssignEngineer(ctx context.Context, id, engineerID uuid.UUID) error

	// Transition re-checks the current status under a row lock, updates it
	// and appends the history entry, all in one database transaction.
	Transition(ctx context.Context, id uuid.UUID, target Status, actorID *uuid.UUID, note string) (*ProjectRequest, *HistoryEntry, error)

	ListHistory(ctx context.Context, requestID uuid.UUID) ([]*HistoryEntry, error)
	AddNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, requestID uuid.UUID) ([]*Note, error)

	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx is the unit of work for a batch lead import.
type ImportTx interface {
	FindExisting(ctx context.Context, params []CreateParams) ([]*ProjectRequest, error)
	CreateRequests(ctx context.Context, reqs []*ProjectRequest) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name   string
	Email  string
	Phone  string
	City   string
	Source string
}

type ListFilter struct {
	Status   *Status
	Engineer *uuid.UUID
	Search   *string
}

func (s *Service) Create(ctx context.Context, params CreateParams, actorID *uuid.UUID) (*ProjectRequest, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("lead name is required")
	}

	r := &ProjectRequest{
		Name:   params.Name,
		Email:  params.Email,
		Phone:  params.Phone,
		City:   params.City,
		Source: params.Source,
		Status: StatusOpen,
	}
	if err := s.repo.CreateRequest(ctx, r, actorID); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProjectRequest, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*ProjectRequest, error) {
	return s.repo.ListRequests(ctx, filter)
}

func (s *Service) Assign(ctx context.Context, id, engineerID uuid.UUID) error {
	return s.repo.AssignEngineer(ctx, id, engineerID)
}

// TransitionStatus moves the request to the target status when the move is
// legal, recording exactly one history entry. An empty note defaults to
// the target's human-readable label.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, target Status, actorID *uuid.UUID, note string) (*ProjectRequest, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown status %q", target)
	}

	if note == "" {
		note = target.Label()
	}

	r, _, err := s.repo.Transition(ctx, id, target, actorID, note)
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) History(ctx context.Context, requestID uuid.UUID) ([]*HistoryEntry, error) {
	return s.repo.ListHistory(ctx, requestID)
}

func (s *Service) AddNote(ctx context.Context, requestID uuid.UUID, actorID *uuid.UUID, body string) (*Note, error) {
	if body == "" {
		return nil, fmt.Errorf("note body is required")
	}

	n := &Note{
		RequestID: requestID,
		ActorID:   actorID,
		Body:      body,
	}
	if err := s.repo.AddNote(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Service) Notes(ctx context.Context, requestID uuid.UUID) ([]*Note, error) {
	return s.repo.ListNotes(ctx, requestID)
}

type ImportResult struct {
	Imported   []*ProjectRequest
	Duplicates []Duplicate
}

type Duplicate struct {
	Incoming CreateParams
	Existing *ProjectRequest
}

// ImportBatch creates project requests for the given leads, skipping any
// whose e-mail or phone already matches an existing request. The whole
// batch runs in one transaction so a partial file never half-imports.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.FindExisting(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find existing: %w", err)
	}

	byEmail := make(map[string]*ProjectRequest)
	byPhone := make(map[string]*ProjectRequest)

	for _, r := range existing {
		if r.Email != "" {
			byEmail[r.Email] = r
		}

		if r.Phone != "" {
			byPhone[r.Phone] = r
		}
	}

	var (
		reqs       []*ProjectRequest
		duplicates []Duplicate
	)

	for _, p := range params {
		if r, ok := byEmail[p.Email]; ok && p.Email != "" {
			duplicates = append(duplicates, Duplicate{Incoming: p, Existing: r})
			continue
		}

		if r, ok := byPhone[p.Phone]; ok && p.Phone != "" {
			duplicates = append(duplicates, Duplicate{Incoming: p, Existing: r})
			continue
		}

		reqs = append(reqs, &ProjectRequest{
			Name:   p.Name,
			Email:  p.Email,
			Phone:  p.Phone,
			City:   p.City,
			Source: p.Source,
			Status: StatusOpen,
		})
	}

	if err := itx.CreateRequests(ctx, reqs); err != nil {
		return nil, fmt.Errorf("create requests: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: reqs, Duplicates: duplicates}, nil
}
