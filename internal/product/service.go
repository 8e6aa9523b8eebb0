package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Stock     int
}

type ListFilter struct {
	Search  *string
	InStock bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	p := &Product{
		Name:      params.Name,
		SKU:       params.SKU,
		UnitPrice: params.UnitPrice,
		Stock:     params.Stock,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	return s.repo.UpdateProduct(ctx, p)
}

// AdjustStock applies a manual stock correction. The store rejects any
// delta that would leave the stock negative.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	return s.repo.AdjustStock(ctx, id, delta)
}
