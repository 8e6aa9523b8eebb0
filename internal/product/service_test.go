package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/enerjios/enerjios/internal/product"
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := product.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *product.Product) error {
			p.ID = uuid.New()
			return nil
		})

	svc := product.NewService(repo)
	got, err := svc.Create(context.Background(), product.CreateParams{
		Name:      "450W Monokristal Panel",
		SKU:       "PNL-450M",
		UnitPrice: decimal.NewFromFloat(2500.50),
		Stock:     120,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 120, got.Stock)
}

func TestService_AdjustStock(t *testing.T) {
	type testCase struct {
		name      string
		delta     int
		setupMock func(m *product.MockRepository, id uuid.UUID)
		wantStock int
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Increase",
			delta: 50,
			setupMock: func(m *product.MockRepository, id uuid.UUID) {
				m.EXPECT().
					AdjustStock(gomock.Any(), id, 50).
					Return(&product.Product{ID: id, Stock: 170}, nil)
			},
			wantStock: 170,
		},
		{
			name:  "DecreaseBelowZero",
			delta: -200,
			setupMock: func(m *product.MockRepository, id uuid.UUID) {
				m.EXPECT().
					AdjustStock(gomock.Any(), id, -200).
					Return(nil, product.ErrStockBelowZero)
			},
			wantErr: product.ErrStockBelowZero,
		},
		{
			name:  "NotFound",
			delta: 1,
			setupMock: func(m *product.MockRepository, id uuid.UUID) {
				m.EXPECT().
					AdjustStock(gomock.Any(), id, 1).
					Return(nil, product.ErrNotFound)
			},
			wantErr: product.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := product.NewMockRepository(ctrl)
			tt.setupMock(repo, id)

			svc := product.NewService(repo)
			got, err := svc.AdjustStock(context.Background(), id, tt.delta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, got.Stock)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	search := "panel"
	filter := product.ListFilter{Search: &search, InStock: true}

	repo := product.NewMockRepository(ctrl)
	repo.EXPECT().
		ListProducts(gomock.Any(), filter).
		Return([]*product.Product{{ID: uuid.New()}}, nil)

	svc := product.NewService(repo)
	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	repo.EXPECT().
		ListProducts(gomock.Any(), product.ListFilter{}).
		Return(nil, errors.New("list error"))

	_, err = svc.List(context.Background(), product.ListFilter{})
	assert.Error(t, err)
}
