package quote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/enerjios/enerjios/internal/quote"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params quote.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *quote.MockRepository)
		wantTotal string
		wantErr   bool
	}

	customerID := uuid.New()
	productID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: quote.CreateParams{
					CustomerID: customerID,
					Items: []quote.ItemParams{
						{
							Kind:      quote.ItemProduct,
							ProductID: &productID,
							Quantity:  4,
							UnitPrice: decimal.NewFromFloat(2500.50),
						},
						{
							Kind:        quote.ItemCustom,
							Description: "Montaj ve devreye alma",
							Quantity:    1,
							UnitPrice:   decimal.NewFromInt(7500),
						},
					},
				},
			},
			setupMock: func(m *quote.MockRepository) {
				m.EXPECT().
					CreateQuote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, q *quote.Quote) error {
						q.ID = uuid.New()
						return nil
					})
			},
			wantTotal: "17502",
			wantErr:   false,
		},
		{
			name: "NoItems",
			args: args{
				params: quote.CreateParams{CustomerID: customerID},
			},
			wantErr: true,
		},
		{
			name: "ZeroQuantity",
			args: args{
				params: quote.CreateParams{
					CustomerID: customerID,
					Items: []quote.ItemParams{
						{Kind: quote.ItemCustom, Description: "x", Quantity: 0},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "ProductItemWithoutProduct",
			args: args{
				params: quote.CreateParams{
					CustomerID: customerID,
					Items: []quote.ItemParams{
						{Kind: quote.ItemProduct, Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{
				params: quote.CreateParams{
					CustomerID: customerID,
					Items: []quote.ItemParams{
						{Kind: quote.ItemCustom, Description: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
					},
				},
			},
			setupMock: func(m *quote.MockRepository) {
				m.EXPECT().
					CreateQuote(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := quote.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := quote.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, quote.StatusDraft, got.Status)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.wantTotal)),
				"total = %s, want %s", got.Total, tt.wantTotal)
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("RecomputesTotal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := quote.NewMockRepository(ctrl)
		repo.EXPECT().
			GetQuote(gomock.Any(), id).
			Return(&quote.Quote{ID: id, CustomerID: uuid.New(), Status: quote.StatusDraft}, nil)
		repo.EXPECT().
			UpdateQuote(gomock.Any(), gomock.Any()).
			Return(nil)

		svc := quote.NewService(repo)
		got, err := svc.Update(context.Background(), id, quote.CreateParams{
			Items: []quote.ItemParams{
				{Kind: quote.ItemCustom, Description: "Keşif", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
			},
		})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.True(t, got.Total.Equal(decimal.NewFromInt(1000)), "total = %s", got.Total)
	})

	t.Run("ApprovedIsImmutable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := quote.NewMockRepository(ctrl)
		repo.EXPECT().
			GetQuote(gomock.Any(), id).
			Return(&quote.Quote{ID: id, Status: quote.StatusApproved}, nil)

		svc := quote.NewService(repo)
		_, err := svc.Update(context.Background(), id, quote.CreateParams{
			Items: []quote.ItemParams{
				{Kind: quote.ItemCustom, Description: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
			},
		})
		assert.ErrorIs(t, err, quote.ErrAlreadyApproved)
	})
}

func TestService_Transitions(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name    string
		current quote.Status
		call    func(svc *quote.Service) error
		target  quote.Status
		wantErr error
	}

	tests := []testCase{
		{
			name:    "SendDraft",
			current: quote.StatusDraft,
			call:    func(svc *quote.Service) error { return svc.Send(context.Background(), id) },
			target:  quote.StatusSent,
		},
		{
			name:    "ViewSent",
			current: quote.StatusSent,
			call:    func(svc *quote.Service) error { return svc.MarkViewed(context.Background(), id) },
			target:  quote.StatusViewed,
		},
		{
			name:    "RejectViewed",
			current: quote.StatusViewed,
			call:    func(svc *quote.Service) error { return svc.Reject(context.Background(), id) },
			target:  quote.StatusRejected,
		},
		{
			name:    "RejectApproved",
			current: quote.StatusApproved,
			call:    func(svc *quote.Service) error { return svc.Reject(context.Background(), id) },
			wantErr: quote.ErrAlreadyApproved,
		},
		{
			name:    "SendApproved",
			current: quote.StatusApproved,
			call:    func(svc *quote.Service) error { return svc.Send(context.Background(), id) },
			wantErr: quote.ErrAlreadyApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := quote.NewMockRepository(ctrl)
			repo.EXPECT().
				GetQuote(gomock.Any(), id).
				Return(&quote.Quote{ID: id, Status: tt.current}, nil)

			if tt.wantErr == nil {
				repo.EXPECT().
					UpdateStatus(gomock.Any(), id, tt.target).
					Return(nil)
			}

			svc := quote.NewService(repo)
			err := tt.call(svc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Approve_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()
	actorID := uuid.New()
	panelID := uuid.New()
	inverterID := uuid.New()

	q := &quote.Quote{
		ID:     quoteID,
		Status: quote.StatusViewed,
		Items: []*quote.Item{
			{Kind: quote.ItemProduct, ProductID: &panelID, Quantity: 5},
			{Kind: quote.ItemProduct, ProductID: &inverterID, Quantity: 1},
			{Kind: quote.ItemCustom, Description: "Kurulum", Quantity: 1},
		},
	}

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).Return(q, nil)
	atx.EXPECT().MarkApproved(gomock.Any(), actorID, gomock.Any()).Return(nil)
	atx.EXPECT().LockProductStock(gomock.Any(), panelID).Return("450W Panel", 10, nil)
	atx.EXPECT().DecrementStock(gomock.Any(), panelID, 5).Return(nil)
	atx.EXPECT().LockProductStock(gomock.Any(), inverterID).Return("8kW Inverter", 3, nil)
	atx.EXPECT().DecrementStock(gomock.Any(), inverterID, 1).Return(nil)
	atx.EXPECT().Commit().Return(nil)
	atx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), quoteID, actorID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, actorID, *got.ApprovedBy)
}

func TestService_Approve_AlreadyApproved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).
		Return(&quote.Quote{ID: quoteID, Status: quote.StatusApproved}, nil)
	atx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), quoteID, uuid.New())
	assert.ErrorIs(t, err, quote.ErrAlreadyApproved)
	assert.Nil(t, got)
}

func TestService_Approve_InsufficientStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()

	// Fixed IDs keep the lock order deterministic: aa... sorts before bb...
	first := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	second := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")

	q := &quote.Quote{
		ID:     quoteID,
		Status: quote.StatusSent,
		Items: []*quote.Item{
			{Kind: quote.ItemProduct, ProductID: &first, Quantity: 5},
			{Kind: quote.ItemProduct, ProductID: &second, Quantity: 3},
		},
	}

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).Return(q, nil)
	atx.EXPECT().MarkApproved(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	atx.EXPECT().LockProductStock(gomock.Any(), first).Return("450W Panel", 10, nil)
	atx.EXPECT().DecrementStock(gomock.Any(), first, 5).Return(nil)
	atx.EXPECT().LockProductStock(gomock.Any(), second).Return("8kW Inverter", 2, nil)
	// No Commit: the failed line rolls the whole approval back.
	atx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), quoteID, uuid.New())
	assert.Nil(t, got)

	var stockErr *quote.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, second, stockErr.ProductID)
	assert.Equal(t, "8kW Inverter", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Required)
}

func TestService_Approve_AggregatesSameProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()
	productID := uuid.New()

	q := &quote.Quote{
		ID:     quoteID,
		Status: quote.StatusSent,
		Items: []*quote.Item{
			{Kind: quote.ItemProduct, ProductID: &productID, Quantity: 3},
			{Kind: quote.ItemProduct, ProductID: &productID, Quantity: 4},
		},
	}

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).Return(q, nil)
	atx.EXPECT().MarkApproved(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	// Two lines for the same product lock once and decrement the sum.
	atx.EXPECT().LockProductStock(gomock.Any(), productID).Return("450W Panel", 7, nil)
	atx.EXPECT().DecrementStock(gomock.Any(), productID, 7).Return(nil)
	atx.EXPECT().Commit().Return(nil)
	atx.EXPECT().Rollback().Return(nil)

	_, err := svc.Approve(context.Background(), quoteID, uuid.New())
	require.NoError(t, err)
}

func TestService_Approve_CustomItemsSkipStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()

	q := &quote.Quote{
		ID:     quoteID,
		Status: quote.StatusViewed,
		Items: []*quote.Item{
			{Kind: quote.ItemCustom, Description: "Proje ve mühendislik", Quantity: 1},
			{Kind: quote.ItemCustom, Description: "Nakliye", Quantity: 2},
		},
	}

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).Return(q, nil)
	atx.EXPECT().MarkApproved(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	atx.EXPECT().Commit().Return(nil)
	atx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), quoteID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, quote.StatusApproved, got.Status)
}

func TestService_Approve_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := quote.NewMockRepository(ctrl)
	atx := quote.NewMockApprovalTx(ctrl)
	svc := quote.NewService(repo)

	quoteID := uuid.New()

	repo.EXPECT().BeginApproval(gomock.Any(), quoteID).Return(atx, nil)
	atx.EXPECT().LockQuote(gomock.Any()).Return(nil, quote.ErrNotFound)
	atx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), quoteID, uuid.New())
	assert.ErrorIs(t, err, quote.ErrNotFound)
	assert.Nil(t, got)
}
