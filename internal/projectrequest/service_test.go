package projectrequest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/enerjios/enerjios/internal/projectrequest"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params projectrequest.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *projectrequest.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: projectrequest.CreateParams{
					Name:   "Ayşe Yılmaz",
					Email:  "ayse@example.com",
					Phone:  "05321234567",
					City:   "İzmir",
					Source: "website",
				},
			},
			setupMock: func(m *projectrequest.MockRepository) {
				m.EXPECT().
					CreateRequest(gomock.Any(), gomock.Any(), gomock.Nil()).
					DoAndReturn(func(_ context.Context, r *projectrequest.ProjectRequest, _ *uuid.UUID) error {
						r.ID = uuid.New()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "MissingName",
			args: args{
				params: projectrequest.CreateParams{Email: "x@example.com"},
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{
				params: projectrequest.CreateParams{Name: "Mehmet Kaya"},
			},
			setupMock: func(m *projectrequest.MockRepository) {
				m.EXPECT().
					CreateRequest(gomock.Any(), gomock.Any(), gomock.Nil()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := projectrequest.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := projectrequest.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params, nil)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, projectrequest.StatusOpen, got.Status)
		})
	}
}

func TestService_TransitionStatus(t *testing.T) {
	id := uuid.New()
	actorID := uuid.New()

	t.Run("PassesNoteThrough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := projectrequest.NewMockRepository(ctrl)
		repo.EXPECT().
			Transition(gomock.Any(), id, projectrequest.StatusContacted, &actorID, "called twice, interested").
			Return(&projectrequest.ProjectRequest{ID: id, Status: projectrequest.StatusContacted}, &projectrequest.HistoryEntry{}, nil)

		svc := projectrequest.NewService(repo)
		got, err := svc.TransitionStatus(context.Background(), id, projectrequest.StatusContacted, &actorID, "called twice, interested")
		require.NoError(t, err)
		assert.Equal(t, projectrequest.StatusContacted, got.Status)
	})

	t.Run("EmptyNoteDefaultsToLabel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := projectrequest.NewMockRepository(ctrl)
		repo.EXPECT().
			Transition(gomock.Any(), id, projectrequest.StatusConverted, &actorID, "Converted to project").
			Return(&projectrequest.ProjectRequest{ID: id, Status: projectrequest.StatusConverted}, &projectrequest.HistoryEntry{}, nil)

		svc := projectrequest.NewService(repo)
		_, err := svc.TransitionStatus(context.Background(), id, projectrequest.StatusConverted, &actorID, "")
		require.NoError(t, err)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := projectrequest.NewMockRepository(ctrl)

		svc := projectrequest.NewService(repo)
		got, err := svc.TransitionStatus(context.Background(), id, projectrequest.Status("archived"), &actorID, "")
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("IllegalTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		transErr := &projectrequest.InvalidTransitionError{
			From: projectrequest.StatusOpen,
			To:   projectrequest.StatusSiteVisit,
		}

		repo := projectrequest.NewMockRepository(ctrl)
		repo.EXPECT().
			Transition(gomock.Any(), id, projectrequest.StatusSiteVisit, &actorID, "Site visit scheduled").
			Return(nil, nil, transErr)

		svc := projectrequest.NewService(repo)
		_, err := svc.TransitionStatus(context.Background(), id, projectrequest.StatusSiteVisit, &actorID, "")

		var got *projectrequest.InvalidTransitionError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, projectrequest.StatusOpen, got.From)
		assert.Equal(t, projectrequest.StatusSiteVisit, got.To)
	})
}

func TestService_AddNote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	requestID := uuid.New()
	actorID := uuid.New()

	repo := projectrequest.NewMockRepository(ctrl)
	repo.EXPECT().
		AddNote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *projectrequest.Note) error {
			n.ID = uuid.New()
			return nil
		})

	svc := projectrequest.NewService(repo)
	got, err := svc.AddNote(context.Background(), requestID, &actorID, "roof measurements attached")
	require.NoError(t, err)
	assert.Equal(t, requestID, got.RequestID)
	assert.NotEmpty(t, got.ID)

	_, err = svc.AddNote(context.Background(), requestID, &actorID, "")
	assert.Error(t, err)
}

func TestService_ImportBatch_NoDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := projectrequest.NewMockRepository(ctrl)
	itx := projectrequest.NewMockImportTx(ctrl)
	svc := projectrequest.NewService(repo)

	params := []projectrequest.CreateParams{
		{Name: "Ali Demir", Email: "ali@example.com", Phone: "05301112233", City: "Ankara", Source: "import"},
		{Name: "Fatma Çelik", Email: "fatma@example.com", City: "Bursa", Source: "import"},
	}

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindExisting(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateRequests(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 2)
	assert.Empty(t, result.Duplicates)
	assert.Equal(t, projectrequest.StatusOpen, result.Imported[0].Status)
}

func TestService_ImportBatch_WithDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := projectrequest.NewMockRepository(ctrl)
	itx := projectrequest.NewMockImportTx(ctrl)
	svc := projectrequest.NewService(repo)

	params := []projectrequest.CreateParams{
		{Name: "Ali Demir", Email: "ali@example.com", Source: "import"},
		{Name: "Fatma Çelik", Phone: "05301112233", Source: "import"},
		{Name: "Hasan Acar", Email: "hasan@example.com", Source: "import"},
	}

	existing := []*projectrequest.ProjectRequest{
		{ID: uuid.New(), Name: "Ali D.", Email: "ali@example.com"},
		{ID: uuid.New(), Name: "F. Çelik", Phone: "05301112233"},
	}

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindExisting(gomock.Any(), params).Return(existing, nil)
	itx.EXPECT().
		CreateRequests(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, reqs []*projectrequest.ProjectRequest) error {
			require.Len(t, reqs, 1)
			assert.Equal(t, "Hasan Acar", reqs[0].Name)
			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	require.Len(t, result.Duplicates, 2)
	assert.Equal(t, params[0], result.Duplicates[0].Incoming)
	assert.Equal(t, existing[0], result.Duplicates[0].Existing)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := projectrequest.NewMockRepository(ctrl)
	svc := projectrequest.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Duplicates)
}
