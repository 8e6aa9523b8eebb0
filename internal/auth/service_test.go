package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/enerjios/enerjios/internal/auth"
)

const testSecret = "test-secret-do-not-use"

func testUser(t *testing.T, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Email:        "sales@enerjios.example",
		Name:         "Satış Ekibi",
		Role:         auth.RoleSales,
		PasswordHash: hash,
	}
}

func TestService_Login(t *testing.T) {
	user := testUser(t, "correct horse")

	type testCase struct {
		name      string
		email     string
		password  string
		setupMock func(m *auth.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			email:    user.Email,
			password: "correct horse",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), user.Email).
					Return(user, nil)
			},
		},
		{
			name:     "WrongPassword",
			email:    user.Email,
			password: "battery staple",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), user.Email).
					Return(user, nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUser",
			email:    "nobody@enerjios.example",
			password: "whatever",
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "nobody@enerjios.example").
					Return(nil, auth.ErrUserNotFound)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := auth.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := auth.NewService(repo, testSecret, time.Hour)
			token, got, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, user, got)
		})
	}
}

func TestService_ParseToken(t *testing.T) {
	user := testUser(t, "correct horse")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUserByEmail(gomock.Any(), user.Email).
		Return(user, nil).
		AnyTimes()

	svc := auth.NewService(repo, testSecret, time.Hour)

	token, _, err := svc.Login(context.Background(), user.Email, "correct horse")
	require.NoError(t, err)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, user.Email, actor.Email)
	assert.Equal(t, auth.RoleSales, actor.Role)

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.ParseToken("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := auth.NewService(repo, "another-secret", time.Hour)

		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expiring := auth.NewService(repo, testSecret, -time.Minute)

		expired, _, err := expiring.Login(context.Background(), user.Email, "correct horse")
		require.NoError(t, err)

		_, err = svc.ParseToken(expired)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
