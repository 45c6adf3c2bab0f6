package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/models"
)

func TestRoleFor(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, RoleFor("admin@lavapp.com", "admin@lavapp.com"))
	assert.Equal(t, models.RoleAdmin, RoleFor(" Admin@Lavapp.com ", "admin@lavapp.com"))
	assert.Equal(t, models.RoleCustomer, RoleFor("ana@example.com", "admin@lavapp.com"))
	assert.Equal(t, models.RoleCustomer, RoleFor("admin@lavapp.com", ""))
}

func TestAccounts_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := NewMockAuthClient(ctrl)
	accounts := NewAccounts(mockAuth, NewMockCustomerRepository(ctrl), "admin@lavapp.com")

	tests := []struct {
		name      string
		email     string
		password  string
		mockSetup func()
		wantUser  *models.User
		wantErr   error
	}{
		{
			name:     "admin identity",
			email:    "admin@lavapp.com",
			password: "secret",
			mockSetup: func() {
				mockAuth.EXPECT().SignInWithPassword(gomock.Any(), "admin@lavapp.com", "secret").Return(&AuthSession{
					AccessToken: "tok",
					User:        AuthUser{ID: "u1", Email: "admin@lavapp.com"},
				}, nil)
			},
			wantUser: &models.User{ID: "u1", Name: "admin@lavapp.com", Email: "admin@lavapp.com", Role: models.RoleAdmin},
		},
		{
			name:     "customer with profile metadata",
			email:    "ana@example.com",
			password: "secret",
			mockSetup: func() {
				mockAuth.EXPECT().SignInWithPassword(gomock.Any(), "ana@example.com", "secret").Return(&AuthSession{
					AccessToken: "tok",
					User: AuthUser{ID: "u2", Email: "ana@example.com", Metadata: UserMetadata{
						Name: "Ana", Phone: "555", Address: "Rua A",
					}},
				}, nil)
			},
			wantUser: &models.User{ID: "u2", Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "Rua A", Role: models.RoleCustomer},
		},
		{
			name:     "rejected credentials",
			email:    "ana@example.com",
			password: "wrong",
			mockSetup: func() {
				mockAuth.EXPECT().SignInWithPassword(gomock.Any(), "ana@example.com", "wrong").Return(nil, ErrInvalidCredentials)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:      "missing password never calls the store",
			email:     "ana@example.com",
			mockSetup: func() {},
			wantErr:   ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := accounts.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestAccounts_Signup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := NewMockAuthClient(ctrl)
	mockCustomers := NewMockCustomerRepository(ctrl)
	accounts := NewAccounts(mockAuth, mockCustomers, "admin@lavapp.com")

	details := models.SignupDetails{Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "Rua A", Password: "secret"}

	t.Run("creates auth user then customer row", func(t *testing.T) {
		gomock.InOrder(
			mockAuth.EXPECT().SignUp(gomock.Any(), "ana@example.com", "secret", UserMetadata{Name: "Ana", Phone: "555", Address: "Rua A"}).
				Return(&AuthUser{ID: "u2", Email: "ana@example.com"}, nil, nil),
			mockCustomers.EXPECT().CreateCustomer(gomock.Any(), models.Customer{
				ID: "u2", Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "Rua A",
			}).Return(&models.Customer{ID: "u2"}, nil),
		)

		user, err := accounts.Signup(context.Background(), details)
		require.NoError(t, err)
		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.Equal(t, "Rua A", user.Address)
	})

	t.Run("customer row failure surfaces", func(t *testing.T) {
		mockAuth.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&AuthUser{ID: "u3", Email: "ana@example.com"}, nil, nil)
		mockCustomers.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).
			Return(nil, RemoteError("customers.create", errors.New("duplicate key")))

		user, err := accounts.Signup(context.Background(), details)
		assert.ErrorIs(t, err, ErrRemote)
		assert.Nil(t, user)
	})

	t.Run("missing name is a validation failure", func(t *testing.T) {
		bad := details
		bad.Name = " "
		_, err := accounts.Signup(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAccounts_SessionUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := NewMockAuthClient(ctrl)
	accounts := NewAccounts(mockAuth, nil, "admin@lavapp.com")

	mockAuth.EXPECT().GetSession(gomock.Any()).Return(nil, nil)
	user, err := accounts.SessionUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	mockAuth.EXPECT().GetSession(gomock.Any()).Return(&AuthSession{AccessToken: "tok", User: AuthUser{ID: "u1", Email: "ana@example.com"}}, nil)
	assert.Equal(t, "tok", accounts.AccessToken(context.Background()))
}
