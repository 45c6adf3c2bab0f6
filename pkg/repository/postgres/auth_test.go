package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/repository"
	"lavapp/pkg/utils"
)

var userColumns = []string{"id", "email", "password_hash", "name", "phone", "address", "created_at"}

var testAuthConfig = AuthConfig{
	Secret:   []byte("test-secret"),
	Lifetime: time.Hour,
	Timeout:  time.Second,
}

func collectEvents(client *AuthClient) <-chan repository.AuthEvent {
	events := make(chan repository.AuthEvent, 4)
	client.OnAuthStateChange(func(event repository.AuthEvent, _ *repository.AuthSession) {
		events <- event
	})
	return events
}

func waitEvent(t *testing.T, events <-chan repository.AuthEvent) repository.AuthEvent {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(time.Second):
		t.Fatal("no auth event delivered")
		return ""
	}
}

func TestAuthClient_SignIn(t *testing.T) {
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		password  string
		mockSetup func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:     "valid password",
			password: "secret1",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT \* FROM "users" WHERE lower\(email\) = \$1`).
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("u1", "ana@example.com", hash, "Ana Souza", "11 9999", "Rua A, 10", time.Now()))
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM "users"`).
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("u1", "ana@example.com", hash, "Ana Souza", "", "", time.Now()))
			},
			wantErr: repository.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "secret1",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))
			},
			wantErr: repository.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			storage := repository.NewMemoryTokenStorage()
			client := NewAuthClient(db, testAuthConfig, storage, "client-1")
			tt.mockSetup(mock)

			session, err := client.SignInWithPassword(context.Background(), "Ana@Example.com", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, _ := storage.Load(context.Background(), "client-1")
				assert.Nil(t, stored)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", session.User.ID)
			assert.Equal(t, "Ana Souza", session.User.Metadata.Name)

			claims, err := utils.VerifyToken(testAuthConfig.Secret, session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.UserID)

			stored, err := client.GetSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, session.AccessToken, stored.AccessToken)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuthClient_SignUp(t *testing.T) {
	db, mock := newMockDB(t)
	client := NewAuthClient(db, testAuthConfig, repository.NewMemoryTokenStorage(), "client-1")
	events := collectEvents(client)

	mock.ExpectQuery(`FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnRows(
		sqlmock.NewRows(userColumns).AddRow("u2", "bia@example.com", "hash", "Bia", "", "", time.Now()),
	)

	user, session, err := client.SignUp(context.Background(), "Bia@example.com", "secret1",
		repository.UserMetadata{Name: "Bia"})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, "Bia", user.Metadata.Name)
	assert.Equal(t, repository.AuthEventSignedIn, waitEvent(t, events))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthClient_SignUp_Rejections(t *testing.T) {
	db, mock := newMockDB(t)
	client := NewAuthClient(db, testAuthConfig, repository.NewMemoryTokenStorage(), "client-1")

	_, _, err := client.SignUp(context.Background(), "bia@example.com", "123", repository.UserMetadata{})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	mock.ExpectQuery(`FROM "users"`).WillReturnRows(
		sqlmock.NewRows(userColumns).AddRow("u2", "bia@example.com", "hash", "Bia", "", "", time.Now()),
	)
	_, _, err = client.SignUp(context.Background(), "bia@example.com", "secret1", repository.UserMetadata{})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Contains(t, err.Error(), "already registered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthClient_SignOut(t *testing.T) {
	db, _ := newMockDB(t)
	storage := repository.NewMemoryTokenStorage()
	client := NewAuthClient(db, testAuthConfig, storage, "client-1")

	token, expiresAt, err := utils.GenerateToken(testAuthConfig.Secret, time.Hour, "u1", "ana@example.com")
	require.NoError(t, err)
	require.NoError(t, storage.Save(context.Background(), "client-1",
		&repository.AuthSession{AccessToken: token, ExpiresAt: expiresAt}))

	events := collectEvents(client)
	require.NoError(t, client.SignOut(context.Background()))
	assert.Equal(t, repository.AuthEventSignedOut, waitEvent(t, events))

	session, err := client.GetSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthClient_GetSession_DropsExpiredToken(t *testing.T) {
	db, _ := newMockDB(t)
	storage := repository.NewMemoryTokenStorage()
	client := NewAuthClient(db, testAuthConfig, storage, "client-1")

	token, expiresAt, err := utils.GenerateToken(testAuthConfig.Secret, -time.Minute, "u1", "ana@example.com")
	require.NoError(t, err)
	require.NoError(t, storage.Save(context.Background(), "client-1",
		&repository.AuthSession{AccessToken: token, ExpiresAt: expiresAt}))

	events := collectEvents(client)
	session, err := client.GetSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, repository.AuthEventSignedOut, waitEvent(t, events))

	stored, _ := storage.Load(context.Background(), "client-1")
	assert.Nil(t, stored)
}

func TestAuthFactory_ScopesStorageByKey(t *testing.T) {
	db, _ := newMockDB(t)
	storage := repository.NewMemoryTokenStorage()
	factory := AuthFactory(db, testAuthConfig, storage)

	token, expiresAt, err := utils.GenerateToken(testAuthConfig.Secret, time.Hour, "u1", "ana@example.com")
	require.NoError(t, err)
	require.NoError(t, storage.Save(context.Background(), "a",
		&repository.AuthSession{AccessToken: token, ExpiresAt: expiresAt}))

	session, err := factory("a").GetSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session)

	session, err = factory("b").GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}
