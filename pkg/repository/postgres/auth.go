package postgres

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lavapp/pkg/database"
	"lavapp/pkg/metrics"
	"lavapp/pkg/repository"
	"lavapp/pkg/utils"
)

// AuthConfig configures local password auth.
type AuthConfig struct {
	Secret   []byte
	Lifetime time.Duration
	Timeout  time.Duration
}

// AuthClient authenticates against the users table and issues HS256 tokens.
// One client serves one browser session; its session lives in storage under key.
type AuthClient struct {
	db      *gorm.DB
	cfg     AuthConfig
	storage repository.TokenStorage
	key     string
	hub     *repository.Hub
	mu      sync.Mutex
}

var _ repository.AuthClient = (*AuthClient)(nil)

func NewAuthClient(db *gorm.DB, cfg AuthConfig, storage repository.TokenStorage, key string) *AuthClient {
	return &AuthClient{
		db:      db,
		cfg:     cfg,
		storage: storage,
		key:     key,
		hub:     repository.NewHub(),
	}
}

// AuthFactory returns a factory of per-client auth clients sharing db and storage.
func AuthFactory(db *gorm.DB, cfg AuthConfig, storage repository.TokenStorage) repository.AuthClientFactory {
	return func(key string) repository.AuthClient {
		return NewAuthClient(db, cfg, storage, key)
	}
}

// Migrate creates the tables of the postgres backend.
func Migrate(db *gorm.DB) error {
	return database.AutoMigrate(db, Tables()...)
}

func (a *AuthClient) findUser(ctx context.Context, email string) (*userRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var rows []userRow
	err := a.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&rows).Error
	metrics.RecordRemoteCall("auth.find_user", err)
	if err != nil {
		return nil, repository.RemoteError("auth.find_user", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (a *AuthClient) issue(ctx context.Context, user *userRow) (*repository.AuthSession, error) {
	token, expiresAt, err := utils.GenerateToken(a.cfg.Secret, a.cfg.Lifetime, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	session := &repository.AuthSession{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: repository.AuthUser{
			ID:    user.ID,
			Email: user.Email,
			Metadata: repository.UserMetadata{
				Name:    user.Name,
				Phone:   user.Phone,
				Address: user.Address,
			},
		},
	}
	if err := a.storage.Save(ctx, a.key, session); err != nil {
		return nil, err
	}
	a.hub.Emit(repository.AuthEventSignedIn, session)
	return session, nil
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*repository.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || utils.ComparePassword(user.PasswordHash, password) != nil {
		return nil, repository.ErrInvalidCredentials
	}
	return a.issue(ctx, user)
}

func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata repository.UserMetadata) (*repository.AuthUser, *repository.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := utils.CheckPasswordStrength(password); err != nil {
		return nil, nil, repository.InvalidInput("%s", err.Error())
	}
	existing, err := a.findUser(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, repository.InvalidInput("User already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	row := userRow{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Name:         metadata.Name,
		Phone:        metadata.Phone,
		Address:      metadata.Address,
	}

	createCtx, cancel := repository.WithTimeout(ctx, a.cfg.Timeout)
	err = a.db.WithContext(createCtx).Clauses(clause.Returning{}).Create(&row).Error
	cancel()
	metrics.RecordRemoteCall("auth.signup", err)
	if err != nil {
		return nil, nil, repository.RemoteError("auth.signup", err)
	}

	session, err := a.issue(ctx, &row)
	if err != nil {
		return nil, nil, err
	}
	return &session.User, session, nil
}

func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.storage.Delete(ctx, a.key); err != nil {
		return err
	}
	a.hub.Emit(repository.AuthEventSignedOut, nil)
	return nil
}

// GetSession returns the stored session while its token verifies. Local tokens
// are not refreshable, so an expired one is dropped.
func (a *AuthClient) GetSession(ctx context.Context) (*repository.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, err := a.storage.Load(ctx, a.key)
	if err != nil || session == nil {
		return nil, err
	}
	if _, err := utils.VerifyToken(a.cfg.Secret, session.AccessToken); err != nil {
		logrus.WithField("client", a.key).Debugf("dropping stored session: %v", err)
		if err := a.storage.Delete(ctx, a.key); err != nil {
			return nil, err
		}
		a.hub.Emit(repository.AuthEventSignedOut, nil)
		return nil, nil
	}
	return session, nil
}

func (a *AuthClient) OnAuthStateChange(listener repository.AuthListener) repository.Subscription {
	return a.hub.Subscribe(listener)
}
