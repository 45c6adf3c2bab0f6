// Package session holds the signed-in identity of each browser client and keeps it
// in step with the auth backend.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// Accounts is the identity side of the data-access layer used by a provider.
type Accounts interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, details models.SignupDetails) (*models.User, error)
	Logout(ctx context.Context) error
	SessionUser(ctx context.Context) (*models.User, error)
	AccessToken(ctx context.Context) string
	OnAuthStateChange(listener repository.AuthListener) repository.Subscription
}

// Provider holds one client's identity and loading flag.
//
// Every write carries a stamp taken when the write was intended (the start of a
// login, the lookup following an auth event). A write lands only if its stamp is newer
// than the last one applied, so a slow login cannot overwrite a later sign-out.
// After Close nothing lands.
type Provider struct {
	accounts Accounts
	log      *logrus.Entry

	mu       sync.RWMutex
	user     *models.User
	loading  bool
	issued   uint64
	applied  uint64
	closed   bool
	started  bool
	sub      repository.Subscription
	ready    chan struct{}
	watchers map[int]func(*models.User)
	nextID   int
}

func NewProvider(accounts Accounts, log *logrus.Entry) *Provider {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Provider{
		accounts: accounts,
		log:      log,
		loading:  true,
		ready:    make(chan struct{}),
		watchers: make(map[int]func(*models.User)),
	}
}

// stamp reserves the next write version.
func (p *Provider) stamp() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

// apply stores user if stamp is the newest write so far and notifies watchers.
func (p *Provider) apply(stamp uint64, user *models.User) bool {
	p.mu.Lock()
	if p.closed || stamp <= p.applied {
		p.mu.Unlock()
		return false
	}
	p.applied = stamp
	p.user = user
	watchers := make([]func(*models.User), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(user)
	}
	return true
}

func (p *Provider) finishLoading() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading {
		p.loading = false
		close(p.ready)
	}
}

// Start subscribes to auth changes and resolves the stored session in the
// background. ctx bounds that first lookup.
func (p *Provider) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	initial := p.stamp()
	sub := p.accounts.OnAuthStateChange(p.onAuthChange)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	p.sub = sub
	p.mu.Unlock()

	go func() {
		defer p.finishLoading()
		user, err := p.accounts.SessionUser(ctx)
		if err != nil {
			p.log.WithError(err).Warn("⚠️ Could not resolve stored session")
			return
		}
		p.apply(initial, user)
	}()
}

// onAuthChange re-reads the stored session instead of trusting the event
// payload. Deliveries may arrive out of order; the last lookup to be stamped
// sees the latest stored state.
func (p *Provider) onAuthChange(event repository.AuthEvent, _ *repository.AuthSession) {
	stamp := p.stamp()
	user, err := p.accounts.SessionUser(context.Background())
	if err != nil {
		p.log.WithError(err).WithField("event", event).Warn("⚠️ Could not resolve session after auth event")
		p.finishLoading()
		return
	}
	if p.apply(stamp, user) {
		p.log.WithField("event", event).Debug("identity resynchronized")
	}
	p.finishLoading()
}

// Login signs in and sets the identity without waiting for the auth event.
// It returns nil, nil when the backend opened no session.
func (p *Provider) Login(ctx context.Context, email, password string) (*models.User, error) {
	stamp := p.stamp()
	user, err := p.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user != nil {
		p.apply(stamp, user)
	}
	return user, nil
}

// Signup registers a customer. The identity follows the session the backend
// opened, if any.
func (p *Provider) Signup(ctx context.Context, details models.SignupDetails) (*models.User, error) {
	stamp := p.stamp()
	user, err := p.accounts.Signup(ctx, details)
	if err != nil || user == nil {
		return user, err
	}
	current, err := p.accounts.SessionUser(ctx)
	if err != nil {
		p.log.WithError(err).Warn("⚠️ Could not resolve session after signup")
		return user, nil
	}
	if current != nil {
		p.apply(stamp, current)
	}
	return user, nil
}

// Logout ends the remote session. On failure the identity is kept.
func (p *Provider) Logout(ctx context.Context) error {
	stamp := p.stamp()
	if err := p.accounts.Logout(ctx); err != nil {
		return err
	}
	p.apply(stamp, nil)
	return nil
}

// Current returns the held identity and whether the first lookup is still running.
func (p *Provider) Current() (*models.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user, p.loading
}

func (p *Provider) User() *models.User {
	user, _ := p.Current()
	return user
}

func (p *Provider) Loading() bool {
	_, loading := p.Current()
	return loading
}

// Wait blocks until the first lookup finished or ctx is done.
func (p *Provider) Wait(ctx context.Context) (*models.User, error) {
	select {
	case <-p.ready:
		return p.User(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AccessToken returns the token to attach to data-access calls.
func (p *Provider) AccessToken(ctx context.Context) string {
	return p.accounts.AccessToken(ctx)
}

// Watch calls fn with every identity change until the returned func is called.
func (p *Provider) Watch(fn func(*models.User)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers, id)
	}
}

// Close unsubscribes from auth changes. Results arriving afterwards are dropped.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	sub := p.sub
	p.sub = nil
	p.watchers = make(map[int]func(*models.User))
	if p.loading {
		p.loading = false
		close(p.ready)
	}
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (p *Provider) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
