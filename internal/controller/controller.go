// Package controller owns the view state and runs the mutation/refresh
// protocol against the remote ledger.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/session"
)

// Ledger is the remote API as the controller uses it
type Ledger interface {
	Player(ctx context.Context, id model.PlayerID) (*model.Player, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	Withdraw(ctx context.Context, id model.PlayerID, amount int64, accountID string) (ledger.ActionResult, error)
	SendQuestion(ctx context.Context, id model.PlayerID, question string) error
	JoinChannel(ctx context.Context, id model.PlayerID) (ledger.ActionResult, error)
	AdminWithdrawals(ctx context.Context, token string) ([]model.Withdrawal, error)
	AdminMessages(ctx context.Context, token string) ([]model.SupportMessage, error)
	AdminPlayers(ctx context.Context, token string) ([]model.Player, error)
	AdminUpdateBalance(ctx context.Context, token string, target model.PlayerID, amount int64) (ledger.ActionResult, error)
}

// Identity resolves the local player id
type Identity interface {
	Resolve(ctx context.Context) model.PlayerID
}

// Session is the admin session store
type Session interface {
	Restore(ctx context.Context) (session.State, error)
	Login(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
	Token() string
	IsAdmin() bool
}

// Action names used for in-flight guarding
const (
	actionWithdraw      = "withdraw"
	actionSendQuestion  = "send_question"
	actionJoinChannel   = "join_channel"
	actionAdminLogin    = "admin_login"
	actionUpdateBalance = "admin_update_balance"
)

// Controller holds the view state. Its lock is never held across a network
// call, so a tab switch can load data while a mutation is outstanding; the
// response that lands last wins.
type Controller struct {
	ledger   Ledger
	identity Identity
	session  Session
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    ViewState
	inFlight map[string]bool
}

// New creates a controller on the profile tab
func New(l Ledger, id Identity, sess Session, notifier Notifier, logger *slog.Logger) *Controller {
	return &Controller{
		ledger:   l,
		identity: id,
		session:  sess,
		notifier: notifier,
		logger:   logger,
		state: ViewState{
			Tab:       TabProfile,
			AdminView: AdminViewWithdrawals,
		},
		inFlight: make(map[string]bool),
	}
}

// State returns a copy of the current view state
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) update(fn func(s *ViewState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

func (c *Controller) read(fn func(s *ViewState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

// begin marks an action in flight; a second call before done returns
// model.ErrActionInFlight so one logical action is submitted at most once
func (c *Controller) begin(action string) (done func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[action] {
		return nil, model.ErrActionInFlight
	}
	c.inFlight[action] = true
	return func() {
		c.mu.Lock()
		delete(c.inFlight, action)
		c.mu.Unlock()
	}, nil
}

// InFlight lists the actions currently awaiting a response
func (c *Controller) InFlight() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.inFlight))
	for a := range c.inFlight {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (c *Controller) fail(action string, err error) {
	c.logger.Info("action failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
	c.notifier.Notify(failureFor(err))
}

func (c *Controller) succeed(title, message string) {
	c.notifier.Notify(Notification{Kind: KindSuccess, Title: title, Message: message})
}

// Load runs the startup sequence: identity, admin session, then the player
// snapshot and leaderboard, then the admin listing when authenticated
func (c *Controller) Load(ctx context.Context) error {
	id := c.identity.Resolve(ctx)
	c.update(func(s *ViewState) { s.PlayerID = id })

	state, err := c.session.Restore(ctx)
	if err != nil {
		c.logger.Warn("admin session not restored", slog.String("error", err.Error()))
	}
	c.update(func(s *ViewState) { s.IsAdmin = state == session.Authenticated })

	errs := []error{
		c.RefreshPlayer(ctx),
		c.RefreshLeaderboard(ctx),
	}
	if state == session.Authenticated {
		errs = append(errs, c.LoadAdminData(ctx))
	}
	return errors.Join(errs...)
}

// RefreshPlayer re-fetches the player snapshot. On failure the previous
// snapshot stays in place.
func (c *Controller) RefreshPlayer(ctx context.Context) error {
	var id model.PlayerID
	c.read(func(s *ViewState) { id = s.PlayerID })

	p, err := c.ledger.Player(ctx, id)
	if err != nil {
		c.fail("refresh_player", err)
		return err
	}
	c.update(func(s *ViewState) { s.Player = p })
	return nil
}

// RefreshLeaderboard re-fetches the leaderboard
func (c *Controller) RefreshLeaderboard(ctx context.Context) error {
	entries, err := c.ledger.Leaderboard(ctx)
	if err != nil {
		c.fail("refresh_leaderboard", err)
		return err
	}
	c.update(func(s *ViewState) { s.Leaderboard = entries })
	return nil
}

// SetTab switches the active tab. Entering the admin tab while authenticated
// loads the admin listing in view.
func (c *Controller) SetTab(ctx context.Context, tab Tab) error {
	if !slices.Contains(Tabs, tab) {
		return model.NewValidationError("tab", "unknown tab "+string(tab))
	}

	var isAdmin bool
	c.update(func(s *ViewState) {
		s.Tab = tab
		isAdmin = s.IsAdmin
	})

	if tab == TabAdmin && isAdmin {
		return c.LoadAdminData(ctx)
	}
	return nil
}

// Form setters

func (c *Controller) SetWithdrawAmount(v string) {
	c.update(func(s *ViewState) { s.Forms.WithdrawAmount = v })
}

func (c *Controller) SetAccountID(v string) {
	c.update(func(s *ViewState) { s.Forms.AccountID = v })
}

func (c *Controller) SetQuestion(v string) {
	c.update(func(s *ViewState) { s.Forms.Question = v })
}

func (c *Controller) SetAdminPassword(v string) {
	c.update(func(s *ViewState) { s.Forms.AdminPassword = v })
}

func (c *Controller) SetBalanceTarget(v string) {
	c.update(func(s *ViewState) { s.Forms.BalanceTarget = v })
}

func (c *Controller) SetBalanceAmount(v string) {
	c.update(func(s *ViewState) { s.Forms.BalanceAmount = v })
}

// SetInlineAmount edits the balance field on one row of the players listing
func (c *Controller) SetInlineAmount(id model.PlayerID, v string) {
	c.update(func(s *ViewState) {
		if s.Forms.InlineAmounts == nil {
			s.Forms.InlineAmounts = make(map[model.PlayerID]string)
		}
		s.Forms.InlineAmounts[id] = v
	})
}

// OpenLogin shows the admin login dialog
func (c *Controller) OpenLogin() {
	c.update(func(s *ViewState) { s.LoginOpen = true })
}

// CloseLogin hides the admin login dialog and drops the typed password
func (c *Controller) CloseLogin() {
	c.update(func(s *ViewState) {
		s.LoginOpen = false
		s.Forms.AdminPassword = ""
	})
}
