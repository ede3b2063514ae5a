package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
)

// AdminLogin submits the login dialog. On failure the dialog stays open and
// nothing is stored.
func (c *Controller) AdminLogin(ctx context.Context) error {
	done, err := c.begin(actionAdminLogin)
	if err != nil {
		return err
	}
	defer done()

	var password string
	c.read(func(s *ViewState) { password = s.Forms.AdminPassword })

	if _, err := c.session.Login(ctx, password); err != nil {
		c.fail(actionAdminLogin, err)
		return err
	}

	c.update(func(s *ViewState) {
		s.IsAdmin = true
		s.LoginOpen = false
		s.Forms.AdminPassword = ""
	})
	c.succeed("Welcome", "Signed in as admin")

	// The login stands even when the first listing cannot be fetched;
	// LoadAdminData has already notified the failure.
	if err := c.LoadAdminData(ctx); err != nil {
		c.logger.Warn("could not load admin listing after login", slog.String("error", err.Error()))
	}
	return nil
}

// AdminLogout ends the admin session and drops every admin snapshot
func (c *Controller) AdminLogout(ctx context.Context) error {
	err := c.session.Clear(ctx)
	c.update(func(s *ViewState) {
		s.clearAdmin()
		if s.Tab == TabAdmin {
			s.Tab = TabProfile
		}
	})
	if err != nil {
		c.logger.Warn("could not clear stored admin token", slog.String("error", err.Error()))
	}
	return err
}

// SetAdminView switches the admin listing and loads it
func (c *Controller) SetAdminView(ctx context.Context, view AdminView) error {
	switch view {
	case AdminViewWithdrawals, AdminViewMessages, AdminViewPlayers:
	default:
		return model.NewValidationError("admin_view", "unknown admin view "+string(view))
	}
	c.update(func(s *ViewState) { s.AdminView = view })
	return c.LoadAdminData(ctx)
}

// LoadAdminData fetches the admin listing currently in view
func (c *Controller) LoadAdminData(ctx context.Context) error {
	if !c.session.IsAdmin() {
		return model.ErrNotAuthenticated
	}
	token := c.session.Token()

	var view AdminView
	c.read(func(s *ViewState) { view = s.AdminView })

	var err error
	switch view {
	case AdminViewMessages:
		var msgs []model.SupportMessage
		if msgs, err = c.ledger.AdminMessages(ctx, token); err == nil {
			c.update(func(s *ViewState) { s.Messages = msgs })
		}
	case AdminViewPlayers:
		var players []model.Player
		if players, err = c.ledger.AdminPlayers(ctx, token); err == nil {
			c.update(func(s *ViewState) { s.AllPlayers = players })
		}
	default:
		var ws []model.Withdrawal
		if ws, err = c.ledger.AdminWithdrawals(ctx, token); err == nil {
			c.update(func(s *ViewState) { s.Withdrawals = ws })
		}
	}

	if err != nil {
		c.fail("load_admin_"+string(view), err)
		c.checkSession(ctx, err)
		return err
	}
	return nil
}

// AdminUpdateBalance submits the balance form
func (c *Controller) AdminUpdateBalance(ctx context.Context) error {
	var target, amountText string
	c.read(func(s *ViewState) {
		target = s.Forms.BalanceTarget
		amountText = s.Forms.BalanceAmount
	})

	return c.updateBalance(ctx, actionUpdateBalance, target, amountText, func(s *ViewState) {
		s.Forms.BalanceTarget = ""
		s.Forms.BalanceAmount = ""
	})
}

// AdminUpdateInline submits the balance editor on one row of the players
// listing
func (c *Controller) AdminUpdateInline(ctx context.Context, id model.PlayerID) error {
	var amountText string
	c.read(func(s *ViewState) { amountText = s.Forms.InlineAmounts[id] })

	return c.updateBalance(ctx, actionUpdateBalance+":"+string(id), string(id), amountText, func(s *ViewState) {
		delete(s.Forms.InlineAmounts, id)
	})
}

func (c *Controller) updateBalance(ctx context.Context, action, targetText, amountText string, clearForm func(s *ViewState)) error {
	done, err := c.begin(action)
	if err != nil {
		return err
	}
	defer done()

	if !c.session.IsAdmin() {
		c.fail(action, model.ErrNotAuthenticated)
		return model.ErrNotAuthenticated
	}

	target, amount, err := validateBalanceUpdate(targetText, amountText)
	if err != nil {
		c.fail(action, err)
		return err
	}

	if _, err := c.ledger.AdminUpdateBalance(ctx, c.session.Token(), target, amount); err != nil {
		c.fail(action, err)
		c.checkSession(ctx, err)
		return err
	}

	var self model.PlayerID
	c.update(func(s *ViewState) {
		clearForm(s)
		self = s.PlayerID
	})

	verb := "credited"
	if amount < 0 {
		verb = "debited"
	}
	c.logger.Info("balance updated",
		slog.String("target", string(target)),
		slog.Int64("amount", amount),
	)
	c.succeed("Balance updated", fmt.Sprintf("Player %s %s %d beans", target, verb, abs(amount)))

	what := refreshLeaderboard | refreshAdminView
	if target == self {
		what |= refreshPlayer
	}
	c.refreshAfter(ctx, what)
	return nil
}

// checkSession re-verifies the token after the server refused an admin call,
// collapsing the admin view when the token is no longer valid
func (c *Controller) checkSession(ctx context.Context, err error) {
	if !ledger.IsUnauthorized(err) {
		return
	}

	valid, verr := c.session.Verify(ctx)
	if verr != nil || valid {
		return
	}

	c.logger.Info("admin token no longer valid, leaving admin view")
	c.update(func(s *ViewState) {
		s.clearAdmin()
		if s.Tab == TabAdmin {
			s.Tab = TabProfile
		}
	})
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
