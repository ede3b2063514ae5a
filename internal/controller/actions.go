package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/minibeans/internal/model"
)

// refresh selects the snapshots to re-fetch after a successful mutation
type refresh int

const (
	refreshPlayer refresh = 1 << iota
	refreshLeaderboard
	refreshAdminView
)

// refreshAfter re-fetches the affected snapshots. A failed re-fetch is
// reported but does not undo the mutation.
func (c *Controller) refreshAfter(ctx context.Context, what refresh) {
	if what&refreshPlayer != 0 {
		_ = c.RefreshPlayer(ctx)
	}
	if what&refreshLeaderboard != 0 {
		_ = c.RefreshLeaderboard(ctx)
	}
	if what&refreshAdminView != 0 {
		_ = c.LoadAdminData(ctx)
	}
}

// Withdraw submits the withdraw form. The displayed balance only changes when
// the player snapshot is re-fetched.
func (c *Controller) Withdraw(ctx context.Context) error {
	done, err := c.begin(actionWithdraw)
	if err != nil {
		return err
	}
	defer done()

	var (
		id         model.PlayerID
		amountText string
		accountID  string
		balance    int64
	)
	c.read(func(s *ViewState) {
		id = s.PlayerID
		amountText = s.Forms.WithdrawAmount
		accountID = s.Forms.AccountID
		balance = s.Balance()
	})

	amount, err := validateWithdraw(amountText, accountID, balance)
	if err != nil {
		c.fail(actionWithdraw, err)
		return err
	}

	if _, err := c.ledger.Withdraw(ctx, id, amount, accountID); err != nil {
		c.fail(actionWithdraw, err)
		return err
	}

	c.logger.Info("withdrawal submitted",
		slog.String("player_id", string(id)),
		slog.Int64("amount", amount),
	)
	c.update(func(s *ViewState) {
		s.Forms.WithdrawAmount = ""
		s.Forms.AccountID = ""
	})
	c.succeed("Success", fmt.Sprintf("%d beans sent to account %s", amount, accountID))
	c.refreshAfter(ctx, refreshPlayer|refreshLeaderboard)
	return nil
}

// SendQuestion posts the help form to the admins. Only network success is
// checked; nothing is re-fetched.
func (c *Controller) SendQuestion(ctx context.Context) error {
	done, err := c.begin(actionSendQuestion)
	if err != nil {
		return err
	}
	defer done()

	var (
		id       model.PlayerID
		question string
	)
	c.read(func(s *ViewState) {
		id = s.PlayerID
		question = s.Forms.Question
	})

	if err := validateQuestion(question); err != nil {
		c.fail(actionSendQuestion, err)
		return err
	}

	if err := c.ledger.SendQuestion(ctx, id, question); err != nil {
		c.fail(actionSendQuestion, err)
		return err
	}

	c.update(func(s *ViewState) { s.Forms.Question = "" })
	c.succeed("Sent", "Your question was sent to the admins")
	return nil
}

// JoinChannel claims the one-time channel reward. Whether it was already
// claimed is read from the player snapshot, not tracked locally.
func (c *Controller) JoinChannel(ctx context.Context) error {
	done, err := c.begin(actionJoinChannel)
	if err != nil {
		return err
	}
	defer done()

	var (
		id     model.PlayerID
		joined bool
	)
	c.read(func(s *ViewState) {
		id = s.PlayerID
		joined = s.ChannelJoined()
	})

	if joined {
		err := model.NewValidationError("channel", "reward already claimed")
		c.fail(actionJoinChannel, err)
		return err
	}

	if _, err := c.ledger.JoinChannel(ctx, id); err != nil {
		c.fail(actionJoinChannel, err)
		return err
	}

	c.succeed("Reward received", "Channel subscription reward credited")
	c.refreshAfter(ctx, refreshPlayer|refreshLeaderboard)
	return nil
}
