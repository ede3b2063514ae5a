package controller

import (
	"maps"
	"slices"

	"github.com/mcoot/minibeans/internal/model"
)

// Tab is a top-level section of the app
type Tab string

const (
	TabProfile  Tab = "profile"
	TabWithdraw Tab = "withdraw"
	TabEarn     Tab = "earn"
	TabHelp     Tab = "help"
	TabAdmin    Tab = "admin"
)

// Tabs lists every tab in display order
var Tabs = []Tab{TabProfile, TabWithdraw, TabEarn, TabHelp, TabAdmin}

// AdminView selects which admin listing is shown
type AdminView string

const (
	AdminViewWithdrawals AdminView = "withdrawals"
	AdminViewMessages    AdminView = "messages"
	AdminViewPlayers     AdminView = "players"
)

// Forms holds the raw text of every input field
type Forms struct {
	WithdrawAmount string `json:"withdraw_amount"`
	AccountID      string `json:"account_id"`
	Question       string `json:"question"`
	AdminPassword  string `json:"-"`
	BalanceTarget  string `json:"balance_target"`
	BalanceAmount  string `json:"balance_amount"`
	// InlineAmounts are the per-row balance editors of the players listing
	InlineAmounts map[model.PlayerID]string `json:"inline_amounts,omitempty"`
}

// ViewState is everything the presentation layer renders. Snapshots are
// exactly what the server last returned.
type ViewState struct {
	PlayerID    model.PlayerID           `json:"player_id"`
	Tab         Tab                      `json:"tab"`
	Forms       Forms                    `json:"forms"`
	Player      *model.Player            `json:"player,omitempty"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`

	IsAdmin     bool                   `json:"is_admin"`
	LoginOpen   bool                   `json:"login_open"`
	AdminView   AdminView              `json:"admin_view"`
	Withdrawals []model.Withdrawal     `json:"withdrawals,omitempty"`
	Messages    []model.SupportMessage `json:"messages,omitempty"`
	AllPlayers  []model.Player         `json:"all_players,omitempty"`
}

// Balance returns the last fetched balance, zero before the first fetch
func (s *ViewState) Balance() int64 {
	if s.Player == nil {
		return 0
	}
	return s.Player.Beans
}

// ChannelJoined reports the server's record of the channel reward
func (s *ViewState) ChannelJoined() bool {
	return s.Player != nil && s.Player.ChannelJoined
}

func (s *ViewState) clone() ViewState {
	out := *s
	if s.Player != nil {
		p := *s.Player
		out.Player = &p
	}
	out.Leaderboard = slices.Clone(s.Leaderboard)
	out.Withdrawals = slices.Clone(s.Withdrawals)
	out.Messages = slices.Clone(s.Messages)
	out.AllPlayers = slices.Clone(s.AllPlayers)
	out.Forms.InlineAmounts = maps.Clone(s.Forms.InlineAmounts)
	return out
}

func (s *ViewState) clearAdmin() {
	s.IsAdmin = false
	s.Withdrawals = nil
	s.Messages = nil
	s.AllPlayers = nil
	s.Forms.BalanceTarget = ""
	s.Forms.BalanceAmount = ""
	s.Forms.InlineAmounts = nil
}
