// Package sandbox is an in-memory stand-in for the remote bean ledger API.
// It serves the same HTTP contract as the real endpoint so the client can be
// exercised end to end in tests and local development.
package sandbox

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/minibeans/internal/dependencies/clock"
	"github.com/mcoot/minibeans/internal/model"
)

// Errors reported to callers as business failures
var (
	ErrInsufficientBeans = errors.New("insufficient beans")
	ErrRewardClaimed     = errors.New("reward already claimed")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Ledger holds every player, withdrawal and support message in memory
type Ledger struct {
	clock         clock.Clock
	channelReward int64
	topN          int

	mu          sync.Mutex
	players     map[model.PlayerID]*model.Player
	withdrawals []model.Withdrawal
	messages    []model.SupportMessage
}

// NewLedger creates an empty ledger
func NewLedger(clk clock.Clock, cfg Config) *Ledger {
	return &Ledger{
		clock:         clk,
		channelReward: cfg.ChannelReward,
		topN:          cfg.LeaderboardSize,
		players:       make(map[model.PlayerID]*model.Player),
	}
}

func displayName(id model.PlayerID) string {
	short := string(id)
	if len(short) > 6 {
		short = short[:6]
	}
	return "Player #" + short
}

// getOrCreate must be called with mu held
func (l *Ledger) getOrCreate(id model.PlayerID) *model.Player {
	p, ok := l.players[id]
	if !ok {
		p = &model.Player{PlayerID: id, Name: displayName(id)}
		l.players[id] = p
	}
	return p
}

// Player returns the player record, creating it with a zero balance on first
// sight
func (l *Ledger) Player(id model.PlayerID) model.Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.getOrCreate(id)
}

// Seed sets a player's balance, creating the player if needed
func (l *Ledger) Seed(id model.PlayerID, name string, beans int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.getOrCreate(id)
	if name != "" {
		p.Name = name
	}
	p.Beans = beans
	p.TotalEarned = beans + p.TotalWithdrawn
}

func (l *Ledger) sortedPlayers() []model.Player {
	out := make([]model.Player, 0, len(l.players))
	for _, p := range l.players {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b model.Player) int {
		if c := cmp.Compare(b.Beans, a.Beans); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out
}

// Leaderboard returns the top players by balance with 1-based ranks
func (l *Ledger) Leaderboard() []model.LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	players := l.sortedPlayers()
	if len(players) > l.topN {
		players = players[:l.topN]
	}
	out := make([]model.LeaderboardEntry, len(players))
	for i, p := range players {
		out[i] = model.LeaderboardEntry{PlayerID: p.PlayerID, Name: p.Name, Beans: p.Beans, Rank: i + 1}
	}
	return out
}

// Withdraw debits the player and records a pending withdrawal. It returns
// the balance afterwards.
func (l *Ledger) Withdraw(id model.PlayerID, amount int64, accountID string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[id]
	if !ok || p.Beans < amount {
		return 0, ErrInsufficientBeans
	}
	p.Beans -= amount
	p.TotalWithdrawn += amount

	l.withdrawals = append(l.withdrawals, model.Withdrawal{
		ID:         uuid.New().String(),
		PlayerID:   id,
		PlayerName: p.Name,
		Amount:     amount,
		AccountID:  accountID,
		Status:     model.WithdrawalPending,
		CreatedAt:  l.clock.Now(),
	})
	return p.Beans, nil
}

// JoinChannel credits the channel subscription reward once per player
func (l *Ledger) JoinChannel(id model.PlayerID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.getOrCreate(id)
	if p.ChannelJoined {
		return 0, ErrRewardClaimed
	}
	p.ChannelJoined = true
	p.Beans += l.channelReward
	p.TotalEarned += l.channelReward
	return p.Beans, nil
}

// SendQuestion records a new support message
func (l *Ledger) SendQuestion(id model.PlayerID, question string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.getOrCreate(id)
	l.messages = append(l.messages, model.SupportMessage{
		ID:         uuid.New().String(),
		PlayerID:   id,
		PlayerName: p.Name,
		Message:    question,
		Status:     model.MessageNew,
		CreatedAt:  l.clock.Now(),
	})
}

// UpdateBalance credits (amount > 0) or debits (amount < 0) an existing
// player. Credits count as earned and debits as withdrawn, so beans stays
// total_earned - total_withdrawn. A debit may not take beans below zero.
func (l *Ledger) UpdateBalance(id model.PlayerID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[id]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	if amount < 0 {
		if p.Beans < -amount {
			return 0, ErrInsufficientBeans
		}
		p.TotalWithdrawn -= amount
	} else {
		p.TotalEarned += amount
	}
	p.Beans = p.TotalEarned - p.TotalWithdrawn
	return p.Beans, nil
}

// Withdrawals lists withdrawal requests, newest first
func (l *Ledger) Withdrawals() []model.Withdrawal {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := slices.Clone(l.withdrawals)
	slices.Reverse(out)
	return out
}

// Messages lists support messages, newest first
func (l *Ledger) Messages() []model.SupportMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := slices.Clone(l.messages)
	slices.Reverse(out)
	return out
}

// Players lists every player by balance
func (l *Ledger) Players() []model.Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sortedPlayers()
}
