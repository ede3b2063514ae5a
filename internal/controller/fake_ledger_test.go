package controller

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
)

// fakeLedger is an in-process stand-in for the remote API that records
// every call by action name
type fakeLedger struct {
	mu       sync.Mutex
	players  map[model.PlayerID]*model.Player
	calls    []string
	password string
	tokens   map[string]bool

	withdrawals []model.Withdrawal
	messages    []model.SupportMessage

	// failWith makes the named action return the error
	failWith map[string]error
	// gate blocks Withdraw until closed
	gate chan struct{}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		players:  make(map[model.PlayerID]*model.Player),
		password: "hunter2",
		tokens:   make(map[string]bool),
		failWith: make(map[string]error),
	}
}

func (f *fakeLedger) record(action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action)
	return f.failWith[action]
}

func (f *fakeLedger) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == action {
			n++
		}
	}
	return n
}

func (f *fakeLedger) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeLedger) seed(id model.PlayerID, beans int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[id] = &model.Player{PlayerID: id, Name: "Player #" + string(id), Beans: beans, TotalEarned: beans}
}

func (f *fakeLedger) getOrCreate(id model.PlayerID) *model.Player {
	p, ok := f.players[id]
	if !ok {
		p = &model.Player{PlayerID: id, Name: "Player #" + string(id)}
		f.players[id] = p
	}
	return p
}

func (f *fakeLedger) Player(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if err := f.record("player"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *f.getOrCreate(id)
	return &p, nil
}

func (f *fakeLedger) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if err := f.record("leaderboard"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LeaderboardEntry
	for _, p := range f.players {
		out = append(out, model.LeaderboardEntry{PlayerID: p.PlayerID, Name: p.Name, Beans: p.Beans})
	}
	slices.SortFunc(out, func(a, b model.LeaderboardEntry) int {
		if a.Beans != b.Beans {
			return int(b.Beans - a.Beans)
		}
		return 0
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (f *fakeLedger) Withdraw(ctx context.Context, id model.PlayerID, amount int64, accountID string) (ledger.ActionResult, error) {
	if f.gate != nil {
		<-f.gate
	}
	if err := f.record("withdraw"); err != nil {
		return ledger.ActionResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.getOrCreate(id)
	if p.Beans < amount {
		return ledger.ActionResult{}, &ledger.BusinessError{Action: ledger.ActionWithdraw, Status: http.StatusBadRequest, Message: "insufficient beans"}
	}
	p.Beans -= amount
	p.TotalWithdrawn += amount
	f.withdrawals = append(f.withdrawals, model.Withdrawal{
		ID: "w", PlayerID: id, Amount: amount, AccountID: accountID, Status: model.WithdrawalPending,
	})
	return ledger.ActionResult{Success: true}, nil
}

func (f *fakeLedger) SendQuestion(ctx context.Context, id model.PlayerID, question string) error {
	if err := f.record("send_question"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, model.SupportMessage{ID: "m", PlayerID: id, Message: question, Status: model.MessageNew})
	return nil
}

func (f *fakeLedger) JoinChannel(ctx context.Context, id model.PlayerID) (ledger.ActionResult, error) {
	if err := f.record("join_channel"); err != nil {
		return ledger.ActionResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.getOrCreate(id)
	if p.ChannelJoined {
		return ledger.ActionResult{}, &ledger.BusinessError{Action: ledger.ActionJoinChannel, Status: http.StatusBadRequest, Message: "reward already claimed"}
	}
	p.ChannelJoined = true
	p.Beans += 50
	p.TotalEarned += 50
	return ledger.ActionResult{Success: true}, nil
}

func (f *fakeLedger) AdminLogin(ctx context.Context, password string) (string, error) {
	if err := f.record("admin_login"); err != nil {
		return "", err
	}
	if password != f.password {
		return "", &ledger.BusinessError{Action: ledger.ActionAdminLogin, Status: http.StatusUnauthorized, Message: "invalid password"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens["tok-1"] = true
	return "tok-1", nil
}

func (f *fakeLedger) VerifyAdmin(ctx context.Context, token string) (bool, error) {
	if err := f.record("verify_admin"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[token], nil
}

func (f *fakeLedger) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

func (f *fakeLedger) denied(action ledger.Action, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tokens[token] {
		return &ledger.BusinessError{Action: action, Status: http.StatusUnauthorized, Message: "access denied"}
	}
	return nil
}

func (f *fakeLedger) AdminWithdrawals(ctx context.Context, token string) ([]model.Withdrawal, error) {
	if err := f.record("admin_get_withdrawals"); err != nil {
		return nil, err
	}
	if err := f.denied(ledger.ActionAdminWithdrawals, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.withdrawals), nil
}

func (f *fakeLedger) AdminMessages(ctx context.Context, token string) ([]model.SupportMessage, error) {
	if err := f.record("admin_get_messages"); err != nil {
		return nil, err
	}
	if err := f.denied(ledger.ActionAdminMessages, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.messages), nil
}

func (f *fakeLedger) AdminPlayers(ctx context.Context, token string) ([]model.Player, error) {
	if err := f.record("admin_get_all_players"); err != nil {
		return nil, err
	}
	if err := f.denied(ledger.ActionAdminAllPlayers, token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Player
	for _, p := range f.players {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeLedger) AdminUpdateBalance(ctx context.Context, token string, target model.PlayerID, amount int64) (ledger.ActionResult, error) {
	if err := f.record("admin_update_balance"); err != nil {
		return ledger.ActionResult{}, err
	}
	if err := f.denied(ledger.ActionAdminUpdateBalance, token); err != nil {
		return ledger.ActionResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[target]
	if !ok {
		return ledger.ActionResult{}, &ledger.BusinessError{Action: ledger.ActionAdminUpdateBalance, Status: http.StatusNotFound, Message: "player not found"}
	}
	p.Beans += amount
	return ledger.ActionResult{Success: true}, nil
}
