package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/minibeans/internal/dependencies/mocks"
	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/testutil"
)

type SandboxSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	sb     *Sandbox
	server *httptest.Server
	client *ledger.Client
	ctx    context.Context
}

func TestSandboxSuite(t *testing.T) {
	suite.Run(t, new(SandboxSuite))
}

func (s *SandboxSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.AdminPassword = "hunter2"

	sb, err := New(s.clock, cfg, testutil.NopLogger())
	s.Require().NoError(err)
	s.sb = sb
	s.server = httptest.NewServer(sb.Handler)
	s.client = ledger.NewClient(s.server.URL)
	s.ctx = context.Background()
}

func (s *SandboxSuite) TearDownTest() {
	s.server.Close()
}

func (s *SandboxSuite) login() string {
	token, err := s.client.AdminLogin(s.ctx, "hunter2")
	s.Require().NoError(err)
	return token
}

func (s *SandboxSuite) TestUnknownPlayerIsCreated() {
	p, err := s.client.Player(s.ctx, "player_123456789")

	s.Require().NoError(err)
	s.Equal(model.PlayerID("player_123456789"), p.PlayerID)
	s.Equal("Player #player", p.Name)
	s.Equal(int64(0), p.Beans)
}

func (s *SandboxSuite) TestLeaderboardIsTopTenDescending() {
	for i := 1; i <= 12; i++ {
		s.sb.Ledger.Seed(model.PlayerID(fmt.Sprintf("p%02d", i)), "", int64(i*10))
	}

	entries, err := s.client.Leaderboard(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(entries, 10)
	s.Equal(model.PlayerID("p12"), entries[0].PlayerID)
	s.Equal(1, entries[0].Rank)
	s.Equal(10, entries[9].Rank)
	for i := 1; i < len(entries); i++ {
		s.GreaterOrEqual(entries[i-1].Beans, entries[i].Beans)
	}
}

func (s *SandboxSuite) TestWithdraw() {
	s.sb.Ledger.Seed("p1", "", 150)

	res, err := s.client.Withdraw(s.ctx, "p1", 100, "ABC123")

	s.Require().NoError(err)
	s.Require().NotNil(res.Beans)
	s.Equal(int64(50), *res.Beans)

	p, err := s.client.Player(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(50), p.Beans)
	s.Equal(int64(100), p.TotalWithdrawn)
	s.Equal(p.TotalEarned-p.TotalWithdrawn, p.Beans)

	ws := s.sb.Ledger.Withdrawals()
	s.Require().Len(ws, 1)
	s.Equal("ABC123", ws[0].AccountID)
	s.Equal(model.WithdrawalPending, ws[0].Status)
	s.Equal(s.clock.Now(), ws[0].CreatedAt)
}

func (s *SandboxSuite) TestWithdrawMoreThanBalance() {
	s.sb.Ledger.Seed("p1", "", 10)

	_, err := s.client.Withdraw(s.ctx, "p1", 100, "ABC123")

	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal(http.StatusBadRequest, be.Status)
	s.Equal("insufficient beans", be.Message)
	s.Equal(int64(10), s.sb.Ledger.Player("p1").Beans)
}

func (s *SandboxSuite) TestWithdrawRejectsNonPositive() {
	s.sb.Ledger.Seed("p1", "", 10)

	_, err := s.client.Withdraw(s.ctx, "p1", 0, "ABC123")

	s.True(ledger.IsBusiness(err))
}

func (s *SandboxSuite) TestJoinChannelOnce() {
	res, err := s.client.JoinChannel(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(50), *res.Beans)

	_, err = s.client.JoinChannel(s.ctx, "p1")
	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal("reward already claimed", be.Message)

	p := s.sb.Ledger.Player("p1")
	s.True(p.ChannelJoined)
	s.Equal(int64(50), p.Beans)
}

func (s *SandboxSuite) TestSendQuestionIsRecorded() {
	s.Require().NoError(s.client.SendQuestion(s.ctx, "p1", "when do withdrawals arrive?"))

	msgs := s.sb.Ledger.Messages()
	s.Require().Len(msgs, 1)
	s.Equal(model.MessageNew, msgs[0].Status)
	s.Equal("when do withdrawals arrive?", msgs[0].Message)
}

func (s *SandboxSuite) TestAdminLoginWrongPassword() {
	_, err := s.client.AdminLogin(s.ctx, "nope")

	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal(http.StatusUnauthorized, be.Status)
	s.Equal("invalid password", be.Message)
}

func (s *SandboxSuite) TestTokenExpiresAfterTTL() {
	token := s.login()

	valid, err := s.client.VerifyAdmin(s.ctx, token)
	s.Require().NoError(err)
	s.True(valid)

	s.clock.Advance(24*time.Hour + time.Second)

	valid, err = s.client.VerifyAdmin(s.ctx, token)
	s.Require().NoError(err)
	s.False(valid)
}

func (s *SandboxSuite) TestForgedTokenIsInvalid() {
	valid, err := s.client.VerifyAdmin(s.ctx, "not-a-jwt")
	s.Require().NoError(err)
	s.False(valid)
}

func (s *SandboxSuite) TestAdminCallsNeedToken() {
	_, err := s.client.AdminWithdrawals(s.ctx, "forged")

	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal(http.StatusUnauthorized, be.Status)
	s.Equal("access denied", be.Message)
}

func (s *SandboxSuite) TestAdminListings() {
	s.sb.Ledger.Seed("p1", "Alice", 300)
	s.sb.Ledger.Seed("p2", "Bob", 100)
	_, _ = s.client.Withdraw(s.ctx, "p1", 20, "ACC")
	_ = s.client.SendQuestion(s.ctx, "p2", "hi")
	token := s.login()

	ws, err := s.client.AdminWithdrawals(s.ctx, token)
	s.Require().NoError(err)
	s.Require().Len(ws, 1)
	s.Equal("Alice", ws[0].PlayerName)

	msgs, err := s.client.AdminMessages(s.ctx, token)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("Bob", msgs[0].PlayerName)

	players, err := s.client.AdminPlayers(s.ctx, token)
	s.Require().NoError(err)
	s.Len(players, 2)
	s.Equal(model.PlayerID("p1"), players[0].PlayerID)
}

func (s *SandboxSuite) TestAdminUpdateBalance() {
	s.sb.Ledger.Seed("p1", "", 80)
	token := s.login()

	res, err := s.client.AdminUpdateBalance(s.ctx, token, "p1", -50)
	s.Require().NoError(err)
	s.Equal(int64(30), *res.Beans)

	_, err = s.client.AdminUpdateBalance(s.ctx, token, "ghost", 5)
	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal(http.StatusNotFound, be.Status)
	s.Equal("player not found", be.Message)
}

func (s *SandboxSuite) TestAdminDebitBooksAgainstTotals() {
	s.sb.Ledger.Seed("p1", "", 80)
	token := s.login()

	_, err := s.client.AdminUpdateBalance(s.ctx, token, "p1", 20)
	s.Require().NoError(err)
	_, err = s.client.AdminUpdateBalance(s.ctx, token, "p1", -30)
	s.Require().NoError(err)

	p := s.sb.Ledger.Player("p1")
	s.Equal(int64(70), p.Beans)
	s.Equal(int64(100), p.TotalEarned)
	s.Equal(int64(30), p.TotalWithdrawn)
	s.Equal(p.TotalEarned-p.TotalWithdrawn, p.Beans)
}

func (s *SandboxSuite) TestAdminDebitBelowZeroRejected() {
	s.sb.Ledger.Seed("p1", "", 10)
	token := s.login()

	_, err := s.client.AdminUpdateBalance(s.ctx, token, "p1", -11)
	var be *ledger.BusinessError
	s.Require().ErrorAs(err, &be)
	s.Equal(http.StatusBadRequest, be.Status)
	s.Equal("insufficient beans", be.Message)
	s.Equal(int64(10), s.sb.Ledger.Player("p1").Beans)
}

func (s *SandboxSuite) TestMissingPlayerHeader() {
	resp, err := http.Post(s.server.URL, "application/json", strings.NewReader(`{"action":"withdraw","amount":1}`))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *SandboxSuite) TestVerifyWithoutTokenIs401() {
	resp, err := http.Post(s.server.URL, "application/json", strings.NewReader(`{"action":"verify_admin"}`))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *SandboxSuite) TestPreflight() {
	req, err := http.NewRequest(http.MethodOptions, s.server.URL+"/", nil)
	s.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Access-Control-Allow-Headers"), ledger.HeaderAdminToken)
	s.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}
