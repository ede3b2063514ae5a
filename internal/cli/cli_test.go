package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/minibeans/internal/dependencies/mocks"
	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/sandbox"
	"github.com/mcoot/minibeans/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

type CLISuite struct {
	suite.Suite
	sandbox  *sandbox.Sandbox
	server   *httptest.Server
	stateDir string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	for _, key := range []string{"BEANS_ENDPOINT", "BEANS_STORE", "BEANS_STATE_DIR", "BEANS_REDIS_URL", "BEANS_PROFILE", "BEANS_CONFIG", "BEANS_ADMIN_PASSWORD"} {
		s.T().Setenv(key, "")
	}

	cfg := sandbox.DefaultConfig()
	cfg.AdminPassword = "hunter2"
	sb, err := sandbox.New(mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), cfg, testutil.NopLogger())
	s.Require().NoError(err)
	s.sandbox = sb
	s.server = httptest.NewServer(sb.Handler)
	s.stateDir = s.T().TempDir()
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) result {
	var stdout, stderr bytes.Buffer
	full := append([]string{"--endpoint", s.server.URL, "--state-dir", s.stateDir}, args...)
	code := Run(context.Background(), full, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (s *CLISuite) whoami() model.PlayerID {
	res := s.run("-o", "json", "whoami")
	s.Require().Equal(0, res.code, res.stderr)
	var v struct {
		PlayerID model.PlayerID `json:"player_id"`
	}
	s.Require().NoError(json.Unmarshal([]byte(res.stdout), &v))
	return v.PlayerID
}

func (s *CLISuite) TestWhoamiIsStableAcrossRuns() {
	first := s.whoami()
	second := s.whoami()

	s.Regexp(`^player_\d+_[0-9a-z]{9}$`, string(first))
	s.Equal(first, second)

	_, err := os.Stat(filepath.Join(s.stateDir, "default", "player_id"))
	s.NoError(err)
}

func (s *CLISuite) TestProfilesAreIsolated() {
	first := s.whoami()

	res := s.run("--profile", "second", "-o", "json", "whoami")
	s.Require().Equal(0, res.code)

	s.NotContains(res.stdout, string(first))
}

func (s *CLISuite) TestProfileText() {
	id := s.whoami()
	s.sandbox.Ledger.Seed(id, "Me", 120)

	res := s.run("profile")

	s.Equal(0, res.code, res.stderr)
	s.Contains(res.stdout, "Beans:     120")
	s.Contains(res.stdout, "<- you")
}

func (s *CLISuite) TestLeaderboardJSON() {
	s.sandbox.Ledger.Seed("p_top", "Top", 900)

	res := s.run("-o", "json", "leaderboard")

	s.Require().Equal(0, res.code, res.stderr)
	var v struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	s.Require().NoError(json.Unmarshal([]byte(res.stdout), &v))
	s.Require().NotEmpty(v.Leaderboard)
	s.Equal(model.PlayerID("p_top"), v.Leaderboard[0].PlayerID)
	s.Equal(1, v.Leaderboard[0].Rank)
}

func (s *CLISuite) TestWithdraw() {
	id := s.whoami()
	s.sandbox.Ledger.Seed(id, "", 150)

	res := s.run("withdraw", "--amount", "100", "--account", "ABC123")

	s.Equal(0, res.code, res.stderr)
	s.Contains(res.stderr, "✔")
	s.Contains(res.stderr, "100 beans sent to account ABC123")
	s.Contains(res.stdout, "Beans:     50")
	s.Equal(int64(50), s.sandbox.Ledger.Player(id).Beans)
}

func (s *CLISuite) TestWithdrawOverBalanceIsRejectedLocally() {
	id := s.whoami()
	s.sandbox.Ledger.Seed(id, "", 10)

	res := s.run("withdraw", "--amount", "100", "--account", "ABC123")

	s.Equal(1, res.code)
	s.Contains(res.stderr, "✖")
	s.Contains(res.stderr, "amount exceeds your balance of 10")
	s.NotContains(res.stderr, "Error:")
	s.Empty(s.sandbox.Ledger.Withdrawals())
}

func (s *CLISuite) TestAsk() {
	res := s.run("ask", "where", "are", "my", "beans?")

	s.Equal(0, res.code, res.stderr)
	msgs := s.sandbox.Ledger.Messages()
	s.Require().Len(msgs, 1)
	s.Equal("where are my beans?", msgs[0].Message)
}

func (s *CLISuite) TestEarnJoinOnce() {
	res := s.run("earn", "--join")
	s.Equal(0, res.code, res.stderr)
	s.Contains(res.stdout, "[claimed]")

	res = s.run("earn", "--join")
	s.Equal(1, res.code)
	s.Contains(res.stderr, "reward already claimed")
}

func (s *CLISuite) TestAdminFlow() {
	s.sandbox.Ledger.Seed("p_other", "Other", 80)

	res := s.run("admin", "login", "--password", "nope")
	s.Equal(1, res.code)
	s.Contains(res.stderr, "invalid password")

	res = s.run("admin", "login", "--password", "hunter2")
	s.Require().Equal(0, res.code, res.stderr)

	res = s.run("admin", "players")
	s.Require().Equal(0, res.code, res.stderr)
	s.Contains(res.stdout, "p_other")

	res = s.run("admin", "balance", "--player", "p_other", "--amount=-50")
	s.Require().Equal(0, res.code, res.stderr)
	s.Contains(res.stderr, "debited 50 beans")
	s.Equal(int64(30), s.sandbox.Ledger.Player("p_other").Beans)

	res = s.run("admin", "logout")
	s.Require().Equal(0, res.code, res.stderr)

	res = s.run("admin", "withdrawals")
	s.Equal(1, res.code)
	s.Contains(res.stderr, "beans admin login")
}

func (s *CLISuite) TestAdminPasswordFromEnv() {
	s.T().Setenv("BEANS_ADMIN_PASSWORD", "hunter2")

	res := s.run("admin", "login")

	s.Equal(0, res.code, res.stderr)
}

func (s *CLISuite) TestAdminMessages() {
	s.Require().Equal(0, s.run("ask", "hello admins").code)
	s.Require().Equal(0, s.run("admin", "login", "--password", "hunter2").code)

	res := s.run("admin", "messages")

	s.Equal(0, res.code, res.stderr)
	s.Contains(res.stdout, "hello admins")
	s.Contains(res.stdout, "[new]")
}

func (s *CLISuite) TestUnreachableEndpoint() {
	s.server.Close()

	res := s.run("profile")

	s.Equal(1, res.code)
	s.Contains(res.stderr, "Could not reach the server")
}

func (s *CLISuite) TestConfigFileWithEnvExpansion() {
	s.T().Setenv("SANDBOX_URL", s.server.URL)
	path := filepath.Join(s.T().TempDir(), "beans.yaml")
	content := "endpoint: ${SANDBOX_URL}\nstore: memory\noutput: json\n"
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--config", path, "leaderboard"}, &stdout, &stderr)

	s.Equal(0, code, stderr.String())
	s.True(strings.HasPrefix(strings.TrimSpace(stdout.String()), "{"))
}

func (s *CLISuite) TestFlagsOverrideEnv() {
	s.T().Setenv("BEANS_STORE", "sqlite")

	res := s.run("--store", "memory", "whoami")

	s.Equal(0, res.code, res.stderr)
}

func (s *CLISuite) TestInvalidConfigIsReported() {
	res := s.run("--output", "yaml", "whoami")

	s.Equal(1, res.code)
	s.Contains(res.stderr, "output must be text or json")
}
