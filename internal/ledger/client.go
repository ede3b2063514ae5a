package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mcoot/minibeans/internal/model"
)

// Client talks to the single ledger endpoint. Every call is exactly one HTTP
// request: there is no retry and no deduplication.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for per-call debug output
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new ledger client for the given endpoint URL
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send performs one request and decodes its typed response
func Send[R any](ctx context.Context, c *Client, req Request[R]) (R, error) {
	var zero R
	s := req.shape()

	httpReq, err := c.newRequest(ctx, s)
	if err != nil {
		return zero, &TransportError{Action: s.action, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return zero, &TransportError{Action: s.action, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &TransportError{Action: s.action, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("ledger call",
		slog.String("action", string(s.action)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 500 {
		return zero, &TransportError{Action: s.action, Status: resp.StatusCode, Err: errors.New(string(bytes.TrimSpace(data)))}
	}

	// Client errors normally carry a reason for the user
	if resp.StatusCode >= 400 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return zero, &BusinessError{Action: s.action, Status: resp.StatusCode, Message: eb.Error}
		}
	}

	result, err := req.decode(data)
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			be.Action = s.action
			be.Status = resp.StatusCode
			return result, be
		}
		return zero, &TransportError{Action: s.action, Status: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	return result, nil
}

func (c *Client) newRequest(ctx context.Context, s shape) (*http.Request, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	var bodyReader io.Reader
	if s.method == http.MethodGet {
		q := u.Query()
		q.Set("endpoint", s.endpoint)
		u.RawQuery = q.Encode()
	} else if s.body != nil {
		data, err := json.Marshal(s.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, s.method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if s.playerID != "" {
		req.Header.Set(HeaderPlayerID, string(s.playerID))
	}
	if s.adminToken != "" {
		req.Header.Set(HeaderAdminToken, s.adminToken)
	}

	return req, nil
}

// Player fetches the player snapshot
func (c *Client) Player(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	p, err := Send[model.Player](ctx, c, GetPlayer{PlayerID: id})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Leaderboard fetches the ranked leaderboard
func (c *Client) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return Send[[]model.LeaderboardEntry](ctx, c, GetLeaderboard{})
}

// Withdraw submits a withdrawal request
func (c *Client) Withdraw(ctx context.Context, id model.PlayerID, amount int64, accountID string) (ActionResult, error) {
	return Send[ActionResult](ctx, c, Withdraw{PlayerID: id, Amount: amount, AccountID: accountID})
}

// SendQuestion posts a support question
func (c *Client) SendQuestion(ctx context.Context, id model.PlayerID, question string) error {
	_, err := Send[ActionResult](ctx, c, SendQuestion{PlayerID: id, Question: question})
	return err
}

// JoinChannel claims the channel subscription reward
func (c *Client) JoinChannel(ctx context.Context, id model.PlayerID) (ActionResult, error) {
	return Send[ActionResult](ctx, c, JoinChannel{PlayerID: id})
}

// AdminLogin exchanges the password for an admin token
func (c *Client) AdminLogin(ctx context.Context, password string) (string, error) {
	res, err := Send[LoginResult](ctx, c, AdminLogin{Password: password})
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// VerifyAdmin reports whether the token is currently valid
func (c *Client) VerifyAdmin(ctx context.Context, token string) (bool, error) {
	res, err := Send[VerifyResult](ctx, c, VerifyAdmin{Token: token})
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// AdminWithdrawals lists withdrawal requests
func (c *Client) AdminWithdrawals(ctx context.Context, token string) ([]model.Withdrawal, error) {
	return Send[[]model.Withdrawal](ctx, c, AdminGetWithdrawals{Token: token})
}

// AdminMessages lists support messages
func (c *Client) AdminMessages(ctx context.Context, token string) ([]model.SupportMessage, error) {
	return Send[[]model.SupportMessage](ctx, c, AdminGetMessages{Token: token})
}

// AdminPlayers lists all players
func (c *Client) AdminPlayers(ctx context.Context, token string) ([]model.Player, error) {
	return Send[[]model.Player](ctx, c, AdminGetAllPlayers{Token: token})
}

// AdminUpdateBalance adjusts a player's balance by amount
func (c *Client) AdminUpdateBalance(ctx context.Context, token string, target model.PlayerID, amount int64) (ActionResult, error) {
	return Send[ActionResult](ctx, c, AdminUpdateBalance{Token: token, TargetPlayerID: target, Amount: amount})
}
