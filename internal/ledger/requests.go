package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/minibeans/internal/model"
)

// Action is the discriminator carried in a POST body
type Action string

const (
	ActionGetPlayer          Action = "get_player"
	ActionGetLeaderboard     Action = "get_leaderboard"
	ActionWithdraw           Action = "withdraw"
	ActionSendQuestion       Action = "send_question"
	ActionJoinChannel        Action = "join_channel"
	ActionAdminLogin         Action = "admin_login"
	ActionVerifyAdmin        Action = "verify_admin"
	ActionAdminWithdrawals   Action = "admin_get_withdrawals"
	ActionAdminMessages      Action = "admin_get_messages"
	ActionAdminAllPlayers    Action = "admin_get_all_players"
	ActionAdminUpdateBalance Action = "admin_update_balance"
)

// Header names carrying caller identity
const (
	HeaderPlayerID   = "X-Player-Id"
	HeaderAdminToken = "X-Admin-Token"
)

// Query values for the GET shapes
const (
	endpointPlayer      = "player"
	endpointLeaderboard = "leaderboard"
)

// ActionResult is the success/error pair returned by mutating actions
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Beans is the balance after the action when the server reports it.
	// Callers re-fetch the player instead of relying on it.
	Beans *int64 `json:"beans,omitempty"`
}

// LoginResult is the response to admin_login
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyResult is the response to verify_admin
type VerifyResult struct {
	Valid bool `json:"valid"`
}

// shape describes the HTTP form of one request
type shape struct {
	method     string
	action     Action
	endpoint   string // ?endpoint= for GET shapes
	body       any
	playerID   model.PlayerID
	adminToken string
}

// Request is the closed set of calls the ledger accepts. Each variant fixes
// its HTTP shape and decodes its own response type R. The unexported methods
// keep the set closed to this package.
type Request[R any] interface {
	shape() shape
	decode(data []byte) (R, error)
}

type actionBody struct {
	Action Action `json:"action"`
}

// GetPlayer fetches the player snapshot. Unknown ids are created server-side.
type GetPlayer struct {
	PlayerID model.PlayerID
}

func (r GetPlayer) shape() shape {
	return shape{method: http.MethodGet, action: ActionGetPlayer, endpoint: endpointPlayer, playerID: r.PlayerID}
}

func (r GetPlayer) decode(data []byte) (model.Player, error) {
	return decodeJSON[model.Player](data)
}

// GetLeaderboard fetches the full ranked snapshot
type GetLeaderboard struct{}

func (r GetLeaderboard) shape() shape {
	return shape{method: http.MethodGet, action: ActionGetLeaderboard, endpoint: endpointLeaderboard}
}

func (r GetLeaderboard) decode(data []byte) ([]model.LeaderboardEntry, error) {
	return decodeJSON[[]model.LeaderboardEntry](data)
}

// Withdraw requests a transfer of beans to an external game account
type Withdraw struct {
	PlayerID  model.PlayerID
	Amount    int64
	AccountID string
}

type withdrawBody struct {
	Action    Action `json:"action"`
	Amount    int64  `json:"amount"`
	AccountID string `json:"account_id"`
}

func (r Withdraw) shape() shape {
	return shape{
		method:   http.MethodPost,
		action:   ActionWithdraw,
		body:     withdrawBody{Action: ActionWithdraw, Amount: r.Amount, AccountID: r.AccountID},
		playerID: r.PlayerID,
	}
}

func (r Withdraw) decode(data []byte) (ActionResult, error) {
	return decodeAction(data)
}

// SendQuestion posts a support message. The response body is not examined.
type SendQuestion struct {
	PlayerID model.PlayerID
	Question string
}

type questionBody struct {
	Action   Action `json:"action"`
	Question string `json:"question"`
}

func (r SendQuestion) shape() shape {
	return shape{
		method:   http.MethodPost,
		action:   ActionSendQuestion,
		body:     questionBody{Action: ActionSendQuestion, Question: r.Question},
		playerID: r.PlayerID,
	}
}

func (r SendQuestion) decode(data []byte) (ActionResult, error) {
	var result ActionResult
	_ = json.Unmarshal(data, &result)
	return result, nil
}

// JoinChannel claims the one-time channel subscription reward
type JoinChannel struct {
	PlayerID model.PlayerID
}

func (r JoinChannel) shape() shape {
	return shape{
		method:   http.MethodPost,
		action:   ActionJoinChannel,
		body:     actionBody{Action: ActionJoinChannel},
		playerID: r.PlayerID,
	}
}

func (r JoinChannel) decode(data []byte) (ActionResult, error) {
	return decodeAction(data)
}

// AdminLogin exchanges the admin password for a token
type AdminLogin struct {
	Password string
}

type loginBody struct {
	Action   Action `json:"action"`
	Password string `json:"password"`
}

func (r AdminLogin) shape() shape {
	return shape{
		method: http.MethodPost,
		action: ActionAdminLogin,
		body:   loginBody{Action: ActionAdminLogin, Password: r.Password},
	}
}

func (r AdminLogin) decode(data []byte) (LoginResult, error) {
	result, err := decodeJSON[LoginResult](data)
	if err != nil {
		return result, err
	}
	if !result.Success || result.Token == "" {
		return result, &BusinessError{Message: messageOr(result.Error, "login rejected")}
	}
	return result, nil
}

// VerifyAdmin asks whether a token is still valid. An invalid token is a
// normal result, not an error.
type VerifyAdmin struct {
	Token string
}

func (r VerifyAdmin) shape() shape {
	return shape{
		method:     http.MethodPost,
		action:     ActionVerifyAdmin,
		body:       actionBody{Action: ActionVerifyAdmin},
		adminToken: r.Token,
	}
}

func (r VerifyAdmin) decode(data []byte) (VerifyResult, error) {
	return decodeJSON[VerifyResult](data)
}

// AdminGetWithdrawals lists withdrawal requests
type AdminGetWithdrawals struct {
	Token string
}

func (r AdminGetWithdrawals) shape() shape {
	return adminShape(ActionAdminWithdrawals, r.Token)
}

func (r AdminGetWithdrawals) decode(data []byte) ([]model.Withdrawal, error) {
	return decodeJSON[[]model.Withdrawal](data)
}

// AdminGetMessages lists support messages
type AdminGetMessages struct {
	Token string
}

func (r AdminGetMessages) shape() shape {
	return adminShape(ActionAdminMessages, r.Token)
}

func (r AdminGetMessages) decode(data []byte) ([]model.SupportMessage, error) {
	return decodeJSON[[]model.SupportMessage](data)
}

// AdminGetAllPlayers lists every player record
type AdminGetAllPlayers struct {
	Token string
}

func (r AdminGetAllPlayers) shape() shape {
	return adminShape(ActionAdminAllPlayers, r.Token)
}

func (r AdminGetAllPlayers) decode(data []byte) ([]model.Player, error) {
	return decodeJSON[[]model.Player](data)
}

// AdminUpdateBalance credits (positive) or debits (negative) a player
type AdminUpdateBalance struct {
	Token          string
	TargetPlayerID model.PlayerID
	Amount         int64
}

type updateBalanceBody struct {
	Action         Action         `json:"action"`
	TargetPlayerID model.PlayerID `json:"target_player_id"`
	Amount         int64          `json:"amount"`
}

func (r AdminUpdateBalance) shape() shape {
	return shape{
		method: http.MethodPost,
		action: ActionAdminUpdateBalance,
		body: updateBalanceBody{
			Action:         ActionAdminUpdateBalance,
			TargetPlayerID: r.TargetPlayerID,
			Amount:         r.Amount,
		},
		adminToken: r.Token,
	}
}

func (r AdminUpdateBalance) decode(data []byte) (ActionResult, error) {
	return decodeAction(data)
}

func adminShape(action Action, token string) shape {
	return shape{
		method:     http.MethodPost,
		action:     action,
		body:       actionBody{Action: action},
		adminToken: token,
	}
}

func decodeJSON[R any](data []byte) (R, error) {
	var result R
	err := json.Unmarshal(data, &result)
	return result, err
}

func decodeAction(data []byte) (ActionResult, error) {
	result, err := decodeJSON[ActionResult](data)
	if err != nil {
		return result, err
	}
	if !result.Success {
		return result, &BusinessError{Message: messageOr(result.Error, "request rejected")}
	}
	return result, nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
