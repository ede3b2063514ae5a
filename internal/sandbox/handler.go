package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
)

// requestBody is the union of every POST action's fields
type requestBody struct {
	Action         ledger.Action  `json:"action"`
	Amount         int64          `json:"amount"`
	AccountID      string         `json:"account_id"`
	Question       string         `json:"question"`
	Password       string         `json:"password"`
	TargetPlayerID model.PlayerID `json:"target_player_id"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Beans   *int64 `json:"beans,omitempty"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// errMissingPlayer and errUnsupported are request shape errors
var (
	errMissingPlayer = errors.New("missing " + ledger.HeaderPlayerID + " header")
	errUnsupported   = errors.New("unsupported request")
)

// Handler serves the ledger contract
type Handler struct {
	ledger *Ledger
	auth   *Auth
	logger *slog.Logger
}

// NewHandler creates the contract handler
func NewHandler(l *Ledger, a *Auth, logger *slog.Logger) *Handler {
	return &Handler{ledger: l, auth: a, logger: logger}
}

// Get handles the read shapes selected by ?endpoint=
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("endpoint") {
	case "leaderboard":
		writeJSON(w, http.StatusOK, h.ledger.Leaderboard())
	case "player":
		id := playerID(r)
		if id == "" {
			writeError(w, errMissingPlayer)
			return
		}
		writeJSON(w, http.StatusOK, h.ledger.Player(id))
	default:
		writeError(w, errUnsupported)
	}
}

// Post handles the action shapes selected by the body's action field
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", errUnsupported))
		return
	}

	token := r.Header.Get(ledger.HeaderAdminToken)

	switch body.Action {
	case ledger.ActionAdminLogin:
		h.adminLogin(w, body.Password)
	case ledger.ActionVerifyAdmin:
		h.verifyAdmin(w, token)
	case ledger.ActionWithdraw, ledger.ActionJoinChannel, ledger.ActionSendQuestion:
		id := playerID(r)
		if id == "" {
			writeError(w, errMissingPlayer)
			return
		}
		h.playerAction(w, id, body)
	case ledger.ActionAdminWithdrawals, ledger.ActionAdminMessages, ledger.ActionAdminAllPlayers, ledger.ActionAdminUpdateBalance:
		if !h.auth.Valid(token) {
			writeError(w, ErrAccessDenied)
			return
		}
		h.adminAction(w, body)
	default:
		writeError(w, fmt.Errorf("%w: action %q", errUnsupported, body.Action))
	}
}

func (h *Handler) playerAction(w http.ResponseWriter, id model.PlayerID, body requestBody) {
	switch body.Action {
	case ledger.ActionWithdraw:
		beans, err := h.ledger.Withdraw(id, body.Amount, body.AccountID)
		if err != nil {
			writeError(w, err)
			return
		}
		h.logger.Info("withdrawal recorded",
			slog.String("player_id", string(id)),
			slog.Int64("amount", body.Amount),
		)
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Beans: &beans})
	case ledger.ActionJoinChannel:
		beans, err := h.ledger.JoinChannel(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Beans: &beans})
	case ledger.ActionSendQuestion:
		h.ledger.SendQuestion(id, body.Question)
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "question sent to the admins"})
	}
}

func (h *Handler) adminLogin(w http.ResponseWriter, password string) {
	token, err := h.auth.Login(password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Token: token})
}

func (h *Handler) verifyAdmin(w http.ResponseWriter, token string) {
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, ledger.VerifyResult{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, ledger.VerifyResult{Valid: h.auth.Valid(token)})
}

func (h *Handler) adminAction(w http.ResponseWriter, body requestBody) {
	switch body.Action {
	case ledger.ActionAdminWithdrawals:
		writeJSON(w, http.StatusOK, h.ledger.Withdrawals())
	case ledger.ActionAdminMessages:
		writeJSON(w, http.StatusOK, h.ledger.Messages())
	case ledger.ActionAdminAllPlayers:
		writeJSON(w, http.StatusOK, h.ledger.Players())
	case ledger.ActionAdminUpdateBalance:
		beans, err := h.ledger.UpdateBalance(body.TargetPlayerID, body.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		h.logger.Info("balance updated",
			slog.String("player_id", string(body.TargetPlayerID)),
			slog.Int64("amount", body.Amount),
		)
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Beans: &beans})
	}
}

func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(strings.TrimSpace(r.Header.Get(ledger.HeaderPlayerID)))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps an error to the contract's failure shape. Business
// failures carry success:false so both the status and body agree.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInsufficientBeans),
		errors.Is(err, ErrRewardClaimed),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, errMissingPlayer),
		errors.Is(err, errUnsupported):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrAccessDenied):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrPlayerNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, status, actionResponse{Success: false, Error: err.Error()})
}

func panicHandler(w http.ResponseWriter, _ *http.Request, err any) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprint(err)})
}
