package model

import "time"

// WithdrawalStatus is owned by the server. Values other than the ones
// declared here are passed through untouched.
type WithdrawalStatus string

const (
	WithdrawalPending WithdrawalStatus = "pending"
)

// Withdrawal is a player's request to move beans to an external game account
type Withdrawal struct {
	ID         string           `json:"id"`
	PlayerID   PlayerID         `json:"player_id"`
	PlayerName string           `json:"player_name"`
	Amount     int64            `json:"amount"`
	AccountID  string           `json:"account_id"`
	Status     WithdrawalStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// MessageStatus tracks whether an admin has seen a support message
type MessageStatus string

const (
	MessageNew  MessageStatus = "new"
	MessageRead MessageStatus = "read"
)

// SupportMessage is a question sent by a player to the admins
type SupportMessage struct {
	ID         string        `json:"id"`
	PlayerID   PlayerID      `json:"player_id"`
	PlayerName string        `json:"player_name"`
	Message    string        `json:"message"`
	Status     MessageStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
