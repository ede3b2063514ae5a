package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/minibeans/internal/model"
)

// Client-side checks are advisory; the server enforces the real bounds.

func validateWithdraw(amountText, accountID string, balance int64) (int64, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, model.NewValidationError("account_id", "enter your account id")
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(amountText), 10, 64)
	if err != nil || amount <= 0 {
		return 0, model.NewValidationError("amount", "enter a positive whole number of beans")
	}
	if amount > balance {
		return 0, model.NewValidationError("amount", fmt.Sprintf("amount exceeds your balance of %d", balance))
	}
	return amount, nil
}

func validateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return model.NewValidationError("question", "write your question")
	}
	return nil
}

func validateBalanceUpdate(target, amountText string) (model.PlayerID, int64, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", 0, model.NewValidationError("target_player_id", "choose a player")
	}

	amount, err := parseSignedAmount(amountText)
	if err != nil {
		return "", 0, err
	}
	return model.PlayerID(target), amount, nil
}

// parseSignedAmount accepts "+100", "100" and "-50"; zero is rejected
func parseSignedAmount(text string) (int64, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || amount == 0 {
		return 0, model.NewValidationError("amount", "enter a non-zero whole number, e.g. +100 or -50")
	}
	return amount, nil
}
