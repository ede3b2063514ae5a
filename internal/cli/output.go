package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/minibeans/internal/controller"
	"github.com/mcoot/minibeans/internal/model"
)

// Output handles formatting output based on the configured format. It also
// renders controller notifications on stderr.
type Output struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, stdout, stderr io.Writer) *Output {
	return &Output{format: format, stdout: stdout, stderr: stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(o.stdout, data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		o.printJSON(o.stderr, map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
	} else {
		fmt.Fprintf(o.stderr, "Error: %s\n", err)
	}
}

// Notify renders a controller notification
func (o *Output) Notify(n controller.Notification) {
	if o.format == "json" {
		data, _ := json.Marshal(n)
		fmt.Fprintln(o.stderr, string(data))
		return
	}
	mark := "✔"
	if n.Kind == controller.KindError {
		mark = "✖"
	}
	fmt.Fprintf(o.stderr, "%s %s: %s\n", mark, n.Title, n.Message)
}

func (o *Output) printJSON(w io.Writer, data any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// profileView is the profile tab: the player card plus the leaderboard
type profileView struct {
	Player      *model.Player            `json:"player"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	self        model.PlayerID
}

// leaderboardView marks the local player's row
type leaderboardView struct {
	Entries []model.LeaderboardEntry `json:"leaderboard"`
	self    model.PlayerID
}

// earnView lists the ways to earn beans
type earnView struct {
	ChannelJoined bool  `json:"channel_joined"`
	ChannelReward int64 `json:"channel_reward"`
}

// identityView is the local profile's identity and admin state
type identityView struct {
	PlayerID         model.PlayerID `json:"player_id"`
	Profile          string         `json:"profile"`
	AdminTokenStored bool           `json:"admin_token_stored"`
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case profileView:
		o.printPlayer(v.Player)
		fmt.Fprintln(o.stdout)
		o.printLeaderboard(v.Leaderboard, v.self)
	case *model.Player:
		o.printPlayer(v)
	case leaderboardView:
		o.printLeaderboard(v.Entries, v.self)
	case earnView:
		o.printEarn(v)
	case identityView:
		o.printIdentity(v)
	case []model.Withdrawal:
		o.printWithdrawals(v)
	case []model.SupportMessage:
		o.printMessages(v)
	case []model.Player:
		o.printPlayers(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(o.stdout, data)
	}
}

func (o *Output) printPlayer(p *model.Player) {
	if p == nil {
		return
	}
	channel := "not joined"
	if p.ChannelJoined {
		channel = "joined"
	}
	fmt.Fprintf(o.stdout, "Player:    %s (%s)\n", p.Name, p.PlayerID)
	fmt.Fprintf(o.stdout, "Beans:     %d\n", p.Beans)
	fmt.Fprintf(o.stdout, "Earned:    %d\n", p.TotalEarned)
	fmt.Fprintf(o.stdout, "Withdrawn: %d\n", p.TotalWithdrawn)
	fmt.Fprintf(o.stdout, "Channel:   %s\n", channel)
}

func (o *Output) printLeaderboard(entries []model.LeaderboardEntry, self model.PlayerID) {
	fmt.Fprintln(o.stdout, "Leaderboard:")
	if len(entries) == 0 {
		fmt.Fprintln(o.stdout, "  (empty)")
		return
	}
	for _, e := range entries {
		you := ""
		if e.PlayerID == self {
			you = "  <- you"
		}
		fmt.Fprintf(o.stdout, "  #%-3d %-24s %8d%s\n", e.Rank, e.Name, e.Beans, you)
	}
}

func (o *Output) printEarn(e earnView) {
	status := "available"
	if e.ChannelJoined {
		status = "claimed"
	}
	fmt.Fprintln(o.stdout, "Ways to earn beans:")
	fmt.Fprintf(o.stdout, "  Join the channel   +%d  [%s]\n", e.ChannelReward, status)
}

func (o *Output) printIdentity(v identityView) {
	fmt.Fprintf(o.stdout, "Player ID: %s\n", v.PlayerID)
	fmt.Fprintf(o.stdout, "Profile:   %s\n", v.Profile)
	if v.AdminTokenStored {
		fmt.Fprintln(o.stdout, "Admin:     token stored")
	}
}

func (o *Output) printWithdrawals(ws []model.Withdrawal) {
	fmt.Fprintf(o.stdout, "Withdrawals (%d):\n", len(ws))
	for _, w := range ws {
		fmt.Fprintf(o.stdout, "  %s  %-20s %8d -> %-12s %-8s %s\n",
			shortID(w.ID), w.PlayerName, w.Amount, w.AccountID, w.Status, w.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (o *Output) printMessages(msgs []model.SupportMessage) {
	fmt.Fprintf(o.stdout, "Messages (%d):\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintf(o.stdout, "  %s  %-20s [%s] %s\n",
			shortID(m.ID), m.PlayerName, m.Status, m.CreatedAt.Format("2006-01-02 15:04"))
		for _, line := range strings.Split(m.Message, "\n") {
			fmt.Fprintf(o.stdout, "      %s\n", line)
		}
	}
}

func (o *Output) printPlayers(ps []model.Player) {
	fmt.Fprintf(o.stdout, "Players (%d):\n", len(ps))
	for _, p := range ps {
		fmt.Fprintf(o.stdout, "  %-32s %-20s %8d\n", p.PlayerID, p.Name, p.Beans)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
