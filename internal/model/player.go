package model

// PlayerID identifies a player. It is generated on the client and opaque to
// everything else.
type PlayerID string

// Player is the server's record for one player as last fetched.
// Beans is maintained by the server as TotalEarned - TotalWithdrawn and is
// never derived locally.
type Player struct {
	PlayerID       PlayerID `json:"player_id"`
	Name           string   `json:"name"`
	Beans          int64    `json:"beans"`
	TotalEarned    int64    `json:"total_earned"`
	TotalWithdrawn int64    `json:"total_withdrawn"`
	ChannelJoined  bool     `json:"channel_joined"`
}

// LeaderboardEntry is one row of the ranked leaderboard projection
type LeaderboardEntry struct {
	PlayerID PlayerID `json:"player_id"`
	Name     string   `json:"name"`
	Beans    int64    `json:"beans"`
	Rank     int      `json:"rank"`
}

// AdminSession holds the credential issued on admin login
type AdminSession struct {
	Token string `json:"token"`
}
