package sandbox

import "time"

// Config holds the sandbox's business constants and admin credentials
type Config struct {
	AdminPassword   string
	TokenSecret     string
	TokenTTL        time.Duration
	ChannelReward   int64
	LeaderboardSize int
}

// DefaultConfig mirrors the production endpoint's observable constants
func DefaultConfig() Config {
	return Config{
		AdminPassword:   "admin",
		TokenSecret:     "sandbox-secret",
		TokenTTL:        24 * time.Hour,
		ChannelReward:   50,
		LeaderboardSize: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AdminPassword == "" {
		c.AdminPassword = d.AdminPassword
	}
	if c.TokenSecret == "" {
		c.TokenSecret = d.TokenSecret
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = d.TokenTTL
	}
	if c.ChannelReward == 0 {
		c.ChannelReward = d.ChannelReward
	}
	if c.LeaderboardSize == 0 {
		c.LeaderboardSize = d.LeaderboardSize
	}
	return c
}
