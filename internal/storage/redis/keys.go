package redis

import (
	"fmt"

	"github.com/mcoot/minibeans/internal/storage"
)

// Key prefix for all client profile data
const keyPrefix = "minibeans"

// profileKey returns the Redis key for a profile value
func profileKey(profile string, key storage.Key) string {
	return fmt.Sprintf("%s:profile:%s:%s", keyPrefix, profile, key)
}
