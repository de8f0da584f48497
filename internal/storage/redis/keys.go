package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "codemaster"

// resultsKey returns the Redis key for the round results list
func resultsKey() string {
	return fmt.Sprintf("%s:results", keyPrefix)
}
