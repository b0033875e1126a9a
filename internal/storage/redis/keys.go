package redis

import (
	"fmt"

	"github.com/mcoot/wordsession/internal/model"
)

// KeyPrefix namespaces every key and channel this service writes
const KeyPrefix = "wsgame"

// sessionKey returns the Redis key for a GameSession
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", KeyPrefix, id)
}

// sessionActivityIndexKey returns the ZSET of session ids scored by last update (unix seconds)
func sessionActivityIndexKey() string {
	return fmt.Sprintf("%s:idx:session_activity", KeyPrefix)
}

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", KeyPrefix)
}
