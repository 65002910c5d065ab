package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DeliveredAtKey returns the cache key for a question delivery timestamp.
func (r *CacheKeyStruct) DeliveredAtKey(eventID, sessionID string) string {
	return fmt.Sprintf("delivered:%s:%s", eventID, sessionID)
}

// DeliveredAtPattern returns the scan pattern matching every delivery
// timestamp recorded for an event.
func (r *CacheKeyStruct) DeliveredAtPattern(eventID string) string {
	return fmt.Sprintf("delivered:%s:*", eventID)
}

// AdminSessionKey returns the cache key for an admin session token id.
func (r *CacheKeyStruct) AdminSessionKey(jti string) string {
	return fmt.Sprintf("admin_session:%s", jti)
}

// EventChannel returns the Redis PubSub channel name for an event's broadcast.
func (r *CacheKeyStruct) EventChannel(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

// EventChannelPattern matches every event broadcast channel.
func (r *CacheKeyStruct) EventChannelPattern() string {
	return "event:*"
}

var CacheKey = NewCacheKeyStruct()
