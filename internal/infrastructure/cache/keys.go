package cache

import (
	"strings"
	"time"
)

// TTL tiers.
const (
	TTLShort  = 5 * time.Minute
	TTLMedium = 30 * time.Minute
	TTLLong   = 2 * time.Hour
	TTLDay    = 24 * time.Hour
	TTLWeek   = 7 * 24 * time.Hour

	PresenceTTL    = 300 * time.Second
	activityLength = 50
)

func CandidateKey(id string) string { return "candidate:" + id }
func CandidateListKey(userID string) string { return "candidates:user:" + userID }
func NotificationsKey(userID string) string { return "notifications:user:" + userID }
func UserSessionKey(userID, sessionID string) string {
	return "sessions:user:" + userID + ":" + sessionID
}
func UserProfileKey(userID string) string { return "user:" + userID }
func RecentActivityKey(userID string) string { return "activity:user:" + userID }
func PresenceKey(userID string) string { return presencePrefix + userID }
func SearchResultsPattern(userID string) string { return "search:" + userID + ":*" }

// SearchResultsKey normalises the query so equivalent searches share a key.
func SearchResultsKey(userID, query string) string {
	return "search:" + userID + ":" + strings.ToLower(strings.TrimSpace(query))
}

const presencePrefix = "presence:"
