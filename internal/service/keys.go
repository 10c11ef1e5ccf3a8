package service

import "alphasignals/internal/cache"

// Cache keys shared by the signal and unlock services. The unlocked-signals
// key is principal-scoped so entries never leak across principals.

var signalsKey = cache.Key{Query: "signals"}

func unlockedSignalsKey(userID string) cache.Key {
	return cache.Key{Query: "unlocked-signals", Param: userID}
}
