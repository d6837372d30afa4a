package constants

import (
	"fmt"
	"time"
)

// Redis key layout for turfbook.
// Pattern: turfbook:{module}:{operation}:{identifier}:{params?}

// ================== TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT  = 6 * time.Hour    // turf listings
	TTL_DYNAMIC_QUICK = 2 * time.Minute  // slot availability
	TTL_IDEMPOTENCY   = 10 * time.Minute // payment attempt claims
	TTL_SWEEP_LOCK    = 2 * time.Minute  // sweeper advisory lock
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "turfbook"
)

// ================== BOOKINGS MODULE ==================

const (
	CACHE_KEY_AVAILABILITY = CACHE_PREFIX + ":bookings:availability:turf:" // + turf-id:date:YYYY-MM-DD
)

const (
	TTL_AVAILABILITY = TTL_DYNAMIC_QUICK
)

// ================== PAYMENTS MODULE ==================

const (
	KEY_PAYMENT_IDEMPOTENCY = CACHE_PREFIX + ":payments:idempotency:" // + key
)

// ================== EXPIRY MODULE ==================

const (
	KEY_SWEEP_LOCK = CACHE_PREFIX + ":expiry:sweep:lock"
)

// ================== RATE LIMIT ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + type:client
)

// ================== HELPER FUNCTIONS ==================

// BuildAvailabilityKey example: turfbook:bookings:availability:turf:7:date:2025-06-01
func BuildAvailabilityKey(turfID int64, date string) string {
	return fmt.Sprintf("%s%d:date:%s", CACHE_KEY_AVAILABILITY, turfID, date)
}

func BuildIdempotencyKey(key string) string {
	return KEY_PAYMENT_IDEMPOTENCY + key
}

func BuildRateLimitKey(limitType, client string) string {
	return KEY_RATE_LIMIT + limitType + ":" + client
}
