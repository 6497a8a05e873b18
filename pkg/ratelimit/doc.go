// Package ratelimit throttles API callers with fixed-window counters.
//
// Counters live in a Store: MemoryStore for a single replica, RedisStore when
// several replicas must share limits. Middleware sets the X-RateLimit-*
// headers, answers 429 with Retry-After once a key exceeds its limit, and
// lets requests through when the store is unreachable.
package ratelimit
