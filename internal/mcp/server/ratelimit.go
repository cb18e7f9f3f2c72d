// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting for MCP tool calls.
// A nil RateLimiter allows every call.
type RateLimiter struct {
	calls atomic.Pointer[rate.Limiter]
}

// NewRateLimiter creates a rate limiter allowing callsPerMinute tool calls per
// minute, with a burst of the same size. Zero or less disables limiting.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	rl := &RateLimiter{}
	rl.SetCallsPerMinute(callsPerMinute)
	return rl
}

// SetCallsPerMinute replaces the limit. The new bucket starts full.
func (rl *RateLimiter) SetCallsPerMinute(callsPerMinute int) {
	if callsPerMinute <= 0 {
		rl.calls.Store(nil)
		return
	}
	rl.calls.Store(rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute))
}

// AllowCall checks if any tool call is allowed.
func (rl *RateLimiter) AllowCall() bool {
	if rl == nil {
		return true
	}
	limiter := rl.calls.Load()
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}
