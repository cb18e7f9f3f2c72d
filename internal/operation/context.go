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

package operation

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	transportKey
)

// WithRequestID attaches a request ID to ctx. Dispatch generates one when
// the caller has not.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID attached to ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTransport records which transport a call arrived on.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportKey, transport)
}

// TransportFromContext returns the transport recorded on ctx, if any.
func TransportFromContext(ctx context.Context) string {
	t, _ := ctx.Value(transportKey).(string)
	return t
}
