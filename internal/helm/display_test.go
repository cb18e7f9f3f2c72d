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

package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayCommand(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{
			name: "plain tokens",
			argv: []string{"helm", "version", "--short"},
			want: "helm version --short",
		},
		{
			name: "spaces and empty values are quoted",
			argv: []string{"helm", "install", "my release", ""},
			want: "helm install 'my release' ''",
		},
		{
			name: "assignments are quoted",
			argv: []string{"helm", "lint", ".", "--set", "a=b"},
			want: "helm lint . --set 'a=b'",
		},
		{
			name: "single quotes fall back to double quotes",
			argv: []string{"helm", "install", "it's"},
			want: `helm install "it's"`,
		},
		{
			name: "password is masked",
			argv: []string{"helm", "registry", "login", "r", "--username", "u", "--password", "hunter2"},
			want: "helm registry login r --username u --password '[REDACTED]'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayCommand(tt.argv))
		})
	}
}

func TestDisplayCommand_NulByte(t *testing.T) {
	assert.Equal(t, `helm "a\x00b"`, DisplayCommand([]string{"helm", "a\x00b"}))
}
