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
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/tombee/helm-mcp/internal/log"
)

// secretFlags are flags whose following token is masked in displayed commands.
var secretFlags = map[string]bool{
	"--password": true,
}

// DisplayCommand renders argv as a bash-quoted command line for logs and
// dry runs. The result is for humans only and is never passed to a shell.
func DisplayCommand(argv []string) string {
	parts := make([]string, 0, len(argv))
	maskNext := false
	for _, arg := range argv {
		if maskNext {
			arg = log.SanitizeSecret(arg)
			maskNext = false
		} else if secretFlags[arg] {
			maskNext = true
		}
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	quoted, err := syntax.Quote(arg, syntax.LangBash)
	if err != nil {
		return strconv.Quote(arg)
	}
	return quoted
}
