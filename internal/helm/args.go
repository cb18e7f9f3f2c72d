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
)

// args accumulates an argument vector. The subcommand path is fixed when the
// builder is created; later calls only append positionals and flags.
type args struct {
	argv []string
}

func newArgs(binary string, subcommand ...string) *args {
	argv := make([]string, 0, 8+len(subcommand))
	argv = append(argv, binary)
	argv = append(argv, subcommand...)
	return &args{argv: argv}
}

// positional appends values verbatim, including empty ones, so a missing
// required positional still occupies its slot and helm reports it.
func (a *args) positional(values ...string) *args {
	a.argv = append(a.argv, values...)
	return a
}

// flag appends "name value" when value is non-empty.
func (a *args) flag(name, value string) *args {
	if value != "" {
		a.argv = append(a.argv, name, value)
	}
	return a
}

// boolFlag appends the bare flag when on is true.
func (a *args) boolFlag(name string, on bool) *args {
	if on {
		a.argv = append(a.argv, name)
	}
	return a
}

// intFlag appends "name n" when n is set. Negative values pass through for
// helm to reject.
func (a *args) intFlag(name string, n int) *args {
	if n != 0 {
		a.argv = append(a.argv, name, strconv.Itoa(n))
	}
	return a
}

// repeated appends "name value" once per non-empty value.
func (a *args) repeated(name string, values []string) *args {
	for _, v := range values {
		a.flag(name, v)
	}
	return a
}

// sets appends one "--set path=value" pair per override, in order.
func (a *args) sets(overrides Overrides) *args {
	for _, o := range overrides {
		a.argv = append(a.argv, "--set", o.String())
	}
	return a
}

func (a *args) build() []string {
	return a.argv
}

// ChartRef joins a chart name with its repository. Without a repository the
// name passes through unchanged, so paths, URLs and "repo/name" forms work.
func ChartRef(name, repo string) string {
	if repo == "" {
		return name
	}
	return repo + "/" + name
}
