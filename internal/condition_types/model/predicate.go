/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package model

import (
	"fmt"
	"regexp"
)

// Predicate is the transient join/filter/parameter triple used to select
// matching users. It is produced fresh on every evaluation and never
// persisted. Parameters are referenced as :name inside the clauses.
type Predicate struct {
	Joins  []string               `json:"joins"`
	Where  string                 `json:"where"`
	Params map[string]interface{} `json:"params"`
}

const (
	failClosedWhere = "1 = 0"
	matchAllWhere   = "1 = 1"
)

// FailClosed returns the predicate that matches nobody. Every unconfigured
// or broken condition, and every rule with zero conditions, evaluates to
// this predicate.
func FailClosed() Predicate {
	return Predicate{Where: failClosedWhere}
}

// MatchAll returns the predicate that matches everybody. Only produced
// deliberately, e.g. by a non-membership condition with an empty target
// cohort set.
func MatchAll() Predicate {
	return Predicate{Where: matchAllWhere}
}

// IsFailClosed reports whether the predicate is the fail-closed constant.
func (p Predicate) IsFailClosed() bool {
	return p.Where == failClosedWhere && len(p.Joins) == 0
}

var paramPattern = regexp.MustCompile(`:([A-Za-z][A-Za-z0-9_]*)`)

// Render flattens the predicate into driver-agnostic SQL: named parameters
// are replaced by "?" placeholders in order of appearance across the join
// clauses and then the where clause, with the matching argument list.
func (p Predicate) Render() (joins []string, where string, args []interface{}, err error) {

	replace := func(clause string) (string, error) {
		var innerErr error
		out := paramPattern.ReplaceAllStringFunc(clause, func(match string) string {
			name := match[1:]
			value, ok := p.Params[name]
			if !ok {
				innerErr = fmt.Errorf("predicate references unbound parameter %q", name)
				return match
			}
			args = append(args, value)
			return "?"
		})
		return out, innerErr
	}

	joins = make([]string, 0, len(p.Joins))
	for _, join := range p.Joins {
		rendered, rErr := replace(join)
		if rErr != nil {
			return nil, "", nil, rErr
		}
		joins = append(joins, rendered)
	}

	where, err = replace(p.Where)
	if err != nil {
		return nil, "", nil, err
	}
	return joins, where, args, nil
}

// BuilderContext carries the alias counter for one predicate-build call.
// Aliases minted from one context never collide, which keeps multiple
// conditions of the same type composable; a fresh context per compose call
// keeps concurrent evaluations collision-free without any locking.
type BuilderContext struct {
	next int
}

// NewBuilderContext returns a context whose counter starts at 1000.
func NewBuilderContext() *BuilderContext {
	return &BuilderContext{next: 1000}
}

// NextAlias mints a unique table alias with the given prefix, e.g. "ua1000".
func (c *BuilderContext) NextAlias(prefix string) string {
	alias := fmt.Sprintf("%s%d", prefix, c.next)
	c.next++
	return alias
}

// NextParam mints a unique parameter name with the given prefix.
func (c *BuilderContext) NextParam(prefix string) string {
	return c.NextAlias(prefix)
}
