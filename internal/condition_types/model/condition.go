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

// Package model defines the capability contract implemented by every
// condition type, the opaque condition configuration, and the transient
// predicate value produced during matching.
package model

// FieldError describes a single invalid field in a submitted condition
// configuration.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Condition is the capability contract of a registered condition type.
//
// Brokenness is a per-type predicate rather than a single engine-level
// flag: each type encapsulates the validity of its own external references
// (user fields, attribute catalog entries, cohorts) without the engine
// knowing type-specific schemas.
type Condition interface {
	// TypeKey returns the stable registration key of the condition type.
	TypeKey() string

	// Name returns the human-readable display name of the condition type.
	Name() string

	// ValidateConfig checks a submitted configuration and returns one
	// error per invalid field. An empty result means the configuration is
	// acceptable for persistence.
	ValidateConfig(config Config) []FieldError

	// IsBroken reports whether the configuration references something no
	// longer valid. A fully unconfigured condition is not broken; its
	// predicate fails closed instead.
	IsBroken(config Config) bool

	// BuildPredicate produces the query fragment selecting matching users.
	// Implementations must return a fail-closed predicate for unconfigured
	// or broken configurations.
	BuildPredicate(config Config, ctx *BuilderContext) Predicate

	// InterestedEvents returns the domain event type tags that should
	// trigger incremental recompute for rules containing this condition.
	InterestedEvents() []string

	// Describe renders a human-readable description of the configuration.
	Describe(config Config) string
}

// Instance is one configured condition persisted for a rule.
type Instance struct {
	ConditionId int64  `json:"condition_id"`
	RuleId      int64  `json:"rule_id"`
	TypeKey     string `json:"type_key"`
	Config      Config `json:"config"`
	SortOrder   int    `json:"sort_order"`
}

// AttributeCatalog resolves custom user attribute references. Implemented
// by the users store; substituted with fakes in tests.
type AttributeCatalog interface {
	AttributeExists(name string) (bool, error)
	HasAttributes() (bool, error)
}

// CohortLookup resolves cohort references. Implemented by the cohorts
// store; substituted with fakes in tests.
type CohortLookup interface {
	CohortExists(cohortId int64) (bool, error)
}
