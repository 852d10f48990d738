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

// Package registry indexes the available condition types by their stable
// type key. It is populated once at process start and safe for concurrent
// reads afterwards; tests substitute fakes through Register/Reset.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// Factory produces a fresh condition type instance.
type Factory func() model.Condition

var store = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

// Register adds a condition type factory under its stable type key. A
// later registration for the same key replaces the earlier one.
func Register(typeKey string, factory Factory) {

	store.mu.Lock()
	defer store.mu.Unlock()
	store.factories[typeKey] = factory
}

// Resolve returns the condition type registered under typeKey.
func Resolve(typeKey string) (model.Condition, error) {

	store.mu.RLock()
	factory, ok := store.factories[typeKey]
	store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("condition type %q is not registered", typeKey)
	}
	return factory(), nil
}

// ListAll returns all registered condition types sorted by display name.
// With excludeBroken set, types whose zero-configuration instance reports
// itself broken are filtered out; this hides types that depend on
// unavailable platform features.
func ListAll(excludeBroken bool) []model.Condition {

	store.mu.RLock()
	conditions := make([]model.Condition, 0, len(store.factories))
	for _, factory := range store.factories {
		conditions = append(conditions, factory())
	}
	store.mu.RUnlock()

	if excludeBroken {
		kept := conditions[:0]
		for _, condition := range conditions {
			if !condition.IsBroken(model.Config{}) {
				kept = append(kept, condition)
			}
		}
		conditions = kept
	}

	sort.Slice(conditions, func(i, j int) bool {
		return conditions[i].Name() < conditions[j].Name()
	})
	return conditions
}

// Reset removes all registrations. Test harness hook.
func Reset() {

	store.mu.Lock()
	defer store.mu.Unlock()
	store.factories = map[string]Factory{}
}

// InstanceBroken reports whether a persisted condition instance is broken.
// An instance whose type key no longer resolves is inert and broken, but
// its raw configuration is preserved for display.
func InstanceBroken(instance model.Instance) bool {

	condition, err := Resolve(instance.TypeKey)
	if err != nil {
		return true
	}
	return condition.IsBroken(instance.Config)
}

// DescribeInstance renders a human description for a persisted condition
// instance. For an unresolvable type key a degraded description is
// produced from the raw stored configuration.
func DescribeInstance(instance model.Instance) string {

	condition, err := Resolve(instance.TypeKey)
	if err != nil {
		raw, serr := instance.Config.Serialize()
		if serr != nil {
			raw = "{}"
		}
		return fmt.Sprintf("%s (unavailable): %s", instance.TypeKey, raw)
	}
	return condition.Describe(instance.Config)
}

// InterestedEvents returns the event type tags of a persisted instance,
// or nil when the type key no longer resolves.
func InterestedEvents(instance model.Instance) []string {

	condition, err := Resolve(instance.TypeKey)
	if err != nil {
		return nil
	}
	return condition.InterestedEvents()
}
