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

package plugins

import (
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
)

// RegisterDefaults populates the condition type registry with the
// built-in condition types. Called once at process start; tests register
// fakes instead.
func RegisterDefaults(catalog model.AttributeCatalog, cohorts model.CohortLookup) {

	registry.Register(TypeKeyUserProfile, func() model.Condition {
		return NewUserProfile()
	})
	registry.Register(TypeKeyUserAttribute, func() model.Condition {
		return NewUserAttribute(catalog)
	})
	registry.Register(TypeKeyCohortMembership, func() model.Condition {
		return NewCohortMembership(cohorts)
	})
}
