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
	"fmt"
	"strings"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/helpers"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/log"
)

// TypeKeyCohortMembership is the registration key of the cohort
// membership condition.
const TypeKeyCohortMembership = "cohort_membership"

// Config keys for the cohort membership condition.
const (
	ConfigKeyCohortIds          = "cohort_ids"
	ConfigKeyMembershipOperator = "operator"
)

// CohortMembership matches users by membership or non-membership in a set
// of target cohorts.
type CohortMembership struct {
	cohorts model.CohortLookup
}

// NewCohortMembership creates a cohort membership condition type backed
// by the given cohort lookup.
func NewCohortMembership(cohorts model.CohortLookup) model.Condition {

	return &CohortMembership{cohorts: cohorts}
}

func (c *CohortMembership) TypeKey() string {
	return TypeKeyCohortMembership
}

func (c *CohortMembership) Name() string {
	return "Cohort membership"
}

func (c *CohortMembership) ValidateConfig(config model.Config) []model.FieldError {

	var fieldErrors []model.FieldError

	operator := config.String(ConfigKeyMembershipOperator)
	if !helpers.IsMembershipOperator(operator) {
		fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyMembershipOperator,
			Message: fmt.Sprintf("Unknown membership operator '%s'.", operator)})
	}

	for _, cohortId := range config.Int64Slice(ConfigKeyCohortIds) {
		exists, err := c.cohorts.CohortExists(cohortId)
		if err != nil {
			log.GetLogger().Debug("Failed to resolve cohort", log.Int64("cohort_id", cohortId), log.Error(err))
			exists = false
		}
		if !exists {
			fieldErrors = append(fieldErrors, model.FieldError{Field: ConfigKeyCohortIds,
				Message: fmt.Sprintf("Cohort %d does not exist.", cohortId)})
		}
	}
	return fieldErrors
}

// IsBroken reports true when any referenced cohort no longer exists. An
// empty target set is a legal configuration, not a broken one; its match
// semantics are decided by the operator.
func (c *CohortMembership) IsBroken(config model.Config) bool {

	if config.IsEmpty() {
		return false
	}
	return len(c.ValidateConfig(config)) > 0
}

func (c *CohortMembership) BuildPredicate(config model.Config, ctx *model.BuilderContext) model.Predicate {

	if config.IsEmpty() || c.IsBroken(config) {
		return model.FailClosed()
	}

	predicate, ok := helpers.SetMembership("cohort_members", "cohort_id", "user_id",
		config.Int64Slice(ConfigKeyCohortIds), config.String(ConfigKeyMembershipOperator), ctx)
	if !ok {
		return model.FailClosed()
	}
	return predicate
}

func (c *CohortMembership) InterestedEvents() []string {
	return []string{
		constants.EventCohortMemberAdded,
		constants.EventCohortMemberRemoved,
		constants.EventCohortDeleted,
	}
}

func (c *CohortMembership) Describe(config model.Config) string {

	cohortIds := config.Int64Slice(ConfigKeyCohortIds)
	ids := make([]string, 0, len(cohortIds))
	for _, cohortId := range cohortIds {
		ids = append(ids, fmt.Sprintf("%d", cohortId))
	}

	switch config.String(ConfigKeyMembershipOperator) {
	case helpers.OperatorMember:
		return fmt.Sprintf("Member of cohorts [%s]", strings.Join(ids, ", "))
	case helpers.OperatorNotMember:
		return fmt.Sprintf("Not a member of cohorts [%s]", strings.Join(ids, ", "))
	default:
		return "Cohort membership (not configured)"
	}
}
