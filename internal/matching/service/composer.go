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

package service

import (
	"fmt"
	"strings"

	rulemodel "github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/registry"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
)

// ComposePredicate combines the per-condition predicates of a rule into
// one predicate under the rule's operator. A broken rule, a rule with no
// conditions, and every unresolvable or broken condition contribute the
// fail-closed predicate, so matching never widens on error.
//
// All fragments share one builder context; aliases and parameter names
// minted during a single compose call never collide even when several
// conditions of the same type are present.
func ComposePredicate(rule rulemodel.Rule, instances []model.Instance) model.Predicate {

	if rule.Broken || len(instances) == 0 {
		return model.FailClosed()
	}

	ctx := model.NewBuilderContext()
	fragments := make([]model.Predicate, 0, len(instances))
	for _, instance := range instances {
		condition, err := registry.Resolve(instance.TypeKey)
		if err != nil {
			fragments = append(fragments, model.FailClosed())
			continue
		}
		fragments = append(fragments, condition.BuildPredicate(instance.Config, ctx))
	}

	operator := strings.ToUpper(rule.Operator)
	if operator != constants.OperatorOr {
		operator = constants.OperatorAnd
	}
	return combine(fragments, operator)
}

// combine merges predicate fragments under AND or OR. Fail-closed
// fragments collapse an AND chain immediately and drop out of an OR
// chain; if every fragment fails closed the whole predicate does.
func combine(fragments []model.Predicate, operator string) model.Predicate {

	var joins []string
	var wheres []string
	params := map[string]interface{}{}

	for _, fragment := range fragments {
		if fragment.IsFailClosed() {
			if operator == constants.OperatorAnd {
				return model.FailClosed()
			}
			continue
		}
		joins = append(joins, fragment.Joins...)
		wheres = append(wheres, fmt.Sprintf("(%s)", fragment.Where))
		for name, value := range fragment.Params {
			params[name] = value
		}
	}

	if len(wheres) == 0 {
		return model.FailClosed()
	}

	return model.Predicate{
		Joins:  joins,
		Where:  strings.Join(wheres, " "+operator+" "),
		Params: params,
	}
}
