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

package helpers

import (
	"fmt"
	"strings"

	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
)

// Set membership operators.
const (
	OperatorMember    = "member"
	OperatorNotMember = "not-member"
)

// IsMembershipOperator reports whether operator is a known set membership
// operator.
func IsMembershipOperator(operator string) bool {
	return operator == OperatorMember || operator == OperatorNotMember
}

// SetMembership builds a membership-table fragment using the
// left-outer-join-plus-null-check idiom: the membership table is joined on
// the subject user restricted to the target entity ids, and presence of a
// joined row decides membership. An empty target set matches nobody for
// "member" and everybody for "not-member".
func SetMembership(table, entityColumn, userColumn string, entityIds []int64, operator string, ctx *model.BuilderContext) (model.Predicate, bool) {

	if !IsMembershipOperator(operator) {
		return model.FailClosed(), false
	}

	if len(entityIds) == 0 {
		if operator == OperatorMember {
			return model.FailClosed(), true
		}
		return model.MatchAll(), true
	}

	alias := ctx.NextAlias("mem")
	params := map[string]interface{}{}
	placeholders := make([]string, 0, len(entityIds))
	for _, id := range entityIds {
		param := ctx.NextParam(alias + "_id")
		params[param] = id
		placeholders = append(placeholders, ":"+param)
	}

	join := fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = u.user_id AND %s.%s IN (%s)",
		table, alias, alias, userColumn, alias, entityColumn, strings.Join(placeholders, ", "))

	var where string
	if operator == OperatorMember {
		where = fmt.Sprintf("%s.%s IS NOT NULL", alias, userColumn)
	} else {
		where = fmt.Sprintf("%s.%s IS NULL", alias, userColumn)
	}

	return model.Predicate{
		Joins:  []string{join},
		Where:  where,
		Params: params,
	}, true
}
