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

package store

import (
	"github.com/jmoiron/sqlx"

	conditionmodel "github.com/wso2/identity-cohort-sync-service/internal/condition_types/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/client"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/scripts"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
)

// InsertCondition inserts a condition inside the given transaction and
// returns its id. The configuration is persisted in canonical serialized
// form so later change detection can compare strings.
func InsertCondition(tx *sqlx.Tx, instance conditionmodel.Instance) (int64, error) {

	query, err := scripts.Query("insert-condition")
	if err != nil {
		return 0, err
	}

	serialized, err := instance.Config.Serialize()
	if err != nil {
		return 0, err
	}

	var conditionId int64
	err = tx.QueryRow(tx.Rebind(query), instance.RuleId, instance.TypeKey,
		serialized, instance.SortOrder).Scan(&conditionId)
	if err != nil {
		return 0, err
	}
	return conditionId, nil
}

// UpdateCondition rewrites the configuration and sort order of a
// persisted condition inside the given transaction.
func UpdateCondition(tx *sqlx.Tx, instance conditionmodel.Instance) error {

	query, err := scripts.Query("update-condition")
	if err != nil {
		return err
	}

	serialized, err := instance.Config.Serialize()
	if err != nil {
		return err
	}

	_, err = tx.Exec(tx.Rebind(query), serialized, instance.SortOrder, instance.ConditionId)
	return err
}

// DeleteCondition removes a persisted condition inside the given
// transaction.
func DeleteCondition(tx *sqlx.Tx, conditionId int64) error {

	query, err := scripts.Query("delete-condition")
	if err != nil {
		return err
	}

	_, err = tx.Exec(tx.Rebind(query), conditionId)
	return err
}

// ListConditionsForRule returns the persisted conditions of a rule
// ordered by sort order.
func ListConditionsForRule(ruleId int64) ([]conditionmodel.Instance, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query("list-conditions-for-rule")
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, ruleId)
	if err != nil {
		return nil, errors.NewServerError(errors.FETCH_CONDITIONS, err)
	}

	instances := make([]conditionmodel.Instance, 0, len(results))
	for _, row := range results {
		config, err := conditionmodel.ParseConfig(client.AsString(row["config"]))
		if err != nil {
			return nil, errors.NewServerError(errors.FETCH_CONDITIONS, err)
		}
		instances = append(instances, conditionmodel.Instance{
			ConditionId: client.AsInt64(row["condition_id"]),
			RuleId:      client.AsInt64(row["rule_id"]),
			TypeKey:     client.AsString(row["type_key"]),
			Config:      config,
			SortOrder:   client.AsInt(row["sort_order"]),
		})
	}
	return instances, nil
}
