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
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wso2/identity-cohort-sync-service/internal/cohort_rules/model"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/client"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/scripts"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
)

func getDBClient() (client.DBClientInterface, *errors.ServerError) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors.NewServerError(errors.DB_CLIENT_INIT, err)
	}
	return dbClient, nil
}

// BeginTx starts a transaction for a rule save or delete. Condition
// reconciliation runs inside it so partial updates never become visible.
func BeginTx() (*sqlx.Tx, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}
	tx, err := dbClient.BeginTx()
	if err != nil {
		return nil, errors.NewServerError(errors.TRANSACTION_FAILED, err)
	}
	return tx, nil
}

// CreateRule inserts a rule inside the given transaction and returns its
// id.
func CreateRule(tx *sqlx.Tx, rule model.Rule) (int64, error) {

	query, err := scripts.Query("insert-cohort-rule")
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	var ruleId int64
	err = tx.QueryRow(tx.Rebind(query), rule.Name, rule.Description, rule.CohortId,
		rule.Enabled, rule.Broken, rule.BulkProcessing, rule.Operator, now, now).Scan(&ruleId)
	if err != nil {
		return 0, err
	}
	return ruleId, nil
}

// UpdateRule updates the mutable rule fields inside the given transaction.
// Broken and enabled are managed separately through SetRuleState.
func UpdateRule(tx *sqlx.Tx, rule model.Rule) error {

	query, err := scripts.Query("update-cohort-rule")
	if err != nil {
		return err
	}

	_, err = tx.Exec(tx.Rebind(query), rule.Name, rule.Description, rule.CohortId,
		rule.Enabled, rule.BulkProcessing, rule.Operator, time.Now().Unix(), rule.RuleId)
	return err
}

// DeleteRule removes a rule and its conditions inside the given
// transaction.
func DeleteRule(tx *sqlx.Tx, ruleId int64) error {

	conditionsQuery, err := scripts.Query("delete-conditions-for-rule")
	if err != nil {
		return err
	}
	if _, err := tx.Exec(tx.Rebind(conditionsQuery), ruleId); err != nil {
		return err
	}

	ruleQuery, err := scripts.Query("delete-cohort-rule")
	if err != nil {
		return err
	}
	_, err = tx.Exec(tx.Rebind(ruleQuery), ruleId)
	return err
}

// SetRuleState updates the broken and enabled flags of a rule.
func SetRuleState(ruleId int64, broken, enabled bool) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("set-rule-state")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, broken, enabled, time.Now().Unix(), ruleId); err != nil {
		return errors.NewServerError(errors.UPDATE_COHORT_RULE, err)
	}
	return nil
}

// GetRule fetches a rule by id. Returns nil when the rule does not exist.
func GetRule(ruleId int64) (*model.Rule, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query("get-cohort-rule")
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, ruleId)
	if err != nil {
		return nil, errors.NewServerError(errors.FETCH_COHORT_RULES, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	rule := rowToRule(results[0])
	return &rule, nil
}

// ListRules returns all rules ordered by id.
func ListRules() ([]model.Rule, *errors.ServerError) {

	return listRules("list-cohort-rules")
}

// ListActiveRules returns the rules that are enabled and not broken.
// Only these participate in matching.
func ListActiveRules() ([]model.Rule, *errors.ServerError) {

	return listRules("list-active-rules")
}

func listRules(queryName string) ([]model.Rule, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query(queryName)
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query)
	if err != nil {
		return nil, errors.NewServerError(errors.FETCH_COHORT_RULES, err)
	}

	rules := make([]model.Rule, 0, len(results))
	for _, row := range results {
		rules = append(rules, rowToRule(row))
	}
	return rules, nil
}

// GetManagingRule returns the id of another rule already referencing the
// cohort, or zero when the cohort is free. excludeRuleId skips the rule
// being saved so an update does not conflict with itself.
func GetManagingRule(cohortId, excludeRuleId int64) (int64, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return 0, svcErr
	}

	query, err := scripts.Query("get-rule-managing-cohort")
	if err != nil {
		return 0, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, cohortId, excludeRuleId)
	if err != nil {
		return 0, errors.NewServerError(errors.FETCH_COHORT_RULES, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return client.AsInt64(results[0]["rule_id"]), nil
}

func rowToRule(row map[string]interface{}) model.Rule {

	return model.Rule{
		RuleId:         client.AsInt64(row["rule_id"]),
		Name:           client.AsString(row["name"]),
		Description:    client.AsString(row["description"]),
		CohortId:       client.AsInt64(row["cohort_id"]),
		Enabled:        client.AsBool(row["enabled"]),
		Broken:         client.AsBool(row["broken"]),
		BulkProcessing: client.AsBool(row["bulk_processing"]),
		Operator:       client.AsString(row["operator"]),
		CreatedAt:      client.AsInt64(row["created_at"]),
		UpdatedAt:      client.AsInt64(row["updated_at"]),
	}
}
