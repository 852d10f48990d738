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

// Package store executes rendered matching predicates against the user
// directory. The base query is assembled here rather than in scripts
// because the join list varies per rule.
package store

import (
	"fmt"
	"strings"

	"github.com/wso2/identity-cohort-sync-service/internal/system/database/client"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
)

func getDBClient() (client.DBClientInterface, *errors.ServerError) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors.NewServerError(errors.DB_CLIENT_INIT, err)
	}
	return dbClient, nil
}

// baseQuery assembles the matching query. DISTINCT guards against joins
// that produce multiple rows per user, e.g. a membership join over
// several target cohorts.
func baseQuery(selectClause string, joins []string, where string) string {

	var b strings.Builder
	b.WriteString(selectClause)
	b.WriteString(" FROM users u")
	for _, join := range joins {
		b.WriteString(" ")
		b.WriteString(join)
	}
	b.WriteString(" WHERE NOT u.deleted AND (")
	b.WriteString(where)
	b.WriteString(")")
	return b.String()
}

// MatchingUserIds returns the ids of all non-deleted users selected by
// the rendered predicate.
func MatchingUserIds(joins []string, where string, args []interface{}) ([]int64, error) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query := baseQuery("SELECT DISTINCT u.user_id", joins, where)
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		return nil, fmt.Errorf("matching query failed: %w", err)
	}

	userIds := make([]int64, 0, len(results))
	for _, row := range results {
		userIds = append(userIds, client.AsInt64(row["user_id"]))
	}
	return userIds, nil
}

// UserMatches reports whether one specific user is selected by the
// rendered predicate.
func UserMatches(userId int64, joins []string, where string, args []interface{}) (bool, error) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return false, svcErr
	}

	query := baseQuery("SELECT DISTINCT u.user_id", joins, where) + " AND u.user_id = ?"
	results, err := dbClient.ExecuteQuery(query, append(args, userId)...)
	if err != nil {
		return false, fmt.Errorf("matching query failed: %w", err)
	}
	return len(results) > 0, nil
}

// CountMatching returns the number of non-deleted users selected by the
// rendered predicate.
func CountMatching(joins []string, where string, args []interface{}) (int64, error) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return 0, svcErr
	}

	query := baseQuery("SELECT COUNT(DISTINCT u.user_id) AS match_count", joins, where)
	results, err := dbClient.ExecuteQuery(query, args...)
	if err != nil {
		return 0, fmt.Errorf("matching query failed: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return client.AsInt64(results[0]["match_count"]), nil
}
