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

	"github.com/wso2/identity-cohort-sync-service/internal/cohorts/model"
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

// GetCohort fetches a cohort by id. Returns nil when the cohort does not
// exist.
func GetCohort(cohortId int64) (*model.Cohort, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query("get-cohort")
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, cohortId)
	if err != nil {
		return nil, errors.NewServerError(errors.FETCH_COHORT, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	row := results[0]
	return &model.Cohort{
		CohortId:    client.AsInt64(row["cohort_id"]),
		Name:        client.AsString(row["name"]),
		Description: client.AsString(row["description"]),
		ManagedBy:   client.AsString(row["managed_by"]),
	}, nil
}

// CohortExists reports whether a cohort with the given id exists.
func CohortExists(cohortId int64) (bool, error) {

	cohort, svcErr := GetCohort(cohortId)
	if svcErr != nil {
		return false, svcErr
	}
	return cohort != nil, nil
}

// CreateCohort inserts a cohort and returns its id.
func CreateCohort(name, description, managedBy string) (int64, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return 0, svcErr
	}

	query, err := scripts.Query("insert-cohort")
	if err != nil {
		return 0, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, name, description, managedBy)
	if err != nil || len(results) == 0 {
		return 0, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return client.AsInt64(results[0]["cohort_id"]), nil
}

// SetManagedBy updates the managed-by tag of a cohort.
func SetManagedBy(cohortId int64, managedBy string) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("set-cohort-managed-by")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, managedBy, cohortId); err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return nil
}

// ListMembers returns the user ids currently in the cohort.
func ListMembers(cohortId int64) ([]int64, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query("list-cohort-members")
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, cohortId)
	if err != nil {
		return nil, errors.NewServerError(errors.FETCH_COHORT, err)
	}

	userIds := make([]int64, 0, len(results))
	for _, row := range results {
		userIds = append(userIds, client.AsInt64(row["user_id"]))
	}
	return userIds, nil
}

// IsMember reports whether the user is currently in the cohort.
func IsMember(cohortId, userId int64) (bool, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return false, svcErr
	}

	query, err := scripts.Query("is-cohort-member")
	if err != nil {
		return false, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, cohortId, userId)
	if err != nil {
		return false, errors.NewServerError(errors.FETCH_COHORT, err)
	}
	return len(results) > 0, nil
}

// AddMember adds the user to the cohort. Adding an existing member is a
// no-op; the statement carries an ON CONFLICT DO NOTHING clause.
func AddMember(cohortId, userId int64) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("add-cohort-member")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, cohortId, userId, time.Now().Unix()); err != nil {
		return errors.NewServerError(errors.UPDATE_COHORT_MEMBERSHIP, err)
	}
	return nil
}

// RemoveMember removes the user from the cohort. Removing an absent
// member is a no-op.
func RemoveMember(cohortId, userId int64) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("remove-cohort-member")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, cohortId, userId); err != nil {
		return errors.NewServerError(errors.UPDATE_COHORT_MEMBERSHIP, err)
	}
	return nil
}

// CohortLookupAdapter adapts the store to the condition engine's cohort
// lookup collaborator.
type CohortLookupAdapter struct{}

func (a *CohortLookupAdapter) CohortExists(cohortId int64) (bool, error) {
	return CohortExists(cohortId)
}
