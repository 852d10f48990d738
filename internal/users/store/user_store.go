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

	"github.com/wso2/identity-cohort-sync-service/internal/system/database/client"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/provider"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/scripts"
	"github.com/wso2/identity-cohort-sync-service/internal/system/errors"
	"github.com/wso2/identity-cohort-sync-service/internal/users/model"
)

func getDBClient() (client.DBClientInterface, *errors.ServerError) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		return nil, errors.NewServerError(errors.DB_CLIENT_INIT, err)
	}
	return dbClient, nil
}

// CreateUser inserts a user row and returns its id.
func CreateUser(user model.User) (int64, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return 0, svcErr
	}

	query, err := scripts.Query("insert-user")
	if err != nil {
		return 0, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	now := time.Now().Unix()
	results, err := dbClient.ExecuteQuery(query, user.Username, user.Email, user.Firstname,
		user.Lastname, user.Department, user.Institution, user.City, user.Country,
		user.Suspended, user.Deleted, now, now)
	if err != nil || len(results) == 0 {
		return 0, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return client.AsInt64(results[0]["user_id"]), nil
}

// SetAttribute upserts a custom attribute value for a user.
func SetAttribute(userId int64, attributeName, attributeValue string) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("set-user-attribute")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, userId, attributeName, attributeValue); err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return nil
}

// AddAttributeDefinition upserts a custom attribute definition in the
// catalog.
func AddAttributeDefinition(definition model.AttributeDefinition) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("insert-attribute-definition")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, definition.AttributeName, definition.DisplayName,
		definition.ValueType); err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return nil
}

// DeleteAttributeDefinition removes a custom attribute definition. Rules
// referencing the attribute become broken on their next recompute.
func DeleteAttributeDefinition(attributeName string) *errors.ServerError {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return svcErr
	}

	query, err := scripts.Query("delete-attribute-definition")
	if err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	if _, err := dbClient.Execute(query, attributeName); err != nil {
		return errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return nil
}

// ListAttributeDefinitions returns all custom attribute definitions.
func ListAttributeDefinitions() ([]model.AttributeDefinition, *errors.ServerError) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return nil, svcErr
	}

	query, err := scripts.Query("list-attribute-definitions")
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query)
	if err != nil {
		return nil, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	definitions := make([]model.AttributeDefinition, 0, len(results))
	for _, row := range results {
		definitions = append(definitions, model.AttributeDefinition{
			AttributeName: client.AsString(row["attribute_name"]),
			DisplayName:   client.AsString(row["display_name"]),
			ValueType:     client.AsString(row["value_type"]),
		})
	}
	return definitions, nil
}

// AttributeExists reports whether a custom attribute definition exists.
func AttributeExists(attributeName string) (bool, error) {

	dbClient, svcErr := getDBClient()
	if svcErr != nil {
		return false, svcErr
	}

	query, err := scripts.Query("get-attribute-definition")
	if err != nil {
		return false, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}

	results, err := dbClient.ExecuteQuery(query, attributeName)
	if err != nil {
		return false, errors.NewServerError(errors.EXECUTE_QUERY, err)
	}
	return len(results) > 0, nil
}

// HasAttributes reports whether the attribute catalog is non-empty.
func HasAttributes() (bool, error) {

	definitions, svcErr := ListAttributeDefinitions()
	if svcErr != nil {
		return false, svcErr
	}
	return len(definitions) > 0, nil
}

// AttributeCatalogAdapter adapts the store to the condition engine's
// attribute catalog collaborator.
type AttributeCatalogAdapter struct{}

func (a *AttributeCatalogAdapter) AttributeExists(attributeName string) (bool, error) {
	return AttributeExists(attributeName)
}

func (a *AttributeCatalogAdapter) HasAttributes() (bool, error) {
	return HasAttributes()
}
