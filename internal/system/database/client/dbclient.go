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

package client

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wso2/identity-cohort-sync-service/internal/system/database/scripts"
)

// DBClientInterface defines the interface for database operations.
// Queries are authored with "?" placeholders and rebound to the active
// driver's placeholder style before execution.
type DBClientInterface interface {
	ExecuteQuery(query string, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query string, args ...interface{}) (int64, error)
	BeginTx() (*sqlx.Tx, error)
	Rebind(query string) string
	DBType() string
	InitDatabase() error
}

// DBClient is the implementation of DBClientInterface.
type DBClient struct {
	db     *sqlx.DB
	dbType string
}

// NewDBClient creates a new instance of DBClient over a shared connection
// pool. The client does not own the pool and never closes it.
func NewDBClient(db *sqlx.DB, dbType string) DBClientInterface {

	return &DBClient{
		db:     db,
		dbType: dbType,
	}
}

// InitDatabase applies the schema DDL for the active database type.
func (c *DBClient) InitDatabase() error {

	ddl, err := scripts.Schema(c.dbType)
	if err != nil {
		return err
	}
	if _, err := c.db.Exec(ddl); err != nil {
		return err
	}
	return nil
}

// ExecuteQuery executes a SELECT query and returns the result as a slice of maps.
func (c *DBClient) ExecuteQuery(query string, args ...interface{}) ([]map[string]interface{}, error) {

	rows, err := c.db.Queryx(c.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		// Normalize column names to lowercase for consistency.
		result := map[string]interface{}{}
		for col, val := range row {
			result[strings.ToLower(col)] = val
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// Execute runs a mutation query and returns the number of affected rows.
func (c *DBClient) Execute(query string, args ...interface{}) (int64, error) {

	result, err := c.db.Exec(c.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// BeginTx starts a new database transaction.
func (c *DBClient) BeginTx() (*sqlx.Tx, error) {

	return c.db.Beginx()
}

// Rebind converts "?" placeholders to the active driver's placeholder style.
func (c *DBClient) Rebind(query string) string {

	return c.db.Rebind(query)
}

// DBType returns the configured database type.
func (c *DBClient) DBType() string {

	return c.dbType
}
