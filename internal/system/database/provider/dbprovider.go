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

package provider

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/wso2/identity-cohort-sync-service/internal/system/config"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/client"
)

var (
	mu     sync.RWMutex
	shared *sqlx.DB
	dbType string
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
	GetDBType() string
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct{}

// NewDBProvider creates a new instance of DBProvider.
func NewDBProvider() DBProviderInterface {

	return &DBProvider{}
}

// Init opens the shared connection pool from the runtime configuration.
func Init() error {

	dataSource := config.GetICSRuntime().Config.DataSource

	driverName, dsn, err := driverAndDSN(dataSource)
	if err != nil {
		return err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	shared = db
	dbType = dataSource.Type
	return nil
}

// InitWithDB installs an externally opened connection pool. Used by tests
// to run against an in-memory sqlite database.
func InitWithDB(db *sqlx.DB, dataSourceType string) {

	mu.Lock()
	defer mu.Unlock()
	shared = db
	dbType = dataSourceType
}

// GetDBClient returns a database client over the shared connection pool.
func (d *DBProvider) GetDBClient() (client.DBClientInterface, error) {

	mu.RLock()
	defer mu.RUnlock()
	if shared == nil {
		return nil, fmt.Errorf("database provider is not initialized")
	}
	return client.NewDBClient(shared, dbType), nil
}

// GetDBType returns the configured database type.
func (d *DBProvider) GetDBType() string {

	mu.RLock()
	defer mu.RUnlock()
	return dbType
}

// driverAndDSN maps the datasource configuration to a driver name and DSN.
func driverAndDSN(dataSource config.DataSourceConfig) (string, string, error) {

	switch dataSource.Type {
	case constants.DBTypePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, dataSource.SSLMode)
		return "postgres", dsn, nil
	case constants.DBTypeSQLite:
		path := dataSource.Path
		if path == "" {
			path = ":memory:"
		}
		return "sqlite3", path, nil
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", dataSource.Type)
	}
}
