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

// Package scripts holds the named SQL queries and schema DDL used by the
// store layer. Queries live in embedded .sql files and are addressed by
// name through dotsql; they are authored with "?" placeholders and rebound
// per driver by the database client.
package scripts

import (
	"embed"
	"fmt"
	"sync"

	"github.com/qustavo/dotsql"
)

//go:embed queries.sql schema_postgres.sql schema_sqlite.sql
var scriptsFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	dot      *dotsql.DotSql
)

func load() {
	content, err := scriptsFS.ReadFile("queries.sql")
	if err != nil {
		loadErr = fmt.Errorf("failed to read queries.sql: %w", err)
		return
	}
	dot, loadErr = dotsql.LoadFromString(string(content))
}

// Query returns the named SQL query.
func Query(name string) (string, error) {

	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}
	query, err := dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("unknown query %q: %w", name, err)
	}
	return query, nil
}

// Schema returns the schema DDL for the given database type.
func Schema(dbType string) (string, error) {

	var file string
	switch dbType {
	case "postgres":
		file = "schema_postgres.sql"
	case "sqlite":
		file = "schema_sqlite.sql"
	default:
		return "", fmt.Errorf("no schema for database type %q", dbType)
	}

	ddl, err := scriptsFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(ddl), nil
}
