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

package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	// JWTSecret signs and verifies admin API bearer tokens. Auth is
	// disabled when empty.
	JWTSecret string `yaml:"jwt_secret"`
}

type DataSourceConfig struct {
	// Type selects the database driver: "postgres" or "sqlite".
	Type     string `yaml:"type"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file path for the sqlite type.
	Path string `yaml:"path"`
}

type MatchingConfig struct {
	// BulkIntervalSeconds is the period of the scheduled bulk recompute.
	BulkIntervalSeconds int `yaml:"bulk_interval_seconds"`
	// WorkerCount is the number of match workers draining the task queue.
	WorkerCount int `yaml:"worker_count"`
	// QueueSize bounds the match task queue.
	QueueSize int `yaml:"queue_size"`
	// RuleCacheTTLSeconds is the TTL of the active rule cache consumed by
	// the event router.
	RuleCacheTTLSeconds int `yaml:"rule_cache_ttl_seconds"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Matching   MatchingConfig   `yaml:"matching"`
}

// LoadConfig reads the deployment configuration file relative to the
// service home directory.
func LoadConfig(icsHome, configFile string) (*Config, error) {

	configPath := path.Join(icsHome, configFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {

	if config.Log.LogLevel == "" {
		config.Log.LogLevel = "INFO"
	}
	if config.Matching.BulkIntervalSeconds <= 0 {
		config.Matching.BulkIntervalSeconds = 900
	}
	if config.Matching.WorkerCount <= 0 {
		config.Matching.WorkerCount = 4
	}
	if config.Matching.QueueSize <= 0 {
		config.Matching.QueueSize = 1000
	}
	if config.Matching.RuleCacheTTLSeconds <= 0 {
		config.Matching.RuleCacheTTLSeconds = 30
	}
	if config.DataSource.Type == "" {
		config.DataSource.Type = "postgres"
	}
}
