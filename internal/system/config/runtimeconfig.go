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

import "sync"

// ICSRuntime holds the runtime configuration for the cohort sync server.
type ICSRuntime struct {
	ICSHome string `yaml:"ics_home"`
	Config  Config `yaml:"config"`
}

var (
	runtimeConfig *ICSRuntime
	once          sync.Once
)

// InitializeICSRuntime initializes the ICSRuntime configuration.
func InitializeICSRuntime(icsHome string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &ICSRuntime{
			ICSHome: icsHome,
			Config:  *config,
		}
	})

	return nil
}

// GetICSRuntime returns the ICSRuntime configuration.
func GetICSRuntime() *ICSRuntime {

	if runtimeConfig == nil {
		panic("ICSRuntime is not initialized")
	}
	return runtimeConfig
}
