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

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	cohortstore "github.com/wso2/identity-cohort-sync-service/internal/cohorts/store"
	"github.com/wso2/identity-cohort-sync-service/internal/condition_types/plugins"
	"github.com/wso2/identity-cohort-sync-service/internal/system/config"
	"github.com/wso2/identity-cohort-sync-service/internal/system/constants"
	"github.com/wso2/identity-cohort-sync-service/internal/system/database/provider"
	logger "github.com/wso2/identity-cohort-sync-service/internal/system/log"
	"github.com/wso2/identity-cohort-sync-service/internal/system/managers"
	"github.com/wso2/identity-cohort-sync-service/internal/system/schedulers"
	"github.com/wso2/identity-cohort-sync-service/internal/system/workers"
	userstore "github.com/wso2/identity-cohort-sync-service/internal/users/store"
)

func main() {

	icsHome := getICSHome()
	const configFile = "repository/conf/deployment.yaml"

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	// Load the configuration file
	icsConfig, err := config.LoadConfig(icsHome, configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize runtime configurations.
	if err := config.InitializeICSRuntime(icsHome, icsConfig); err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	// Initialize logger
	if err := logger.Init(icsConfig.Log.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := provider.Init(); err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", logger.Error(err))
	}
	dbClient, err := provider.NewDBProvider().GetDBClient()
	if err != nil {
		logger.GetLogger().Fatal("Failed to create database client", logger.Error(err))
	}
	if err := dbClient.InitDatabase(); err != nil {
		logger.GetLogger().Fatal("Failed to apply database schema", logger.Error(err))
	}

	// Register the built-in condition types.
	plugins.RegisterDefaults(&userstore.AttributeCatalogAdapter{}, &cohortstore.CohortLookupAdapter{})

	// Start the incremental matching workers and the bulk recompute job.
	workers.StartMatchWorkers()
	go schedulers.StartBulkRecomputeScheduler(
		time.Duration(icsConfig.Matching.BulkIntervalSeconds) * time.Second)

	serverAddr := fmt.Sprintf("%s:%d", icsConfig.Addr.Host, icsConfig.Addr.Port)
	mux := enableCORS(initMultiplexer())

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.GetLogger().Fatal("Failed to start listener", logger.Error(err))
	}
	logger.GetLogger().Info("WSO2 cohort sync service started", logger.String("addr", serverAddr))

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		logger.GetLogger().Fatal("Failed to serve requests", logger.Error(err))
	}
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.GetLogger().Error("Failed to register the services", logger.Error(err))
	}
	return mux
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getICSHome() string {

	// Parse project directory from command line arguments.
	projectHome := ""
	projectHomeFlag := flag.String("icsHome", "", "Path to cohort sync service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		projectHome = *projectHomeFlag
	} else {
		// If no command line argument is provided, use the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			log.Fatalf("Failed to get current working directory: %v", dirErr)
		}
		projectHome = dir
	}
	return projectHome
}
