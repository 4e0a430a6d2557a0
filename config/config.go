// Package config loads portal configuration from the environment
package config

import (
	"os"
	"strings"

	"github.com/fieldscope/portal/internal/constants"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// FlowAPI holds the connection settings for the workflow orchestration API
type FlowAPI struct {
	BaseURL      string
	Username     string
	Password     string
	DeploymentID string
	WorkPool     string
}

// ChartAPI holds the connection settings for the BI chart API
type ChartAPI struct {
	BaseURL  string
	Username string
	Password string
}

// ObjStore holds the connection settings for the object store
type ObjStore struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Tenant    string
}

// LLM holds the connection settings for the language-model completion API
type LLM struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Scraper holds the credentials for the field-audit site export
type Scraper struct {
	Username string
	Password string
}

// LoadFlowAPI reads the orchestration API settings from the environment.
// The auth string follows the "user:password" convention of the upstream API.
func LoadFlowAPI() FlowAPI {
	auth := GetEnv(constants.EnvFlowAPIAuth, "")
	username, password := "", ""
	if idx := strings.IndexByte(auth, ':'); idx >= 0 {
		username, password = auth[:idx], auth[idx+1:]
	}
	return FlowAPI{
		BaseURL:      GetEnv(constants.EnvFlowAPIURL, "http://localhost:4200/api"),
		Username:     username,
		Password:     password,
		DeploymentID: GetEnv(constants.EnvFlowDeploymentID, ""),
		WorkPool:     GetEnv(constants.EnvFlowWorkPool, "default"),
	}
}

// LoadChartAPI reads the BI chart API settings from the environment
func LoadChartAPI() ChartAPI {
	return ChartAPI{
		BaseURL:  GetEnv(constants.EnvChartAPIURL, "http://localhost:8088"),
		Username: GetEnv(constants.EnvChartAPIUsername, "admin"),
		Password: GetEnv(constants.EnvChartAPIPassword, "admin"),
	}
}

// LoadObjStore reads the object store settings from the environment
func LoadObjStore() ObjStore {
	return ObjStore{
		Endpoint:  GetEnv(constants.EnvObjStoreEndpoint, "localhost:9000"),
		Bucket:    GetEnv(constants.EnvObjStoreBucket, "hawkeye"),
		AccessKey: GetEnv(constants.EnvObjStoreAccessKey, ""),
		SecretKey: GetEnv(constants.EnvObjStoreSecretKey, ""),
		Region:    GetEnv(constants.EnvObjStoreRegion, "us-east-1"),
		UseSSL:    GetEnv(constants.EnvObjStoreUseSSL, "false") == "true",
		Tenant:    GetEnv(constants.EnvTenant, "lm"),
	}
}

// LoadLLM reads the language-model API settings from the environment
func LoadLLM() LLM {
	return LLM{
		BaseURL: GetEnv(constants.EnvLLMAPIURL, "https://api.openai.com/v1"),
		APIKey:  GetEnv(constants.EnvLLMAPIKey, ""),
		Model:   GetEnv(constants.EnvLLMModel, "gpt-4o-mini"),
	}
}

// LoadScraper reads the field-audit site credentials from the environment
func LoadScraper() Scraper {
	return Scraper{
		Username: GetEnv(constants.EnvScraperUsername, ""),
		Password: GetEnv(constants.EnvScraperPassword, ""),
	}
}
