// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names recognized by the portal
const (
	// EnvDBHost is the environment variable for the database host
	EnvDBHost = "DB_HOST"
	// EnvDBPort is the environment variable for the database port
	EnvDBPort = "DB_PORT"
	// EnvDBUser is the environment variable for the database user
	EnvDBUser = "DB_USER"
	// EnvDBPassword is the environment variable for the database password
	EnvDBPassword = "DB_PASSWORD"
	// EnvDBName is the environment variable for the database name
	EnvDBName = "DB_NAME"
	// EnvDBSSLMode is the environment variable for the database TLS mode
	EnvDBSSLMode = "DB_SSL_MODE"

	// EnvFlowAPIURL is the base URL of the workflow orchestration API
	EnvFlowAPIURL = "FLOW_API_URL"
	// EnvFlowAPIAuth is the basic-auth credential pair ("user:password") for the orchestration API
	EnvFlowAPIAuth = "FLOW_API_AUTH_STRING"
	// EnvFlowDeploymentID is the deployment the report flow is triggered against
	EnvFlowDeploymentID = "FLOW_DEPLOYMENT_ID"
	// EnvFlowWorkPool is the work pool flow runs are scheduled on
	EnvFlowWorkPool = "FLOW_WORK_POOL"

	// EnvObjStoreEndpoint is the object store endpoint (host:port)
	EnvObjStoreEndpoint = "OBJSTORE_ENDPOINT"
	// EnvObjStoreBucket is the bucket all artifacts are written to
	EnvObjStoreBucket = "OBJSTORE_BUCKET"
	// EnvObjStoreAccessKey is the object store access key
	EnvObjStoreAccessKey = "OBJSTORE_ACCESS_KEY"
	// EnvObjStoreSecretKey is the object store secret key
	EnvObjStoreSecretKey = "OBJSTORE_SECRET_KEY"
	// EnvObjStoreRegion is the object store region
	EnvObjStoreRegion = "OBJSTORE_REGION"
	// EnvObjStoreUseSSL toggles TLS on the object store connection
	EnvObjStoreUseSSL = "OBJSTORE_USE_SSL"
	// EnvTenant is the logical prefix all artifacts for this installation live under
	EnvTenant = "OBJSTORE_TENANT"

	// EnvChartAPIURL is the base URL of the BI chart API
	EnvChartAPIURL = "CHART_API_URL"
	// EnvChartAPIUsername is the BI chart API username
	EnvChartAPIUsername = "CHART_API_USERNAME"
	// EnvChartAPIPassword is the BI chart API password
	EnvChartAPIPassword = "CHART_API_PASSWORD"

	// EnvLLMAPIURL is the base URL of the language-model completion API
	EnvLLMAPIURL = "LLM_API_URL"
	// EnvLLMAPIKey is the API key for the language-model completion API
	EnvLLMAPIKey = "LLM_API_KEY"
	// EnvLLMModel is the model identifier used for summaries
	EnvLLMModel = "LLM_MODEL"

	// EnvScraperUsername is the field-audit site login
	EnvScraperUsername = "CHECKLIST_USERNAME"
	// EnvScraperPassword is the field-audit site password
	EnvScraperPassword = "CHECKLIST_PASSWORD"

	// EnvAdminPassword is the initial administrative password seeded on first start
	EnvAdminPassword = "PORTAL_ADMIN_PASSWORD"

	// EnvServerAddress is the address of the portal API server (used by the CLI)
	EnvServerAddress = "PORTAL_SERVER_ADDRESS"
)
