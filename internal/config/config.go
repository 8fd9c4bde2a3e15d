package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied before validation
const (
	DefaultRequests              = 20
	DefaultRequestTimeoutSeconds = 30
	DefaultParallelTargets       = 1
	DefaultProtocol              = "http1"
	DefaultServicesFile          = "services.json"
	DefaultCSVFile               = "benchmark_results.csv"
	DefaultDeploymentDir         = "."

	DefaultAWSRuntime  = "provided.al2023"
	DefaultAWSHandler  = "bootstrap"
	DefaultMemoryMB    = 3000
	DefaultTimeoutSecs = 60

	DefaultGCPEntryPoint = "BenchmarkFunction"

	DefaultDigitalOceanAPIURL = "https://api.digitalocean.com"
	DefaultFleekAPIURL        = "https://api.fleek.co"
)

// Config represents the complete configuration for the tool
type Config struct {
	Benchmark     BenchmarkConfig    `json:"benchmark" yaml:"benchmark"`
	Output        OutputConfig       `json:"output" yaml:"output"`
	Metrics       MetricsConfig      `json:"metrics" yaml:"metrics"`
	DeploymentDir string             `json:"deployment_dir" yaml:"deployment_dir"`
	AWS           AWSConfig          `json:"aws" yaml:"aws"`
	GCP           GCPConfig          `json:"gcp" yaml:"gcp"`
	DigitalOcean  DigitalOceanConfig `json:"digitalocean" yaml:"digitalocean"`
	Fleek         FleekConfig        `json:"fleek" yaml:"fleek"`
}

// BenchmarkConfig defines the sampling parameters
type BenchmarkConfig struct {
	Requests              int    `json:"requests" yaml:"requests"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	ParallelTargets       int    `json:"parallel_targets" yaml:"parallel_targets"`
	Protocol              string `json:"protocol" yaml:"protocol"`
	ServicesFile          string `json:"services_file" yaml:"services_file"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	CSVFile    string `json:"csv_file" yaml:"csv_file"`
	ReportFile string `json:"report_file" yaml:"report_file"`
	S3Bucket   string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Prefix   string `json:"s3_prefix" yaml:"s3_prefix"`
	S3Region   string `json:"s3_region" yaml:"s3_region"`
}

// MetricsConfig defines the prometheus endpoint
type MetricsConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// AWSConfig contains Lambda deployment settings
type AWSConfig struct {
	Regions         []string `json:"regions" yaml:"regions"`
	FunctionName    string   `json:"function_name" yaml:"function_name"`
	SourceFilePath  string   `json:"source_file_path" yaml:"source_file_path"`
	RoleARN         string   `json:"role_arn" yaml:"role_arn"`
	Runtime         string   `json:"runtime" yaml:"runtime"`
	Handler         string   `json:"handler" yaml:"handler"`
	MemoryMB        int      `json:"memory_mb" yaml:"memory_mb"`
	TimeoutSeconds  int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	AccessKeyID     string   `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string   `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPConfig contains Cloud Functions deployment settings
type GCPConfig struct {
	ProjectID      string   `json:"project_id" yaml:"project_id"`
	Runtime        string   `json:"runtime" yaml:"runtime"`
	Regions        []string `json:"regions" yaml:"regions"`
	FunctionName   string   `json:"function_name" yaml:"function_name"`
	SourceCodePath string   `json:"source_code_path" yaml:"source_code_path"`
	EntryPoint     string   `json:"entry_point" yaml:"entry_point"`
	Memory         string   `json:"memory" yaml:"memory"`
	Timeout        string   `json:"timeout" yaml:"timeout"`
}

// DigitalOceanConfig contains DigitalOcean Functions deployment settings
type DigitalOceanConfig struct {
	Regions        []string `json:"regions" yaml:"regions"`
	FunctionName   string   `json:"function_name" yaml:"function_name"`
	SourceCodePath string   `json:"source_code_path" yaml:"source_code_path"`
	APIToken       string   `json:"api_token" yaml:"api_token"`
	APIURL         string   `json:"api_url" yaml:"api_url"`
	MemoryMB       int      `json:"memory_mb" yaml:"memory_mb"`
}

// FleekConfig contains Fleek deployment settings
type FleekConfig struct {
	TeamID         string `json:"team_id" yaml:"team_id"`
	SiteID         string `json:"site_id" yaml:"site_id"`
	SourceCodePath string `json:"source_code_path" yaml:"source_code_path"`
	APIKey         string `json:"api_key" yaml:"api_key"`
	APIURL         string `json:"api_url" yaml:"api_url"`
}

// LoadConfig reads and parses the configuration file. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON. Values from
// a .env file next to the working directory and the process environment
// override secrets in the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is not an error
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration built only from defaults and the environment
func Default() *Config {
	cfg := &Config{}
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// applyEnv overrides secrets and project settings from the environment
func (c *Config) applyEnv() {
	setFromEnv(&c.AWS.RoleARN, "AWS_LAMBDA_ROLE_ARN")
	setFromEnv(&c.GCP.ProjectID, "GCP_PROJECT_ID")
	setFromEnv(&c.GCP.Runtime, "GCP_RUNTIME")
	setFromEnv(&c.DigitalOcean.APIToken, "DIGITALOCEAN_API_TOKEN")
	setFromEnv(&c.Fleek.APIKey, "FLEEK_API_KEY")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyDefaults fills unset fields
func (c *Config) applyDefaults() {
	if c.Benchmark.Requests == 0 {
		c.Benchmark.Requests = DefaultRequests
	}
	if c.Benchmark.RequestTimeoutSeconds == 0 {
		c.Benchmark.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.Benchmark.ParallelTargets == 0 {
		c.Benchmark.ParallelTargets = DefaultParallelTargets
	}
	if c.Benchmark.Protocol == "" {
		c.Benchmark.Protocol = DefaultProtocol
	}
	if c.Benchmark.ServicesFile == "" {
		c.Benchmark.ServicesFile = DefaultServicesFile
	}
	if c.Output.CSVFile == "" {
		c.Output.CSVFile = DefaultCSVFile
	}
	if c.DeploymentDir == "" {
		c.DeploymentDir = DefaultDeploymentDir
	}

	if c.AWS.Runtime == "" {
		c.AWS.Runtime = DefaultAWSRuntime
	}
	if c.AWS.Handler == "" {
		c.AWS.Handler = DefaultAWSHandler
	}
	if c.AWS.MemoryMB == 0 {
		c.AWS.MemoryMB = DefaultMemoryMB
	}
	if c.AWS.TimeoutSeconds == 0 {
		c.AWS.TimeoutSeconds = DefaultTimeoutSecs
	}

	if c.GCP.Memory == "" {
		c.GCP.Memory = "3000MB"
	}
	if c.GCP.Timeout == "" {
		c.GCP.Timeout = "60s"
	}
	if c.GCP.EntryPoint == "" {
		c.GCP.EntryPoint = DefaultGCPEntryPoint
	}

	if c.DigitalOcean.APIURL == "" {
		c.DigitalOcean.APIURL = DefaultDigitalOceanAPIURL
	}
	if c.DigitalOcean.MemoryMB == 0 {
		c.DigitalOcean.MemoryMB = 1024
	}
	if c.Fleek.APIURL == "" {
		c.Fleek.APIURL = DefaultFleekAPIURL
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Benchmark.Requests <= 0 {
		return fmt.Errorf("benchmark.requests must be positive")
	}
	if c.Benchmark.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("benchmark.request_timeout_seconds must not be negative")
	}
	if c.Benchmark.ParallelTargets <= 0 {
		return fmt.Errorf("benchmark.parallel_targets must be positive")
	}
	if c.Output.S3Prefix != "" && c.Output.S3Bucket == "" {
		return fmt.Errorf("output.s3_prefix requires output.s3_bucket")
	}
	return nil
}

// RequestTimeout returns the per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Benchmark.RequestTimeoutSeconds) * time.Second
}

// ValidateDeploy checks the settings needed to deploy to provider
func (c *Config) ValidateDeploy(provider string) error {
	switch provider {
	case "aws":
		if len(c.AWS.Regions) == 0 {
			return fmt.Errorf("aws.regions is required")
		}
		if c.AWS.FunctionName == "" {
			return fmt.Errorf("aws.function_name is required")
		}
		if c.AWS.SourceFilePath == "" {
			return fmt.Errorf("aws.source_file_path is required")
		}
		if c.AWS.RoleARN == "" {
			return fmt.Errorf("aws.role_arn or AWS_LAMBDA_ROLE_ARN is required")
		}
	case "gcp":
		if c.GCP.ProjectID == "" || c.GCP.Runtime == "" {
			return fmt.Errorf("gcp.project_id and gcp.runtime (or GCP_PROJECT_ID and GCP_RUNTIME) are required")
		}
		if len(c.GCP.Regions) == 0 {
			return fmt.Errorf("gcp.regions is required")
		}
		if c.GCP.FunctionName == "" {
			return fmt.Errorf("gcp.function_name is required")
		}
		if c.GCP.SourceCodePath == "" {
			return fmt.Errorf("gcp.source_code_path is required")
		}
	case "do":
		if len(c.DigitalOcean.Regions) == 0 {
			return fmt.Errorf("digitalocean.regions is required")
		}
		if c.DigitalOcean.FunctionName == "" {
			return fmt.Errorf("digitalocean.function_name is required")
		}
		if c.DigitalOcean.SourceCodePath == "" {
			return fmt.Errorf("digitalocean.source_code_path is required")
		}
		if c.DigitalOcean.APIToken == "" {
			return fmt.Errorf("digitalocean.api_token or DIGITALOCEAN_API_TOKEN is required")
		}
	case "fleek":
		if c.Fleek.TeamID == "" || c.Fleek.SiteID == "" {
			return fmt.Errorf("fleek.team_id and fleek.site_id are required")
		}
		if c.Fleek.SourceCodePath == "" {
			return fmt.Errorf("fleek.source_code_path is required")
		}
		if c.Fleek.APIKey == "" {
			return fmt.Errorf("fleek.api_key or FLEEK_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown provider: %s", provider)
	}
	return nil
}

// ValidateDelete checks the settings needed to delete recorded deployments
// of provider. Regions and function names come from the deployment data.
func (c *Config) ValidateDelete(provider string) error {
	switch provider {
	case "aws", "fleek":
	case "gcp":
		if c.GCP.ProjectID == "" {
			return fmt.Errorf("gcp.project_id or GCP_PROJECT_ID is required")
		}
	case "do":
		if c.DigitalOcean.APIToken == "" {
			return fmt.Errorf("digitalocean.api_token or DIGITALOCEAN_API_TOKEN is required")
		}
	default:
		return fmt.Errorf("unknown provider: %s", provider)
	}
	return nil
}
