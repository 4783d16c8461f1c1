package config

import (
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `json:"server"`
	AWS    AWSConfig    `json:"aws"`
	Tables TablesConfig `json:"tables"`
	Engine EngineConfig `json:"engine"`
}

// ServerConfig represents the dashboard API server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// AWSConfig represents the AWS client configuration
type AWSConfig struct {
	Region         string `json:"region"`
	AlertsTopicARN string `json:"alerts_topic_arn"`
}

// TablesConfig holds the DynamoDB table names
type TablesConfig struct {
	FarmMetadata       string `json:"farm_metadata"`
	CarbonCalculations string `json:"carbon_calculations"`
	GrowthCurves       string `json:"growth_curves"`
	CRIWeights         string `json:"cri_weights"`
}

// EngineConfig bounds the calculation batch
type EngineConfig struct {
	MaxConcurrent int    `json:"max_concurrent"`
	AlertChannel  string `json:"alert_channel"`
}

// Load builds the configuration from defaults overridden by environment
// variables.
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		AWS: AWSConfig{
			Region: "ap-south-1",
		},
		Tables: TablesConfig{
			FarmMetadata:       "CarbonReady-FarmMetadataTable",
			CarbonCalculations: "CarbonReady-CarbonCalculationsTable",
			GrowthCurves:       "CarbonReady-GrowthCurvesTable",
			CRIWeights:         "CarbonReady-CRIWeightsTable",
		},
		Engine: EngineConfig{
			MaxConcurrent: 8,
			AlertChannel:  "alerts",
		},
	}

	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if arn := os.Getenv("ALERTS_TOPIC_ARN"); arn != "" {
		config.AWS.AlertsTopicARN = arn
	}
	if table := os.Getenv("FARM_METADATA_TABLE"); table != "" {
		config.Tables.FarmMetadata = table
	}
	if table := os.Getenv("CARBON_CALCULATIONS_TABLE"); table != "" {
		config.Tables.CarbonCalculations = table
	}
	if table := os.Getenv("GROWTH_CURVES_TABLE"); table != "" {
		config.Tables.GrowthCurves = table
	}
	if table := os.Getenv("CRI_WEIGHTS_TABLE"); table != "" {
		config.Tables.CRIWeights = table
	}
	if workers := os.Getenv("ENGINE_MAX_CONCURRENT"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			config.Engine.MaxConcurrent = n
		}
	}
	if channel := os.Getenv("ENGINE_ALERT_CHANNEL"); channel != "" {
		config.Engine.AlertChannel = channel
	}
}
