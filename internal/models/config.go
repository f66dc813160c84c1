package models

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// VendorConfig carries the vendor API surface: URL templates with
// {placeholder} fields plus the regional headers the API requires.
type VendorConfig struct {
	RegionCode   string `mapstructure:"region_code"`
	Language     string `mapstructure:"language"`
	Market       string `mapstructure:"market"`
	SourceURI    string `mapstructure:"source_uri"`
	ResponseType string `mapstructure:"response_type"`

	StoreFindURL string `mapstructure:"store_find_url"` // {regioncode},{lat},{lng}
	MenuURL      string `mapstructure:"menu_url"`       // {storeID},{lang}
	DealURL      string `mapstructure:"deal_url"`       // {storeID},{lang},{dealID}
	ValidateURL  string `mapstructure:"validate_url"`
	PriceURL     string `mapstructure:"price_url"`

	GeocodeURL string `mapstructure:"geocode_url"` // {query},{key}
	GeocodeKey string `mapstructure:"geocode_key"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type Config struct {
	ServiceMethod string   `mapstructure:"service_method"`
	DealPriority  []string `mapstructure:"deal_priority"`

	Vendor       VendorConfig       `mapstructure:"vendor"`
	Database     DatabaseConfig     `mapstructure:"database"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"kafka_session_timeout_ms"`

	// OutputType selects the event sink: console, json, parquet, kafka or
	// postgres. OutputDestination switches parquet between local disk and
	// cloud storage.
	OutputType        string `mapstructure:"output_type"`
	OutputPath        string `mapstructure:"output_path"`
	OutputFolder      string `mapstructure:"output_folder"`
	OutputDestination string `mapstructure:"output_destination"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("service_method", ServiceMethodCarryout)
	viper.SetDefault("output_type", "console")
	viper.SetDefault("output_destination", "local")

	if err := viper.ReadInConfig(); err != nil {
		// Demo mode and flag-only runs work without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if len(config.DealPriority) == 0 {
		config.DealPriority = DefaultDealPriority
	}

	return &config, nil
}
