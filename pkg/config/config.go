// Package config loads worker settings from the environment, following the teacher's
// viper-based env-prefixed loader (cmd/revad/config), collapsed into a single decoded
// struct instead of the teacher's nested map-get API.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

func decode(m map[string]interface{}, out *Settings) error {
	return mapstructure.Decode(m, out)
}

// Settings holds every environment-driven setting this worker reads. Secret retrieval
// (Vault) is out of scope; values come from plain environment variables or an optional
// local .env-style file for development.
type Settings struct {
	AppName string `mapstructure:"app_name"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	S3Host          string `mapstructure:"s3_host"`
	S3Port          int    `mapstructure:"s3_port"`
	S3InternalHTTPS bool   `mapstructure:"s3_internal_https"`
	S3AccessKey     string `mapstructure:"s3_access_key"`
	S3SecretKey     string `mapstructure:"s3_secret_key"`

	DataopsService      string `mapstructure:"dataops_service"`
	MetadataService     string `mapstructure:"metadata_service"`
	ProjectService      string `mapstructure:"project_service"`
	ApprovalService     string `mapstructure:"approval_service"`
	NotificationService string `mapstructure:"notification_service"`
	DatasetService      string `mapstructure:"dataset_service"`

	GreenZoneLabel string `mapstructure:"green_zone_label"`
	CoreZoneLabel  string `mapstructure:"core_zone_label"`

	TempDir              string `mapstructure:"temp_dir"`
	CopiedWithApprovalTag string `mapstructure:"copied_with_approval_tag"`

	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     int    `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`

	KafkaBrokers string `mapstructure:"kafka_brokers"`

	// RemoveObjectOnArchive preserves the source's commented-out remove_object call:
	// archival leaves bytes in the object store unless this is explicitly enabled.
	// See DESIGN.md, "preserved possibly-buggy behaviors".
	RemoveObjectOnArchive bool `mapstructure:"remove_object_on_archive"`
}

// S3Endpoint is the "host:port" pair used to build location_uri values.
func (s Settings) S3Endpoint() string {
	return fmt.Sprintf("%s:%d", s.S3Host, s.S3Port)
}

// Brokers splits the comma-separated KafkaBrokers setting into a broker address list.
func (s Settings) Brokers() []string {
	if s.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(s.KafkaBrokers, ",")
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_name", "pipelines-core")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("s3_port", 9000)
	v.SetDefault("s3_internal_https", false)
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("dataops_service", "http://127.0.0.1:5063")
	v.SetDefault("metadata_service", "http://127.0.0.1:5066")
	v.SetDefault("project_service", "http://127.0.0.1:5064")
	v.SetDefault("approval_service", "http://127.0.0.1:8000")
	v.SetDefault("notification_service", "http://127.0.0.1:5065")
	v.SetDefault("dataset_service", "http://127.0.0.1:5067")
	v.SetDefault("green_zone_label", "Greenroom")
	v.SetDefault("core_zone_label", "Core")
	v.SetDefault("temp_dir", "/tmp/pipelines-core/")
	v.SetDefault("copied_with_approval_tag", "copied-to-core")
	v.SetDefault("redis_host", "127.0.0.1")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("remove_object_on_archive", false)
}

// Load reads settings from the environment (prefix PIPELINES_), optionally overlaid with
// a config file at path if non-empty.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("pipelines")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	var s Settings
	keys := []string{
		"app_name", "log_level", "log_format",
		"s3_host", "s3_port", "s3_internal_https", "s3_access_key", "s3_secret_key",
		"dataops_service", "metadata_service", "project_service", "approval_service",
		"notification_service", "dataset_service",
		"green_zone_label", "core_zone_label",
		"temp_dir", "copied_with_approval_tag",
		"redis_host", "redis_port", "redis_password",
		"kafka_brokers", "remove_object_on_archive",
	}
	settingsMap := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		settingsMap[k] = v.Get(k)
	}
	if err := decode(settingsMap, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
