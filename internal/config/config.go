// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the loaded configuration, available globally after Load.
var Conf *Config

var v *viper.Viper

type Config struct {
	Study    StudyConfig    `mapstructure:"study"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Reports  ReportsConfig  `mapstructure:"reports"`
}

// StudyConfig locates the study data on disk and carries the analysis
// thresholds shared across the batch commands.
type StudyConfig struct {
	DataRoot          string `mapstructure:"data_root"`
	SchemaFile        string `mapstructure:"schema_file"`
	SourceWorkbook    string `mapstructure:"source_workbook"`
	OutputWorkbook    string `mapstructure:"output_workbook"`
	HighlightWorkbook string `mapstructure:"highlight_workbook"`
	SpeedDir          string `mapstructure:"speed_dir"`
	SurveyDir         string `mapstructure:"survey_dir"`
	MappingDir        string `mapstructure:"mapping_dir"`
	LeftPupilFile     string `mapstructure:"left_pupil_file"`
	RightPupilFile    string `mapstructure:"right_pupil_file"`

	FollowProximity float64 `mapstructure:"follow_proximity"`
	FollowWindow    float64 `mapstructure:"follow_window"`
	PupilWindow     float64 `mapstructure:"pupil_window"`
	DeltaOutlier    float64 `mapstructure:"delta_outlier"`
	StillnessEps    float64 `mapstructure:"stillness_eps"`
	Alpha           float64 `mapstructure:"alpha"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	RefreshInterval int    `mapstructure:"refresh_interval"`
}

type ReportsConfig struct {
	Directory string `mapstructure:"directory"`
}

// Load reads configuration from the given directory (falling back to the
// working directory), layered under FIRE2_* environment variables.
func Load(configDir string) error {
	v = viper.New()
	setDefaults(v)

	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FIRE2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine, defaults and environment carry the run.
	}

	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Watch re-unmarshals Conf whenever the config file changes on disk, so a
// running dashboard picks up edits without a restart.
func Watch(log *zap.Logger) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Failed to reload config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		log.Info("Config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("study.data_root", ".")
	v.SetDefault("study.schema_file", "config/study.yaml")
	v.SetDefault("study.source_workbook", "Fire 2 Data.xlsx")
	v.SetDefault("study.output_workbook", "Fire 2 Data Proceed.xlsx")
	v.SetDefault("study.highlight_workbook", "Fire 2 TMP.xlsx")
	v.SetDefault("study.speed_dir", "speed")
	v.SetDefault("study.survey_dir", "survey")
	v.SetDefault("study.mapping_dir", "output_mappings")
	v.SetDefault("study.left_pupil_file", "leftpupil.txt")
	v.SetDefault("study.right_pupil_file", "rightpupil.txt")
	v.SetDefault("study.follow_proximity", 2.0)
	v.SetDefault("study.follow_window", 10.0)
	v.SetDefault("study.pupil_window", 5.0)
	v.SetDefault("study.delta_outlier", 10.0)
	v.SetDefault("study.stillness_eps", 1e-6)
	v.SetDefault("study.alpha", 0.05)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "fire2")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fire2")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.refresh_interval", 5)

	v.SetDefault("reports.directory", "reports")
}
