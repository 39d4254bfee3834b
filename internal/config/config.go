package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	MetricsPort     int    `mapstructure:"metrics_port"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type DriveConf struct {
	Region            string `mapstructure:"region"`
	Bucket            string `mapstructure:"bucket"`
	Folder            string `mapstructure:"folder"`
	PublicRead        bool   `mapstructure:"public_read"`
	PresignTTLSeconds int    `mapstructure:"presign_ttl_seconds"`
}

type CDNConf struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Folder  string `mapstructure:"folder"`
}

type CompressConf struct {
	TargetKB       int    `mapstructure:"target_kb"`
	MaxWidth       int    `mapstructure:"max_width"`
	MaxHeight      int    `mapstructure:"max_height"`
	Format         string `mapstructure:"format"`
	QualityFloor   int    `mapstructure:"quality_floor"`
	QualityCeiling int    `mapstructure:"quality_ceiling"`
}

type SweepConf struct {
	GraceMinutes int   `mapstructure:"grace_minutes"`
	PageLimit    int64 `mapstructure:"page_limit"`
}

type RedisConf struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	RoleTTLSeconds int    `mapstructure:"role_cache_ttl_seconds"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConf struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type Config struct {
	App      AppConf      `mapstructure:"app"`
	Mongo    MongoConf    `mapstructure:"mongodb"`
	Drive    DriveConf    `mapstructure:"drive"`
	CDN      CDNConf      `mapstructure:"cdn"`
	Compress CompressConf `mapstructure:"compress"`
	Sweep    SweepConf    `mapstructure:"sweep"`
	Redis    RedisConf    `mapstructure:"redis"`
	Kafka    KafkaConf    `mapstructure:"kafka"`
	JWT      JWTConf      `mapstructure:"jwt"`

	// derived
	ShutdownTimeout time.Duration
	PresignTTL      time.Duration
	RoleCacheTTL    time.Duration
	SweepGrace      time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.ShutdownSeconds == 0 {
		cfg.App.ShutdownSeconds = 15
	}
	if cfg.App.RateLimitPerMin == 0 {
		cfg.App.RateLimitPerMin = 60
	}
	if cfg.Drive.PresignTTLSeconds == 0 {
		cfg.Drive.PresignTTLSeconds = 600
	}
	if cfg.Compress.TargetKB == 0 {
		cfg.Compress.TargetKB = 150
	}
	if cfg.Compress.MaxWidth == 0 {
		cfg.Compress.MaxWidth = 1600
	}
	if cfg.Compress.MaxHeight == 0 {
		cfg.Compress.MaxHeight = 1600
	}
	if cfg.Compress.Format == "" {
		cfg.Compress.Format = "jpeg"
	}
	if cfg.Compress.QualityFloor == 0 {
		cfg.Compress.QualityFloor = 40
	}
	if cfg.Compress.QualityCeiling == 0 {
		cfg.Compress.QualityCeiling = 90
	}
	if cfg.Sweep.GraceMinutes == 0 {
		cfg.Sweep.GraceMinutes = 60
	}
	if cfg.Sweep.PageLimit == 0 {
		cfg.Sweep.PageLimit = 10000
	}
	if cfg.Redis.RoleTTLSeconds == 0 {
		cfg.Redis.RoleTTLSeconds = 300
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.PresignTTL = time.Duration(cfg.Drive.PresignTTLSeconds) * time.Second
	cfg.RoleCacheTTL = time.Duration(cfg.Redis.RoleTTLSeconds) * time.Second
	cfg.SweepGrace = time.Duration(cfg.Sweep.GraceMinutes) * time.Minute
}
