package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	DBPath         string           `json:"db_path"`
	JWTSecret      string           `json:"jwt_secret"`
	Port           int              `json:"port"`
	VersionMaxKeep int              `json:"version_max_keep"`
	LogConfig      logger.LogConfig `json:"log_config"`
	FileStore      FileStoreConfig  `json:"file_store"`
	DocServer      DocServerConfig  `json:"doc_server"`
}

type FileStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

// DocServerConfig describes the external document editor service. URL is the
// address browsers reach the editor on; InternalURL is the address the editor
// reaches this service on (a docker bridge IP in the original deployment, so
// the two are rarely the same host).
type DocServerConfig struct {
	URL         string `json:"url"`
	InternalURL string `json:"internal_url"`
	Secret      string `json:"secret"`
	Lang        string `json:"lang"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return nil, fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		s3 := cfg.FileStore.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.SecretID == "" || s3.SecretKey == "" {
			return nil, fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("file_store.type must be local or s3")
	}
	if cfg.DocServer.URL == "" {
		return nil, fmt.Errorf("doc_server.url is required")
	}
	if cfg.DocServer.InternalURL == "" {
		cfg.DocServer.InternalURL = cfg.DocServer.URL
	}
	if cfg.DocServer.Secret == "" {
		return nil, fmt.Errorf("doc_server.secret is required")
	}
	if cfg.DocServer.Lang == "" {
		cfg.DocServer.Lang = "en-US"
	}
	return &cfg, nil
}
