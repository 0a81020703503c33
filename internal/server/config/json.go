package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/timesheet/internal/timex"
)

// JsonConfig is the on-disk shape of a JSON config file. Durations use
// timex.Duration so both "12h" and integer nanoseconds are accepted.
// Fields left out of the file keep their previous value.
type JsonConfig struct {
	HTTPAddr                string         `json:"http_addr"`
	StorageBackend          string         `json:"storage_backend"`
	CSVPath                 string         `json:"csv_path"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	AdminPasswordHash       string         `json:"admin_password_hash"`
	AttachmentBackend       string         `json:"attachment_backend"`
	UploadDir               string         `json:"upload_dir"`
	MaxUploadSize           int64          `json:"max_upload_size"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	ReferenceYear           int            `json:"reference_year"`
	LogLevel                string         `json:"log_level"`
}

// parseJson overlays values from the JSON file at path onto config.
// An empty path loads nothing.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.CSVPath, c.CSVPath)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setString(&config.AdminPasswordHash, c.AdminPasswordHash)
	setString(&config.AttachmentBackend, c.AttachmentBackend)
	setString(&config.UploadDir, c.UploadDir)
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.ReferenceYear > 0 {
		config.ReferenceYear = c.ReferenceYear
	}
	setString(&config.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
