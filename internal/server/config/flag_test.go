package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = args
	t.Cleanup(func() { os.Args = orig })
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-r", "postgres", "-f", "log.csv", "-d", "db", "-s", "secret",
				"-t", "30", "-w", "$2a$hash", "-k", "s3", "-o", "up", "-m", "1024",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-y", "2024", "-l", "debug",
			},
			expected: &Config{
				HTTPAddr:                "127.0.0.1:9090",
				StorageBackend:          "postgres",
				CSVPath:                 "log.csv",
				DatabaseDSN:             "db",
				SecretKey:               "secret",
				SessionValidityDuration: 30 * time.Minute,
				AdminPasswordHash:       "$2a$hash",
				AttachmentBackend:       "s3",
				UploadDir:               "up",
				MaxUploadSize:           1024,
				S3RootUser:              "user",
				S3RootPassword:          "password",
				S3Bucket:                "bucket",
				S3Region:                "us-west-1",
				S3BaseEndpoint:          "http://endpoint",
				ReferenceYear:           2024,
				LogLevel:                "debug",
			},
		},
		{
			name:     "unrelated flags ignored, duration untouched",
			args:     []string{"-c", "x.json", "--verbose", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1", SessionValidityDuration: 90 * time.Second},
		},
		{
			name:    "bad int",
			args:    []string{"-y", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{SessionValidityDuration: 90 * time.Second}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
