package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/flagx"
)

var allowedFlags = []string{"-a", "-r", "-f", "-d", "-s", "-t", "-w", "-k", "-o", "-m", "-u", "-p", "-b", "-g", "-e", "-y", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-r string   storage backend: csv, postgres, sqlite
//	-f string   CSV entry file
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      session validity, minutes
//	-w string   bcrypt hash of the admin password
//	-k string   attachment backend: disk, s3
//	-o string   upload directory
//	-m int      max upload size, bytes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-y int      reference year for short date display
//	-l string   log level
//
// args are filtered with flagx.FilterArgs first so unrelated flags do not fail parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "r", config.StorageBackend, "storage backend")
	fs.StringVar(&config.CSVPath, "f", config.CSVPath, "CSV entry file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.AdminPasswordHash, "w", config.AdminPasswordHash, "admin password bcrypt hash")
	fs.StringVar(&config.AttachmentBackend, "k", config.AttachmentBackend, "attachment backend")
	fs.StringVar(&config.UploadDir, "o", config.UploadDir, "upload directory")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size in bytes")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.ReferenceYear, "y", config.ReferenceYear, "reference year")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
		}
	})
	return nil
}
