// Package config loads runtime configuration for the upload client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Sizes are in bytes. Absent fields keep their defaults:
//
//	{
//	  "server_url": "https://api.example.com",
//	  "store": "http",
//	  "access_token": "…",
//	  "locale": "ru",
//	  "kind": "certification_document",
//	  "max_files": 10,
//	  "max_file_size": 10485760,
//	  "auto_clear_delay": "3s",
//	  "upload_timeout": "2m",
//	  "s3": {"endpoint": "http://localhost:9000", "bucket": "attachments"}
//	}
//
// This package does not read environment variables; the S3 store still
// falls back to the AWS default credential chain when no user is set.
package config
