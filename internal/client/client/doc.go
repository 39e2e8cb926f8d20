// Package client wires the upload client's collaborators from configuration:
// the remote store (HTTP or S3) and the local SQLite database with its
// embedded goose migrations and repositories.
package client
