// Package cli provides the interactive upload client.
//
// It wires configuration, the remote store, the local attachment database,
// metrics and an upload session, then runs a REPL:
//
//	add <path...>                  select local files
//	remove <id>                    drop a selected file
//	list                           show the selection
//	upload <parent-id> [k=v ...]   upload the selection
//	retry <id>                     retry a failed item
//	cancel <id>                    cancel a queued or running item
//	status                         show upload progress
//	attachments <parent-id>        show uploaded attachments
//	help, exit
//
// Uploads run in the background; progress is printed as it changes.
package cli
