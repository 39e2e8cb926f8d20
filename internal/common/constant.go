// Package common contains shared constants and sentinel errors used across
// the upload client components.
package common

import "time"

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound upload requests.
const AuthorizationHeaderName = "Authorization"

// DefaultAutoClearDelay is how long terminal upload statuses stay visible
// before the progress registry is cleared.
const DefaultAutoClearDelay = 3 * time.Second

// InitialUploadProgress is the progress shown while a request is in flight.
// The transport does not report byte-level progress.
const InitialUploadProgress = 30
