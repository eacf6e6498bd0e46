// Package upload pushes export snapshots to remote storage.
package upload

import "context"

// Uploader uploads an export snapshot file to remote storage.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// Upload uploads the snapshot at localPath. The file basename is used
	// as the object name under the configured remote prefix.
	Upload(ctx context.Context, localPath string) error
}
