// Package metadata stores small device-local key/value facts such as the
// persisted device id and the time of the last successful sync.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyDeviceID       = "device_id"
	KeyLastDownloadAt = "last_download_at"
	KeyLastUploadAt   = "last_upload_at"
)

type Repository interface {
	// Get returns ("", false, nil) when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
}
