package port

import (
	"context"
	"io"
	"time"
)

// ObjectStore holds generated exports (salary sheets, invoice PDFs).
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)

	// ObjectURL is the stable, unsigned address of a stored object,
	// suitable for embedding in the document itself.
	ObjectURL(key string) string
}
