package conversation

import (
	"context"
	"io"
)

// AttachmentStore persists message attachments as opaque blobs.
type AttachmentStore interface {
	// Store writes data and returns its reference, size and detected media type.
	Store(ctx context.Context, data []byte, suggestedName string) (*Attachment, error)
	Open(ctx context.Context, reference string) (io.ReadCloser, error)
	Remove(ctx context.Context, reference string) error
}

// AttachmentUpload is a file supplied with a new conversation or reply.
type AttachmentUpload struct {
	Name string
	Data []byte
}

// AttachmentContent is an opened attachment ready to be streamed.
type AttachmentContent struct {
	Attachment Attachment
	Body       io.ReadCloser
}
