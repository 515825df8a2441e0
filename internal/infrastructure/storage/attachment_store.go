package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/infrastructure/metrics"
	"jan-server/services/messaging-api/internal/utils/blobid"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const maxNameLength = 120

// AttachmentStore adapts a Blob backend to the conversation attachment contract.
type AttachmentStore struct {
	blob    Blob
	allowed map[string]struct{}
	log     zerolog.Logger
	now     func() time.Time
}

var _ conversation.AttachmentStore = (*AttachmentStore)(nil)

// NewAttachmentStore wraps blob. An empty allow-list accepts every media type.
func NewAttachmentStore(cfg *config.Config, blob Blob, log zerolog.Logger) *AttachmentStore {
	allowed := make(map[string]struct{}, len(cfg.AllowedAttachmentTypes))
	for _, t := range cfg.AllowedAttachmentTypes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &AttachmentStore{
		blob:    blob,
		allowed: allowed,
		log:     log.With().Str("component", "attachment-store").Str("backend", blob.Name()).Logger(),
		now:     time.Now,
	}
}

func (s *AttachmentStore) Store(ctx context.Context, data []byte, suggestedName string) (*conversation.Attachment, error) {
	detected := mimetype.Detect(data)
	mediaType := detected.String()
	if base, _, ok := strings.Cut(mediaType, ";"); ok {
		mediaType = strings.TrimSpace(base)
	}

	if !s.accepts(detected) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("attachment type %s is not allowed", mediaType), nil, "c432544f-16c2-489b-af44-4b0456ca9f15")
	}

	name := sanitizeName(suggestedName)
	if name == "" {
		name = "attachment" + detected.Extension()
	}
	key := blobid.Key(s.now().UTC(), detected.Extension())

	start := time.Now()
	err := s.blob.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mediaType)
	metrics.RecordStorageOperation(s.blob.Name(), "upload", err, time.Since(start))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"failed to upload attachment", err, "10b5a1af-21c9-4820-876c-8f9b8b0f3858")
	}
	metrics.RecordAttachmentStored(mediaType, int64(len(data)))

	s.log.Debug().Str("key", key).Str("media_type", mediaType).Int("bytes", len(data)).Msg("attachment stored")
	return &conversation.Attachment{
		Name:      name,
		Reference: key,
		Size:      int64(len(data)),
		MediaType: mediaType,
	}, nil
}

func (s *AttachmentStore) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	if _, err := blobid.Parse(reference); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
			"attachment reference is malformed", err, "69d21406-a641-4a1f-9657-d52a7e5b709a")
	}

	start := time.Now()
	body, _, err := s.blob.Download(ctx, reference)
	metrics.RecordStorageOperation(s.blob.Name(), "download", err, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
				"attachment content not found", err, "ee9faa90-91b8-4954-a7a1-b92a959c8aca")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"failed to download attachment", err, "7096456f-c733-4ede-8ef1-1588c1bb2814")
	}
	return body, nil
}

func (s *AttachmentStore) Remove(ctx context.Context, reference string) error {
	start := time.Now()
	err := s.blob.Delete(ctx, reference)
	metrics.RecordStorageOperation(s.blob.Name(), "delete", err, time.Since(start))
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"failed to delete attachment", err, "0707d952-c12f-4ef9-b1ce-5f5b6fbe8f8b")
	}
	return nil
}

// accepts walks the detected type and its parents so "text/plain" admits "text/csv".
func (s *AttachmentStore) accepts(detected *mimetype.MIME) bool {
	if len(s.allowed) == 0 {
		return true
	}
	for m := detected; m != nil; m = m.Parent() {
		for _, candidate := range []string{m.String(), wildcard(m.String())} {
			base, _, _ := strings.Cut(candidate, ";")
			if _, ok := s.allowed[strings.ToLower(strings.TrimSpace(base))]; ok {
				return true
			}
		}
	}
	return false
}

func wildcard(mediaType string) string {
	major, _, ok := strings.Cut(mediaType, "/")
	if !ok {
		return mediaType
	}
	return major + "/*"
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return -1
		}
		return r
	}, name)
	if len(name) > maxNameLength {
		ext := path.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		cut := maxNameLength - len(ext)
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}
