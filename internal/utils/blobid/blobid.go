package blobid

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu   sync.Mutex
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a lowercase ULID string for a blob created at t.
func New(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(t), newEntropy())
	return strings.ToLower(id.String())
}

// Key builds the storage key for an attachment: attachments/<yyyy>/<mm>/<ulid><ext>.
func Key(t time.Time, ext string) string {
	t = t.UTC()
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("attachments/%04d/%02d/%s%s", t.Year(), int(t.Month()), New(t), ext)
}

// Parse extracts the ULID from a storage key produced by Key.
func Parse(key string) (ulid.ULID, error) {
	base := key[strings.LastIndex(key, "/")+1:]
	if dot := strings.Index(base, "."); dot >= 0 {
		base = base[:dot]
	}
	return ulid.ParseStrict(strings.ToUpper(base))
}
