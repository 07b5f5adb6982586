// Package blob stores chat attachments and avatars and returns the public URL
// each object is served from.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// Storage writes and reads objects by key.
type Storage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Upload kinds, used as metric labels.
const (
	KindAttachment = "attachment"
	KindAvatar     = "avatar"
)

// AttachmentKey is messages/{conversationId}/{epochMillis}_{filename}.
func AttachmentKey(conversationID string, now time.Time, filename string) string {
	return fmt.Sprintf("messages/%s/%d_%s", conversationID, now.UnixMilli(), baseName(filename))
}

// AvatarKey is avatars/{userId}_{epochMillis}.
func AvatarKey(userID string, now time.Time) string {
	return fmt.Sprintf("avatars/%s_%d", userID, now.UnixMilli())
}

// KindOf classifies a key built by AttachmentKey or AvatarKey.
func KindOf(key string) string {
	if strings.HasPrefix(key, "avatars/") {
		return KindAvatar
	}
	return KindAttachment
}

// baseName keeps only the last path element of a client-supplied file name.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// PublicURL joins base and key, escaping each key segment so file names with
// spaces, '#', '?' or '%' stay inside the path.
func PublicURL(base, key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segs, "/")
}

// ValidKey rejects keys that could escape the storage root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
