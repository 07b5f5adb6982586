package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "messages/c1/1700000000123_resume.png", AttachmentKey("c1", now, "resume.png"))
	assert.Equal(t, "messages/c1/1700000000123_cv.pdf", AttachmentKey("c1", now, `C:\Users\ana\cv.pdf`))
	assert.Equal(t, "messages/c1/1700000000123_passwd", AttachmentKey("c1", now, "../../etc/passwd"))
	assert.Equal(t, "avatars/u1_1700000000123", AvatarKey("u1", now))
	assert.Equal(t, KindAvatar, KindOf(AvatarKey("u1", now)))
	assert.Equal(t, KindAttachment, KindOf(AttachmentKey("c1", now, "a.txt")))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("messages/c1/1_a.png"))
	for _, k := range []string{"", "/abs", "a/../b", "a//b", `a\b`, "./a"} {
		assert.False(t, ValidKey(k), k)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := fs.Put(ctx, "messages/c1/1_resume.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/messages/c1/1_resume.png", url)

	rc, err := fs.Get(ctx, "messages/c1/1_resume.png")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "png-bytes", string(data))

	_, err = fs.Get(ctx, "messages/c1/missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = fs.Put(ctx, "../escape", "", strings.NewReader("x"))
	assert.True(t, apperr.Is(err, apperr.CodeInvalid))
}

func TestPublicURLEscapesFileNames(t *testing.T) {
	now := time.UnixMilli(1792368207845)
	names := []string{"cv #2 final?.pdf", "100% real.png", "a b.txt"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			key := AttachmentKey("c1", now, name)
			fs, err := NewFileStore(t.TempDir(), "https://cdn.example.com/")
			require.NoError(t, err)
			raw, err := fs.Put(context.Background(), key, "", strings.NewReader("x"))
			require.NoError(t, err)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Empty(t, u.Fragment)
			assert.Empty(t, u.RawQuery)
			assert.Equal(t, "/"+key, u.Path)
		})
	}

	assert.Equal(t, "https://b.s3.r.amazonaws.com/messages/c1/1_cv%20%232%20final%3F.pdf",
		PublicURL("https://b.s3.r.amazonaws.com", "messages/c1/1_cv #2 final?.pdf"))
}

func TestFileStoreFileURL(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)
	url, err := fs.Put(context.Background(), "avatars/u1_1", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"), url)
	assert.True(t, strings.HasSuffix(url, "/avatars/u1_1"), url)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3StorePutGet(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := NewS3StoreWithClient(fake, "jobboard-files", "us-east-1", "")
	ctx := context.Background()

	url, err := store.Put(ctx, "messages/c1/1_resume.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://jobboard-files.s3.us-east-1.amazonaws.com/messages/c1/1_resume.png", url)
	assert.Equal(t, "image/png", fake.types["messages/c1/1_resume.png"])

	url, err = store.Put(ctx, "messages/c1/1_my cv.pdf", "application/pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://jobboard-files.s3.us-east-1.amazonaws.com/messages/c1/1_my%20cv.pdf", url)
	assert.Equal(t, []byte("pdf"), fake.objects["messages/c1/1_my cv.pdf"])

	rc, err := store.Get(ctx, "messages/c1/1_resume.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "data", string(data))

	_, err = store.Get(ctx, "nope")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	fake.failPut = errors.New("throttled")
	_, err = store.Put(ctx, "avatars/u1_1", "", strings.NewReader("x"))
	assert.True(t, apperr.Is(err, apperr.CodeUnavailable))
	assert.True(t, apperr.IsRetryable(err))
}
