package backup

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"invite-tracker/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	failKey string
}

func (b *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == b.failKey {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploaderRun(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "invites.json", []byte(`{"version":2}`)))
	require.NoError(t, store.Save(ctx, "stocks.json", []byte(`{"version":2}`)))

	bucket := &fakeBucket{objects: make(map[string]string)}
	u := NewUploader(bucket, store, "backups", "bot")
	u.now = func() time.Time { return time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC) }

	n, err := u.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, `{"version":2}`, bucket.objects["bot/20240304T050607Z/invites.json"])
	assert.Contains(t, bucket.objects, "bot/20240304T050607Z/stocks.json")
}

func TestUploaderRunContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "a.json", []byte(`{}`)))
	require.NoError(t, store.Save(ctx, "b.json", []byte(`{}`)))

	bucket := &fakeBucket{objects: make(map[string]string), failKey: "19700101T000000Z/a.json"}
	u := NewUploader(bucket, store, "backups", "")
	u.now = func() time.Time { return time.Unix(0, 0) }

	n, err := u.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, bucket.objects, "19700101T000000Z/b.json")
}
