package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func record(id, class string) models.StoredRecord {
	r := models.StoredRecord{
		SurveyResponse: models.NewSurveyResponse(),
		ID:             id,
		SubmittedAt:    "18.10.2026, 15:04:05",
	}
	r.ClassLevel = class
	r.Gender = "Ер"
	return r
}

// backends returns one fresh instance of every backend that can run in-process.
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "responses.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	gb, err := NewGormBackend(db)
	require.NoError(t, err)

	all := map[string]Backend{
		BackendMemory: NewMemoryBackend(),
		BackendFile:   file,
		BackendRedis:  rdb,
		BackendSQLite: gb,
	}
	t.Cleanup(func() {
		for _, b := range all {
			b.Close()
		}
	})
	return all
}

func TestBackends_Contract(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Load(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Save(ctx, "k", []byte(`[1]`)))
			require.NoError(t, b.Save(ctx, "k", []byte(`[1,2]`)))
			data, err := b.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(data))

			err = b.Delete(ctx, "k")
			if err != nil {
				assert.ErrorIs(t, err, ErrNotFound)
			}
			_, err = b.Load(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResponseStore_AppendListClear(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(zap.NewNop(), b, "")
			assert.Equal(t, DefaultKey, s.Key())
			assert.Empty(t, s.ListAll(ctx))

			first := record("1", "9-сынып")
			require.NoError(t, s.Append(ctx, first))
			second := record("2", "11-сынып")
			second.Reasons = []string{"Стресс"}
			require.NoError(t, s.Append(ctx, second))

			got := s.ListAll(ctx)
			require.Len(t, got, 2)
			assert.Equal(t, second, got[0], "most recent first")
			assert.Equal(t, first, got[1])

			require.NoError(t, s.Clear(ctx))
			assert.Empty(t, s.ListAll(ctx))
			require.NoError(t, s.Clear(ctx), "clearing an empty store is fine")
		})
	}
}

func TestResponseStore_AppendGrowsByOne(t *testing.T) {
	ctx := context.Background()
	s := New(zap.NewNop(), NewMemoryBackend(), "k")

	for i := 0; i < 5; i++ {
		before := len(s.ListAll(ctx))
		rec := record(fmt.Sprint(i), "10-сынып")
		require.NoError(t, s.Append(ctx, rec))

		after := s.ListAll(ctx)
		assert.Len(t, after, before+1)
		assert.Equal(t, rec, after[0])
	}
}

func TestResponseStore_MalformedContentReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"not json", "{", `{"id":"x"}`, "null"} {
		b := NewMemoryBackend()
		require.NoError(t, b.Save(ctx, "k", []byte(raw)))
		s := New(zap.NewNop(), b, "k")

		got := s.ListAll(ctx)
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}
}

func TestResponseStore_AppendLeavesCorruptContent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Save(ctx, "k", []byte("garbage")))
	s := New(zap.NewNop(), b, "k")

	err := s.Append(ctx, record("1", "9-сынып"))
	assert.ErrorIs(t, err, ErrPersistenceWrite)
	assert.ErrorIs(t, err, ErrPersistenceRead)

	data, _ := b.Load(ctx, "k")
	assert.Equal(t, "garbage", string(data))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Append(ctx, record("1", "9-сынып")))
	assert.Len(t, s.ListAll(ctx), 1)
}

func TestResponseStore_MissingReasonsDecodeAsEmpty(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Save(ctx, "k", []byte(`[{"id":"a","class":"9-сынып","gender":"Қыз","submittedAt":"x"}]`)))

	got := New(zap.NewNop(), b, "k").ListAll(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, []string{}, got[0].Reasons)
	assert.Equal(t, "Қыз", got[0].Gender)
}

type failingBackend struct {
	*MemoryBackend
	loadErr, saveErr, deleteErr error
}

func (f *failingBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.MemoryBackend.Load(ctx, key)
}

func (f *failingBackend) Save(ctx context.Context, key string, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryBackend.Save(ctx, key, data)
}

func (f *failingBackend) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryBackend.Delete(ctx, key)
}

func TestResponseStore_BackendFailures(t *testing.T) {
	ctx := context.Background()
	quota := errors.New("quota exceeded")

	fb := &failingBackend{MemoryBackend: NewMemoryBackend(), saveErr: quota}
	s := New(zap.NewNop(), fb, "k")
	err := s.Append(ctx, record("1", "9-сынып"))
	assert.ErrorIs(t, err, ErrPersistenceWrite)
	assert.ErrorIs(t, err, quota)

	fb = &failingBackend{MemoryBackend: NewMemoryBackend(), loadErr: errors.New("connection refused")}
	s = New(zap.NewNop(), fb, "k")
	assert.Empty(t, s.ListAll(ctx))

	fb = &failingBackend{MemoryBackend: NewMemoryBackend(), deleteErr: quota}
	s = New(zap.NewNop(), fb, "k")
	assert.ErrorIs(t, s.Clear(ctx), ErrPersistenceWrite)
}
