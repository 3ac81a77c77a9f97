package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every backend must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", []byte("v1")))
		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(v))

		require.NoError(t, s.Delete(ctx, "k"))
		_, err = s.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("update sees nil for absent key", func(t *testing.T) {
		var seen []byte
		called := false
		err := s.Update(ctx, "fresh", func(cur []byte) ([]byte, error) {
			called = true
			seen = cur
			return []byte("created"), nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, seen)

		v, err := s.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "created", string(v))
	})

	t.Run("update error aborts write", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "keep", []byte("original")))
		boom := errors.New("boom")
		err := s.Update(ctx, "keep", func(cur []byte) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		v, err := s.Get(ctx, "keep")
		require.NoError(t, err)
		assert.Equal(t, "original", string(v))
	})

	t.Run("concurrent updates do not lose writes", func(t *testing.T) {
		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(ctx, "counter", func(cur []byte) ([]byte, error) {
					n := 0
					if cur != nil {
						n, _ = strconv.Atoi(string(cur))
					}
					return []byte(strconv.Itoa(n + 1)), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		v, err := s.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(workers), string(v))
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	storeContract(t, s)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestMemoryStore_UpdateHonoursCancelledContext(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Update(ctx, "k", func(cur []byte) ([]byte, error) { return []byte("x"), nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func setupTestRedis(t *testing.T) (Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "medibridge:")
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := setupTestRedis(t)
	storeContract(t, s)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	s, mr := setupTestRedis(t)
	require.NoError(t, s.Set(context.Background(), "cart:abc", []byte("[]")))
	assert.True(t, mr.Exists("medibridge:cart:abc"))
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	_, err = db.Exec(`DELETE FROM kv_entries`)
	require.NoError(t, err)

	s := NewPostgres(db)
	defer s.Close()
	storeContract(t, s)
}
