package reader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parqview/parqview-core/core"
)

func TestGetConstructsOnceUnderConcurrency(t *testing.T) {
	fs := &countingFs{Fs: afero.NewMemMapFs()}
	writeEmployeeFixture(t, fs.Fs, "/data/emp.parquet", 100, 50)
	cache := NewReaderCache(fs)

	var wg sync.WaitGroup
	handles := make([]*fileHandle, 16)
	for i := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := cache.Get(context.Background(), "/data/emp.parquet")
			assert.NoError(t, err)
			handles[i] = h
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fs.opens)
	for _, h := range handles[1:] {
		assert.Same(t, handles[0], h)
	}
}

func TestGetMissingFileLeavesNoEntry(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := NewReaderCache(fs)

	_, err := cache.Get(context.Background(), "/data/missing.parquet")
	var openErr *core.FileOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, core.OpenNotFound, openErr.Kind)
	assert.Equal(t, 0, cache.Len())

	// Creating the file afterwards must make the same path readable: the
	// failed attempt did not stick.
	writeEmployeeFixture(t, fs, "/data/missing.parquet", 10, 10)
	h, err := cache.Get(context.Background(), "/data/missing.parquet")
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.numRows())
	assert.Equal(t, 1, cache.Len())
}

func TestGetCorruptFooter(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/garbage.parquet", []byte("this is not a parquet file"), 0o644))
	cache := NewReaderCache(fs)

	_, err := cache.Get(context.Background(), "/data/garbage.parquet")
	var openErr *core.FileOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, core.OpenCorruptFooter, openErr.Kind)
	assert.Equal(t, 0, cache.Len())
}

func TestInvalidateForcesReopen(t *testing.T) {
	fs := &countingFs{Fs: afero.NewMemMapFs()}
	writeEmployeeFixture(t, fs.Fs, "/data/emp.parquet", 100, 50)
	cache := NewReaderCache(fs)

	_, err := cache.Get(context.Background(), "/data/emp.parquet")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "/data/emp.parquet")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fs.opens)

	cache.Invalidate("/data/emp.parquet")
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(context.Background(), "/data/emp.parquet")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fs.opens)
}

// gatedFs blocks Open until release is closed, signalling entry on the
// buffered entered channel, and counts Close calls on the files it hands
// out. It makes the window between map insertion and handle publication
// observable.
type gatedFs struct {
	afero.Fs
	entered chan struct{}
	release chan struct{}
	closes  int32
}

func (g *gatedFs) Open(name string) (afero.File, error) {
	g.entered <- struct{}{}
	<-g.release
	f, err := g.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &closeCountingFile{File: f, closes: &g.closes}, nil
}

type closeCountingFile struct {
	afero.File
	closes *int32
}

func (f *closeCountingFile) Close() error {
	atomic.AddInt32(f.closes, 1)
	return f.File.Close()
}

func TestInvalidateDuringConstructionClosesHandle(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeEmployeeFixture(t, mem, "/data/emp.parquet", 10, 10)
	fs := &gatedFs{Fs: mem, entered: make(chan struct{}, 1), release: make(chan struct{})}
	cache := NewReaderCache(fs)

	got := make(chan error, 1)
	go func() {
		_, err := cache.Get(context.Background(), "/data/emp.parquet")
		got <- err
	}()
	<-fs.entered // construction is inside Open

	invDone := make(chan struct{})
	go func() {
		cache.Invalidate("/data/emp.parquet")
		close(invDone)
	}()
	// Invalidate must drop the entry, then park waiting for construction.
	require.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, time.Millisecond)

	close(fs.release)
	require.NoError(t, <-got)
	<-invDone

	// The handle built after the invalidation is closed, not orphaned.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fs.closes))
	assert.Equal(t, 0, cache.Len())

	// The path stays usable afterwards.
	h, err := cache.Get(context.Background(), "/data/emp.parquet")
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.numRows())
}

func TestInvalidateAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeEmployeeFixture(t, fs, "/data/a.parquet", 10, 10)
	writeEmployeeFixture(t, fs, "/data/b.parquet", 10, 10)
	cache := NewReaderCache(fs)

	_, err := cache.Get(context.Background(), "/data/a.parquet")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "/data/b.parquet")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.InvalidateAll()
	assert.Equal(t, 0, cache.Len())
}
