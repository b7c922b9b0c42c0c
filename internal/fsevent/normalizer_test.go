package fsevent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colebrumley/fswatch/internal/fsid"
)

func TestNormalize_Create(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	n := New(fsid.NewCache(), nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawCreate, Paths: []string{path}, Time: time.Now()},
	})

	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectFile, events[0].Subject)
	assert.Equal(t, ActionCreated, events[0].Action)
	assert.Equal(t, path, events[0].Path)
}

func TestNormalize_DropsDSStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".DS_Store")

	n := New(fsid.NewCache(), nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawCreate, Paths: []string{path}, Time: time.Now()},
	})

	assert.Empty(t, errs)
	assert.Empty(t, events)
}

func TestNormalize_RenamePairSameDir(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "old.txt")
	to := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(from, []byte("hi"), 0o644))

	cache := fsid.NewCache()
	id, ok := fsid.Lookup(from)
	require.True(t, ok)
	cache.Put(from, id)

	require.NoError(t, os.Rename(from, to))

	now := time.Now()
	n := New(cache, nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawRenameFrom, Paths: []string{from}, Time: now},
		{Kind: RawRenameTo, Paths: []string{to}, Time: now.Add(time.Millisecond)},
	})

	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, ActionRenamed, events[0].Action)
	assert.Equal(t, from, events[0].From)
	assert.Equal(t, to, events[0].To)
	assert.Equal(t, SubjectFile, events[0].Subject)
}

func TestNormalize_RenamePairDifferentDirIsMoved(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	from := filepath.Join(srcDir, "f.txt")
	to := filepath.Join(dstDir, "f.txt")
	require.NoError(t, os.WriteFile(from, []byte("hi"), 0o644))

	cache := fsid.NewCache()
	id, ok := fsid.Lookup(from)
	require.True(t, ok)
	cache.Put(from, id)

	require.NoError(t, os.Rename(from, to))

	now := time.Now()
	n := New(cache, nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawRenameFrom, Paths: []string{from}, Time: now},
		{Kind: RawRenameTo, Paths: []string{to}, Time: now.Add(time.Millisecond)},
	})

	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, ActionMoved, events[0].Action)
}

func TestNormalize_RemoveSingleton(t *testing.T) {
	n := New(fsid.NewCache(), nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawRemove, Hint: SubjectFile, Paths: []string{"/tmp/does-not-exist-anymore.txt"}, Time: time.Now()},
	})

	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, ActionRemoved, events[0].Action)
	assert.Equal(t, SubjectFile, events[0].Subject)
}

func TestNormalize_UnknownFileTypeSurfacesError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing")

	n := New(fsid.NewCache(), nil)
	_, errs := n.Normalize([]Raw{
		{Kind: RawCreate, Hint: SubjectAny, Paths: []string{path}, Time: time.Now()},
	})

	require.Len(t, errs, 1)
	var target *ErrUnknownFileType
	assert.ErrorAs(t, errs[0], &target)
}

func TestNormalize_DataModifiedOnDirectoryIsDropped(t *testing.T) {
	dir := t.TempDir()

	n := New(fsid.NewCache(), nil)
	events, errs := n.Normalize([]Raw{
		{Kind: RawModifyData, Paths: []string{dir}, Time: time.Now()},
	})

	assert.Empty(t, errs)
	assert.Empty(t, events)
}

func TestNormalize_UpdatesIdentityCacheAfterGrouping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	cache := fsid.NewCache()
	n := New(cache, nil)
	_, errs := n.Normalize([]Raw{
		{Kind: RawCreate, Paths: []string{path}, Time: time.Now()},
	})

	assert.Empty(t, errs)
	_, ok := cache.CachedID(path)
	assert.True(t, ok)
}
