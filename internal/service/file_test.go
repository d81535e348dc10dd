package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/model"
)

func fileIDs(files []*model.FileMeta) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestFileListing(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	docs := f.folder(t, "Docs", nil, "")
	secrets := f.folder(t, "Secrets", nil, "1234")

	rootFile := f.inline(t, "root.txt", nil)
	docsFile := f.inline(t, "docs.txt", &docs.ID)
	secretFile := f.inline(t, "secret.txt", &secrets.ID)

	t.Run("unscoped hides protected folders", func(t *testing.T) {
		files, err := f.fileSv.List(ctx, nil, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{rootFile.ID, docsFile.ID}, fileIDs(files))
	})

	t.Run("open folder needs no code", func(t *testing.T) {
		files, err := f.fileSv.List(ctx, &docs.ID, "")
		require.NoError(t, err)
		assert.Equal(t, []string{docsFile.ID}, fileIDs(files))
	})

	t.Run("protected folder with code", func(t *testing.T) {
		files, err := f.fileSv.List(ctx, &secrets.ID, "1234")
		require.NoError(t, err)
		assert.Equal(t, []string{secretFile.ID}, fileIDs(files))
	})

	t.Run("protected folder rejects bad codes", func(t *testing.T) {
		for _, code := range []string{"", "0000", "12", "12345"} {
			_, err := f.fileSv.List(ctx, &secrets.ID, code)
			assert.ErrorIs(t, err, domain.ErrForbidden, "code %q", code)
		}
	})

	t.Run("content is gated by folder", func(t *testing.T) {
		_, err := f.fileSv.Content(ctx, secretFile.ID, "0000")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		got, err := f.fileSv.Content(ctx, secretFile.ID, "1234")
		require.NoError(t, err)
		assert.Equal(t, []byte("inline:secret.txt"), got.Data)

		got, err = f.fileSv.Content(ctx, rootFile.ID, "")
		require.NoError(t, err)
		assert.Equal(t, rootFile.ID, got.ID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := f.fileSv.Content(ctx, "nope", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFileCreate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	t.Run("defaults mime type", func(t *testing.T) {
		file, err := f.fileSv.Create(ctx, &CreateFileRequest{Name: "notes", Data: []byte("abc")})
		require.NoError(t, err)
		assert.Equal(t, model.DefaultMimeType, file.MimeType)
		assert.Equal(t, int64(3), file.Size)
		assert.True(t, file.IsInline())
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := f.fileSv.Create(ctx, &CreateFileRequest{Name: " ", Data: []byte("abc")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects oversized payload", func(t *testing.T) {
		_, err := f.fileSv.Create(ctx, &CreateFileRequest{Name: "big", Data: make([]byte, testMaxUpload+1)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects unknown folder", func(t *testing.T) {
		_, err := f.fileSv.Create(ctx, &CreateFileRequest{Name: "x", Data: []byte("abc"), FolderID: ptr("nope")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestFileUpload(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	t.Run("stores content", func(t *testing.T) {
		file := f.stored(t, "report final.pdf", "%PDF-1.4", nil)
		assert.Equal(t, int64(8), file.Size)
		require.NotNil(t, file.StoragePath)
		assert.True(t, strings.HasSuffix(*file.StoragePath, "__report_final.pdf"))
		assert.True(t, f.objectExists(t, file))
	})

	t.Run("size mismatch stores nothing", func(t *testing.T) {
		_, err := f.fileSv.Upload(ctx, &UploadItem{Name: "x.bin", Size: 10, Content: strings.NewReader("short")}, nil)
		require.Error(t, err)

		files, err := f.fileSv.List(ctx, nil, "")
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("unknown folder removes staged object", func(t *testing.T) {
		_, err := f.fileSv.Upload(ctx, &UploadItem{Name: "x.bin", Size: 3, Content: strings.NewReader("abc")}, ptr("nope"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := f.fileSv.Upload(ctx, &UploadItem{Name: "x.bin", Size: testMaxUpload + 1, Content: strings.NewReader("")}, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestFileUploadMany(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	docs := f.folder(t, "Docs", nil, "")

	items := func(names ...string) []*UploadItem {
		var out []*UploadItem
		for _, name := range names {
			out = append(out, &UploadItem{Name: name, Size: -1, Content: strings.NewReader("content of " + name)})
		}
		return out
	}

	result, err := f.fileSv.UploadMany(ctx, items("a.txt", "b.txt", "c.txt"), &docs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 3, result.Count)
	assert.Empty(t, result.Failed)

	files, err := f.fileSv.List(ctx, &docs.ID, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	t.Run("validates every item first", func(t *testing.T) {
		_, err := f.fileSv.UploadMany(ctx, items("d.txt", " "), &docs.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)

		files, err := f.fileSv.List(ctx, &docs.ID, "")
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := f.fileSv.UploadMany(ctx, nil, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown folder", func(t *testing.T) {
		_, err := f.fileSv.UploadMany(ctx, items("e.txt"), ptr("nope"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestFileRenameIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	file := f.inline(t, "old.txt", nil)

	first, err := f.fileSv.Rename(ctx, file.ID, "new.txt")
	require.NoError(t, err)
	second, err := f.fileSv.Rename(ctx, file.ID, "new.txt")
	require.NoError(t, err)

	assert.Equal(t, "new.txt", first.Name)
	assert.Equal(t, first, second)

	_, err = f.fileSv.Rename(ctx, file.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.fileSv.Rename(ctx, "nope", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileMoveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	docs := f.folder(t, "Docs", nil, "")
	file := f.inline(t, "a.txt", nil)

	before, err := f.fileSv.Get(ctx, file.ID)
	require.NoError(t, err)

	require.NoError(t, f.fileSv.Move(ctx, file.ID, &docs.ID))
	moved, err := f.fileSv.Get(ctx, file.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, docs.ID, *moved.FolderID)

	require.NoError(t, f.fileSv.Move(ctx, file.ID, ptr("")))
	after, err := f.fileSv.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.ErrorIs(t, f.fileSv.Move(ctx, file.ID, ptr("nope")), domain.ErrValidation)
	assert.ErrorIs(t, f.fileSv.Move(ctx, "nope", nil), domain.ErrNotFound)
}

func TestFileMoveMany(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	docs := f.folder(t, "Docs", nil, "")
	a := f.inline(t, "a.txt", nil)
	b := f.inline(t, "b.txt", nil)

	result, err := f.fileSv.MoveMany(ctx, []string{a.ID, "missing", b.ID}, &docs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Equal(t, "missing", result.Failed[0].ID)

	_, err = f.fileSv.MoveMany(ctx, nil, &docs.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.fileSv.MoveMany(ctx, []string{a.ID}, ptr("nope"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFileDelete(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	file := f.stored(t, "a.bin", "abcdef", nil)
	require.NoError(t, f.fileSv.Delete(ctx, file.ID))

	_, err := f.fileSv.Get(ctx, file.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, f.objectExists(t, file))

	assert.ErrorIs(t, f.fileSv.Delete(ctx, file.ID), domain.ErrNotFound)
}
