package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/repository"
)

func TestFolderCreate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tests := []struct {
		name string
		req  *CreateFolderRequest
	}{
		{"empty name", &CreateFolderRequest{Name: "  "}},
		{"protected without code", &CreateFolderRequest{Name: "x", Protected: true}},
		{"short code", &CreateFolderRequest{Name: "x", Protected: true, Code: ptr("12")}},
		{"long code", &CreateFolderRequest{Name: "x", Protected: true, Code: ptr("12345")}},
		{"missing parent", &CreateFolderRequest{Name: "x", ParentID: ptr("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folderSv.Create(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("code ignored when unprotected", func(t *testing.T) {
		folder, err := f.folderSv.Create(ctx, &CreateFolderRequest{Name: "Open", Code: ptr("1234")})
		require.NoError(t, err)
		assert.False(t, folder.Protected)
		assert.Nil(t, folder.Code)
	})

	t.Run("empty parent means root", func(t *testing.T) {
		folder, err := f.folderSv.Create(ctx, &CreateFolderRequest{Name: "Top", ParentID: ptr("")})
		require.NoError(t, err)
		assert.True(t, folder.IsRoot())
	})
}

func TestFolderUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	a := f.folder(t, "A", nil, "")
	b := f.folder(t, "B", &a.ID, "")
	c := f.folder(t, "C", &b.ID, "")

	t.Run("nothing to update", func(t *testing.T) {
		_, err := f.folderSv.Update(ctx, a.ID, &UpdateFolderRequest{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown folder", func(t *testing.T) {
		_, err := f.folderSv.Update(ctx, "nope", &UpdateFolderRequest{Name: ptr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rename", func(t *testing.T) {
		got, err := f.folderSv.Update(ctx, c.ID, &UpdateFolderRequest{Name: ptr(" Renamed ")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("into itself", func(t *testing.T) {
		_, err := f.folderSv.Update(ctx, a.ID, &UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true, Value: &a.ID}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("into descendant", func(t *testing.T) {
		_, err := f.folderSv.Update(ctx, a.ID, &UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true, Value: &c.ID}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("move to root", func(t *testing.T) {
		got, err := f.folderSv.Update(ctx, c.ID, &UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true}})
		require.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("protect and unprotect", func(t *testing.T) {
		_, err := f.folderSv.Update(ctx, b.ID, &UpdateFolderRequest{Protected: ptr(true)})
		assert.ErrorIs(t, err, domain.ErrValidation, "protection needs a code")

		_, err = f.folderSv.Update(ctx, b.ID, &UpdateFolderRequest{Code: ptr("1234")})
		assert.ErrorIs(t, err, domain.ErrValidation, "code alone on an open folder")

		got, err := f.folderSv.Update(ctx, b.ID, &UpdateFolderRequest{Protected: ptr(true), Code: ptr("1234")})
		require.NoError(t, err)
		assert.True(t, got.Protected)
		assert.Equal(t, "1234", got.AccessCode())

		got, err = f.folderSv.Update(ctx, b.ID, &UpdateFolderRequest{Code: ptr("9876")})
		require.NoError(t, err)
		assert.Equal(t, "9876", got.AccessCode())

		got, err = f.folderSv.Update(ctx, b.ID, &UpdateFolderRequest{Protected: ptr(false)})
		require.NoError(t, err)
		assert.False(t, got.Protected)
		assert.Nil(t, got.Code)
	})
}

func TestFolderDeleteCascade(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	root := f.folder(t, "Root", nil, "")
	child := f.folder(t, "Child", &root.ID, "")
	grandchild := f.folder(t, "Grandchild", &child.ID, "1234")
	sibling := f.folder(t, "Sibling", nil, "")

	rootFile := f.stored(t, "a.bin", "aaaa", &root.ID)
	deepFile := f.stored(t, "b.bin", "bbbb", &grandchild.ID)
	inlineFile := f.inline(t, "c.txt", &child.ID)
	keptFile := f.stored(t, "d.bin", "dddd", &sibling.ID)

	require.NoError(t, f.folderSv.Delete(ctx, root.ID))

	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		_, err := f.folders.ByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrFolderNotFound, id)
	}
	for _, id := range []string{rootFile.ID, deepFile.ID, inlineFile.ID} {
		_, err := f.files.ByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrFileNotFound, id)
	}

	assert.False(t, f.objectExists(t, rootFile))
	assert.False(t, f.objectExists(t, deepFile))

	_, err := f.folders.ByID(ctx, sibling.ID)
	assert.NoError(t, err)
	assert.True(t, f.objectExists(t, keptFile))

	assert.ErrorIs(t, f.folderSv.Delete(ctx, root.ID), domain.ErrNotFound)
}

// failingFiles fails the nth Delete call
type failingFiles struct {
	repository.FileRepository
	failOn int
	calls  int
}

func (r *failingFiles) Delete(ctx context.Context, id string) error {
	r.calls++
	if r.calls == r.failOn {
		return assert.AnError
	}
	return r.FileRepository.Delete(ctx, id)
}

func TestFolderDeleteRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	root := f.folder(t, "Root", nil, "")
	child := f.folder(t, "Child", &root.ID, "")
	childFile := f.stored(t, "child.bin", "child", &child.ID)
	rootFile := f.stored(t, "root.bin", "root", &root.ID)

	// The child is emptied first, so the second delete hits the root's file
	files := &failingFiles{FileRepository: f.files, failOn: 2}
	svc := NewFolderService(f.folders, files, f.tx, f.storage)

	err := svc.Delete(ctx, root.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransaction)

	for _, id := range []string{root.ID, child.ID} {
		_, err := f.folders.ByID(ctx, id)
		assert.NoError(t, err, "folder %s must survive", id)
	}
	for _, file := range []struct{ id, name string }{{childFile.ID, "child"}, {rootFile.ID, "root"}} {
		_, err := f.files.ByID(ctx, file.id)
		assert.NoError(t, err, "file %s must survive", file.name)
	}

	assert.True(t, f.objectExists(t, childFile), "stored bytes are only unlinked after commit")
	assert.True(t, f.objectExists(t, rootFile))
}

func TestDeleteDocsWithSecrets(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	docs := f.folder(t, "Docs", nil, "")
	secrets := f.folder(t, "Secrets", &docs.ID, "9999")
	a := f.stored(t, "a.txt", "alpha", &docs.ID)
	b := f.stored(t, "b.txt", "bravo", &secrets.ID)

	require.NoError(t, f.folderSv.Delete(ctx, docs.ID))

	folders, err := f.folderSv.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	files, err := f.fileSv.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, files)

	var remaining int
	require.NoError(t, f.db.Get(&remaining, `SELECT COUNT(*) FROM files WHERE folder_id IN ($1, $2)`, docs.ID, secrets.ID))
	assert.Zero(t, remaining)

	assert.False(t, f.objectExists(t, a))
	assert.False(t, f.objectExists(t, b))
}
