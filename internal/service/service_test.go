package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
	"github.com/templui/filebox/internal/storage"
	fbtest "github.com/templui/filebox/internal/testutil"
)

const testMaxUpload = 1 << 20

type fixture struct {
	db       *sqlx.DB
	storage  *storage.LocalStorage
	folders  repository.FolderRepository
	files    repository.FileRepository
	tx       db.TxManager
	gate     *AccessGate
	folderSv *FolderService
	fileSv   *FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := fbtest.NewDB(t)
	st := fbtest.NewStorage(t)
	folders := repository.NewFolderRepository(conn)
	files := repository.NewFileRepository(conn)
	tx := db.NewTxManager(conn)
	gate := NewAccessGate(folders)

	return &fixture{
		db:       conn,
		storage:  st,
		folders:  folders,
		files:    files,
		tx:       tx,
		gate:     gate,
		folderSv: NewFolderService(folders, files, tx, st),
		fileSv:   NewFileService(files, folders, gate, st, testMaxUpload),
	}
}

func (f *fixture) folder(t *testing.T, name string, parentID *string, code string) *model.Folder {
	t.Helper()

	req := &CreateFolderRequest{Name: name, ParentID: parentID}
	if code != "" {
		req.Protected = true
		req.Code = &code
	}
	folder, err := f.folderSv.Create(t.Context(), req)
	require.NoError(t, err)
	return folder
}

func (f *fixture) inline(t *testing.T, name string, folderID *string) *model.File {
	t.Helper()

	file, err := f.fileSv.Create(t.Context(), &CreateFileRequest{
		Name:     name,
		MimeType: "text/plain",
		Data:     []byte("inline:" + name),
		FolderID: folderID,
	})
	require.NoError(t, err)
	return file
}

func (f *fixture) stored(t *testing.T, name, content string, folderID *string) *model.File {
	t.Helper()

	file, err := f.fileSv.Upload(t.Context(), &UploadItem{
		Name:     name,
		MimeType: "application/octet-stream",
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}, folderID)
	require.NoError(t, err)
	return file
}

func (f *fixture) objectExists(t *testing.T, file *model.File) bool {
	t.Helper()

	require.NotNil(t, file.StoragePath)
	_, err := f.storage.Size(context.Background(), *file.StoragePath)
	return err == nil
}

func ptr[T any](v T) *T { return &v }

// fixedClock returns a clock frozen at t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
