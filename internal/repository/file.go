package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	ListUnprotected(ctx context.Context) ([]*model.FileMeta, error)
	ListByFolder(ctx context.Context, folderID string) ([]*model.FileMeta, error)
	Locators(ctx context.Context, folderID string) ([]*model.File, error)
	Rename(ctx context.Context, id, name string) error
	Move(ctx context.Context, id string, folderID *string) error
	Delete(ctx context.Context, id string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

const fileMetaColumns = `f.id, f.name, f.mime_type, f.size, f.created_at, f.folder_id`

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (id, name, mime_type, size, created_at, folder_id, data, storage_path)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query,
		file.ID,
		file.Name,
		file.MimeType,
		file.Size,
		file.CreatedAt,
		file.FolderID,
		file.Data,
		file.StoragePath,
	)
	if isForeignKeyViolation(err) {
		return ErrFolderNotFound
	}

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT id, name, mime_type, size, created_at, folder_id, data, storage_path FROM files WHERE id = $1`

	err := db.Conn(ctx, r.db).GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ListUnprotected returns root files and files whose folder is not protected.
// A file whose folder row is missing is excluded.
func (r *fileRepository) ListUnprotected(ctx context.Context) ([]*model.FileMeta, error) {
	files := []*model.FileMeta{}
	query := `SELECT ` + fileMetaColumns + `
	          FROM files f
	          LEFT JOIN folders d ON d.id = f.folder_id
	          WHERE f.folder_id IS NULL OR NOT d.protected
	          ORDER BY f.created_at DESC`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &files, query)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, folderID string) ([]*model.FileMeta, error) {
	files := []*model.FileMeta{}
	query := `SELECT ` + fileMetaColumns + ` FROM files f WHERE f.folder_id = $1 ORDER BY f.created_at DESC`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &files, query, folderID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Locators returns the files of a folder without their inline payload
func (r *fileRepository) Locators(ctx context.Context, folderID string) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT ` + fileMetaColumns + `, f.storage_path FROM files f WHERE f.folder_id = $1`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &files, query, folderID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Rename(ctx context.Context, id, name string) error {
	query := `UPDATE files SET name = $1 WHERE id = $2`
	return r.execOne(ctx, query, name, id)
}

func (r *fileRepository) Move(ctx context.Context, id string, folderID *string) error {
	query := `UPDATE files SET folder_id = $1 WHERE id = $2`
	return r.execOne(ctx, query, folderID, id)
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
	return r.execOne(ctx, query, id)
}

// execOne runs a single-row mutation and reports ErrFileNotFound when no row matched
func (r *fileRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := db.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if isForeignKeyViolation(err) {
		return ErrFolderNotFound
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
