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
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	ByID(ctx context.Context, id string) (*model.Folder, error)
	All(ctx context.Context) ([]*model.Folder, error)
	Children(ctx context.Context, parentID string) ([]*model.Folder, error)
	Update(ctx context.Context, folder *model.Folder) error
	Delete(ctx context.Context, id string) error
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *model.Folder) error {
	query := `INSERT INTO folders (id, name, parent_id, protected, code, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.Protected,
		folder.Code,
		folder.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return ErrFolderNotFound
	}

	return err
}

func (r *folderRepository) ByID(ctx context.Context, id string) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT id, name, parent_id, protected, code, created_at FROM folders WHERE id = $1`

	err := db.Conn(ctx, r.db).GetContext(ctx, folder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, err
	}

	return folder, nil
}

func (r *folderRepository) All(ctx context.Context) ([]*model.Folder, error) {
	folders := []*model.Folder{}
	query := `SELECT id, name, parent_id, protected, code, created_at FROM folders ORDER BY created_at DESC`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &folders, query)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

// Children returns the direct subfolders of parentID
func (r *folderRepository) Children(ctx context.Context, parentID string) ([]*model.Folder, error) {
	folders := []*model.Folder{}
	query := `SELECT id, name, parent_id, protected, code, created_at FROM folders WHERE parent_id = $1`

	err := db.Conn(ctx, r.db).SelectContext(ctx, &folders, query, parentID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Update(ctx context.Context, folder *model.Folder) error {
	query := `UPDATE folders
	          SET name = $1, parent_id = $2, protected = $3, code = $4
	          WHERE id = $5`

	result, err := db.Conn(ctx, r.db).ExecContext(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Protected,
		folder.Code,
		folder.ID,
	)
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
		return ErrFolderNotFound
	}

	return nil
}

func (r *folderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`

	result, err := db.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFolderNotFound
	}

	return nil
}
