package model

import (
	"time"
)

const DefaultMimeType = "application/octet-stream"

// File is the metadata row of a stored file. Exactly one content locator is
// used: Data for inline content, StoragePath for bytes held by the storage backend.
type File struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	MimeType    string    `db:"mime_type" json:"type"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	FolderID    *string   `db:"folder_id" json:"folderId"` // nil = root level
	Data        []byte    `db:"data" json:"-"`
	StoragePath *string   `db:"storage_path" json:"-"`
}

func (f *File) IsInline() bool {
	return f.StoragePath == nil || *f.StoragePath == ""
}

func (f *File) ContentType() string {
	if f.MimeType == "" {
		return DefaultMimeType
	}
	return f.MimeType
}

// FileMeta is the listing projection of a file (no payload)
type FileMeta struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	MimeType  string    `db:"mime_type" json:"type"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	FolderID  *string   `db:"folder_id" json:"folderId"`
}
