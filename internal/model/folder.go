package model

import (
	"time"
)

// FolderCodeLength is the exact length of a protected folder's access code
const FolderCodeLength = 4

type Folder struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ParentID  *string   `db:"parent_id" json:"parentId"` // nil = root
	Protected bool      `db:"protected" json:"protected"`
	Code      *string   `db:"code" json:"-"` // set iff Protected, never serialized
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// AccessCode returns the stored code, or "" when the folder is not protected
func (f *Folder) AccessCode() string {
	if !f.Protected || f.Code == nil {
		return ""
	}
	return *f.Code
}
