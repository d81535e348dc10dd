package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
)

// AccessGate decides whether a request scoped to a folder may proceed given
// the caller's code. Protection is never inherited: only the immediate folder
// counts.
type AccessGate struct {
	folderRepo repository.FolderRepository
	logger     *slog.Logger
}

func NewAccessGate(folderRepo repository.FolderRepository) *AccessGate {
	return &AccessGate{
		folderRepo: folderRepo,
		logger:     logger.Component("access"),
	}
}

// Check allows unprotected folders unconditionally. A protected folder needs
// an exact code match. A folder that cannot be found is rejected.
func (g *AccessGate) Check(ctx context.Context, folderID, code string) error {
	folder, err := g.folderRepo.ByID(ctx, folderID)
	if errors.Is(err, repository.ErrFolderNotFound) {
		g.logger.Warn("access check on missing folder", "folder_id", folderID)
		return domain.Forbidden("folder is not accessible")
	}
	if err != nil {
		return err
	}

	return CheckCode(folder, code)
}

// CheckFile gates a single file by its immediate folder. Root files pass.
func (g *AccessGate) CheckFile(ctx context.Context, file *model.File, code string) error {
	if file.FolderID == nil {
		return nil
	}
	return g.Check(ctx, *file.FolderID, code)
}

// CheckCode compares code against the folder's stored code in constant time
func CheckCode(folder *model.Folder, code string) error {
	if !folder.Protected {
		return nil
	}

	expected := folder.AccessCode()
	if expected == "" || utf8.RuneCountInString(code) != model.FolderCodeLength {
		return domain.Forbidden("folder code required")
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(expected)) != 1 {
		return domain.Forbidden("invalid folder code")
	}

	return nil
}
