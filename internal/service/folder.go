package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
	"github.com/templui/filebox/internal/storage"
	"github.com/templui/filebox/internal/validation"
)

type CreateFolderRequest struct {
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	Protected bool    `json:"protected"`
	Code      *string `json:"code"`
}

// UpdateFolderRequest is a partial update. ParentID distinguishes an absent
// field from an explicit null (move to root).
type UpdateFolderRequest struct {
	Name      *string                 `json:"name"`
	Protected *bool                   `json:"protected"`
	Code      *string                 `json:"code"`
	ParentID  httputil.OptionalString `json:"parentId"`
}

func (r *UpdateFolderRequest) empty() bool {
	return r.Name == nil && r.Protected == nil && r.Code == nil && !r.ParentID.Present
}

type FolderService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
	txManager  db.TxManager
	storage    storage.Storage
	logger     *slog.Logger
}

func NewFolderService(
	folderRepo repository.FolderRepository,
	fileRepo repository.FileRepository,
	txManager db.TxManager,
	storage storage.Storage,
) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		storage:    storage,
		logger:     logger.Component("folders"),
	}
}

// List returns every folder. Protection gates file visibility, not folder names.
func (s *FolderService) List(ctx context.Context) ([]*model.Folder, error) {
	return s.folderRepo.All(ctx)
}

func (s *FolderService) Get(ctx context.Context, id string) (*model.Folder, error) {
	folder, err := s.folderRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, domain.NotFound("folder", id)
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Create(ctx context.Context, req *CreateFolderRequest) (*model.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	code, err := resolveCode(req.Protected, req.Code)
	if err != nil {
		return nil, err
	}

	parentID := normalizeID(req.ParentID)

	folder := &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		Protected: req.Protected,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	err = s.folderRepo.Create(ctx, folder)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, domain.Validation("parent folder %s does not exist", *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"protected", folder.Protected,
	)

	return folder, nil
}

// Update renames, moves or toggles protection. Enabling protection needs a
// valid code unless the folder already has one; disabling clears it.
func (s *FolderService) Update(ctx context.Context, id string, req *UpdateFolderRequest) (*model.Folder, error) {
	if req.empty() {
		return nil, domain.Validation("at least one field must be provided")
	}

	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
	}
	if req.Code != nil && (req.Protected == nil || *req.Protected) {
		if err := validation.ValidateFolderCode(*req.Code); err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
	}

	folder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = name
	}

	switch {
	case req.Protected != nil && !*req.Protected:
		folder.Protected = false
		folder.Code = nil
	case req.Protected != nil || req.Code != nil:
		if !folder.Protected && req.Protected == nil {
			return nil, domain.Validation("code can only be set on a protected folder")
		}
		if req.Code != nil {
			code := *req.Code
			folder.Code = &code
		}
		if folder.Code == nil {
			return nil, domain.Validation("code is required for a protected folder")
		}
		folder.Protected = true
	}

	if req.ParentID.Present {
		parentID := normalizeID(req.ParentID.Value)
		if parentID != nil {
			err = s.checkReparent(ctx, id, *parentID)
			if err != nil {
				return nil, err
			}
		}
		folder.ParentID = parentID
	}

	err = s.folderRepo.Update(ctx, folder)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, domain.NotFound("folder", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"protected", folder.Protected,
	)

	return folder, nil
}

// checkReparent rejects a move that would make the folder its own ancestor
func (s *FolderService) checkReparent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return domain.Validation("cannot move folder into itself")
	}

	seen := map[string]bool{}
	currentID := parentID
	for {
		if seen[currentID] {
			return domain.Validation("folder tree contains a cycle at %s", currentID)
		}
		seen[currentID] = true

		ancestor, err := s.folderRepo.ByID(ctx, currentID)
		if errors.Is(err, repository.ErrFolderNotFound) {
			return domain.Validation("parent folder %s does not exist", currentID)
		}
		if err != nil {
			return err
		}

		if ancestor.ParentID == nil {
			return nil
		}
		if *ancestor.ParentID == id {
			return domain.Validation("cannot move folder into its own descendant")
		}
		currentID = *ancestor.ParentID
	}
}

// Delete removes the folder, every descendant folder and every file inside
// them in one transaction. Stored bytes are unlinked only after commit, so a
// rolled back delete never loses content.
func (s *FolderService) Delete(ctx context.Context, id string) error {
	folder, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var objects []string
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var txErr error
		objects, txErr = s.deleteTree(ctx, id)
		return txErr
	})
	if err != nil {
		folderDeletesTotal.WithLabelValues("rolled_back").Inc()
		s.logger.Error("folder delete rolled back", "id", id, "error", err)
		return &domain.TransactionError{Op: "delete folder", Err: err}
	}
	folderDeletesTotal.WithLabelValues("committed").Inc()

	for _, key := range objects {
		removeObject(ctx, s.storage, s.logger, key)
	}

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"objects_unlinked", len(objects),
	)

	return nil
}

// deleteTree collects the subtree with an explicit work list, then deletes it
// children first: each folder's files, then the folder row. It returns the
// storage keys of the deleted files.
func (s *FolderService) deleteTree(ctx context.Context, rootID string) ([]string, error) {
	var order []string
	seen := map[string]bool{}
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)

		children, err := s.folderRepo.Children(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", id, err)
		}
		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}

	var objects []string
	for i := len(order) - 1; i >= 0; i-- {
		folderID := order[i]

		files, err := s.fileRepo.Locators(ctx, folderID)
		if err != nil {
			return nil, fmt.Errorf("list files of %s: %w", folderID, err)
		}

		for _, file := range files {
			err = s.fileRepo.Delete(ctx, file.ID)
			if err != nil && !errors.Is(err, repository.ErrFileNotFound) {
				return nil, fmt.Errorf("delete file %s: %w", file.ID, err)
			}
			if !file.IsInline() {
				objects = append(objects, *file.StoragePath)
			}
		}

		err = s.folderRepo.Delete(ctx, folderID)
		if err != nil {
			return nil, fmt.Errorf("delete folder %s: %w", folderID, err)
		}
		s.logger.Debug("deleted folder row", "id", folderID, "files", len(files))
	}

	return objects, nil
}

// resolveCode returns the code to store for the given protection flag
func resolveCode(protected bool, code *string) (*string, error) {
	if !protected {
		return nil, nil
	}
	if code == nil {
		return nil, domain.Validation("code is required for a protected folder")
	}
	if err := validation.ValidateFolderCode(*code); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	c := *code
	return &c, nil
}

// normalizeID treats an empty id as absent
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

// removeObject unlinks stored bytes. Failures are logged and swallowed: the
// metadata row is already gone and is the authoritative outcome.
func removeObject(ctx context.Context, st storage.Storage, log *slog.Logger, key string) {
	err := st.Delete(context.WithoutCancel(ctx), key)
	if err != nil {
		log.Warn("failed to unlink stored content", "key", key, "error", err)
	}
}
