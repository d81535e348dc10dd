package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/repository"
	"github.com/templui/filebox/internal/storage"
	fbvalidation "github.com/templui/filebox/internal/validation"
)

// CreateFileRequest carries an inline payload
type CreateFileRequest struct {
	Name     string
	MimeType string
	Data     []byte
	FolderID *string
}

// UploadItem is one uploaded file as handed over by the multipart layer
type UploadItem struct {
	Name     string
	MimeType string
	Size     int64 // declared size, -1 if unknown
	Content  io.Reader
}

// BatchFailure describes one item of a batch that was not applied
type BatchFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// BatchResult reports how many items of a batch were applied
type BatchResult struct {
	Requested int            `json:"requested"`
	Count     int            `json:"count"`
	Failed    []BatchFailure `json:"failed,omitempty"`
}

type FileService struct {
	fileRepo       repository.FileRepository
	folderRepo     repository.FolderRepository
	gate           *AccessGate
	storage        storage.Storage
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewFileService(
	fileRepo repository.FileRepository,
	folderRepo repository.FolderRepository,
	gate *AccessGate,
	storage storage.Storage,
	maxUploadBytes int64,
) *FileService {
	return &FileService{
		fileRepo:       fileRepo,
		folderRepo:     folderRepo,
		gate:           gate,
		storage:        storage,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Component("files"),
	}
}

// List without a folder returns every file outside protected folders. With a
// folder it returns that folder's files once the access gate passes.
func (s *FileService) List(ctx context.Context, folderID *string, code string) ([]*model.FileMeta, error) {
	folderID = normalizeID(folderID)
	if folderID == nil {
		return s.fileRepo.ListUnprotected(ctx)
	}

	err := s.gate.Check(ctx, *folderID, code)
	if err != nil {
		return nil, err
	}

	return s.fileRepo.ListByFolder(ctx, *folderID)
}

// Get returns the full row including its content locator
func (s *FileService) Get(ctx context.Context, id string) (*model.File, error) {
	file, err := s.fileRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, domain.NotFound("file", id)
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Content returns the row for download or preview after gating it by its folder
func (s *FileService) Content(ctx context.Context, id, code string) (*model.File, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.gate.CheckFile(ctx, file, code)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Create stores an inline file. Size is the payload length.
func (s *FileService) Create(ctx context.Context, req *CreateFileRequest) (*model.File, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.By(nameRule)),
		validation.Field(&req.Data, validation.By(s.sizeRule)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	data := req.Data
	if data == nil {
		data = []byte{}
	}

	file := &model.File{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		MimeType:  mimeOrDefault(req.MimeType),
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
		FolderID:  normalizeID(req.FolderID),
		Data:      data,
	}

	err = s.fileRepo.Create(ctx, file)
	if err != nil {
		uploadsTotal.WithLabelValues("inline", "error").Inc()
		return nil, s.mapFolderErr(err, file.FolderID, "failed to create file record")
	}

	uploadsTotal.WithLabelValues("inline", "ok").Inc()
	uploadBytesTotal.Add(float64(file.Size))
	s.logger.Info("file created", "id", file.ID, "name", file.Name, "size", file.Size, "folder_id", file.FolderID)

	return file, nil
}

// Upload streams the item into storage and records its row. If the row
// cannot be written the staged object is removed again.
func (s *FileService) Upload(ctx context.Context, item *UploadItem, folderID *string) (*model.File, error) {
	err := s.validateItem(item)
	if err != nil {
		return nil, err
	}

	file, err := s.upload(ctx, item, normalizeID(folderID))
	if err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded", "id", file.ID, "name", file.Name, "size", file.Size, "folder_id", file.FolderID)
	return file, nil
}

// UploadMany accepts a batch from one submission. Every item is validated
// before anything is stored; after that items are applied independently and
// the result reports which ones failed.
func (s *FileService) UploadMany(ctx context.Context, items []*UploadItem, folderID *string) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, domain.Validation("no files provided")
	}

	for i, item := range items {
		if err := s.validateItem(item); err != nil {
			return nil, domain.Validation("file %d: %s", i, err.Error())
		}
	}

	folderID = normalizeID(folderID)
	if err := s.requireFolder(ctx, folderID); err != nil {
		return nil, err
	}

	result := &BatchResult{Requested: len(items)}
	for i, item := range items {
		_, err := s.upload(ctx, item, folderID)
		if err != nil {
			s.logger.Warn("batch upload item failed", "index", i, "name", item.Name, "error", err)
			result.Failed = append(result.Failed, BatchFailure{Index: i, Name: item.Name, Error: err.Error()})
			continue
		}
		result.Count++
	}

	s.logger.Info("batch upload finished", "requested", result.Requested, "count", result.Count, "folder_id", folderID)
	return result, nil
}

func (s *FileService) upload(ctx context.Context, item *UploadItem, folderID *string) (*model.File, error) {
	now := time.Now().UTC()
	key := storage.Key(item.Name, now)

	err := s.storage.Save(ctx, key, item.Content, item.Size)
	if err != nil {
		uploadsTotal.WithLabelValues("stored", "error").Inc()
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	size, err := s.storage.Size(ctx, key)
	if err != nil {
		uploadsTotal.WithLabelValues("stored", "error").Inc()
		removeObject(ctx, s.storage, s.logger, key)
		return nil, fmt.Errorf("failed to stat stored file: %w", err)
	}

	file := &model.File{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(item.Name),
		MimeType:    mimeOrDefault(item.MimeType),
		Size:        size,
		CreatedAt:   now,
		FolderID:    folderID,
		StoragePath: &key,
	}

	err = s.fileRepo.Create(ctx, file)
	if err != nil {
		uploadsTotal.WithLabelValues("stored", "error").Inc()
		removeObject(ctx, s.storage, s.logger, key)
		return nil, s.mapFolderErr(err, folderID, "failed to create file record")
	}

	uploadsTotal.WithLabelValues("stored", "ok").Inc()
	uploadBytesTotal.Add(float64(file.Size))
	return file, nil
}

func (s *FileService) Rename(ctx context.Context, id, name string) (*model.File, error) {
	name = strings.TrimSpace(name)
	if err := fbvalidation.ValidateName(name); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	err := s.fileRepo.Rename(ctx, id, name)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, domain.NotFound("file", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}

	return s.Get(ctx, id)
}

// Move reassigns the file's folder. A nil folder moves it to the root.
func (s *FileService) Move(ctx context.Context, id string, folderID *string) error {
	folderID = normalizeID(folderID)

	err := s.fileRepo.Move(ctx, id, folderID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return domain.NotFound("file", id)
	}
	if err != nil {
		return s.mapFolderErr(err, folderID, "failed to move file")
	}

	s.logger.Info("file moved", "id", id, "folder_id", folderID)
	return nil
}

// MoveMany is a best-effort batch move. Count is the number of files that
// were actually moved.
func (s *FileService) MoveMany(ctx context.Context, ids []string, folderID *string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, domain.Validation("ids must not be empty")
	}

	folderID = normalizeID(folderID)
	if err := s.requireFolder(ctx, folderID); err != nil {
		return nil, err
	}

	result := &BatchResult{Requested: len(ids)}
	for i, id := range ids {
		err := s.Move(ctx, id, folderID)
		if err != nil {
			result.Failed = append(result.Failed, BatchFailure{Index: i, ID: id, Error: err.Error()})
			continue
		}
		result.Count++
	}

	return result, nil
}

// Delete removes the row, then best-effort unlinks stored bytes
func (s *FileService) Delete(ctx context.Context, id string) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.fileRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrFileNotFound) {
		return domain.NotFound("file", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if !file.IsInline() {
		removeObject(ctx, s.storage, s.logger, *file.StoragePath)
	}

	s.logger.Info("file deleted", "id", id, "name", file.Name)
	return nil
}

func (s *FileService) validateItem(item *UploadItem) error {
	if item == nil || item.Content == nil {
		return domain.Validation("file content is required")
	}

	err := validation.ValidateStruct(item,
		validation.Field(&item.Name, validation.By(nameRule)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	if item.Size >= 0 {
		if err := fbvalidation.ValidateUploadSize(item.Size, s.maxUploadBytes); err != nil {
			return &domain.ValidationError{Message: err.Error()}
		}
	}

	return nil
}

func (s *FileService) sizeRule(value any) error {
	data, _ := value.([]byte)
	return fbvalidation.ValidateUploadSize(int64(len(data)), s.maxUploadBytes)
}

func (s *FileService) requireFolder(ctx context.Context, folderID *string) error {
	if folderID == nil {
		return nil
	}

	_, err := s.folderRepo.ByID(ctx, *folderID)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return domain.Validation("folder %s does not exist", *folderID)
	}
	return err
}

func (s *FileService) mapFolderErr(err error, folderID *string, msg string) error {
	if errors.Is(err, repository.ErrFolderNotFound) && folderID != nil {
		return domain.Validation("folder %s does not exist", *folderID)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nameRule(value any) error {
	name, _ := value.(string)
	return fbvalidation.ValidateName(name)
}

func mimeOrDefault(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return model.DefaultMimeType
	}
	return mimeType
}
