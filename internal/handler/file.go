package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/service"
	"github.com/templui/filebox/internal/validation"
)

const (
	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temp files
	multipartMemory = 32 << 20
	// multipartOverhead covers boundaries and form fields around the file bytes
	multipartOverhead = 1 << 20
	maxBatchFiles     = 20
)

type FileHandler struct {
	fileService    *service.FileService
	streamer       *service.Streamer
	maxUploadBytes int64
	inlineMaxBytes int64
}

func NewFileHandler(fileService *service.FileService, streamer *service.Streamer, maxUploadBytes, inlineMaxBytes int64) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		streamer:       streamer,
		maxUploadBytes: maxUploadBytes,
		inlineMaxBytes: inlineMaxBytes,
	}
}

// List returns unprotected files, or one folder's files when folderId is given
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.List(r.Context(), queryID(r, "folderId"), folderCode(r))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, files)
}

// Get streams the file content, honoring Range for stored files.
// ?download=1 asks the browser to save instead of display.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Content(r.Context(), r.PathValue("id"), folderCode(r))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") != "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))

	err = h.streamer.Serve(w, r, file)
	if err != nil {
		w.Header().Del("Content-Disposition")
		httputil.HandleError(w, r, err)
	}
}

type inlineUploadRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Data     []byte  `json:"data"` // base64
	FolderID *string `json:"folderId"`
}

// Create accepts either a JSON body with base64 data (stored inline) or a
// multipart form with a single "file" part (streamed to storage).
func (h *FileHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		h.createInline(w, r)
		return
	}

	form, err := h.parseMultipart(w, r, h.maxUploadBytes+multipartOverhead)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	headers := form.File["file"]
	if len(headers) == 0 {
		httputil.HandleError(w, r, domain.Validation("no file provided"))
		return
	}

	item, closeFn, err := uploadItem(headers[0])
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	defer closeFn()

	file, err := h.fileService.Upload(r.Context(), item, formID(form, "folderId"))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) createInline(w http.ResponseWriter, r *http.Request) {
	// base64 grows the payload by 4/3
	limit := h.inlineMaxBytes*4/3 + multipartOverhead

	var req inlineUploadRequest
	err := decodeJSON(w, r, &req, limit)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	if req.Data == nil {
		httputil.HandleError(w, r, domain.Validation("data is required"))
		return
	}
	if int64(len(req.Data)) > h.inlineMaxBytes {
		httputil.HandleError(w, r, domain.Validation("inline payload exceeds %d bytes, use a multipart upload", h.inlineMaxBytes))
		return
	}

	file, err := h.fileService.Create(r.Context(), &service.CreateFileRequest{
		Name:     req.Name,
		MimeType: req.Type,
		Data:     req.Data,
		FolderID: req.FolderID,
	})
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, file)
}

type batchResponse struct {
	OK bool `json:"ok"`
	*service.BatchResult
}

// CreateMany stores every "files" part of a multipart form
func (h *FileHandler) CreateMany(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(w, r, h.maxUploadBytes*maxBatchFiles+multipartOverhead)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	defer form.RemoveAll()

	headers := form.File["files"]
	if len(headers) == 0 {
		httputil.HandleError(w, r, domain.Validation("no files provided"))
		return
	}
	if len(headers) > maxBatchFiles {
		httputil.HandleError(w, r, domain.Validation("at most %d files per request", maxBatchFiles))
		return
	}

	items := make([]*service.UploadItem, 0, len(headers))
	for _, fh := range headers {
		item, closeFn, err := uploadItem(fh)
		if err != nil {
			httputil.HandleError(w, r, err)
			return
		}
		defer closeFn()
		items = append(items, item)
	}

	result, err := h.fileService.UploadMany(r.Context(), items, formID(form, "folderId"))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, batchResponse{OK: len(result.Failed) == 0, BatchResult: result})
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	file, err := h.fileService.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

type moveRequest struct {
	FolderID *string `json:"folderId"` // null or absent = root
}

func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	err = h.fileService.Move(r.Context(), r.PathValue("id"), req.FolderID)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}

type moveBulkRequest struct {
	IDs      []string `json:"ids"`
	FolderID *string  `json:"folderId"`
}

func (h *FileHandler) MoveBulk(w http.ResponseWriter, r *http.Request) {
	var req moveBulkRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	result, err := h.fileService.MoveMany(r.Context(), req.IDs, req.FolderID)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, batchResponse{OK: len(result.Failed) == 0, BatchResult: result})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.fileService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *FileHandler) parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, domain.Validation("invalid multipart form: %s", err.Error())
	}
	return r.MultipartForm, nil
}

// uploadItem opens a multipart part and resolves its content type
func uploadItem(fh *multipart.FileHeader) (*service.UploadItem, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	mimeType, err := validation.DetectMimeType(fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	item := &service.UploadItem{
		Name:     fh.Filename,
		MimeType: mimeType,
		Size:     fh.Size,
		Content:  f,
	}
	return item, func() { f.Close() }, nil
}

func formID(form *multipart.Form, key string) *string {
	values := form.Value[key]
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil
	}
	v := values[0]
	return &v
}
