package handler

import (
	"net/http"

	"github.com/templui/filebox/internal/httputil"
	"github.com/templui/filebox/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.List(r.Context())
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFolderRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	folder, err := h.folderService.Create(r.Context(), &req)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateFolderRequest
	err := decodeJSON(w, r, &req, httputil.DefaultMaxJSONBytes)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	folder, err := h.folderService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Delete removes the folder with its whole subtree
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.folderService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, okResponse{OK: true})
}
