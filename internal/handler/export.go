package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/httputil"
)

type ExportHandler struct {
	db *sqlx.DB
}

func NewExportHandler(db *sqlx.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// Export downloads a consistent snapshot of the SQLite database
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.db.DriverName() != db.DriverSQLite {
		httputil.RespondError(w, http.StatusNotImplemented, "export is only available for sqlite")
		return
	}

	dir, err := os.MkdirTemp("", "filebox-export-*")
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	defer os.RemoveAll(dir)

	dest := filepath.Join(dir, "filebox.db")
	err = db.Snapshot(r.Context(), h.db, dest)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	f, err := os.Open(dest)
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		httputil.HandleError(w, r, err)
		return
	}

	name := fmt.Sprintf("filebox-%s.db", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	slog.Info("database exported", "bytes", stat.Size())
	http.ServeContent(w, r, name, stat.ModTime(), f)
}
