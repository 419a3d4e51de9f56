package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/service"
)

// maxImportSize caps CSV uploads at 10 MiB.
const maxImportSize = 10 << 20

// ============================================================
// CSV Import Handler
// ============================================================

// importCSVHandler accepts a multipart upload under the "file" field, or a
// raw CSV body with a ?filename= query parameter. The account is taken from
// the file name, so clients must preserve it. ?dry_run=true validates the
// batch without writing.
func importCSVHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/import/csv")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

		var (
			file     io.Reader
			filename string
		)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxImportSize); err != nil {
				writeError(w, http.StatusBadRequest, "invalid multipart upload")
				return
			}
			part, header, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "missing file field")
				return
			}
			defer part.Close()
			file = part
			filename = header.Filename
		} else {
			filename = r.URL.Query().Get("filename")
			if filename == "" {
				writeError(w, http.StatusBadRequest, "filename query parameter is required for raw uploads")
				return
			}
			file = r.Body
		}

		dryRun := r.URL.Query().Get("dry_run") == "true"

		result, err := svc.ImportCSV(ctx, UserIDFromContext(ctx), filename, file, dryRun)
		var unresolved *domain.ErrAccountUnresolved
		if errors.As(err, &unresolved) {
			// The batch halted before any write: the client creates the
			// account and re-submits the same file.
			writeJSON(w, http.StatusUnprocessableEntity, result)
			return
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
