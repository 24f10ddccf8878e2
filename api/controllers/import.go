package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kasirpos/kasirpos-backend/api/responses"
	"github.com/kasirpos/kasirpos-backend/internal/importer"
	"github.com/kasirpos/kasirpos-backend/pkg/config"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
	"github.com/kasirpos/kasirpos-backend/pkg/logger"
)

type csvImporter interface {
	Import(ctx context.Context, r io.Reader) (*importer.Report, error)
}

// ProductsImportCSV accepts a multipart upload under the "file" field and
// bulk-loads catalog rows from it.
func ProductsImportCSV(svc csvImporter, importCfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		maxBytes := importCfg.MaxUploadBytes()
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "upload too large").
					WithDetails(map[string]any{"max_bytes": maxBytes}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "csv file is required").
				WithDetails(map[string]string{"file": "is required"}))
			return
		}
		defer file.Close()

		if !hasCSVExtension(header.Filename) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file must be a .csv or .txt").
				WithDetails(map[string]string{"file": "must have a .csv or .txt extension"}))
			return
		}

		report, err := svc.Import(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// Spreadsheet exports commonly arrive as .txt; both carry the same
// comma-separated payload.
func hasCSVExtension(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".txt")
}
