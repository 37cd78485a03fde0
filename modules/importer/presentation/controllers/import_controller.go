package controllers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/akdemia/akdemia/modules/importer/domain/importreport"
	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/modules/importer/services"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/configuration"
	"github.com/akdemia/akdemia/pkg/excel"
	"github.com/akdemia/akdemia/pkg/httpapi"
	"github.com/akdemia/akdemia/pkg/schema"
)

type ImportController struct {
	app        application.Application
	svc        *services.ImportService
	uploadsDir string
	maxUpload  int64
	basePath   string
}

func NewImportController(app application.Application) application.Controller {
	return &ImportController{
		app:        app,
		svc:        app.Service(services.ImportService{}).(*services.ImportService),
		uploadsDir: configuration.Use().UploadsPath,
		maxUpload:  configuration.Use().MaxUploadSize,
		basePath:   "/api/imports",
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/targets", c.listTargets).Methods(http.MethodGet)
	router.HandleFunc("", c.load).Methods(http.MethodPost)
	router.HandleFunc("/{token}/commit", c.commit).Methods(http.MethodPost)
	router.HandleFunc("/{token}", c.cancel).Methods(http.MethodDelete)
}

type fieldDTO struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Unique   bool     `json:"unique"`
	Choices  []string `json:"choices,omitempty"`
	Relation string   `json:"relation,omitempty"`
}

type targetDTO struct {
	ID     string     `json:"id"`
	Fields []fieldDTO `json:"fields"`
}

func (c *ImportController) listTargets(w http.ResponseWriter, r *http.Request) {
	ids := c.svc.Targets()
	out := make([]targetDTO, 0, len(ids))
	for _, id := range ids {
		fields, err := c.svc.Fields(id)
		if err != nil {
			c.writeServiceError(r, w, err)
			return
		}
		dto := targetDTO{ID: id, Fields: make([]fieldDTO, 0, len(fields))}
		for _, f := range fields {
			fd := fieldDTO{
				Name:     f.Name,
				Kind:     string(f.Kind),
				Required: f.Required,
				Unique:   f.Unique,
				Choices:  f.Choices,
			}
			if f.Relation != nil {
				fd.Relation = f.Relation.Target
			}
			dto.Fields = append(dto.Fields, fd)
		}
		out = append(out, dto)
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type loadResponse struct {
	Token      string     `json:"token"`
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sample_rows"`
	RowCount   int        `json:"row_count"`
}

// load is phase one: the workbook upload plus target, sheet and range. The
// response carries everything the mapping step needs.
func (c *ImportController) load(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.maxUpload); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error(), nil)
		return
	}
	targetID := r.FormValue("target")
	sheet := r.FormValue("sheet")
	rangeExpr := r.FormValue("range")
	if targetID == "" || sheet == "" || rangeExpr == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_PARAMETER",
			"target, sheet and range are required", nil)
		return
	}

	path, err := c.saveUpload(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error(), nil)
		return
	}

	loaded, err := c.svc.Load(r.Context(), targetID, path, sheet, rangeExpr)
	if err != nil {
		_ = os.Remove(path)
		c.writeServiceError(r, w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, &loadResponse{
		Token:      loaded.Token.String(),
		Headers:    loaded.Headers,
		SampleRows: loaded.SampleRows,
		RowCount:   loaded.RowCount,
	})
}

type commitRequest struct {
	Mapping importsession.Mapping `json:"mapping"`
}

type commitResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Rows     []rowDTO `json:"rows"`
}

type rowDTO struct {
	Row     int    `json:"row"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// commit is phase two: the confirmed column mapping triggers the batch.
func (c *ImportController) commit(w http.ResponseWriter, r *http.Request) {
	token, ok := c.token(w, r)
	if !ok {
		return
	}
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	report, err := c.svc.Commit(r.Context(), token, req.Mapping)
	if err != nil {
		c.writeServiceError(r, w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCommitResponse(report))
}

func (c *ImportController) cancel(w http.ResponseWriter, r *http.Request) {
	token, ok := c.token(w, r)
	if !ok {
		return
	}
	if err := c.svc.Cancel(r.Context(), token); err != nil {
		c.writeServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ImportController) token(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token, err := uuid.Parse(mux.Vars(r)["token"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_TOKEN", "token must be a UUID", nil)
		return uuid.Nil, false
	}
	return token, true
}

func (c *ImportController) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", errors.Wrap(err, "workbook file is required")
	}
	defer file.Close()

	if err := os.MkdirAll(c.uploadsDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.CreateTemp(c.uploadsDir, "import-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := dst.ReadFrom(file); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func toCommitResponse(report importreport.Report) *commitResponse {
	imported, skipped, failed := report.Counts()
	resp := &commitResponse{
		Imported: imported,
		Skipped:  skipped,
		Failed:   failed,
		Rows:     make([]rowDTO, 0, len(report)),
	}
	for _, row := range report {
		resp.Rows = append(resp.Rows, rowDTO{
			Row:     row.RowIndex + 1,
			Outcome: string(row.Outcome),
			Reason:  row.Reason,
		})
	}
	return resp
}

func (c *ImportController) writeServiceError(r *http.Request, w http.ResponseWriter, err error) {
	var incomplete *importsession.MappingIncompleteError
	switch {
	case errors.Is(err, schema.ErrTargetNotAuthorized):
		_ = httpapi.WriteError(w, http.StatusForbidden, "TARGET_NOT_AUTHORIZED", err.Error(), nil)
	case errors.Is(err, excel.ErrSheetNotFound):
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "SHEET_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, excel.ErrInvalidRange):
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "INVALID_RANGE", err.Error(), nil)
	case errors.Is(err, services.ErrEmptyRange), errors.Is(err, services.ErrTooManyRows):
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "INVALID_RANGE", err.Error(), nil)
	case errors.As(err, &incomplete):
		meta := make(map[string]string, len(incomplete.Missing))
		for _, name := range incomplete.Missing {
			meta[name] = "required field is not mapped"
		}
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "MAPPING_INCOMPLETE", err.Error(), meta)
	case errors.Is(err, importsession.ErrInvalidTransition):
		_ = httpapi.WriteError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, importsession.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, importsession.ErrExpired):
		_ = httpapi.WriteError(w, http.StatusGone, "SESSION_EXPIRED", err.Error(), nil)
	case errors.Is(err, schema.ErrUnavailable):
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error(), nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("import request failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
