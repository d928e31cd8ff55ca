package api

import (
	"errors"
	"log/slog"
	"net/http"

	"filmtag/internal/apperr"
	"filmtag/internal/match"
	"filmtag/internal/models"
	"filmtag/internal/pipeline"
	"filmtag/internal/storage"
	"filmtag/internal/table"
)

type handlers struct {
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	library  *storage.FS
}

func (h *handlers) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.LastReport()
	if err != nil {
		if errors.Is(err, apperr.ErrNoReport) {
			writeJSON(w, http.StatusNotFound, errorBody("no run has completed yet"))
			return
		}
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) getMatches(w http.ResponseWriter, r *http.Request) {
	h.writeResultTable(w, func(res *match.Result) *table.Table { return res.Matched })
}

func (h *handlers) getUnmatched(w http.ResponseWriter, r *http.Request) {
	h.writeResultTable(w, func(res *match.Result) *table.Table { return res.Unmatched })
}

func (h *handlers) writeResultTable(w http.ResponseWriter, pick func(*match.Result) *table.Table) {
	res := h.pipeline.LastResult()
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no run has completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, tableResponse(pick(res)))
}

func (h *handlers) getRecipes(w http.ResponseWriter, r *http.Request) {
	tbl, err := h.pipeline.Recipes()
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyInput) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
			return
		}
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse(tbl))
}

func (h *handlers) getPhotos(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no library configured"))
		return
	}
	photos, err := h.library.List()
	if err != nil {
		h.serverError(w, err)
		return
	}
	if photos == nil {
		photos = []models.PhotoInfo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *handlers) postRun(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag") == "true"
	report, err := h.pipeline.Run(r.Context(), tag)
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Report: report})
}

func (h *handlers) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
}

func tableResponse(tbl *table.Table) RowsResponse {
	resp := RowsResponse{Columns: tbl.Header, Rows: tbl.Rows}
	if resp.Columns == nil {
		resp.Columns = []string{}
	}
	if resp.Rows == nil {
		resp.Rows = [][]string{}
	}
	return resp
}
