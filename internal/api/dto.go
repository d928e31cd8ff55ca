package api

import "filmtag/internal/models"

// RowsResponse carries a CSV-shaped result set: column names plus rows of
// cells in column order.
type RowsResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReportResponse is the last run report.
type ReportResponse = models.RunReport

// RunResponse is returned after POST /api/run.
type RunResponse struct {
	Report *models.RunReport `json:"report"`
}
