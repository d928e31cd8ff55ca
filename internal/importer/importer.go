// Package importer converts HTML recipe tables, as published on recipe
// sharing sites, into the CSV schema the matcher consumes.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"filmtag/internal/apperr"
	"filmtag/internal/models"
	"filmtag/internal/table"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Parse extracts the first <table> from an HTML document and converts it into
// a recipes table. Header cells come from <th> elements, or from the first row
// when the table has no <th>. Blank cells become the sentinel so a partially
// filled table joins correctly. The table must contain a filmsim column.
func Parse(r io.Reader) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: parse html: %w", err)
	}

	sel := doc.Find("table").First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("importer: no table found: %w", apperr.ErrNotFound)
	}

	var header []string
	sel.Find("th").Each(func(_ int, cell *goquery.Selection) {
		header = append(header, strings.TrimSpace(cell.Text()))
	})

	rows := sel.Find("tr")
	start := 0
	if len(header) == 0 {
		rows.First().Find("td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, strings.TrimSpace(cell.Text()))
		})
		start = 1
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("importer: table has no header: %w", apperr.ErrEmptyInput)
	}

	tbl := table.New(header...)
	rows.Each(func(i int, row *goquery.Selection) {
		if i < start {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		values := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			v := strings.TrimSpace(cell.Text())
			if v == "" {
				v = models.Sentinel
			}
			values = append(values, v)
		})
		tbl.AppendRow(values...)
	})

	if !tbl.HasColumn(models.ColRecipe) {
		return nil, fmt.Errorf("importer: column %s: %w", models.ColRecipe, apperr.ErrMissingColumn)
	}
	return tbl, nil
}

// FetchURL downloads an HTML page and parses its first table.
func FetchURL(ctx context.Context, url string) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("importer: build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("importer: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("importer: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return Parse(resp.Body)
}
