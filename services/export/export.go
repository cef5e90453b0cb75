// Package export renders a date-bounded task collection as a tabular file.
// The column set and order — description, targetDate, status, author,
// assignee, client — is the compatibility surface consumed downstream;
// comments are deliberately omitted.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"taskops-controlplane/services/task"

	"github.com/xuri/excelize/v2"
)

const sheetName = "KPI"

var columns = []string{"description", "targetDate", "status", "author", "assignee", "client"}

func row(t task.Task) []string {
	return []string{
		t.Description,
		t.TargetDate.Format("2006-01-02"),
		string(t.Status),
		t.Author,
		t.Assignee,
		t.Client,
	}
}

// WriteCSV streams the collection as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write(row(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the collection as a single-sheet spreadsheet.
func WriteXLSX(w io.Writer, tasks []task.Task) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, t := range tasks {
		cells := row(t)
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
