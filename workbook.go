// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docx2md

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/wordml"
)

type sheetTable struct {
	name string
	rows [][]string
}

// renderObject renders an embedded Excel object as one table per non-empty
// sheet, each preceded by the sheet name in bold. Other objects and
// unreadable workbooks produce nothing.
func (s *session) renderObject(obj wordml.ObjectRef) []string {
	if !strings.HasPrefix(strings.ToLower(obj.ProgID), "excel.") {
		return nil
	}
	part, ok := s.rels[obj.RelID]
	if !ok {
		s.log.Debug("embedded object target missing", "rel", obj.RelID, "prog_id", obj.ProgID)
		return nil
	}

	sheets, err := readWorkbook(part)
	if err != nil {
		s.log.Warn("embedded workbook not rendered", "part", part.Name, "error", err)
		return nil
	}

	var lines []string
	for i, sh := range sheets {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "**"+sh.name+"**")
		lines = append(lines, renderMarkdownTable(sh.rows)...)
	}
	return lines
}

// readWorkbook picks the reader from the sniffed type, then the part name.
func readWorkbook(part ooxml.Part) ([]sheetTable, error) {
	mt := mimetype.Detect(part.Blob)
	ext := strings.ToLower(path.Ext(part.Name))
	switch {
	case mt.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
		mt.Is("application/zip") && (ext == ".xlsx" || ext == ".xlsm"):
		return readXLSX(part.Blob)
	case mt.Is("application/vnd.ms-excel"), mt.Is("application/x-ole-storage"):
		return readXLS(part.Blob)
	}
	return nil, fmt.Errorf("unsupported workbook type %s", mt.String())
}

func readXLSX(data []byte) ([]sheetTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var sheets []sheetTable
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		sheets = append(sheets, sheetTable{name: name, rows: cleanCells(rows)})
	}
	return sheets, nil
}

func readXLS(data []byte) ([]sheetTable, error) {
	// extrame/xls requires a file path, so we need to write to a temp file
	tmpFile, err := os.CreateTemp("", "docx2md-*.xls")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	wb, err := xls.Open(tmpPath, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var sheets []sheetTable
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		if len(rows) == 0 {
			continue
		}
		sheets = append(sheets, sheetTable{name: name, rows: cleanCells(rows)})
	}
	return sheets, nil
}

// cleanCells keeps every cell on one line so it fits a pipe table.
func cleanCells(rows [][]string) [][]string {
	for _, row := range rows {
		for i, cell := range row {
			cell = strings.ReplaceAll(cell, "\r\n", " ")
			cell = strings.ReplaceAll(cell, "\n", " ")
			row[i] = strings.TrimSpace(strings.ReplaceAll(cell, "|", `\|`))
		}
	}
	return rows
}
