package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"elexmd/internal"
)

func ExportResultsToXLSX(rows []internal.ResultExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"election_id", "office", "district", "candidate", "party",
		"reporting_level", "jurisdiction", "ocd_id",
		"votes", "total_votes", "winner", "write_in",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ElectionID)
		set(2, row.OfficeName)
		set(3, row.OfficeDistrict)
		set(4, row.CandidateName)
		set(5, derefString(row.Party))
		set(6, row.ReportingLevel)
		set(7, row.Jurisdiction)
		set(8, derefString(row.OCDID))
		set(9, row.Votes)
		set(10, row.TotalVotes)
		set(11, row.Winner)
		set(12, row.WriteIn)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
