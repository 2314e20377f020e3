package utils

import (
	"fmt"

	"netops/internal/repository"

	"github.com/xuri/excelize/v2"
)

// CreateFlowReportExcel writes the aggregated flow report to an Excel
// workbook.
func CreateFlowReportExcel(path string, rows []repository.FlowAggregate) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Flows"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}

	headers := []string{"Origin", "Dest", "Direction", "Legs", "Weight (lbs)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, row := range rows {
		rowNum := rowIdx + 2 // headers occupy row 1

		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), row.Origin)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), row.Dest)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), row.Direction)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), row.Legs)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), row.WeightLbs)

		f.SetCellStyle(sheet, fmt.Sprintf("E%d", rowNum), fmt.Sprintf("E%d", rowNum),
			getNumberStyle(f, "0.0"))
	}

	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, colName, colName, 16)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	f.SetActiveSheet(index)

	return f.SaveAs(path)
}

func getNumberStyle(f *excelize.File, format string) int {
	style, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
	})
	if err != nil {
		return 0
	}
	return style
}
