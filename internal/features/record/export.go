package record

import (
	"context"
	"fmt"
	"time"

	"go-admin/pkg/condition"
	"go-admin/pkg/criteria"
	"go-admin/pkg/pagination"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Export writes the filtered, sorted result set as an xlsx workbook. Without
// an explicit limit every match is exported, up to the configured cap.
func (s *RecordServiceImpl) Export(ctx context.Context, moduleName string, q ListQuery) ([]byte, string, error) {
	l, err := s.lister(moduleName)
	if err != nil {
		return nil, "", err
	}
	if q.Limit == nil {
		all := pagination.LimitAll
		q.Limit = &all
	}

	page, err := l.List(ctx, q)
	if err != nil {
		return nil, "", err
	}

	data, err := writeWorkbook(moduleName, l.Catalog().Fields(), page.Items)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("%s_%s.xlsx", moduleName, time.Now().UTC().Format("20060102_150405")), nil
}

func writeWorkbook(sheetName string, fields []criteria.Field, items []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, field := range fields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, field.Name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, record := range items {
		for colIdx, field := range fields {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, cellValue(condition.Lookup(record, field.Storage()))); err != nil {
				return nil, err
			}
		}
	}

	for i := range fields {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case primitive.DateTime:
		return t.Time().UTC().Format("2006-01-02 15:04:05")
	case primitive.ObjectID:
		return t.Hex()
	case string, bool, int, int32, int64, float32, float64:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
