package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/habitlog/internal/tracker"
	"github.com/xuri/excelize/v2"
)

// TableHeader 为表格导出的列名
var TableHeader = []string{"date", "habitId", "habitName", "done", "timestamp"}

const sheetName = "logs"

var columnWidths = map[string]float64{"A": 12, "B": 38, "C": 24, "D": 8, "E": 16}

// Row 对应一条打卡记录
type Row struct {
	Date      string
	HabitID   string
	HabitName string
	Done      bool
	Timestamp string
}

// Record 返回按列顺序排列的字符串
func (r Row) Record() []string {
	return []string{r.Date, r.HabitID, r.HabitName, strconv.FormatBool(r.Done), r.Timestamp}
}

// Rows 为每条已有的打卡记录生成一行，按日期、习惯ID排序。
// 习惯名称按当前习惯列表查找，找不到时留空；At 为 0 时时间戳留空。
func Rows(doc *tracker.Document) []Row {
	names := make(map[string]string, len(doc.Habits))
	for _, h := range doc.Habits {
		names[h.ID] = h.Name
	}

	rows := make([]Row, 0)
	for _, date := range slices.Sorted(maps.Keys(doc.Logs)) {
		day := doc.Logs[date]
		for _, habitID := range slices.Sorted(maps.Keys(day)) {
			entry := day[habitID]
			row := Row{
				Date:      date,
				HabitID:   habitID,
				HabitName: names[habitID],
				Done:      entry.Done,
			}
			if entry.At != 0 {
				row.Timestamp = strconv.FormatInt(entry.At, 10)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV 以 CSV 输出所有打卡记录；含分隔符、引号或换行的字段会加引号并转义。
// 以空格开头或含回车的字段同样加引号，读回后内容不变。
func WriteCSV(w io.Writer, doc *tracker.Document) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(TableHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(doc) {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX 以 Excel 工作表输出与 CSV 相同的列
func WriteXLSX(w io.Writer, doc *tracker.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &TableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for idx, row := range Rows(doc) {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		values := []any{row.Date, row.HabitID, row.HabitName, strconv.FormatBool(row.Done), row.Timestamp}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set column %s width: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
