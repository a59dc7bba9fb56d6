// Пакет export собирает xlsx-выгрузку заявок: по листу на каждый
// статус, внутри листа — строки по районам в порядке подачи.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type SubmissionsWorkbook struct {
	File *excelize.File
}

var statusSheets = []struct {
	status models.SetStatus
	title  string
}{
	{models.StatusPending, "На рассмотрении"},
	{models.StatusClassified, "Классифицированы"},
	{models.StatusApproved, "Одобрены"},
	{models.StatusRejected, "Отклонены"},
}

var submissionsHeader = []string{
	"ID", "Название", "Тип", "Район", "Группа", "Отряд",
	"Категория", "Автор", "Подана", "Одобрена", "Причина отказа",
	"Просмотры", "Снимков",
}

// BuildSubmissions раскладывает строки выгрузки по листам-статусам.
// Пустые статусы тоже получают лист: отсутствие листа легко принять
// за ошибку выгрузки.
func BuildSubmissions(rows []db.ExportRow, loc *time.Location) (*SubmissionsWorkbook, error) {
	sheets := make([]SheetSpec, 0, len(statusSheets))
	for _, s := range statusSheets {
		spec := SheetSpec{Title: s.title, Header: submissionsHeader}
		for _, r := range rows {
			if r.Status != s.status {
				continue
			}
			spec.Rows = append(spec.Rows, submissionRow(r, loc))
		}
		sheets = append(sheets, spec)
	}
	return newWorkbook(sheets)
}

func submissionRow(r db.ExportRow, loc *time.Location) []string {
	category := ""
	if r.CategoryName != nil {
		category = *r.CategoryName
	}
	approved := ""
	if r.ApprovedAt != nil {
		approved = r.ApprovedAt.In(loc).Format("02.01.2006 15:04")
	}
	reason := ""
	if r.RejectionReason != nil {
		reason = *r.RejectionReason
	}
	return []string{
		strconv.FormatInt(r.SetID, 10),
		r.Title,
		typeLabel(r.Type),
		r.DistrictName,
		r.GroupName,
		r.TroupeName,
		category,
		r.AuthorEmail,
		r.UploadedAt.In(loc).Format("02.01.2006 15:04"),
		approved,
		reason,
		strconv.FormatInt(r.ViewCount, 10),
		strconv.FormatInt(r.Pictures, 10),
	}
}

func typeLabel(t models.SetType) string {
	switch t {
	case models.TypeInstallationPhoto:
		return "фото постройки"
	case models.TypeSchematic:
		return "схема"
	}
	return string(t)
}

func newWorkbook(sheets []SheetSpec) (*SubmissionsWorkbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		for col, hd := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, hd); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		// стиль заголовков + автофильтр по первой строке
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &SubmissionsWorkbook{File: f}, nil
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
