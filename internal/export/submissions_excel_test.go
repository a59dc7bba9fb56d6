package export

import (
	"testing"
	"time"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
)

func TestBuildSubmissions(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Paris")
	uploaded := time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC)
	cat := "Башни"
	rows := []db.ExportRow{
		{
			SetID: 1, Title: "Башня", Type: models.TypeInstallationPhoto,
			Status: models.StatusApproved, DistrictName: "Иль-де-Франс",
			GroupName: "Группа 1", TroupeName: "Отряд 1", CategoryName: &cat,
			AuthorEmail: "chef@test", UploadedAt: uploaded, ViewCount: 3, Pictures: 2,
		},
		{
			SetID: 2, Title: "Мост", Type: models.TypeSchematic,
			Status: models.StatusPending, DistrictName: "Иль-де-Франс",
			GroupName: "Группа 1", TroupeName: "Отряд 1",
			AuthorEmail: "chef@test", UploadedAt: uploaded, Pictures: 1,
		},
	}

	wb, err := BuildSubmissions(rows, loc)
	if err != nil {
		t.Fatal(err)
	}

	sheets := wb.File.GetSheetList()
	if len(sheets) != 4 {
		t.Fatalf("ожидали лист на каждый статус, получили %v", sheets)
	}

	v, err := wb.File.GetCellValue("Одобрены", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "Башня" {
		t.Fatalf("ячейка B2 листа «Одобрены»: %q", v)
	}

	v, _ = wb.File.GetCellValue("На рассмотрении", "C2")
	if v != "схема" {
		t.Fatalf("тип должен выводиться по-русски: %q", v)
	}

	// отклонённых нет — лист существует, но пуст ниже заголовка
	v, _ = wb.File.GetCellValue("Отклонены", "A2")
	if v != "" {
		t.Fatalf("пустой статус не должен иметь строк: %q", v)
	}
}
