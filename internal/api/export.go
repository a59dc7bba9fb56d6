package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/export"
	"github.com/Spok95/scout-gallery/internal/models"
)

// ExportSets отдаёт xlsx по заявкам: админ — все районы, бранш — только
// допущенные. Бранш без единого допуска выгрузку не получает вовсе.
func (h *Handlers) ExportSets(c *gin.Context) {
	actor := actorFrom(c)

	var districtIDs []int64
	if actor.Role == models.BrancheEclaireurs {
		if len(actor.GrantedDistricts) == 0 {
			c.JSON(http.StatusForbidden,
				errorBody{Code: "forbidden", Message: "нет допусков к районам"})
			return
		}
		districtIDs = actor.GrantedDistricts
	}

	rows, err := db.ListExportRows(c.Request.Context(), h.sdb, districtIDs)
	if err != nil {
		writeErr(c, err)
		return
	}
	wb, err := export.BuildSubmissions(rows, h.loc)
	if err != nil {
		writeErr(c, err)
		return
	}

	name := fmt.Sprintf("sets_%s.xlsx", time.Now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := wb.File.Write(c.Writer); err != nil {
		h.log.Warn("export: запись ответа прервана", zap.Error(err))
	}
}
