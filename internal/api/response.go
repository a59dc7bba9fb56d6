package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/authz"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/grouping"
	"github.com/Spok95/scout-gallery/internal/metrics"
	"github.com/Spok95/scout-gallery/internal/observability"
	"github.com/Spok95/scout-gallery/internal/workflow"
)

// единый конверт ошибок: {code, message, details?}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func jsonOK(c *gin.Context, data any)      { c.JSON(http.StatusOK, data) }
func jsonCreated(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

// writeErr раскладывает доменные ошибки по статусам:
// 403 отказ доступа, 409 нарушение воркфлоу/группировки, 404 нет записи,
// 503 (+Retry-After) только для ошибок хранилища — их безопасно повторить.
func writeErr(c *gin.Context, err error) {
	var denied *authz.DeniedError
	if errors.As(err, &denied) {
		// причину наружу не отдаём: она описывает устройство прав
		c.JSON(http.StatusForbidden, errorBody{Code: "forbidden", Message: "доступ запрещён"})
		return
	}
	var violation *workflow.ViolationError
	if errors.As(err, &violation) {
		c.JSON(http.StatusConflict, errorBody{
			Code:    "workflow_violation",
			Message: "недопустимый переход статуса",
			Details: violation.Error(),
		})
		return
	}
	var invariant *grouping.InvariantError
	if errors.As(err, &invariant) {
		c.JSON(http.StatusConflict, errorBody{
			Code:    "grouping_" + string(invariant.Kind),
			Message: invariant.Error(),
		})
		return
	}
	var notFound *db.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, errorBody{Code: "not_found", Message: notFound.Error()})
		return
	}
	if db.IsUnavailable(err) {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, errorBody{
			Code:    "storage_unavailable",
			Message: "хранилище недоступно, повторите запрос",
		})
		return
	}

	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	c.JSON(http.StatusInternalServerError, errorBody{Code: "internal", Message: "внутренняя ошибка"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Code: "bad_request", Message: msg})
}
