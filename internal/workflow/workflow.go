// Пакет workflow — конечный автомат статусов набора.
// pending → classified → approved/rejected, из терминальных выхода нет.
// Функции чистые: мутируют переданный агрегат, запись делает сервис.
package workflow

import (
	"fmt"
	"time"

	"github.com/Spok95/scout-gallery/internal/models"
)

type Event string

const (
	EventCreate   Event = "create"
	EventClassify Event = "classify"
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
)

// ViolationError — нарушение защиты перехода. Повторять запрос бессмысленно:
// роль, владение и статус сами собой не меняются.
type ViolationError struct {
	From  models.SetStatus
	Event Event
	Guard string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("переход %s из статуса %q: %s", e.Event, e.From, e.Guard)
}

func violation(from models.SetStatus, ev Event, guard string) error {
	return &ViolationError{From: from, Event: ev, Guard: guard}
}

// Create проверяет защиты создания и приводит набор к pending.
func Create(set *models.PictureSet, now time.Time) error {
	if len(set.Pictures) == 0 {
		return violation("", EventCreate, "нужен хотя бы один снимок")
	}
	if set.Type == models.TypeSchematic && set.PatrouilleID == nil {
		return violation("", EventCreate, "схема требует патруль")
	}
	set.Status = models.StatusPending
	set.UploadedAt = now
	return nil
}

// Classify — pending→classified либо повторная классификация внутри classified.
// classified_by/at ставятся при первом переходе и обновляются при повторном,
// статус назад не откатывается.
func Classify(set *models.PictureSet, categoryID int64, subCategoryID *int64, by int64, now time.Time) error {
	if set.Status.Terminal() {
		return violation(set.Status, EventClassify, "набор уже в терминальном статусе")
	}
	if categoryID == 0 {
		return violation(set.Status, EventClassify, "категория обязательна")
	}
	set.Status = models.StatusClassified
	set.CategoryID = &categoryID
	set.SubCategoryID = subCategoryID
	set.ClassifiedBy = &by
	set.ClassifiedAt = &now
	return nil
}

// Approve — pending/classified → approved; approved_by/at ставятся ровно один раз.
func Approve(set *models.PictureSet, by int64, now time.Time, isHighlight bool) error {
	if set.Status.Terminal() {
		return violation(set.Status, EventApprove, "набор уже в терминальном статусе")
	}
	set.Status = models.StatusApproved
	set.ApprovedBy = &by
	set.ApprovedAt = &now
	set.IsHighlight = isHighlight
	return nil
}

// Reject — pending/classified → rejected; причина обязательна,
// approved_by/at фиксируют отклонившего.
func Reject(set *models.PictureSet, by int64, now time.Time, reason string) error {
	if set.Status.Terminal() {
		return violation(set.Status, EventReject, "набор уже в терминальном статусе")
	}
	if reason == "" {
		return violation(set.Status, EventReject, "причина отклонения обязательна")
	}
	set.Status = models.StatusRejected
	set.ApprovedBy = &by
	set.ApprovedAt = &now
	set.RejectionReason = &reason
	return nil
}
