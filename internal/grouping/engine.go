// Пакет grouping — кластеризация снимков одной постройки в DesignGroup.
// Инвариант: живая группа содержит минимум два снимка, primary — её участник.
// Функции считают план изменений, запись делает сервис одной транзакцией.
//
// Две унаследованные политики сохранены сознательно (вопрос продукту открыт):
// категория новой группы берётся у первого снимка, а не голосованием;
// группа из одного оставшегося снимка молча распускается.
package grouping

import (
	"fmt"

	"github.com/Spok95/scout-gallery/internal/models"
)

type ErrKind string

const (
	AlreadyGrouped   ErrKind = "already_grouped"
	BelowMinimumSize ErrKind = "below_minimum_size"
	PrimaryNotMember ErrKind = "primary_not_member"
)

type InvariantError struct {
	Kind      ErrKind
	PictureID int64
}

func (e *InvariantError) Error() string {
	switch e.Kind {
	case AlreadyGrouped:
		return fmt.Sprintf("снимок %d уже состоит в другой группе", e.PictureID)
	case BelowMinimumSize:
		return "в группе должно быть минимум два снимка"
	case PrimaryNotMember:
		return fmt.Sprintf("primary %d не участник группы", e.PictureID)
	}
	return string(e.Kind)
}

// CreatePlan — что записать при создании группы.
type CreatePlan struct {
	MemberIDs  []int64
	PrimaryID  int64
	CategoryID *int64
}

// PlanCreate собирает группу из ≥2 свободных снимков.
// primary — переданный id, если он участник, иначе первый снимок.
func PlanCreate(pics []models.Picture, primaryID *int64) (*CreatePlan, error) {
	if len(pics) < 2 {
		return nil, &InvariantError{Kind: BelowMinimumSize}
	}
	plan := &CreatePlan{MemberIDs: make([]int64, 0, len(pics))}
	for _, p := range pics {
		if p.GroupID != nil {
			return nil, &InvariantError{Kind: AlreadyGrouped, PictureID: p.ID}
		}
		plan.MemberIDs = append(plan.MemberIDs, p.ID)
	}
	plan.CategoryID = pics[0].CategoryID
	plan.PrimaryID = pics[0].ID
	if primaryID != nil {
		for _, id := range plan.MemberIDs {
			if id == *primaryID {
				plan.PrimaryID = *primaryID
				break
			}
		}
	}
	return plan, nil
}

// PlanAdd — добавление в существующую группу. Снимок из чужой группы —
// ошибка, снимок уже из этой группы — no-op.
func PlanAdd(groupID int64, pics []models.Picture) ([]int64, error) {
	var toAssign []int64
	for _, p := range pics {
		if p.GroupID != nil {
			if *p.GroupID == groupID {
				continue
			}
			return nil, &InvariantError{Kind: AlreadyGrouped, PictureID: p.ID}
		}
		toAssign = append(toAssign, p.ID)
	}
	return toAssign, nil
}

// RemovePlan — что записать при удалении снимка из группы.
type RemovePlan struct {
	// Dissolve: после удаления осталось меньше двух — группа распускается,
	// ссылки всех оставшихся очищаются, запись группы удаляется.
	Dissolve     bool
	ClearIDs     []int64
	NewPrimaryID *int64
}

// PlanRemove убирает снимок; выжившей группе при потере primary назначается
// участник с наименьшим display_order.
func PlanRemove(g models.DesignGroup, members []models.Picture, picID int64) (*RemovePlan, error) {
	var removed *models.Picture
	remaining := make([]models.Picture, 0, len(members))
	for i := range members {
		if members[i].ID == picID {
			removed = &members[i]
			continue
		}
		remaining = append(remaining, members[i])
	}
	if removed == nil {
		return nil, fmt.Errorf("снимок %d не участник группы %d", picID, g.ID)
	}

	plan := &RemovePlan{ClearIDs: []int64{picID}}
	if len(remaining) < 2 {
		plan.Dissolve = true
		for _, p := range remaining {
			plan.ClearIDs = append(plan.ClearIDs, p.ID)
		}
		return plan, nil
	}

	if g.PrimaryPictureID == picID {
		lowest := remaining[0]
		for _, p := range remaining[1:] {
			if p.DisplayOrder < lowest.DisplayOrder {
				lowest = p
			}
		}
		plan.NewPrimaryID = &lowest.ID
	}
	return plan, nil
}

// Verify — проверка инварианта живой группы; используется в тестах
// и как страховка сервисного слоя.
func Verify(g models.DesignGroup, members []models.Picture) error {
	if len(members) < 2 {
		return &InvariantError{Kind: BelowMinimumSize}
	}
	for _, p := range members {
		if p.ID == g.PrimaryPictureID {
			return nil
		}
	}
	return &InvariantError{Kind: PrimaryNotMember, PictureID: g.PrimaryPictureID}
}
