// Пакет authz — единая таблица правил доступа. Никакого I/O:
// всё, что нужно для решения, вызывающий собирает заранее.
package authz

import (
	"fmt"

	"github.com/Spok95/scout-gallery/internal/models"
)

type Operation string

const (
	OpCreateSet       Operation = "create_set"
	OpClassify        Operation = "classify"
	OpBulkClassify    Operation = "bulk_classify"
	OpApprove         Operation = "approve"
	OpReject          Operation = "reject"
	OpDelete          Operation = "delete"
	OpCreateGroup     Operation = "create_group"
	OpModifyGroup     Operation = "modify_group"
	OpAddToGroup      Operation = "add_to_group"
	OpRemoveFromGroup Operation = "remove_from_group"
	OpDeleteGroup     Operation = "delete_group"
	OpViewUnapproved  Operation = "view_unapproved"
)

// Actor — аутентифицированный пользователь. nil = аноним.
type Actor struct {
	ID               int64
	Role             models.Role
	TroupeID         *int64
	GrantedDistricts []int64
}

func (a *Actor) hasDistrict(id int64) bool {
	for _, d := range a.GrantedDistricts {
		if d == id {
			return true
		}
	}
	return false
}

func (a *Actor) hasAllDistricts(ids []int64) bool {
	for _, d := range ids {
		if !a.hasDistrict(d) {
			return false
		}
	}
	return true
}

// Resource — срез целевого объекта, достаточный для решения.
// DistrictID получается подъёмом отряд → группа → район;
// TouchedDistricts — районы всех снимков групповой операции.
type Resource struct {
	TroupeID         int64
	DistrictID       int64
	OwnerID          int64 // uploaded_by набора либо created_by группы
	Status           models.SetStatus
	TouchedDistricts []int64
}

type Decision struct {
	Allow  bool
	Reason string
}

func allow() Decision             { return Decision{Allow: true} }
func deny(reason string) Decision { return Decision{Allow: false, Reason: reason} }

// DeniedError — отказ доступа; наружу уходит без деталей правил.
type DeniedError struct {
	ActorID   int64
	Operation Operation
	Reason    string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("доступ запрещён: операция %s, актор %d (%s)", e.Operation, e.ActorID, e.Reason)
}

// Decide — правила в порядке объявления, срабатывает первое подходящее.
// Детерминированная чистая функция: одни входы — одно решение.
func Decide(actor *Actor, op Operation, res Resource) Decision {
	// просмотр одобренного набора открыт всем, включая анонимов
	if op == OpViewUnapproved && res.Status == models.StatusApproved {
		return allow()
	}
	if actor == nil {
		return deny("требуется вход")
	}

	if actor.Role == models.Admin {
		return allow()
	}

	switch op {
	case OpCreateSet:
		if actor.Role == models.ChefTroupe && actor.TroupeID != nil && *actor.TroupeID == res.TroupeID {
			return allow()
		}
		return deny("набор создаёт только шеф своего отряда")

	case OpClassify, OpBulkClassify:
		if actor.Role == models.ChefTroupe && res.OwnerID == actor.ID {
			return allow()
		}
		if actor.Role == models.BrancheEclaireurs && actor.hasDistrict(res.DistrictID) {
			return allow()
		}
		return deny("классификация: нужен либо свой набор, либо допуск к району")

	case OpApprove, OpReject:
		// шеф никогда не утверждает собственную работу — разделение обязанностей
		if actor.Role == models.BrancheEclaireurs && actor.hasDistrict(res.DistrictID) {
			return allow()
		}
		return deny("утверждение доступно только branche_eclaireurs с допуском к району")

	case OpDelete:
		if res.OwnerID == actor.ID {
			return allow()
		}
		return deny("удаляет только загрузивший")

	case OpViewUnapproved:
		if actor.Role == models.ChefTroupe && res.OwnerID == actor.ID {
			return allow()
		}
		if actor.Role == models.BrancheEclaireurs && actor.hasDistrict(res.DistrictID) {
			return allow()
		}
		return deny("неодобренный набор виден владельцу и допущенным")

	case OpCreateGroup, OpModifyGroup, OpAddToGroup, OpRemoveFromGroup:
		if op != OpCreateGroup && res.OwnerID == actor.ID {
			return allow()
		}
		if actor.Role == models.BrancheEclaireurs && actor.hasAllDistricts(res.TouchedDistricts) {
			return allow()
		}
		return deny("групповая операция: нужен допуск ко всем затронутым районам")

	case OpDeleteGroup:
		if res.OwnerID == actor.ID {
			return allow()
		}
		return deny("группу удаляет создатель или админ")
	}

	return deny("нет подходящего правила")
}

// Check — Decide плюс типизированная ошибка для сервисного слоя.
func Check(actor *Actor, op Operation, res Resource) error {
	d := Decide(actor, op, res)
	if d.Allow {
		return nil
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	return &DeniedError{ActorID: actorID, Operation: op, Reason: d.Reason}
}
