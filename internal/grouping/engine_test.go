package grouping

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Spok95/scout-gallery/internal/models"
)

func ptrInt64(v int64) *int64 { return &v }

func pic(id int64, order int, groupID, categoryID *int64) models.Picture {
	return models.Picture{ID: id, DisplayOrder: order, GroupID: groupID, CategoryID: categoryID}
}

func TestPlanCreate(t *testing.T) {
	t.Run("two_free_pictures", func(t *testing.T) {
		plan, err := PlanCreate([]models.Picture{
			pic(1, 1, nil, ptrInt64(7)),
			pic(2, 2, nil, ptrInt64(8)),
		}, nil)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if plan.PrimaryID != 1 {
			t.Fatalf("primary по умолчанию — первый снимок, получили %d", plan.PrimaryID)
		}
		// категория группы — у первого снимка, не голосованием
		if plan.CategoryID == nil || *plan.CategoryID != 7 {
			t.Fatal("категория группы должна браться у первого снимка")
		}
	})

	t.Run("explicit_primary", func(t *testing.T) {
		plan, err := PlanCreate([]models.Picture{
			pic(1, 1, nil, nil),
			pic(2, 2, nil, nil),
		}, ptrInt64(2))
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if plan.PrimaryID != 2 {
			t.Fatalf("primary=%d, ожидали 2", plan.PrimaryID)
		}
	})

	t.Run("primary_outside_members_falls_back", func(t *testing.T) {
		plan, err := PlanCreate([]models.Picture{
			pic(1, 1, nil, nil),
			pic(2, 2, nil, nil),
		}, ptrInt64(99))
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if plan.PrimaryID != 1 {
			t.Fatal("чужой primary должен откатиться на первый снимок")
		}
	})

	t.Run("single_picture_rejected", func(t *testing.T) {
		_, err := PlanCreate([]models.Picture{pic(1, 1, nil, nil)}, nil)
		var inv *InvariantError
		if !errors.As(err, &inv) || inv.Kind != BelowMinimumSize {
			t.Fatalf("ожидали below_minimum_size, получили %v", err)
		}
	})

	t.Run("already_grouped_rejected", func(t *testing.T) {
		_, err := PlanCreate([]models.Picture{
			pic(1, 1, nil, nil),
			pic(2, 2, ptrInt64(4), nil),
		}, nil)
		var inv *InvariantError
		if !errors.As(err, &inv) || inv.Kind != AlreadyGrouped || inv.PictureID != 2 {
			t.Fatalf("ожидали already_grouped для снимка 2, получили %v", err)
		}
	})
}

func TestPlanAdd(t *testing.T) {
	t.Run("same_group_noop", func(t *testing.T) {
		toAssign, err := PlanAdd(4, []models.Picture{
			pic(1, 1, ptrInt64(4), nil),
			pic(2, 2, nil, nil),
		})
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if len(toAssign) != 1 || toAssign[0] != 2 {
			t.Fatalf("назначать нужно только свободный снимок, получили %v", toAssign)
		}
	})

	t.Run("other_group_rejected", func(t *testing.T) {
		_, err := PlanAdd(4, []models.Picture{pic(1, 1, ptrInt64(5), nil)})
		var inv *InvariantError
		if !errors.As(err, &inv) || inv.Kind != AlreadyGrouped {
			t.Fatalf("ожидали already_grouped, получили %v", err)
		}
	})
}

func TestPlanRemove(t *testing.T) {
	g := models.DesignGroup{ID: 4, PrimaryPictureID: 1}

	t.Run("survivor_keeps_primary", func(t *testing.T) {
		members := []models.Picture{
			pic(1, 1, ptrInt64(4), nil),
			pic(2, 2, ptrInt64(4), nil),
			pic(3, 3, ptrInt64(4), nil),
		}
		plan, err := PlanRemove(g, members, 3)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if plan.Dissolve || plan.NewPrimaryID != nil {
			t.Fatal("удаление не-primary не должно трогать primary и группу")
		}
	})

	t.Run("primary_removed_lowest_order_takes_over", func(t *testing.T) {
		members := []models.Picture{
			pic(1, 1, ptrInt64(4), nil),
			pic(2, 5, ptrInt64(4), nil),
			pic(3, 2, ptrInt64(4), nil),
		}
		plan, err := PlanRemove(g, members, 1)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if plan.NewPrimaryID == nil || *plan.NewPrimaryID != 3 {
			t.Fatalf("новый primary должен быть с наименьшим display_order, получили %v", plan.NewPrimaryID)
		}
	})

	t.Run("dissolve_below_two", func(t *testing.T) {
		members := []models.Picture{
			pic(1, 1, ptrInt64(4), nil),
			pic(2, 2, ptrInt64(4), nil),
		}
		plan, err := PlanRemove(g, members, 2)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if !plan.Dissolve {
			t.Fatal("группа из одного оставшегося снимка должна распускаться")
		}
		if len(plan.ClearIDs) != 2 {
			t.Fatalf("ссылки всех участников должны очищаться, ClearIDs=%v", plan.ClearIDs)
		}
	})

	t.Run("not_a_member", func(t *testing.T) {
		members := []models.Picture{pic(1, 1, ptrInt64(4), nil), pic(2, 2, ptrInt64(4), nil)}
		if _, err := PlanRemove(g, members, 99); err == nil {
			t.Fatal("ожидали ошибку: снимок не участник")
		}
	})
}

// Инвариант живой группы держится на любой последовательности операций.
func TestInvariantUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		groupID := int64(1)
		free := make([]models.Picture, 0, 8)
		for i := int64(1); i <= 8; i++ {
			free = append(free, pic(i, int(i), nil, nil))
		}

		plan, err := PlanCreate(free[:2], nil)
		if err != nil {
			t.Fatal(err)
		}
		g := models.DesignGroup{ID: groupID, PrimaryPictureID: plan.PrimaryID}
		members := []models.Picture{}
		for _, id := range plan.MemberIDs {
			members = append(members, pic(id, int(id), &groupID, nil))
		}
		free = free[2:]

		for step := 0; step < 20; step++ {
			if len(free) > 0 && rng.Intn(2) == 0 {
				p := free[0]
				toAssign, err := PlanAdd(groupID, []models.Picture{p})
				if err != nil {
					t.Fatal(err)
				}
				for _, id := range toAssign {
					members = append(members, pic(id, p.DisplayOrder, &groupID, nil))
				}
				free = free[1:]
			} else if len(members) > 0 {
				victim := members[rng.Intn(len(members))]
				rp, err := PlanRemove(g, members, victim.ID)
				if err != nil {
					t.Fatal(err)
				}
				next := members[:0]
				for _, m := range members {
					cleared := false
					for _, id := range rp.ClearIDs {
						if m.ID == id {
							cleared = true
							break
						}
					}
					if !cleared {
						next = append(next, m)
					}
				}
				members = next
				if rp.Dissolve {
					break
				}
				if rp.NewPrimaryID != nil {
					g.PrimaryPictureID = *rp.NewPrimaryID
				}
			}

			if err := Verify(g, members); err != nil {
				t.Fatalf("итерация %d, шаг %d: инвариант нарушен: %v", iter, step, err)
			}
		}
	}
}
