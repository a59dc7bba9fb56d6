package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/Spok95/scout-gallery/internal/models"
)

func ptrInt64(v int64) *int64 { return &v }

func newSet() *models.PictureSet {
	return &models.PictureSet{
		Title:    "Башня",
		Type:     models.TypeInstallationPhoto,
		TroupeID: 1,
		Pictures: []models.Picture{{Path: "a.jpg"}},
	}
}

func TestCreate(t *testing.T) {
	now := time.Now()

	t.Run("ok_sets_pending", func(t *testing.T) {
		set := newSet()
		if err := Create(set, now); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if set.Status != models.StatusPending {
			t.Fatalf("статус после создания: %s", set.Status)
		}
		if !set.UploadedAt.Equal(now) {
			t.Fatal("uploaded_at не проставлен")
		}
	})

	t.Run("empty_pictures_rejected", func(t *testing.T) {
		set := newSet()
		set.Pictures = nil
		if err := Create(set, now); err == nil {
			t.Fatal("ожидали ошибку: набор без снимков")
		}
	})

	t.Run("schematic_requires_patrouille", func(t *testing.T) {
		set := newSet()
		set.Type = models.TypeSchematic
		if err := Create(set, now); err == nil {
			t.Fatal("ожидали ошибку: схема без патруля")
		}
		set.PatrouilleID = ptrInt64(3)
		if err := Create(set, now); err != nil {
			t.Fatalf("схема с патрулём должна проходить: %v", err)
		}
	})
}

func TestClassify(t *testing.T) {
	now := time.Now()

	t.Run("pending_to_classified", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		if err := Classify(set, 7, nil, 20, now); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if set.Status != models.StatusClassified || set.CategoryID == nil || *set.CategoryID != 7 {
			t.Fatal("классификация не записана")
		}
		if set.ClassifiedBy == nil || *set.ClassifiedBy != 20 {
			t.Fatal("classified_by не проставлен")
		}
	})

	t.Run("reclassify_allowed", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		_ = Classify(set, 7, nil, 20, now)
		later := now.Add(time.Hour)
		if err := Classify(set, 8, ptrInt64(2), 21, later); err != nil {
			t.Fatalf("повторная классификация должна проходить: %v", err)
		}
		if *set.CategoryID != 8 || *set.ClassifiedBy != 21 {
			t.Fatal("повторная классификация не перезаписала поля")
		}
		if set.Status != models.StatusClassified {
			t.Fatal("статус не должен меняться при повторной классификации")
		}
	})

	t.Run("category_required", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		if err := Classify(set, 0, nil, 20, now); err == nil {
			t.Fatal("ожидали ошибку: категория обязательна")
		}
	})

	t.Run("terminal_blocked", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		_ = Approve(set, 20, now, false)
		err := Classify(set, 7, nil, 20, now)
		var v *ViolationError
		if !errors.As(err, &v) {
			t.Fatalf("ожидали *ViolationError, получили %v", err)
		}
	})
}

func TestApproveReject(t *testing.T) {
	now := time.Now()

	t.Run("approve_from_pending", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		if err := Approve(set, 20, now, true); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if set.Status != models.StatusApproved || !set.IsHighlight {
			t.Fatal("approve не записан")
		}
	})

	t.Run("approve_from_classified", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		_ = Classify(set, 7, nil, 20, now)
		if err := Approve(set, 20, now, false); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	})

	t.Run("reject_requires_reason", func(t *testing.T) {
		set := newSet()
		_ = Create(set, now)
		if err := Reject(set, 20, now, ""); err == nil {
			t.Fatal("ожидали ошибку: причина обязательна")
		}
		if err := Reject(set, 20, now, "не по теме"); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if set.RejectionReason == nil || *set.RejectionReason != "не по теме" {
			t.Fatal("причина не записана")
		}
	})

	t.Run("terminal_states_frozen", func(t *testing.T) {
		approved := newSet()
		_ = Create(approved, now)
		_ = Approve(approved, 20, now, false)

		rejected := newSet()
		_ = Create(rejected, now)
		_ = Reject(rejected, 20, now, "дубль")

		for _, set := range []*models.PictureSet{approved, rejected} {
			if err := Approve(set, 21, now, false); err == nil {
				t.Fatalf("approve из %s должен быть запрещён", set.Status)
			}
			if err := Reject(set, 21, now, "x"); err == nil {
				t.Fatalf("reject из %s должен быть запрещён", set.Status)
			}
			if err := Classify(set, 7, nil, 21, now); err == nil {
				t.Fatalf("classify из %s должен быть запрещён", set.Status)
			}
		}
	})
}
