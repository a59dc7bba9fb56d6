// Пакет service — тонкая оркестрация: в одной транзакции загрузить цель
// с блокировкой, спросить authz, применить переход, записать. Две
// конкурирующие терминальные операции не могут пройти обе: вторая видит
// уже изменённый статус под FOR UPDATE.
package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/scout-gallery/internal/authz"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/metrics"
	"github.com/Spok95/scout-gallery/internal/models"
	"github.com/Spok95/scout-gallery/internal/storage"
	"github.com/Spok95/scout-gallery/internal/workflow"
)

type Submissions struct {
	sdb   *sql.DB
	store storage.BlobStore
	log   *zap.Logger
	now   func() time.Time
}

func NewSubmissions(sdb *sql.DB, store storage.BlobStore, log *zap.Logger) *Submissions {
	return &Submissions{sdb: sdb, store: store, log: log, now: time.Now}
}

// ancestry — кэш подъёма отряд→район на время одного запроса.
// Между запросами не живёт: иерархия маленькая, а решение должно
// опираться на согласованное в рамках транзакции состояние.
type ancestry map[int64]*models.TroupeAncestry

func (a ancestry) districtOf(ctx context.Context, q db.Queryer, troupeID int64) (int64, error) {
	if cached, ok := a[troupeID]; ok {
		return cached.DistrictID, nil
	}
	res, err := db.GetTroupeAncestry(ctx, q, troupeID)
	if err != nil {
		return 0, err
	}
	a[troupeID] = res
	return res.DistrictID, nil
}

type PictureUpload struct {
	Path string // локатор: файл уже лежит в blob-хранилище до вызова сервиса
}

type CreateSetInput struct {
	Title        string
	Type         models.SetType
	TroupeID     int64
	PatrouilleID *int64
	Pictures     []PictureUpload
}

func (s *Submissions) CreateSet(ctx context.Context, actor *authz.Actor, in CreateSetInput) (*models.PictureSet, error) {
	var out *models.PictureSet
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		cache := ancestry{}
		districtID, err := cache.districtOf(ctx, tx, in.TroupeID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpCreateSet, authz.Resource{
			TroupeID:   in.TroupeID,
			DistrictID: districtID,
		}); err != nil {
			return err
		}

		set := &models.PictureSet{
			Title:        in.Title,
			Type:         in.Type,
			TroupeID:     in.TroupeID,
			PatrouilleID: in.PatrouilleID,
			UploadedBy:   actor.ID,
		}
		for _, p := range in.Pictures {
			set.Pictures = append(set.Pictures, models.Picture{Path: p.Path})
		}
		if err := workflow.Create(set, s.now()); err != nil {
			return err
		}

		id, err := db.CreateSet(ctx, tx, set)
		if err != nil {
			return err
		}
		out, err = db.GetSetByID(ctx, tx, id, false)
		return err
	})
	observeTransition(workflow.EventCreate, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSet отдаёт набор и инкрементирует счётчик просмотров — на каждое
// чтение любым читателем, включая владельца.
func (s *Submissions) GetSet(ctx context.Context, actor *authz.Actor, id int64) (*models.PictureSet, error) {
	var out *models.PictureSet
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, err := db.GetSetByID(ctx, tx, id, false)
		if err != nil {
			return err
		}
		cache := ancestry{}
		districtID, err := cache.districtOf(ctx, tx, set.TroupeID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpViewUnapproved, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}
		if err := db.IncrementViewCount(ctx, tx, id); err != nil {
			return err
		}
		set.ViewCount++
		out = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Submissions) Classify(ctx context.Context, actor *authz.Actor, setID, categoryID int64, subCategoryID *int64) (*models.PictureSet, error) {
	var out *models.PictureSet
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, districtID, err := s.lockSet(ctx, tx, setID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpClassify, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}
		if err := workflow.Classify(set, categoryID, subCategoryID, actor.ID, s.now()); err != nil {
			return err
		}
		return s.persistClassify(ctx, tx, set)
	})
	observeTransition(workflow.EventClassify, err)
	if err != nil {
		return nil, err
	}
	out, err = db.GetSetByID(ctx, s.sdb, setID, false)
	return out, err
}

type BulkClassifyItem struct {
	PictureID  int64
	CategoryID int64
	Type       *models.SetType
	TakenAt    *time.Time
}

type BulkClassifyInput struct {
	SetID int64
	Items []BulkClassifyItem
	// Категория набора; если не задана, берётся категория первого снимка.
	SetCategoryID    *int64
	SetSubCategoryID *int64
}

// BulkClassify классифицирует каждый снимок отдельно и ровно один раз
// делает переход набора. Либо применяется всё, либо ничего.
func (s *Submissions) BulkClassify(ctx context.Context, actor *authz.Actor, in BulkClassifyInput) (*models.PictureSet, error) {
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, districtID, err := s.lockSet(ctx, tx, in.SetID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpBulkClassify, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}

		own := make(map[int64]bool, len(set.Pictures))
		for _, p := range set.Pictures {
			own[p.ID] = true
		}
		for _, item := range in.Items {
			if !own[item.PictureID] {
				return db.NotFound("picture", item.PictureID)
			}
			if err := db.ClassifyPicture(ctx, tx, item.PictureID, item.CategoryID, item.Type, item.TakenAt); err != nil {
				return err
			}
		}

		// переход набора — всегда последний шаг, один на всю пачку
		categoryID := int64(0)
		switch {
		case in.SetCategoryID != nil:
			categoryID = *in.SetCategoryID
		case set.CategoryID != nil:
			categoryID = *set.CategoryID
		case len(in.Items) > 0:
			categoryID = in.Items[0].CategoryID
		}
		if err := workflow.Classify(set, categoryID, in.SetSubCategoryID, actor.ID, s.now()); err != nil {
			return err
		}
		return s.persistClassify(ctx, tx, set)
	})
	observeTransition(workflow.EventClassify, err)
	if err != nil {
		return nil, err
	}
	return db.GetSetByID(ctx, s.sdb, in.SetID, false)
}

func (s *Submissions) Approve(ctx context.Context, actor *authz.Actor, setID int64, isHighlight bool) (*models.PictureSet, error) {
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, districtID, err := s.lockSet(ctx, tx, setID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpApprove, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}
		from := set.Status
		if err := workflow.Approve(set, actor.ID, s.now(), isHighlight); err != nil {
			return err
		}
		rows, err := db.ApproveSet(ctx, tx, setID, *set.ApprovedBy, *set.ApprovedAt, isHighlight)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &workflow.ViolationError{From: from, Event: workflow.EventApprove, Guard: "статус изменён конкурентно"}
		}
		return nil
	})
	observeTransition(workflow.EventApprove, err)
	if err != nil {
		return nil, err
	}
	return db.GetSetByID(ctx, s.sdb, setID, false)
}

func (s *Submissions) Reject(ctx context.Context, actor *authz.Actor, setID int64, reason string) (*models.PictureSet, error) {
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, districtID, err := s.lockSet(ctx, tx, setID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpReject, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}
		from := set.Status
		if err := workflow.Reject(set, actor.ID, s.now(), reason); err != nil {
			return err
		}
		rows, err := db.RejectSet(ctx, tx, setID, *set.ApprovedBy, *set.ApprovedAt, reason)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &workflow.ViolationError{From: from, Event: workflow.EventReject, Guard: "статус изменён конкурентно"}
		}
		return nil
	})
	observeTransition(workflow.EventReject, err)
	if err != nil {
		return nil, err
	}
	return db.GetSetByID(ctx, s.sdb, setID, false)
}

// DeleteSet удаляет набор; блобы подчищаются после коммита, ошибка
// удаления файла не откатывает запись (доберёт фоновая уборка).
func (s *Submissions) DeleteSet(ctx context.Context, actor *authz.Actor, setID int64) error {
	var paths []string
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		set, districtID, err := s.lockSet(ctx, tx, setID)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpDelete, authz.Resource{
			TroupeID:   set.TroupeID,
			DistrictID: districtID,
			OwnerID:    set.UploadedBy,
			Status:     set.Status,
		}); err != nil {
			return err
		}
		for _, p := range set.Pictures {
			paths = append(paths, p.Path)
		}
		return db.DeleteSet(ctx, tx, setID)
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			s.log.Warn("не удалось удалить блоб", zap.String("locator", p), zap.Error(err))
		}
	}
	return nil
}

// Browse — выдача списков. Аноним видит только approved без скрытых
// категорий; неодобренное шеф листает в своём отряде, branche — в
// допущенных районах, админ — везде.
func (s *Submissions) Browse(ctx context.Context, actor *authz.Actor, f db.BrowseFilter) ([]models.PictureSet, error) {
	approvedOnly := func() {
		approved := models.StatusApproved
		f.Status = &approved
		f.HideHiddenCategories = true
	}
	wantsUnapproved := f.Status == nil || *f.Status != models.StatusApproved

	switch {
	case actor == nil:
		approvedOnly()
	case actor.Role == models.Admin:
		// без ограничений
	case actor.Role == models.ChefTroupe:
		if wantsUnapproved {
			if actor.TroupeID == nil {
				approvedOnly()
			} else {
				f.TroupeID = actor.TroupeID
			}
		}
	case actor.Role == models.BrancheEclaireurs:
		if wantsUnapproved {
			if f.DistrictID == nil || !hasDistrict(actor, *f.DistrictID) {
				return nil, &authz.DeniedError{
					ActorID:   actor.ID,
					Operation: authz.OpViewUnapproved,
					Reason:    "нужен фильтр по допущенному району",
				}
			}
		}
	default:
		approvedOnly()
	}
	return db.BrowseSets(ctx, s.sdb, f)
}

func hasDistrict(a *authz.Actor, id int64) bool {
	for _, d := range a.GrantedDistricts {
		if d == id {
			return true
		}
	}
	return false
}

func (s *Submissions) lockSet(ctx context.Context, tx *sql.Tx, setID int64) (*models.PictureSet, int64, error) {
	set, err := db.GetSetByID(ctx, tx, setID, true)
	if err != nil {
		return nil, 0, err
	}
	cache := ancestry{}
	districtID, err := cache.districtOf(ctx, tx, set.TroupeID)
	if err != nil {
		return nil, 0, err
	}
	return set, districtID, nil
}

func (s *Submissions) persistClassify(ctx context.Context, tx *sql.Tx, set *models.PictureSet) error {
	rows, err := db.ClassifySet(ctx, tx, set.ID, *set.CategoryID, set.SubCategoryID, *set.ClassifiedBy, *set.ClassifiedAt)
	if err != nil {
		return err
	}
	if rows == 0 {
		return &workflow.ViolationError{From: set.Status, Event: workflow.EventClassify, Guard: "статус изменён конкурентно"}
	}
	return nil
}

func observeTransition(ev workflow.Event, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.WorkflowTransitions.WithLabelValues(string(ev), outcome).Inc()
}
