//go:build testutil
// +build testutil

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Spok95/scout-gallery/internal/authz"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
	"github.com/Spok95/scout-gallery/internal/service"
	"github.com/Spok95/scout-gallery/internal/storage"
	"github.com/Spok95/scout-gallery/internal/testutil/testdb"
	"github.com/Spok95/scout-gallery/internal/workflow"
)

func ptrInt64(v int64) *int64 { return &v }

type fixture struct {
	districtID int64
	troupeID   int64
	categoryID int64
	chef       *authz.Actor
	branche    *authz.Actor
	admin      *authz.Actor
}

func mustSeed(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	dID, err := db.CreateDistrict(ctx, database, models.District{Name: "Иль-де-Франс", Code: "IDF"})
	if err != nil {
		t.Fatal(err)
	}
	gID, err := db.CreateGroup(ctx, database, models.Group{Name: "Группа 1", Code: "G1", DistrictID: dID})
	if err != nil {
		t.Fatal(err)
	}
	trID, err := db.CreateTroupe(ctx, database, models.Troupe{Name: "Отряд 1", Code: "T1", GroupID: gID})
	if err != nil {
		t.Fatal(err)
	}
	catID, err := db.CreateCategory(ctx, database, models.Category{Name: "Башни", Type: models.TypeInstallationPhoto})
	if err != nil {
		t.Fatal(err)
	}

	chefID := mustSeedUser(t, database, "chef@test", models.ChefTroupe, &trID)
	brancheID := mustSeedUser(t, database, "branche@test", models.BrancheEclaireurs, nil)
	adminID := mustSeedUser(t, database, "admin@test", models.Admin, nil)
	if err := db.GrantDistrict(ctx, database, brancheID, dID); err != nil {
		t.Fatal(err)
	}

	return &fixture{
		districtID: dID,
		troupeID:   trID,
		categoryID: catID,
		chef:       &authz.Actor{ID: chefID, Role: models.ChefTroupe, TroupeID: &trID},
		branche:    &authz.Actor{ID: brancheID, Role: models.BrancheEclaireurs, GrantedDistricts: []int64{dID}},
		admin:      &authz.Actor{ID: adminID, Role: models.Admin},
	}
}

func mustSeedUser(t *testing.T, database *sql.DB, email string, role models.Role, troupeID *int64) int64 {
	t.Helper()
	id, err := db.CreateUser(context.Background(), database, models.User{
		Email: email, Name: email, Role: role,
		PasswordHash: "x", TroupeID: troupeID, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func newService(t *testing.T, database *sql.DB) (*service.Submissions, *storage.Disk) {
	t.Helper()
	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return service.NewSubmissions(database, disk, zap.NewNop()), disk
}

func mustCreateSet(t *testing.T, svc *service.Submissions, actor *authz.Actor, troupeID int64, paths ...string) *models.PictureSet {
	t.Helper()
	in := service.CreateSetInput{Title: "Башня", Type: models.TypeInstallationPhoto, TroupeID: troupeID}
	for _, p := range paths {
		in.Pictures = append(in.Pictures, service.PictureUpload{Path: p})
	}
	set, err := svc.CreateSet(context.Background(), actor, in)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestLifecycle(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)
	ctx := context.Background()

	set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg", "b.jpg")
	if set.Status != models.StatusPending {
		t.Fatalf("новый набор должен быть pending, а не %s", set.Status)
	}
	if len(set.Pictures) != 2 || set.Pictures[0].DisplayOrder != 1 {
		t.Fatalf("снимки не записаны по порядку: %+v", set.Pictures)
	}

	set, err = svc.Classify(ctx, fx.branche, set.ID, fx.categoryID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusClassified || set.ClassifiedBy == nil {
		t.Fatalf("классификация не записана: %+v", set)
	}

	set, err = svc.Approve(ctx, fx.branche, set.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if set.Status != models.StatusApproved || !set.IsHighlight || set.ApprovedBy == nil {
		t.Fatalf("approve не записан: %+v", set)
	}

	// одобренный набор виден анониму, просмотр увеличивает счётчик
	got, err := svc.GetSet(ctx, nil, set.ID)
	if err != nil {
		t.Fatalf("аноним должен видеть одобренный набор: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("view_count=%d, ожидали 1", got.ViewCount)
	}
}

func TestSeparationOfDuties(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)

	set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg")

	// шеф не утверждает собственный набор
	_, err = svc.Approve(context.Background(), fx.chef, set.ID, false)
	var denied *authz.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("ожидали *DeniedError, получили %v", err)
	}
}

func TestDistrictScope(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)
	ctx := context.Background()

	// branche без допуска к району набора
	outsiderID := mustSeedUser(t, h.DB, "outsider@test", models.BrancheEclaireurs, nil)
	outsider := &authz.Actor{ID: outsiderID, Role: models.BrancheEclaireurs}

	set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg")

	var denied *authz.DeniedError
	if _, err := svc.Classify(ctx, outsider, set.ID, fx.categoryID, nil); !errors.As(err, &denied) {
		t.Fatalf("классификация без допуска: ожидали отказ, получили %v", err)
	}
	if _, err := svc.Approve(ctx, outsider, set.ID, false); !errors.As(err, &denied) {
		t.Fatalf("approve без допуска: ожидали отказ, получили %v", err)
	}
	if _, err := svc.GetSet(ctx, outsider, set.ID); !errors.As(err, &denied) {
		t.Fatalf("просмотр pending без допуска: ожидали отказ, получили %v", err)
	}
}

func TestBulkClassifyAtomic(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)
	ctx := context.Background()

	set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg", "b.jpg")
	other := mustCreateSet(t, svc, fx.chef, fx.troupeID, "c.jpg")

	// второй элемент ссылается на чужой снимок — откатывается вся пачка
	_, err = svc.BulkClassify(ctx, fx.branche, service.BulkClassifyInput{
		SetID: set.ID,
		Items: []service.BulkClassifyItem{
			{PictureID: set.Pictures[0].ID, CategoryID: fx.categoryID},
			{PictureID: other.Pictures[0].ID, CategoryID: fx.categoryID},
		},
	})
	var notFound *db.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("ожидали *NotFoundError, получили %v", err)
	}

	got, err := db.GetSetByID(ctx, h.DB, set.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("набор не должен был перейти: %s", got.Status)
	}
	for _, p := range got.Pictures {
		if p.CategoryID != nil {
			t.Fatalf("классификация снимка %d не должна была закоммититься", p.ID)
		}
	}

	// валидная пачка проходит целиком
	got, err = svc.BulkClassify(ctx, fx.branche, service.BulkClassifyInput{
		SetID: set.ID,
		Items: []service.BulkClassifyItem{
			{PictureID: set.Pictures[0].ID, CategoryID: fx.categoryID},
			{PictureID: set.Pictures[1].ID, CategoryID: fx.categoryID},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusClassified {
		t.Fatalf("статус после пачки: %s", got.Status)
	}
	if got.CategoryID == nil || *got.CategoryID != fx.categoryID {
		t.Fatal("категория набора должна взяться из первого элемента")
	}
	for _, p := range got.Pictures {
		if p.CategoryID == nil {
			t.Fatalf("снимок %d остался без категории", p.ID)
		}
	}
}

func TestTerminalConcurrency(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)
	ctx := context.Background()

	t.Run("sequential_second_terminal_blocked", func(t *testing.T) {
		set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg")
		if _, err := svc.Approve(ctx, fx.branche, set.ID, false); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Reject(ctx, fx.branche, set.ID, "дубль")
		var v *workflow.ViolationError
		if !errors.As(err, &v) {
			t.Fatalf("ожидали *ViolationError, получили %v", err)
		}
	})

	t.Run("parallel_exactly_one_wins", func(t *testing.T) {
		set := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = svc.Approve(ctx, fx.branche, set.ID, false)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = svc.Reject(ctx, fx.branche, set.ID, "не по теме")
		}()
		wg.Wait()

		okCount := 0
		for _, e := range errs {
			if e == nil {
				okCount++
			}
		}
		if okCount != 1 {
			t.Fatalf("ровно одна терминальная операция должна пройти, прошло %d (%v)", okCount, errs)
		}
		got, err := db.GetSetByID(ctx, h.DB, set.ID, false)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Status.Terminal() {
			t.Fatalf("набор обязан быть в терминальном статусе: %s", got.Status)
		}
	})
}

func TestDeleteSetRemovesBlobs(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, disk := newService(t, h.DB)
	ctx := context.Background()

	loc, err := disk.Store(ctx, strings.NewReader("bytes"), "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	set := mustCreateSet(t, svc, fx.chef, fx.troupeID, loc)

	if err := svc.DeleteSet(ctx, fx.chef, set.ID); err != nil {
		t.Fatal(err)
	}
	var notFound *db.NotFoundError
	if _, err := db.GetSetByID(ctx, h.DB, set.ID, false); !errors.As(err, &notFound) {
		t.Fatalf("набор должен быть удалён, получили %v", err)
	}
	locs, err := disk.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 0 {
		t.Fatalf("блобы должны быть подчищены: %v", locs)
	}
}

func TestBrowseVisibility(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	fx := mustSeed(t, h.DB)
	svc, _ := newService(t, h.DB)
	ctx := context.Background()

	pendingSet := mustCreateSet(t, svc, fx.chef, fx.troupeID, "a.jpg")
	approvedSet := mustCreateSet(t, svc, fx.chef, fx.troupeID, "b.jpg")
	if _, err := svc.Approve(ctx, fx.branche, approvedSet.ID, false); err != nil {
		t.Fatal(err)
	}

	t.Run("anonymous_sees_only_approved", func(t *testing.T) {
		sets, err := svc.Browse(ctx, nil, db.BrowseFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(sets) != 1 || sets[0].ID != approvedSet.ID {
			t.Fatalf("аноним должен видеть только approved: %+v", sets)
		}
	})

	t.Run("branche_needs_granted_district_filter", func(t *testing.T) {
		pending := models.StatusPending
		_, err := svc.Browse(ctx, fx.branche, db.BrowseFilter{Status: &pending})
		var denied *authz.DeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("без фильтра по району ожидали отказ, получили %v", err)
		}

		sets, err := svc.Browse(ctx, fx.branche, db.BrowseFilter{Status: &pending, DistrictID: &fx.districtID})
		if err != nil {
			t.Fatal(err)
		}
		if len(sets) != 1 || sets[0].ID != pendingSet.ID {
			t.Fatalf("branche с допуском должен видеть pending района: %+v", sets)
		}
	})

	t.Run("admin_unrestricted", func(t *testing.T) {
		sets, err := svc.Browse(ctx, fx.admin, db.BrowseFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(sets) != 2 {
			t.Fatalf("админ видит всё, получили %d наборов", len(sets))
		}
	})
}
