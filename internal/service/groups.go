package service

import (
	"context"
	"database/sql"

	"github.com/Spok95/scout-gallery/internal/authz"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/grouping"
	"github.com/Spok95/scout-gallery/internal/models"
)

// GroupView — группа вместе с участниками, ответ групповых операций.
type GroupView struct {
	Group    models.DesignGroup
	Pictures []models.Picture
}

type CreateGroupInput struct {
	PictureIDs []int64
	PrimaryID  *int64
	Name       *string
}

func (s *Submissions) CreateGroup(ctx context.Context, actor *authz.Actor, in CreateGroupInput) (*GroupView, error) {
	var out *GroupView
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		pics, err := db.GetPicturesByIDs(ctx, tx, in.PictureIDs)
		if err != nil {
			return err
		}
		touched, err := touchedDistricts(ctx, tx, in.PictureIDs)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpCreateGroup, authz.Resource{
			TouchedDistricts: touched,
		}); err != nil {
			return err
		}

		plan, err := grouping.PlanCreate(pics, in.PrimaryID)
		if err != nil {
			return err
		}
		id, err := db.CreateDesignGroup(ctx, tx, models.DesignGroup{
			Name:             in.Name,
			PrimaryPictureID: plan.PrimaryID,
			CategoryID:       plan.CategoryID,
			CreatedBy:        actor.ID,
			CreatedAt:        s.now(),
		})
		if err != nil {
			return err
		}
		if err := db.SetPicturesGroup(ctx, tx, plan.MemberIDs, &id); err != nil {
			return err
		}
		out, err = s.loadGroup(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Submissions) AddToGroup(ctx context.Context, actor *authz.Actor, groupID int64, pictureIDs []int64) (*GroupView, error) {
	var out *GroupView
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		g, err := db.GetDesignGroupByID(ctx, tx, groupID, true)
		if err != nil {
			return err
		}
		pics, err := db.GetPicturesByIDs(ctx, tx, pictureIDs)
		if err != nil {
			return err
		}
		touched, err := touchedDistricts(ctx, tx, pictureIDs)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpAddToGroup, authz.Resource{
			OwnerID:          g.CreatedBy,
			TouchedDistricts: touched,
		}); err != nil {
			return err
		}

		toAssign, err := grouping.PlanAdd(groupID, pics)
		if err != nil {
			return err
		}
		if len(toAssign) > 0 {
			if err := db.SetPicturesGroup(ctx, tx, toAssign, &groupID); err != nil {
				return err
			}
		}
		out, err = s.loadGroup(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveFromGroup убирает снимок. Если участников остаётся меньше двух,
// группа распускается целиком; nil в ответе означает именно это.
func (s *Submissions) RemoveFromGroup(ctx context.Context, actor *authz.Actor, groupID, pictureID int64) (*GroupView, error) {
	var out *GroupView
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		g, err := db.GetDesignGroupByID(ctx, tx, groupID, true)
		if err != nil {
			return err
		}
		members, err := db.PicturesInGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		touched, err := touchedDistricts(ctx, tx, []int64{pictureID})
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpRemoveFromGroup, authz.Resource{
			OwnerID:          g.CreatedBy,
			TouchedDistricts: touched,
		}); err != nil {
			return err
		}

		plan, err := grouping.PlanRemove(*g, members, pictureID)
		if err != nil {
			return err
		}
		if err := db.SetPicturesGroup(ctx, tx, plan.ClearIDs, nil); err != nil {
			return err
		}
		if plan.Dissolve {
			return db.DeleteDesignGroup(ctx, tx, groupID)
		}
		if plan.NewPrimaryID != nil {
			if err := db.UpdateDesignGroupPrimary(ctx, tx, groupID, *plan.NewPrimaryID); err != nil {
				return err
			}
		}
		out, err = s.loadGroup(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Submissions) DeleteGroup(ctx context.Context, actor *authz.Actor, groupID int64) error {
	return db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		g, err := db.GetDesignGroupByID(ctx, tx, groupID, true)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpDeleteGroup, authz.Resource{
			OwnerID: g.CreatedBy,
		}); err != nil {
			return err
		}
		members, err := db.PicturesInGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		if len(ids) > 0 {
			if err := db.SetPicturesGroup(ctx, tx, ids, nil); err != nil {
				return err
			}
		}
		return db.DeleteDesignGroup(ctx, tx, groupID)
	})
}

type ModifyGroupInput struct {
	Name       *string
	CategoryID *int64
}

func (s *Submissions) ModifyGroup(ctx context.Context, actor *authz.Actor, groupID int64, in ModifyGroupInput) (*GroupView, error) {
	var out *GroupView
	err := db.InTx(ctx, s.sdb, func(tx *sql.Tx) error {
		g, err := db.GetDesignGroupByID(ctx, tx, groupID, true)
		if err != nil {
			return err
		}
		members, err := db.PicturesInGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		touched, err := touchedDistricts(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := authz.Check(actor, authz.OpModifyGroup, authz.Resource{
			OwnerID:          g.CreatedBy,
			TouchedDistricts: touched,
		}); err != nil {
			return err
		}
		if err := db.UpdateDesignGroup(ctx, tx, groupID, in.Name, in.CategoryID); err != nil {
			return err
		}
		out, err = s.loadGroup(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Submissions) GetGroup(ctx context.Context, groupID int64) (*GroupView, error) {
	return s.loadGroup(ctx, s.sdb, groupID)
}

func (s *Submissions) loadGroup(ctx context.Context, q db.Queryer, id int64) (*GroupView, error) {
	g, err := db.GetDesignGroupByID(ctx, q, id, false)
	if err != nil {
		return nil, err
	}
	members, err := db.PicturesInGroup(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return &GroupView{Group: *g, Pictures: members}, nil
}

func touchedDistricts(ctx context.Context, q db.Queryer, pictureIDs []int64) ([]int64, error) {
	byPic, err := db.PictureDistricts(ctx, q, pictureIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(byPic))
	var out []int64
	for _, id := range pictureIDs {
		d, ok := byPic[id]
		if !ok {
			return nil, db.NotFound("picture", id)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}
