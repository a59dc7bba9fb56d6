package authz

import (
	"testing"

	"github.com/Spok95/scout-gallery/internal/models"
)

func ptrInt64(v int64) *int64 { return &v }

func TestDecide_Anonymous(t *testing.T) {
	t.Run("approved_set_visible_to_all", func(t *testing.T) {
		d := Decide(nil, OpViewUnapproved, Resource{Status: models.StatusApproved})
		if !d.Allow {
			t.Fatal("одобренный набор должен быть виден анониму")
		}
	})

	t.Run("pending_set_hidden", func(t *testing.T) {
		d := Decide(nil, OpViewUnapproved, Resource{Status: models.StatusPending})
		if d.Allow {
			t.Fatal("неодобренный набор не должен быть виден анониму")
		}
	})

	t.Run("any_mutation_denied", func(t *testing.T) {
		for _, op := range []Operation{OpCreateSet, OpClassify, OpApprove, OpDelete, OpCreateGroup} {
			if d := Decide(nil, op, Resource{}); d.Allow {
				t.Fatalf("аноним не должен выполнять %s", op)
			}
		}
	})
}

func TestDecide_Admin(t *testing.T) {
	admin := &Actor{ID: 1, Role: models.Admin}
	for _, op := range []Operation{
		OpCreateSet, OpClassify, OpBulkClassify, OpApprove, OpReject,
		OpDelete, OpCreateGroup, OpModifyGroup, OpAddToGroup,
		OpRemoveFromGroup, OpDeleteGroup, OpViewUnapproved,
	} {
		if d := Decide(admin, op, Resource{TroupeID: 99, DistrictID: 99, OwnerID: 99}); !d.Allow {
			t.Fatalf("админу отказано в %s: %s", op, d.Reason)
		}
	}
}

func TestDecide_ChefTroupe(t *testing.T) {
	chef := &Actor{ID: 10, Role: models.ChefTroupe, TroupeID: ptrInt64(5)}

	cases := []struct {
		name  string
		op    Operation
		res   Resource
		allow bool
	}{
		{"create_own_troupe", OpCreateSet, Resource{TroupeID: 5}, true},
		{"create_other_troupe", OpCreateSet, Resource{TroupeID: 6}, false},
		{"classify_own_set", OpClassify, Resource{OwnerID: 10}, true},
		{"classify_foreign_set", OpClassify, Resource{OwnerID: 11}, false},
		// разделение обязанностей: шеф не утверждает даже свой набор
		{"approve_own_set", OpApprove, Resource{OwnerID: 10, TroupeID: 5}, false},
		{"reject_own_set", OpReject, Resource{OwnerID: 10, TroupeID: 5}, false},
		{"delete_own_set", OpDelete, Resource{OwnerID: 10}, true},
		{"delete_foreign_set", OpDelete, Resource{OwnerID: 11}, false},
		{"view_own_pending", OpViewUnapproved, Resource{OwnerID: 10, Status: models.StatusPending}, true},
		{"view_foreign_pending", OpViewUnapproved, Resource{OwnerID: 11, Status: models.StatusPending}, false},
		{"modify_own_group", OpModifyGroup, Resource{OwnerID: 10}, true},
		{"create_group_without_grants", OpCreateGroup, Resource{TouchedDistricts: []int64{1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(chef, tc.op, tc.res)
			if d.Allow != tc.allow {
				t.Fatalf("op=%s: ожидали allow=%v, получили %v (%s)", tc.op, tc.allow, d.Allow, d.Reason)
			}
		})
	}
}

func TestDecide_Branche(t *testing.T) {
	branche := &Actor{ID: 20, Role: models.BrancheEclaireurs, GrantedDistricts: []int64{1, 2}}

	cases := []struct {
		name  string
		op    Operation
		res   Resource
		allow bool
	}{
		{"classify_granted_district", OpClassify, Resource{DistrictID: 1}, true},
		{"classify_other_district", OpClassify, Resource{DistrictID: 3}, false},
		{"approve_granted_district", OpApprove, Resource{DistrictID: 2}, true},
		{"approve_other_district", OpApprove, Resource{DistrictID: 3}, false},
		{"reject_granted_district", OpReject, Resource{DistrictID: 1}, true},
		{"view_pending_granted", OpViewUnapproved, Resource{DistrictID: 1, Status: models.StatusPending}, true},
		{"view_pending_other", OpViewUnapproved, Resource{DistrictID: 3, Status: models.StatusPending}, false},
		{"create_set_denied", OpCreateSet, Resource{TroupeID: 5}, false},
		{"delete_foreign_set", OpDelete, Resource{OwnerID: 10}, false},
		// групповые операции требуют допуск ко ВСЕМ затронутым районам
		{"group_all_districts_granted", OpCreateGroup, Resource{TouchedDistricts: []int64{1, 2}}, true},
		{"group_one_district_missing", OpCreateGroup, Resource{TouchedDistricts: []int64{1, 3}}, false},
		{"add_to_group_granted", OpAddToGroup, Resource{TouchedDistricts: []int64{2}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(branche, tc.op, tc.res)
			if d.Allow != tc.allow {
				t.Fatalf("op=%s: ожидали allow=%v, получили %v (%s)", tc.op, tc.allow, d.Allow, d.Reason)
			}
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	actor := &Actor{ID: 20, Role: models.BrancheEclaireurs, GrantedDistricts: []int64{1}}
	res := Resource{DistrictID: 1, TouchedDistricts: []int64{1}}
	first := Decide(actor, OpApprove, res)
	for i := 0; i < 100; i++ {
		if d := Decide(actor, OpApprove, res); d != first {
			t.Fatal("одни входы обязаны давать одно решение")
		}
	}
}

func TestCheck_ReturnsTypedError(t *testing.T) {
	err := Check(nil, OpCreateSet, Resource{})
	denied, ok := err.(*DeniedError)
	if !ok {
		t.Fatalf("ожидали *DeniedError, получили %T", err)
	}
	if denied.Operation != OpCreateSet {
		t.Fatalf("в ошибке не та операция: %s", denied.Operation)
	}
}
