package models

// Иерархия: район → группа → отряд → патруль.
// Дерево почти не меняется, но каждая проверка доступа идёт по нему вверх.

type District struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Code string `db:"code"`
}

type Group struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Code       string `db:"code"`
	DistrictID int64  `db:"district_id"`
}

type Troupe struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Code    string `db:"code"`
	GroupID int64  `db:"group_id"`
}

type Patrouille struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Totem    string `db:"totem"`
	Cri      string `db:"cri"`
	TroupeID int64  `db:"troupe_id"`
}

// TroupeAncestry — результат подъёма от отряда к району одним запросом.
type TroupeAncestry struct {
	TroupeID   int64 `db:"troupe_id"`
	GroupID    int64 `db:"group_id"`
	DistrictID int64 `db:"district_id"`
}
