// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// GroupType 表示组在组织层级中的类别。
// 层级不是任意的树：每种类别只允许挂在特定类别的父节点之下。
type GroupType string

const (
	// GroupTypeRoot 是唯一的根（sponsor）类别，整棵树有且仅有一个根组。
	GroupTypeRoot GroupType = "root"
	// GroupTypeCommittee 是挂在根下的委员会。
	GroupTypeCommittee GroupType = "committee"
	// GroupTypeWorkingGroup 是工作组，官员在此级别拥有完整管理权限。
	GroupTypeWorkingGroup GroupType = "working-group"
	// GroupTypeTechnical 是工作组下属的技术组。
	GroupTypeTechnical GroupType = "technical-group"
	// GroupTypeStanding 是常设委员会。
	GroupTypeStanding GroupType = "standing-committee"
	// GroupTypeAdHoc 是临时（ad-hoc）小组。
	GroupTypeAdHoc GroupType = "ad-hoc"
)

// allowedSubtypes 定义了父类别到允许的子类别集合的映射（类别格）。
// 不在映射值中的类别不允许作为对应父类别的直接子节点。
var allowedSubtypes = map[GroupType][]GroupType{
	GroupTypeRoot:         {GroupTypeCommittee, GroupTypeWorkingGroup},
	GroupTypeCommittee:    {GroupTypeWorkingGroup, GroupTypeStanding, GroupTypeAdHoc},
	GroupTypeWorkingGroup: {GroupTypeTechnical, GroupTypeStanding, GroupTypeAdHoc},
	GroupTypeTechnical:    {GroupTypeAdHoc},
	GroupTypeStanding:     {},
	GroupTypeAdHoc:        {},
}

// Valid 报告 t 是否为已知的组类别。
func (t GroupType) Valid() bool {
	_, ok := allowedSubtypes[t]
	return ok
}

// AllowsChild 报告类别为 child 的组是否允许直接挂在类别为 t 的组之下。
func (t GroupType) AllowsChild(child GroupType) bool {
	for _, sub := range allowedSubtypes[t] {
		if sub == child {
			return true
		}
	}
	return false
}

// Group 对应于数据库中的 'groups' 表，是组织树中的一个节点。
type Group struct {
	// ID 是组的唯一标识符 (UUID)，创建后不可变且不会被复用。
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// ParentID 指向父组的 ID。仅根组允许为 NULL。
	ParentID *string `gorm:"type:varchar(36);index" json:"parentId"`
	// Name 是组的显示名称。
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	// Type 是组的类别，必须满足父组类别的允许子类别约束。
	Type GroupType `gorm:"type:varchar(32);not null" json:"type"`
	// Status 是组的状态（如 Active / Inactive），无结构性约束。
	Status string `gorm:"type:varchar(16);not null;default:'Active'" json:"status"`
	// Color 是前端展示用的颜色标记。
	Color string `gorm:"type:varchar(16)" json:"color"`
	// Symbol 是组的简写符号（如 802 风格的编号）。
	Symbol string `gorm:"type:varchar(32)" json:"symbol"`
	// Project 是组关联的项目编号。
	Project string `gorm:"type:varchar(64)" json:"project"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	// UpdatedAt 由 GORM 自动管理，记录最后更新时间。
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Group) TableName() string {
	return "groups"
}

// GroupNode represents a node in the nested group tree rendering.
type GroupNode struct {
	ID       string       `json:"id"`
	ParentID *string      `json:"parentId"`
	Name     string       `json:"name"`
	Type     GroupType    `json:"type"`
	Symbol   string       `json:"symbol"`
	Children []*GroupNode `json:"children"`
}
