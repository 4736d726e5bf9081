// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 官员职位常量。职位的可用范围取决于所绑定组的类别。
const (
	PositionChair     = "Chair"
	PositionViceChair = "Vice-Chair"
	PositionSecretary = "Secretary"
	PositionEditor    = "Technical Editor"
	PositionTreasurer = "Treasurer"
)

// positionsByType 定义了每种组类别允许的官员职位集合。
var positionsByType = map[GroupType][]string{
	GroupTypeRoot:         {PositionChair, PositionViceChair, PositionSecretary, PositionTreasurer},
	GroupTypeCommittee:    {PositionChair, PositionViceChair, PositionSecretary, PositionTreasurer},
	GroupTypeWorkingGroup: {PositionChair, PositionViceChair, PositionSecretary, PositionEditor, PositionTreasurer},
	GroupTypeTechnical:    {PositionChair, PositionViceChair, PositionSecretary, PositionEditor},
	GroupTypeStanding:     {PositionChair, PositionViceChair, PositionSecretary},
	GroupTypeAdHoc:        {PositionChair, PositionSecretary},
}

// AllowsPosition 报告职位 position 是否可以绑定到类别为 t 的组上。
func (t GroupType) AllowsPosition(position string) bool {
	for _, p := range positionsByType[t] {
		if p == position {
			return true
		}
	}
	return false
}

// Officer 对应于数据库中的 'officers' 表。
// 它把一个成员 (SA-PIN) 绑定到某一个组上的具名职位。
type Officer struct {
	// ID 是该职位绑定记录的唯一标识符 (UUID)。
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// GroupID 是职位所属的组，必须引用一个已存在的组。
	GroupID string `gorm:"type:varchar(36);not null;index" json:"groupId"`
	// SAPIN 是持有该职位的成员标识。
	SAPIN uint64 `gorm:"not null;index" json:"sapin"`
	// Position 是职位名称（如 Chair），须在所绑定组类别允许的职位集合内。
	Position string `gorm:"type:varchar(32);not null" json:"position"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	// UpdatedAt 由 GORM 自动管理，记录最后更新时间。
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Officer) TableName() string {
	return "officers"
}
