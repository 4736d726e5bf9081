// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Member 对应于数据库中的 'members' 表。
// 身份认证由外部完成，这里只保存按 SA-PIN 解析出的成员信息。
type Member struct {
	// SAPIN 是成员的全局唯一标识，作为主键。
	SAPIN uint64 `gorm:"primaryKey;autoIncrement:false" json:"sapin"`
	// Name 是成员的显示姓名。
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	// Email 是成员的联系邮箱。
	Email string `gorm:"type:varchar(255)" json:"email"`
	// Status 是成员状态（如 Voter / Aspirant / Non-Voter）。
	Status string `gorm:"type:varchar(32)" json:"status"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Member) TableName() string {
	return "members"
}
