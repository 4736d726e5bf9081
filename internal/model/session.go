// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Session 对应于数据库中的 'sessions' 表。
// 会议属于其他子系统，本引擎只在删除组时检查是否仍有会议引用该组。
type Session struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID string `gorm:"type:varchar(36);not null;index" json:"groupId"`
	Name    string `gorm:"type:varchar(255)" json:"name"`
	// StartDate/EndDate 是会期，本引擎不使用，仅随行保存。
	StartDate *time.Time `gorm:"default:null" json:"startDate"`
	EndDate   *time.Time `gorm:"default:null" json:"endDate"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Session) TableName() string {
	return "sessions"
}
