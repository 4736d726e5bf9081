// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Ballot 对应于数据库中的 'ballots' 表。
// 投票属于其他子系统，本引擎只在删除组时检查是否仍有投票引用该组。
type Ballot struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID string `gorm:"type:varchar(36);not null;index" json:"groupId"`
	Number  string `gorm:"type:varchar(32);not null" json:"number"`
	Subject string `gorm:"type:varchar(255)" json:"subject"`
	// Start/End 是投票窗口，本引擎不使用，仅随行保存。
	Start *time.Time `gorm:"default:null" json:"start"`
	End   *time.Time `gorm:"default:null" json:"end"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Ballot) TableName() string {
	return "ballots"
}
