// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// GroupChangeLog 对应于数据库中的 'group_change_log' 表。
// 每条记录是一次组/官员变更的审计条目，由 Kafka 消费者异步写入。
type GroupChangeLog struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// EventID 是变更事件的 UUID，用于消费端幂等与重试计数。
	EventID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"eventId"`
	// Entity 是被变更的实体类别：group 或 officer。
	Entity string `gorm:"type:varchar(16);not null" json:"entity"`
	// Action 是变更动作：create / update / delete。
	Action string `gorm:"type:varchar(16);not null" json:"action"`
	// EntityIDs 是受影响的实体 ID 列表（逗号分隔）。
	EntityIDs string `gorm:"type:text;not null" json:"entityIds"`
	// ActorSAPIN 是发起变更的成员标识。
	ActorSAPIN uint64 `gorm:"not null" json:"actorSapin"`
	// Detail 是人类可读的变更描述。
	Detail string `gorm:"type:text" json:"detail"`
	// OccurredAt 是变更在服务端发生的时间（事件时间，而非入库时间）。
	OccurredAt time.Time `gorm:"not null" json:"occurredAt"`
	// CreatedAt 由 GORM 自动管理，记录入库时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (GroupChangeLog) TableName() string {
	return "group_change_log"
}
