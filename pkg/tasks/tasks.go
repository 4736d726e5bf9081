// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// 变更事件的实体与动作常量。
const (
	EntityGroup   = "group"
	EntityOfficer = "officer"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// GroupChangeTask represents a group/officer mutation event to be audited.
type GroupChangeTask struct {
	// EventID 是事件的 UUID，消费端用它做幂等判断与重试计数。
	EventID    string    `json:"event_id"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityIDs  []string  `json:"entity_ids"`
	ActorSAPIN uint64    `json:"actor_sapin"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}
