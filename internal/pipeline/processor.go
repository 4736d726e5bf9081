// Package pipeline 定义了变更事件的审计处理流程。
package pipeline

import (
	"context"
	"strings"

	"grouphub-go/internal/model"
	"grouphub-go/internal/repository"
	"grouphub-go/pkg/log"
	"grouphub-go/pkg/tasks"
)

// Processor 消费组/官员变更事件并将其落库为审计记录。
type Processor struct {
	changeLogRepo repository.ChangeLogRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(changeLogRepo repository.ChangeLogRepository) *Processor {
	return &Processor{changeLogRepo: changeLogRepo}
}

// Process 把一条变更事件写入 group_change_log。
// 同一事件可能因消费者重试被投递多次，按 EventID 做幂等：已存在则跳过。
func (p *Processor) Process(ctx context.Context, task tasks.GroupChangeTask) error {
	if _, err := p.changeLogRepo.FindByEventID(task.EventID); err == nil {
		log.Infof("[Processor] 变更事件已入库，跳过: EventID=%s", task.EventID)
		return nil
	}

	entry := &model.GroupChangeLog{
		EventID:    task.EventID,
		Entity:     task.Entity,
		Action:     task.Action,
		EntityIDs:  strings.Join(task.EntityIDs, ","),
		ActorSAPIN: task.ActorSAPIN,
		Detail:     task.Detail,
		OccurredAt: task.OccurredAt,
	}
	if err := p.changeLogRepo.Create(entry); err != nil {
		log.Errorf("[Processor] 审计记录写入失败: EventID=%s, Error: %v", task.EventID, err)
		return err
	}

	log.Infof("[Processor] 审计记录已写入: entity=%s action=%s actor=%d ids=%s",
		task.Entity, task.Action, task.ActorSAPIN, entry.EntityIDs)
	return nil
}
