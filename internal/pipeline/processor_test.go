package pipeline

import (
	"context"
	"testing"
	"time"

	"grouphub-go/internal/model"
	"grouphub-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeChangeLogRepo struct {
	entries []model.GroupChangeLog
}

func (r *fakeChangeLogRepo) Create(entry *model.GroupChangeLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeChangeLogRepo) FindByEventID(eventID string) (*model.GroupChangeLog, error) {
	for i := range r.entries {
		if r.entries[i].EventID == eventID {
			return &r.entries[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChangeLogRepo) FindRecent(limit int) ([]model.GroupChangeLog, error) {
	return r.entries, nil
}

func TestProcessorWritesAuditEntry(t *testing.T) {
	repo := &fakeChangeLogRepo{}
	p := NewProcessor(repo)

	task := tasks.GroupChangeTask{
		EventID:    "evt-1",
		Entity:     tasks.EntityGroup,
		Action:     tasks.ActionDelete,
		EntityIDs:  []string{"tg1", "adhoc"},
		ActorSAPIN: 100,
		Detail:     "删除组",
		OccurredAt: time.Now(),
	}
	require.NoError(t, p.Process(context.Background(), task))

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "evt-1", entry.EventID)
	assert.Equal(t, tasks.EntityGroup, entry.Entity)
	assert.Equal(t, tasks.ActionDelete, entry.Action)
	assert.Equal(t, "tg1,adhoc", entry.EntityIDs)
	assert.EqualValues(t, 100, entry.ActorSAPIN)
}

func TestProcessorIsIdempotent(t *testing.T) {
	repo := &fakeChangeLogRepo{}
	p := NewProcessor(repo)

	task := tasks.GroupChangeTask{EventID: "evt-dup", Entity: tasks.EntityOfficer, Action: tasks.ActionCreate}
	require.NoError(t, p.Process(context.Background(), task))
	// 消费者重试会重复投递同一事件，按 EventID 去重
	require.NoError(t, p.Process(context.Background(), task))

	assert.Len(t, repo.entries, 1)
}
