// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"grouphub-go/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// memberCacheTTL 是成员快照在 Redis 中的存活时间。
// 认证中间件每个请求都要按 SA-PIN 解析成员，短 TTL 缓存能挡掉绝大多数回表。
const memberCacheTTL = 5 * time.Minute

// MemberRepository 接口定义了成员（SA-PIN 身份）的数据操作方法。
type MemberRepository interface {
	FindBySAPIN(ctx context.Context, sapin uint64) (*model.Member, error)
	Create(member *model.Member) error
	Update(member *model.Member) error
}

// memberRepository 是 MemberRepository 接口的 GORM+Redis 实现。
type memberRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewMemberRepository 创建一个新的 MemberRepository 实例。
func NewMemberRepository(db *gorm.DB, redisClient *redis.Client) MemberRepository {
	return &memberRepository{db: db, redisClient: redisClient}
}

// cacheKey generates the redis key for a member snapshot.
func (r *memberRepository) cacheKey(sapin uint64) string {
	return "member:" + strconv.FormatUint(sapin, 10)
}

// FindBySAPIN 根据 SA-PIN 查找成员，优先命中 Redis 缓存。
// 缓存读写失败时静默回退到数据库，缓存只是加速，不承担正确性。
func (r *memberRepository) FindBySAPIN(ctx context.Context, sapin uint64) (*model.Member, error) {
	if cached, err := r.redisClient.Get(ctx, r.cacheKey(sapin)).Result(); err == nil {
		var member model.Member
		if jsonErr := json.Unmarshal([]byte(cached), &member); jsonErr == nil {
			return &member, nil
		}
	}

	var member model.Member
	if err := r.db.Where("sapin = ?", sapin).First(&member).Error; err != nil {
		return nil, err
	}

	if data, err := json.Marshal(&member); err == nil {
		_ = r.redisClient.Set(ctx, r.cacheKey(sapin), data, memberCacheTTL).Err()
	}
	return &member, nil
}

// Create 在数据库中插入一条新的成员记录。
func (r *memberRepository) Create(member *model.Member) error {
	return r.db.Create(member).Error
}

// Update 更新成员记录并使缓存失效。
func (r *memberRepository) Update(member *model.Member) error {
	if err := r.db.Save(member).Error; err != nil {
		return err
	}
	_ = r.redisClient.Del(context.Background(), r.cacheKey(member.SAPIN)).Err()
	return nil
}
