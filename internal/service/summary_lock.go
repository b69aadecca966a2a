package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/redis"
)

// errLockTimeout 等待同 key 计算完成超时
var errLockTimeout = errors.New("等待汇总锁超时")

// SummaryLocker 串行化同一 (学生, 课程, 月份) 的汇总计算
type SummaryLocker interface {
	// Lock 获取锁，返回释放函数；超时返回 errLockTimeout
	Lock(ctx context.Context, key string) (release func(), err error)
}

// ── 进程内按 key 互斥 ──

type keyedLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
	wait  time.Duration
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker 创建进程内按 key 互斥的锁，等待上限为 wait
func NewKeyedLocker(wait time.Duration) SummaryLocker {
	return &keyedLocker{slots: make(map[string]*lockSlot), wait: wait}
}

func (l *keyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.unref(key, slot)
		}, nil
	case <-timer.C:
		l.unref(key, slot)
		return nil, errLockTimeout
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, ctx.Err()
	}
}

func (l *keyedLocker) unref(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// ── Redis 分布式锁 ──

type redisLocker struct {
	local  SummaryLocker
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker 多实例部署时使用：先取进程内锁，再取 Redis 锁
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) SummaryLocker {
	return &redisLocker{local: NewKeyedLocker(wait), client: client, ttl: ttl, wait: wait}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	releaseLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	lock, err := l.client.AcquireLock(ctx, "attendance_summary:"+key, l.ttl, l.wait)
	if err != nil {
		releaseLocal()
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return nil, errLockTimeout
		}
		return nil, err
	}

	return func() {
		// 释放不受调用方 ctx 取消影响
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lock.Release(ctx)
		releaseLocal()
	}, nil
}
