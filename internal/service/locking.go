package service

import (
	"context"
	"errors"
	"time"

	"eduverse_backend/internal/util"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/monitoring"
)

// acquire 获取锁并记录等待耗时，超时转换为 Conflict
func acquire(ctx context.Context, locker lock.Locker, scope, key string) (func(), error) {
	started := time.Now()
	release, err := locker.Acquire(ctx, key)
	switch {
	case err == nil:
		monitoring.ObserveLockWait(scope, "acquired", started)
		return release, nil
	case errors.Is(err, lock.ErrTimeout):
		monitoring.ObserveLockWait(scope, "timeout", started)
		return nil, util.Conflictf("%s is busy, please retry", scope)
	default:
		monitoring.ObserveLockWait(scope, "canceled", started)
		return nil, err
	}
}

func errorsIsConflict(err error) bool {
	return errors.Is(err, util.ErrConflict)
}
