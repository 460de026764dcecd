// Package lock 提供按 key 串行化的锁：单实例使用进程内互斥，多副本部署使用 Redis。
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout 在等待锁超过上限时返回
var ErrTimeout = errors.New("lock wait timeout")

// Locker 获取 key 上的独占锁，返回的 release 必须调用且只调用一次
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func ModuleResourcesKey(moduleID string) string {
	return fmt.Sprintf("module:%s:resources", moduleID)
}

func CourseModulesKey(courseID string) string {
	return fmt.Sprintf("course:%s:modules", courseID)
}

func EnrollmentKey(studentID, courseID string) string {
	return fmt.Sprintf("enrollment:%s:%s", studentID, courseID)
}

func ResourceProgressKey(userID, resourceID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, resourceID)
}
