package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	km := NewKeyedMutex(time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := km.Acquire(ctx, "module:m1:resources")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
	if km.size() != 0 {
		t.Fatalf("expected entries to be reclaimed, %d left", km.size())
	}
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex(50 * time.Millisecond)
	ctx := context.Background()

	r1, err := km.Acquire(ctx, "a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer r1()
	r2, err := km.Acquire(ctx, "b")
	if err != nil {
		t.Fatalf("acquire b while a is held: %v", err)
	}
	r2()
}

func TestKeyedMutexTimeout(t *testing.T) {
	km := NewKeyedMutex(20 * time.Millisecond)
	ctx := context.Background()

	release, err := km.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := km.Acquire(ctx, "k"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	release()
	// 重复释放不应阻塞
	release()

	again, err := km.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}

func TestKeyedMutexContextCancel(t *testing.T) {
	km := NewKeyedMutex(time.Second)
	release, _ := km.Acquire(context.Background(), "k")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := km.Acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Second, 60*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "enrollment:s1:c1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists("eduverse:lock:enrollment:s1:c1") {
		t.Fatalf("lock key not written")
	}

	if _, err := l.Acquire(ctx, "enrollment:s1:c1"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout while held, got %v", err)
	}

	release()
	if mr.Exists("eduverse:lock:enrollment:s1:c1") {
		t.Fatalf("lock key not removed on release")
	}

	release2, err := l.Acquire(ctx, "enrollment:s1:c1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestRedisLockerDoesNotReleaseForeignToken(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Second, 50*time.Millisecond)

	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// 模拟锁过期后被其他实例获取
	mr.Set("eduverse:lock:k", "someone-else")
	release()

	got, err := mr.Get("eduverse:lock:k")
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock was released: %q, %v", got, err)
	}
}

func TestRedisLockerSerialises(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Second, 2*time.Second)
	l.RetryDelay = time.Millisecond

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		counter int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "counter")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			v := counter
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			counter = v + 1
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if counter != 10 {
		t.Fatalf("expected 10 serialised increments, got %d", counter)
	}
}
