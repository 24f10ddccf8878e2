package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "kasir:session:access:" + accessID
}

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestGenerateAndHasSession(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	ok, err := mgr.HasSession(ctx, "access-1")
	if err != nil || !ok {
		t.Fatalf("expected session to exist, ok=%v err=%v", ok, err)
	}

	ok, err = mgr.HasSession(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected no session, ok=%v err=%v", ok, err)
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newID == "access-1" || newToken == token {
		t.Fatal("rotation should issue a fresh pair")
	}

	if ok, _ := mgr.HasSession(ctx, "access-1"); ok {
		t.Fatal("old session should be revoked")
	}
	if ok, _ := mgr.HasSession(ctx, newID); !ok {
		t.Fatal("new session should exist")
	}
}

func TestRotateRejectsBadToken(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := mgr.Rotate(ctx, "access-1", "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, "ghost", "bogus"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken for unknown session, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := mgr.HasSession(ctx, "access-1"); ok {
		t.Fatal("session should be gone after revoke")
	}
}
