package claude

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewTokenStore(t.TempDir())
	want := &Credentials{
		AccessToken:  "access-token-value",
		RefreshToken: "refresh-token-value",
		ExpiresAt:    1767225600123,
		ConnectedAt:  1767139200987,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := store.Load()
	if got == nil {
		t.Fatal("Load() = nil, want credentials")
	}
	if *got != *want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestTokenStoreFilePermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("file permission bits not supported on windows")
	}

	dir := t.TempDir()
	store := NewTokenStore(dir)
	if err := store.Save(&Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, credentialsFileName))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credential file mode = %o, want 600", perm)
	}
}

func TestTokenStoreLoadAbsent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(t *testing.T, dir string)
	}{
		{
			"missing file",
			func(t *testing.T, dir string) {},
		},
		{
			"corrupt json",
			func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, credentialsFileName), []byte("{not json"), 0o600); err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
			},
		},
		{
			"empty access token",
			func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, credentialsFileName), []byte(`{"accessToken":""}`), 0o600); err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			tt.prepare(t, dir)
			if got := NewTokenStore(dir).Load(); got != nil {
				t.Errorf("Load() = %+v, want nil", got)
			}
		})
	}
}

func TestTokenStoreClearIdempotent(t *testing.T) {
	t.Parallel()

	store := NewTokenStore(t.TempDir())
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on absent record error = %v", err)
	}

	if err := store.Save(&Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
	if got := store.Load(); got != nil {
		t.Errorf("Load() after Clear() = %+v, want nil", got)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestTokenStoreIsValid(t *testing.T) {
	t.Parallel()

	store := NewTokenStore(t.TempDir())
	if store.IsValid(0) {
		t.Error("IsValid() on empty store = true, want false")
	}

	creds := &Credentials{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(10 * time.Minute).UnixMilli(),
		ConnectedAt:  time.Now().UnixMilli(),
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !store.IsValid(5 * time.Minute) {
		t.Error("IsValid(5m) = false for token expiring in 10m, want true")
	}
	if store.IsValid(15 * time.Minute) {
		t.Error("IsValid(15m) = true for token expiring in 10m, want false")
	}
}
