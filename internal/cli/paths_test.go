package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestNewCacheWithoutCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")

	if _, err := newCache(context.Background(), cacheFlags{}); err == nil {
		t.Error("newCache() without a cache dir should fail")
	}
	c, err := newCache(context.Background(), cacheFlags{noCache: true})
	if err != nil || c == nil {
		t.Errorf("newCache(noCache) = %v, %v", c, err)
	}
}

func TestLayoutPath(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"grid.toml", "grid.layout.json"},
		{"feeds/home.json", "feeds/home.layout.json"},
		{"noext", "noext.layout.json"},
	}
	for _, tt := range tests {
		if got := layoutPath(tt.input); got != tt.want {
			t.Errorf("layoutPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	s := statsLineFixture()

	fresh := statsLine(s, false)
	for _, want := range []string{"15 items", "5 placed", "4 columns", "height 891", iconFresh} {
		if !strings.Contains(fresh, want) {
			t.Errorf("statsLine() = %q, missing %q", fresh, want)
		}
	}

	cached := statsLine(s, true)
	if strings.Contains(cached, "placed") || !strings.Contains(cached, iconCached) {
		t.Errorf("cached statsLine() = %q", cached)
	}
}
