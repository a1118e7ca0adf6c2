package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		os.Unsetenv("MES_TEST_GETENV_UNSET")
		got := GetEnv("MES_TEST_GETENV_UNSET", "default")
		if got != "default" {
			t.Errorf("GetEnv(unset) = %q, want %q", got, "default")
		}
	})

	t.Run("returns value when set", func(t *testing.T) {
		os.Setenv("MES_TEST_GETENV_SET", "myvalue")
		defer os.Unsetenv("MES_TEST_GETENV_SET")
		got := GetEnv("MES_TEST_GETENV_SET", "default")
		if got != "myvalue" {
			t.Errorf("GetEnv(set) = %q, want %q", got, "myvalue")
		}
	})

	t.Run("returns default when empty", func(t *testing.T) {
		os.Setenv("MES_TEST_GETENV_EMPTY", "")
		defer os.Unsetenv("MES_TEST_GETENV_EMPTY")
		got := GetEnv("MES_TEST_GETENV_EMPTY", "default")
		if got != "default" {
			t.Errorf("GetEnv(empty) = %q, want %q", got, "default")
		}
	})

	t.Run("trims space", func(t *testing.T) {
		os.Setenv("MES_TEST_GETENV_TRIM", "  trimmed  ")
		defer os.Unsetenv("MES_TEST_GETENV_TRIM")
		got := GetEnv("MES_TEST_GETENV_TRIM", "default")
		if got != "trimmed" {
			t.Errorf("GetEnv(trim) = %q, want %q", got, "trimmed")
		}
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		os.Unsetenv("MES_TEST_DURATION_UNSET")
		got := GetEnvDuration("MES_TEST_DURATION_UNSET", 5*time.Second)
		if got != 5*time.Second {
			t.Errorf("GetEnvDuration(unset) = %v, want 5s", got)
		}
	})

	t.Run("parses valid duration", func(t *testing.T) {
		os.Setenv("MES_TEST_DURATION_VALID", "30s")
		defer os.Unsetenv("MES_TEST_DURATION_VALID")
		got := GetEnvDuration("MES_TEST_DURATION_VALID", time.Second)
		if got != 30*time.Second {
			t.Errorf("GetEnvDuration(30s) = %v, want 30s", got)
		}
	})

	t.Run("returns default on invalid duration", func(t *testing.T) {
		os.Setenv("MES_TEST_DURATION_INVALID", "not-a-duration")
		defer os.Unsetenv("MES_TEST_DURATION_INVALID")
		got := GetEnvDuration("MES_TEST_DURATION_INVALID", 7*time.Second)
		if got != 7*time.Second {
			t.Errorf("GetEnvDuration(invalid) = %v, want 7s", got)
		}
	})
}

func TestGetEnvInt(t *testing.T) {
	t.Run("returns default when unset", func(t *testing.T) {
		os.Unsetenv("MES_TEST_INT_UNSET")
		if got := GetEnvInt("MES_TEST_INT_UNSET", 42); got != 42 {
			t.Errorf("GetEnvInt(unset) = %d, want 42", got)
		}
	})

	t.Run("parses valid int", func(t *testing.T) {
		os.Setenv("MES_TEST_INT_VALID", "150")
		defer os.Unsetenv("MES_TEST_INT_VALID")
		if got := GetEnvInt("MES_TEST_INT_VALID", 1); got != 150 {
			t.Errorf("GetEnvInt(150) = %d, want 150", got)
		}
	})

	t.Run("returns default on invalid int", func(t *testing.T) {
		os.Setenv("MES_TEST_INT_INVALID", "many")
		defer os.Unsetenv("MES_TEST_INT_INVALID")
		if got := GetEnvInt("MES_TEST_INT_INVALID", 9); got != 9 {
			t.Errorf("GetEnvInt(invalid) = %d, want 9", got)
		}
	})
}

func TestDefaultDashboardConfig(t *testing.T) {
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("MES_BACKEND_ENDPOINT")
	os.Unsetenv("REFRESH_INTERVAL")
	cfg := DefaultDashboardConfig()
	if cfg.HTTPAddr != ":8090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.BackendEndpoint != "http://localhost:8000" {
		t.Errorf("BackendEndpoint = %q", cfg.BackendEndpoint)
	}
	if cfg.RefreshInterval != 5*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.RowLimit != 200 {
		t.Errorf("RowLimit = %d", cfg.RowLimit)
	}
}
