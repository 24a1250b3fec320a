package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// startWatch runs Watch on path and forwards every reloaded service name.
func startWatch(t *testing.T, path string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	names := make(chan string, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) {
			select {
			case names <- cfg.Server.ServiceName:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})
	return names
}

// awaitReload repeats change until a reload reports want, so it does not
// depend on when the watcher finished registering.
func awaitReload(t *testing.T, names <-chan string, want string, change func()) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	change()
	for {
		select {
		case got := <-names:
			if got == want {
				return
			}
		case <-tick.C:
			change()
		case <-deadline:
			t.Fatalf("no reload with service_name %q", want)
		}
	}
}

func serviceYAML(name string) []byte {
	return []byte(fmt.Sprintf("server:\n  service_name: %q\n", name))
}

func writeInPlace(t *testing.T, path, name string) func() {
	return func() {
		if err := os.WriteFile(path, serviceYAML(name), 0o600); err != nil {
			t.Errorf("write: %v", err)
		}
	}
}

func renameOver(t *testing.T, path, name string) func() {
	return func() {
		tmp := filepath.Join(filepath.Dir(path), ".config.yaml.tmp")
		if err := os.WriteFile(tmp, serviceYAML(name), 0o600); err != nil {
			t.Errorf("write temp: %v", err)
			return
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Errorf("rename: %v", err)
		}
	}
}

func TestWatch_InPlaceAndAtomicSaves(t *testing.T) {
	p := writeConfig(t, string(serviceYAML("initial")))
	names := startWatch(t, p)

	awaitReload(t, names, "in-place 1", writeInPlace(t, p, "in-place 1"))
	awaitReload(t, names, "atomic 1", renameOver(t, p, "atomic 1"))
	awaitReload(t, names, "atomic 2", renameOver(t, p, "atomic 2"))
	// The watch is still alive for ordinary writes after the file was replaced.
	awaitReload(t, names, "in-place 2", writeInPlace(t, p, "in-place 2"))
}

func TestWatch_InvalidReloadKeepsWatching(t *testing.T) {
	p := writeConfig(t, string(serviceYAML("initial")))
	names := startWatch(t, p)

	if err := os.WriteFile(p, []byte("server:\n  http_port: 70000\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	awaitReload(t, names, "recovered", writeInPlace(t, p, "recovered"))
}

func TestTouches(t *testing.T) {
	const p = "/etc/freshsense/config.yaml"
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: p, Op: fsnotify.Write}, true},
		{"rename onto path", fsnotify.Event{Name: p, Op: fsnotify.Create}, true},
		{"unclean name", fsnotify.Event{Name: "/etc/freshsense/./config.yaml", Op: fsnotify.Write}, true},
		{"old inode renamed", fsnotify.Event{Name: p, Op: fsnotify.Rename}, false},
		{"removed", fsnotify.Event{Name: p, Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: p, Op: fsnotify.Chmod}, false},
		{"temp file", fsnotify.Event{Name: "/etc/freshsense/.config.yaml.tmp", Op: fsnotify.Create}, false},
		{"sibling", fsnotify.Event{Name: "/etc/freshsense/other.yaml", Op: fsnotify.Write}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := touches(tc.event, p); got != tc.want {
				t.Errorf("touches(%v): got %v, want %v", tc.event, got, tc.want)
			}
		})
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/config.yaml", func(*Config) {})
	if err == nil {
		t.Fatal("expected error for missing directory, got nil")
	}
}
