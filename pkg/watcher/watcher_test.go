package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32

	// Trigger rapidly 10 times
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce to complete
	time.Sleep(100 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool

	d.Trigger(func() {
		called.Store(true)
	})

	// Cancel before debounce completes
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

// datasetMode lays out one of the two dataset shapes the watcher follows.
// setup returns the path to watch and a file inside the dataset to edit.
type datasetMode struct {
	name  string
	setup func(t *testing.T) (watch, edit string)
}

func datasetModes() []datasetMode {
	return []datasetMode{
		{
			name: "dataset-dir",
			setup: func(t *testing.T) (string, string) {
				t.Helper()
				dir := filepath.Join(t.TempDir(), "synthetic")
				sub := filepath.Join(dir, "clusters")
				if err := os.MkdirAll(sub, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(dir, "timescales.json"), []byte("{}"), 0o644); err != nil {
					t.Fatal(err)
				}
				edit := filepath.Join(sub, "cluster_1.json")
				if err := os.WriteFile(edit, []byte("{}"), 0o644); err != nil {
					t.Fatal(err)
				}
				return dir, edit
			},
		},
		{
			name: "bundle-file",
			setup: func(t *testing.T) (string, string) {
				t.Helper()
				bundle := filepath.Join(t.TempDir(), "dataset.msm")
				if err := os.WriteFile(bundle, []byte("initial"), 0o644); err != nil {
					t.Fatal(err)
				}
				return bundle, bundle
			},
		},
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	for _, mode := range datasetModes() {
		for _, poll := range []bool{false, true} {
			name := mode.name + "/fsnotify"
			if poll {
				name = mode.name + "/polling"
			}
			t.Run(name, func(t *testing.T) {
				watch, edit := mode.setup(t)

				var (
					changeMu sync.Mutex
					changed  bool
				)
				w, err := NewWatcher(watch,
					WithDebounceDuration(20*time.Millisecond),
					WithPollInterval(25*time.Millisecond),
					WithForcePoll(poll),
					WithOnChange(func() {
						changeMu.Lock()
						changed = true
						changeMu.Unlock()
					}),
				)
				if err != nil {
					t.Fatal(err)
				}
				if err := w.Start(); err != nil {
					t.Fatal(err)
				}
				defer w.Stop()

				if poll && !w.IsPolling() {
					t.Error("expected watcher to be in polling mode")
				}

				// Give watcher time to initialize
				time.Sleep(50 * time.Millisecond)

				if err := os.WriteFile(edit, []byte(`{"x":[0,1]}`), 0o644); err != nil {
					t.Fatal(err)
				}

				select {
				case <-w.Changed():
				case <-time.After(2 * time.Second):
					t.Fatal("timeout waiting for change notification")
				}

				changeMu.Lock()
				defer changeMu.Unlock()
				if !changed {
					t.Error("onChange callback was not invoked")
				}
			})
		}
	}
}

func TestWatcher_DatasetRemoved(t *testing.T) {
	for _, mode := range datasetModes() {
		t.Run(mode.name, func(t *testing.T) {
			watch, _ := mode.setup(t)

			var (
				errMu    sync.Mutex
				gotError error
			)
			w, err := NewWatcher(watch,
				WithDebounceDuration(20*time.Millisecond),
				WithPollInterval(25*time.Millisecond),
				WithForcePoll(true),
				WithOnError(func(err error) {
					errMu.Lock()
					gotError = err
					errMu.Unlock()
				}),
			)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()

			time.Sleep(50 * time.Millisecond)
			if err := os.RemoveAll(watch); err != nil {
				t.Fatal(err)
			}
			time.Sleep(200 * time.Millisecond)

			errMu.Lock()
			defer errMu.Unlock()
			if !errors.Is(gotError, ErrFileRemoved) {
				t.Errorf("expected ErrFileRemoved, got %v", gotError)
			}
		})
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	for _, mode := range datasetModes() {
		t.Run(mode.name, func(t *testing.T) {
			watch, _ := mode.setup(t)

			w, err := NewWatcher(watch, WithDebounceDuration(10*time.Millisecond))
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()
			if w.IsPolling() {
				t.Skip("filesystem forces polling")
			}

			time.Sleep(50 * time.Millisecond)
			// A file next to the dataset, outside it.
			notes := filepath.Join(filepath.Dir(watch), "notes.txt")
			if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}

			select {
			case <-w.Changed():
				t.Fatal("a sibling file should not count as a dataset change")
			case <-time.After(200 * time.Millisecond):
			}
		})
	}
}

func TestWatcher_SelectsPolling(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T)
		fsType  FilesystemType
	}{
		{
			name:    "env",
			prepare: func(t *testing.T) { t.Setenv(ForcePollEnvVar, "1") },
		},
		{
			name: "remote-fs",
			prepare: func(t *testing.T) {
				orig := detectFilesystemTypeFunc
				detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
				t.Cleanup(func() { detectFilesystemTypeFunc = orig })
			},
			fsType: FSTypeNFS,
		},
	}

	for _, mode := range datasetModes() {
		for _, tc := range tests {
			t.Run(mode.name+"/"+tc.name, func(t *testing.T) {
				watch, _ := mode.setup(t)
				tc.prepare(t)

				w, err := NewWatcher(watch,
					WithDebounceDuration(10*time.Millisecond),
					WithPollInterval(25*time.Millisecond),
				)
				if err != nil {
					t.Fatal(err)
				}
				if err := w.Start(); err != nil {
					t.Fatal(err)
				}
				defer w.Stop()

				if !w.IsPolling() {
					t.Fatal("expected watcher to be in polling mode")
				}
				if tc.fsType != FSTypeUnknown && w.FilesystemType() != tc.fsType {
					t.Errorf("expected filesystem type %v, got %v", tc.fsType, w.FilesystemType())
				}
			})
		}
	}
}

func TestWatcher_Lifecycle(t *testing.T) {
	for _, mode := range datasetModes() {
		t.Run(mode.name, func(t *testing.T) {
			watch, _ := mode.setup(t)

			interval := 500 * time.Millisecond
			w, err := NewWatcher(watch, WithPollInterval(interval))
			if err != nil {
				t.Fatal(err)
			}

			absPath, _ := filepath.Abs(watch)
			if w.Path() != absPath {
				t.Errorf("expected path %s, got %s", absPath, w.Path())
			}
			if got := w.PollInterval(); got != interval {
				t.Errorf("expected poll interval %v, got %v", interval, got)
			}
			if w.IsStarted() {
				t.Error("watcher should not be started initially")
			}

			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			if !w.IsStarted() {
				t.Error("watcher should be started after Start()")
			}
			if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
				t.Errorf("expected ErrAlreadyStarted, got %v", err)
			}

			w.Stop()
			if w.IsStarted() {
				t.Error("watcher should not be started after Stop()")
			}
			// Double stop should be safe
			w.Stop()
		})
	}
}

func TestFingerprint(t *testing.T) {
	for _, mode := range datasetModes() {
		t.Run(mode.name, func(t *testing.T) {
			watch, edit := mode.setup(t)

			before, err := takeFingerprint(watch)
			if err != nil {
				t.Fatal(err)
			}
			if !before.exists() || before.dir != (watch != edit) {
				t.Fatalf("fingerprint = %+v", before)
			}
			if before.dir && before.files != 2 {
				t.Errorf("files = %d, want 2", before.files)
			}

			if err := os.WriteFile(edit, []byte("a longer payload"), 0o644); err != nil {
				t.Fatal(err)
			}
			after, err := takeFingerprint(watch)
			if err != nil {
				t.Fatal(err)
			}
			if after == before {
				t.Error("fingerprint did not change after an edit")
			}
		})
	}

	if _, err := takeFingerprint(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fsType   FilesystemType
		expected string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(99), "unknown"}, // invalid type
	}

	for _, tc := range tests {
		if got := tc.fsType.String(); got != tc.expected {
			t.Errorf("FilesystemType(%d).String() = %q, expected %q", tc.fsType, got, tc.expected)
		}
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, "yes": true, "y": true, "on": true,
		"0": false, "false": false, "no": false, "": false, "invalid": false,
	} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("MSMVIEW_TEST_ENV_BOOL", value)
			if got := envBool("MSMVIEW_TEST_ENV_BOOL"); got != want {
				t.Errorf("envBool(%q) = %v, expected %v", value, got, want)
			}
		})
	}
}

func TestDetectFilesystemType_Fallbacks(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("DetectFilesystemType(\"\") = %v, expected FSTypeUnknown", got)
	}
	// A dataset that does not exist yet falls back to its parent directory.
	_ = DetectFilesystemType(filepath.Join(t.TempDir(), "synthetic"))
}
