//go:build !linux && !darwin

package main

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls the modification times of the watched files
type FileWatcher struct {
	watchMap    map[string]time.Time
	mu          sync.Mutex
	debounce    time.Duration
	debounceMap map[string]*time.Timer
	onChange    func(string)
	stopChan    chan struct{}
}

func NewFileWatcher(debounce time.Duration, onChange func(string)) (*FileWatcher, error) {
	return &FileWatcher{
		watchMap:    make(map[string]time.Time),
		debounce:    debounce,
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
		stopChan:    make(chan struct{}),
	}, nil
}

// AddFile starts watching path. Adding a file twice is a no-op.
func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	if _, ok := fw.watchMap[absPath]; !ok {
		fw.watchMap[absPath] = info.ModTime()
	}
	fw.mu.Unlock()

	return nil
}

// Watch blocks until Close is called
func (fw *FileWatcher) Watch() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fw.checkFiles()
		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) checkFiles() {
	fw.mu.Lock()
	paths := make([]string, 0, len(fw.watchMap))
	for path := range fw.watchMap {
		paths = append(paths, path)
	}
	fw.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		fw.mu.Lock()
		lastMod := fw.watchMap[path]
		fw.watchMap[path] = info.ModTime()
		fw.mu.Unlock()

		if info.ModTime().After(lastMod) {
			fw.debouncedCallback(path)
		}
	}
}

func (fw *FileWatcher) debouncedCallback(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.debounceMap[path]; exists {
		timer.Stop()
	}

	fw.debounceMap[path] = time.AfterFunc(fw.debounce, func() {
		fw.onChange(path)
		fw.mu.Lock()
		delete(fw.debounceMap, path)
		fw.mu.Unlock()
	})
}

func (fw *FileWatcher) Close() error {
	close(fw.stopChan)
	fw.mu.Lock()
	for _, timer := range fw.debounceMap {
		timer.Stop()
	}
	fw.mu.Unlock()
	return nil
}
