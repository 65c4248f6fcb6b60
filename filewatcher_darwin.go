//go:build darwin

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FileWatcher reports changes to the source files of a program through
// kqueue. Bursts of events for one file are collapsed into one callback.
type FileWatcher struct {
	kq          int
	watchMap    map[int]string
	watched     map[string]bool
	mu          sync.Mutex
	debounce    time.Duration
	debounceMap map[string]*time.Timer
	onChange    func(string)
	done        chan struct{}
}

func NewFileWatcher(debounce time.Duration, onChange func(string)) (*FileWatcher, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, errors.Wrap(err, "kqueue failed")
	}

	return &FileWatcher{
		kq:          kq,
		watchMap:    make(map[int]string),
		watched:     make(map[string]bool),
		debounce:    debounce,
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
		done:        make(chan struct{}),
	}, nil
}

// AddFile starts watching path. Adding a file twice is a no-op.
func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.watched[absPath] {
		return nil
	}

	fd, err := unix.Open(absPath, unix.O_RDONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", absPath)
	}

	event := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_ATTRIB,
	}

	_, err = unix.Kevent(fw.kq, []unix.Kevent_t{event}, nil, nil)
	if err != nil {
		unix.Close(fd)
		return errors.Wrapf(err, "failed to add kevent for %s", absPath)
	}

	fw.watchMap[fd] = absPath
	fw.watched[absPath] = true
	return nil
}

// Watch blocks until Close is called
func (fw *FileWatcher) Watch() {
	events := make([]unix.Kevent_t, 10)
	timeout := unix.NsecToTimespec(int64(100 * time.Millisecond))

	for {
		select {
		case <-fw.done:
			return
		default:
		}

		n, err := unix.Kevent(fw.kq, nil, events, &timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "Error reading kevent: %v\n", err)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Ident)

			fw.mu.Lock()
			path := fw.watchMap[fd]
			fw.mu.Unlock()

			if path != "" {
				fw.debouncedCallback(path)
			}
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
	close(fw.done)
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, timer := range fw.debounceMap {
		timer.Stop()
	}
	for fd := range fw.watchMap {
		unix.Close(fd)
	}

	return unix.Close(fw.kq)
}
