//go:build linux

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FileWatcher reports changes to the source files of a program through
// inotify. Bursts of events for one file are collapsed into one callback.
type FileWatcher struct {
	fd          int
	watchMap    map[int]string
	watched     map[string]bool
	mu          sync.Mutex
	debounce    time.Duration
	debounceMap map[string]*time.Timer
	onChange    func(string)
	done        chan struct{}
}

func NewFileWatcher(debounce time.Duration, onChange func(string)) (*FileWatcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "inotify_init failed")
	}

	return &FileWatcher{
		fd:          fd,
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

	wd, err := unix.InotifyAddWatch(fw.fd, absPath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		return errors.Wrapf(err, "failed to watch %s", absPath)
	}
	fw.watchMap[wd] = absPath
	fw.watched[absPath] = true
	return nil
}

// Watch blocks until Close is called
func (fw *FileWatcher) Watch() {
	buf := make([]byte, (unix.SizeofInotifyEvent+256)*10)

	for {
		select {
		case <-fw.done:
			return
		default:
		}

		n, err := unix.Read(fw.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "Error reading inotify events: %v\n", err)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)

			if event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				fw.mu.Lock()
				path := fw.watchMap[int(event.Wd)]
				fw.mu.Unlock()

				if path != "" {
					fw.debouncedCallback(path)
				}
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
	for _, timer := range fw.debounceMap {
		timer.Stop()
	}
	fw.mu.Unlock()
	return unix.Close(fw.fd)
}
