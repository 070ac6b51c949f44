package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	devenv "jecna-client/dev/env"
)

// Output receives a formatted request/response exchange under a unique id.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears dir and writes every exchange into it as a
// separate file, dir may start with "<dev_state>".
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	dir, err := devenv.ResolvePath(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

type MemoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func (o *MemoryOutput) Messages() map[string]string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	out := make(map[string]string, len(o.messages))
	for k, v := range o.messages {
		out[k] = v
	}
	return out
}
