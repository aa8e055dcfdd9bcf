package split

import (
	"os"

	"github.com/spf13/afero"
	"go.nhat.io/aferocopy/v2"
)

// Filesystem is everything the partitioner does to disk. Tests substitute
// an in-memory or read-only implementation.
type Filesystem interface {
	Exists(name string) (bool, error)
	IsDir(name string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
	Remove(name string) error
	Rename(oldname, newname string) error
	ReadDir(dirname string) ([]os.FileInfo, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	// Copy copies a file, or a directory recursively, to dest.
	Copy(src, dest string) error
}

// AferoFS implements Filesystem on top of an afero backend.
type AferoFS struct {
	afero.Afero
}

// NewAferoFS wraps an afero filesystem. A nil backend means the OS filesystem.
func NewAferoFS(backend afero.Fs) *AferoFS {
	if backend == nil {
		backend = afero.NewOsFs()
	}
	return &AferoFS{Afero: afero.Afero{Fs: backend}}
}

// NewOSFS returns the real disk filesystem.
func NewOSFS() *AferoFS {
	return NewAferoFS(afero.NewOsFs())
}

// Copy copies src to dest within the same backend, keeping file modes.
func (f *AferoFS) Copy(src, dest string) error {
	return aferocopy.Copy(src, dest, aferocopy.Options{
		SrcFs:  f.Fs,
		DestFs: f.Fs,
		OnDirExists: func(srcFs afero.Fs, src string, destFs afero.Fs, dest string) aferocopy.DirExistsAction {
			return aferocopy.Replace
		},
	})
}
