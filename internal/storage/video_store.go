package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrIncompleteUpload is returned when fewer bytes arrive than the client declared.
var ErrIncompleteUpload = errors.New("incomplete upload")

// VideoStore keeps uploaded lecture videos under one directory, each named by
// a fresh UUID and the lower-cased extension of the uploaded file.
type VideoStore struct {
	dir string
}

func NewVideoStore(dir string) (*VideoStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &VideoStore{dir: abs}, nil
}

// SaveFile streams the upload into a temporary file and renames it into place
// once complete, so a stored name always refers to a whole video.
func (s *VideoStore) SaveFile(file io.Reader, info FileInfo) (string, error) {
	ext := strings.ToLower(filepath.Ext(info.Filename))
	if ext == "" {
		ext = ".mp4"
	}
	name := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	written, err := io.Copy(tmp, file)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && info.Size > 0 && written != info.Size {
		err = fmt.Errorf("%w: received %d of %d bytes", ErrIncompleteUpload, written, info.Size)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store video %s: %w", info.Filename, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move video into place: %w", err)
	}
	return name, nil
}

func (s *VideoStore) OpenFile(name string) (io.ReadSeekCloser, error) {
	path, err := resolve(s.dir, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", name, err)
	}
	return f, nil
}

// DeleteFile removes a stored video. Removing a missing video is not an error.
func (s *VideoStore) DeleteFile(name string) error {
	path, err := resolve(s.dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete video %s: %w", name, err)
	}
	return nil
}

// FilePath returns the on-disk path of a stored video, failing early when the
// file is gone so the decoder never sees a dangling path.
func (s *VideoStore) FilePath(name string) (string, error) {
	path, err := resolve(s.dir, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("video %s: %w", name, err)
	}
	return path, nil
}

func resolve(base, name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return filepath.Join(base, clean), nil
}
