package disk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cinesync/server/internal/repository/media"
)

// repo stores uploaded media files under a single directory, one file per
// media id. Ids are expected to be uuids; the caller validates them before
// they reach the filesystem.
type repo struct {
	dir    string
	logger *slog.Logger
}

func NewRepo(dir string, logger *slog.Logger) (*repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}

	return &repo{
		dir:    dir,
		logger: logger,
	}, nil
}

func (r repo) getFilePath(mediaId string) string {
	return filepath.Join(r.dir, mediaId)
}

func (r repo) Save(mediaId string, src io.Reader) (int64, error) {
	r.logger.Debug("called", "media_id", mediaId)
	f, err := os.Create(r.getFilePath(mediaId))
	if err != nil {
		return 0, fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, src)
	if err != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("failed to write media file: %w", err)
	}

	return size, nil
}

func (r repo) Path(mediaId string) (string, error) {
	path := r.getFilePath(mediaId)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", media.ErrFileNotFound
		}
		return "", err
	}

	return path, nil
}

func (r repo) Remove(mediaId string) error {
	r.logger.Debug("called", "media_id", mediaId)
	if err := os.Remove(r.getFilePath(mediaId)); err != nil {
		if os.IsNotExist(err) {
			return media.ErrFileNotFound
		}
		return err
	}

	return nil
}
