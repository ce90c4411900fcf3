package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bornholm/autosend/internal/store"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/disk"
)

const defaultContentType = "application/octet-stream"

// Well known attachment extensions. Anything else is sniffed from the
// file content.
var contentTypes = map[string]string{
	".xml":  "text/xml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".3gpp": "audio/3gpp",
	".3gp":  "video/3gpp",
	".amr":  "audio/amr",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/x-wav",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
}

// Storage gives access to instance payloads and attachments kept on the
// device file system.
type Storage struct {
	basePath string
	logger   *slog.Logger
}

func NewStorage(basePath string, logger *slog.Logger) *Storage {
	return &Storage{
		basePath: basePath,
		logger:   logger.With("component", "file-storage"),
	}
}

func (fs *Storage) GetBasePath() string {
	return fs.basePath
}

// Resolve returns the absolute location of a stored path. Relative paths
// are relative to the storage base path.
func (fs *Storage) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(fs.basePath, path)
}

func (fs *Storage) Exists(path string) bool {
	info, err := os.Stat(fs.Resolve(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (fs *Storage) GetFile(path string) (io.ReadCloser, error) {
	resolved := fs.Resolve(path)

	file, err := os.Open(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %s", resolved)
	}

	return file, nil
}

// ContentType maps the file extension to a content type, falling back on
// content sniffing for unknown extensions.
func (fs *Storage) ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	mime, err := mimetype.DetectFile(fs.Resolve(path))
	if err != nil {
		fs.logger.Debug("could not detect content type", "path", path, "error", err)
		return defaultContentType
	}

	return mime.String()
}

// DeleteInstanceArtifacts removes the payload and attachments of the given
// instance, then its directory when left empty. Missing files are ignored.
func (fs *Storage) DeleteInstanceArtifacts(instance *store.Instance) error {
	paths := append([]string{instance.DataPath}, instance.AttachmentPaths()...)

	for _, p := range paths {
		if p == "" {
			continue
		}

		resolved := fs.Resolve(p)
		if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "failed to delete file %s", resolved)
		}
	}

	if instance.DataPath != "" {
		dir := filepath.Dir(fs.Resolve(instance.DataPath))
		if dir != filepath.Clean(fs.basePath) {
			entries, err := os.ReadDir(dir)
			if err == nil && len(entries) == 0 {
				if err := os.Remove(dir); err != nil {
					fs.logger.Warn("could not remove instance directory", "path", dir, "error", err)
				}
			}
		}
	}

	fs.logger.Debug("deleted instance files", "instance_id", instance.ID, "files", len(paths))

	return nil
}

// Ready reports whether the storage directory exists and has at least
// minFree bytes available.
func (fs *Storage) Ready(ctx context.Context, minFree uint64) (bool, error) {
	info, err := os.Stat(fs.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	if !info.IsDir() {
		return false, nil
	}

	usage, err := disk.UsageWithContext(ctx, fs.basePath)
	if err != nil {
		return false, errors.Wrapf(err, "failed to retrieve disk usage of %s", fs.basePath)
	}

	if usage.Free < minFree {
		fs.logger.WarnContext(ctx, "not enough free space on storage", "free", usage.Free, "required", minFree)
		return false, nil
	}

	return true, nil
}

// EnsureDirectoryExists creates the base directory if it doesn't exist
func (fs *Storage) EnsureDirectoryExists() error {
	if err := os.MkdirAll(fs.basePath, 0750); err != nil {
		return errors.Wrapf(err, "failed to create base storage directory %s", fs.basePath)
	}

	fs.logger.Info("storage directory initialized", "base_path", fs.basePath)
	return nil
}
