package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/internal/common"
)

// DiskFileStore copies raw uploads into a flat directory keyed by contract
// id, keeping the original extension.
type DiskFileStore struct {
	dir    string
	logger *slog.Logger
}

func NewDiskFileStore(dir string, logger *slog.Logger) (*DiskFileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.WrapError(err, "create file store dir")
	}
	return &DiskFileStore{dir: dir, logger: logger}, nil
}

func (s *DiskFileStore) StoreRawFile(ctx context.Context, contractID uuid.UUID, srcPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return "", common.NewAppError("FILE_STORE_ERROR", "open source file", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.dir, contractID.String()+filepath.Ext(srcPath))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", common.NewAppError("FILE_STORE_ERROR", "create stored file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", common.NewAppError("FILE_STORE_ERROR", "copy file contents", err)
	}
	s.logger.Info("filestore.stored", "contract_id", contractID, "path", dstPath)
	return dstPath, nil
}
