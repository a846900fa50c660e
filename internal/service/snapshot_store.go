package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultDocumentKey 为默认文档的存储键
const DefaultDocumentKey = "default"

// BackupKeySuffix 追加在文档键之后，用于保存无法解析的旧快照
const BackupKeySuffix = ".unreadable"

// ErrSnapshotNotFound 在存储中尚无文档时返回
var ErrSnapshotNotFound = errors.New("document snapshot not found")

// DocumentStore 描述文档的持久化能力，TrackerService 只依赖该接口
type DocumentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, version int, payload []byte) error
}

// DocumentBackuper 由能够另存旧快照的存储实现
type DocumentBackuper interface {
	Backup(ctx context.Context, payload []byte) error
}

// SnapshotStore 基于 gorm 将整份文档保存为一行 JSON 快照
type SnapshotStore struct {
	db  *gorm.DB
	key string
}

// NewSnapshotStore 构造 SnapshotStore，key 为空时使用默认键
func NewSnapshotStore(gdb *gorm.DB, key string) *SnapshotStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultDocumentKey
	}
	return &SnapshotStore{db: gdb, key: key}
}

// Load 读取快照内容
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	var snapshot db.DocumentSnapshot
	if err := s.db.WithContext(ctx).Where("document_key = ?", s.key).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(snapshot.Payload), nil
}

// Save 幂等写入快照：键已存在时覆盖内容
func (s *SnapshotStore) Save(ctx context.Context, version int, payload []byte) error {
	return s.upsert(ctx, s.key, version, payload)
}

// Backup 将原始内容另存到备份键下，重复调用覆盖上一次的备份
func (s *SnapshotStore) Backup(ctx context.Context, payload []byte) error {
	return s.upsert(ctx, s.key+BackupKeySuffix, 0, payload)
}

func (s *SnapshotStore) upsert(ctx context.Context, key string, version int, payload []byte) error {
	snapshot := db.DocumentSnapshot{
		DocumentKey: key,
		Version:     version,
		Payload:     string(payload),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "updated_at"}),
	}).Create(&snapshot).Error; err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}
