package db

import "gorm.io/gorm"

// DocumentSnapshot 保存整份习惯文档的 JSON 快照
// DocumentKey 区分不同文档（默认只有一份），采用唯一索引保证写入幂等
// Version 冗余记录文档结构版本，便于排查
type DocumentSnapshot struct {
	gorm.Model
	DocumentKey string `gorm:"size:64;uniqueIndex"`
	Version     int
	Payload     string `gorm:"type:text"`
}

// TableName 固定表名
func (DocumentSnapshot) TableName() string {
	return "document_snapshots"
}
