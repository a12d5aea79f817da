package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mirror persists store snapshots under a namespace key. Load returns
// (nil, nil) when nothing has been written yet.
type Mirror interface {
	Save(ctx context.Context, namespace string, data []byte) error
	Load(ctx context.Context, namespace string) ([]byte, error)
}

// MemoryMirror keeps snapshots in process memory. Used in tests and
// when running without Redis or Postgres.
type MemoryMirror struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{data: map[string][]byte{}}
}

func (m *MemoryMirror) Save(_ context.Context, namespace string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[namespace] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryMirror) Load(_ context.Context, namespace string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[namespace], nil
}

type RedisMirror struct {
	RDB *redis.Client
}

func NewRedisMirror(rdb *redis.Client) *RedisMirror {
	return &RedisMirror{RDB: rdb}
}

func (m *RedisMirror) Save(ctx context.Context, namespace string, data []byte) error {
	return m.RDB.Set(ctx, namespace, data, 0).Err()
}

func (m *RedisMirror) Load(ctx context.Context, namespace string) ([]byte, error) {
	data, err := m.RDB.Get(ctx, namespace).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// StoreSnapshot is the Postgres row backing a namespace when the
// mirror runs on the relational database instead of Redis.
type StoreSnapshot struct {
	Name      string         `gorm:"primaryKey;type:varchar(100)"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

type GormMirror struct {
	DB *gorm.DB
}

func NewGormMirror(db *gorm.DB) *GormMirror {
	return &GormMirror{DB: db}
}

func (m *GormMirror) Save(ctx context.Context, namespace string, data []byte) error {
	snap := StoreSnapshot{Name: namespace, Data: datatypes.JSON(data)}
	return m.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&snap).Error
}

func (m *GormMirror) Load(ctx context.Context, namespace string) ([]byte, error) {
	var snap StoreSnapshot
	err := m.DB.WithContext(ctx).First(&snap, "name = ?", namespace).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(snap.Data), nil
}
