package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/betbot/matchscreener/pkg/logger"
)

// BadgerService 基于 Badger 的持久化服务
// 和 JSONFileService 实现同一个 Service 接口，由配置选择后端
type BadgerService struct {
	db *badger.DB
}

// OpenBadger 打开（或创建）Badger 数据库
func OpenBadger(path string) (*BadgerService, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("persistence: badger path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerService{db: db}, nil
}

// Close 关闭数据库
func (s *BadgerService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewStore 创建新的存储
func (s *BadgerService) NewStore(prefix, id, tag string) Store {
	key := fmt.Sprintf("%s:%s:%s", prefix, id, tag)
	return &badgerStore{
		service: s,
		key:     []byte(key),
	}
}

type badgerStore struct {
	service *BadgerService
	key     []byte
}

// Save 保存数据（JSON 序列化后整体写入单个 key）
func (s *badgerStore) Save(data interface{}) error {
	logger.Debugf("[persistence] badger Save: key=%s", s.key)
	if s.service == nil || s.service.db == nil {
		return errors.New("persistence: badger not opened")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.service.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, b)
	})
}

// Load 加载数据
func (s *badgerStore) Load(data interface{}) error {
	logger.Debugf("[persistence] badger Load: key=%s", s.key)
	if s.service == nil || s.service.db == nil {
		return errors.New("persistence: badger not opened")
	}
	var raw []byte
	err := s.service.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotExists
		}
		return err
	}
	if len(raw) == 0 {
		return ErrNotExists
	}
	return json.Unmarshal(raw, data)
}
