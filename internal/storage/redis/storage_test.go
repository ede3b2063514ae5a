package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.Profile = "alice"

	s.storage = NewWithClient(s.client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestLoadMissingKey() {
	_, err := s.storage.Load(s.ctx, storage.KeyPlayerID)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestSaveAndLoad() {
	s.Require().NoError(s.storage.Save(s.ctx, storage.KeyPlayerID, "player_1_abc"))

	v, err := s.storage.Load(s.ctx, storage.KeyPlayerID)
	s.Require().NoError(err)
	s.Equal("player_1_abc", v)
}

func (s *StorageSuite) TestKeyLayout() {
	_ = s.storage.Save(s.ctx, storage.KeyPlayerID, "player_1_abc")

	s.True(s.mini.Exists("minibeans:profile:alice:player_id"))
}

func (s *StorageSuite) TestKeysNeverExpire() {
	_ = s.storage.Save(s.ctx, storage.KeyPlayerID, "player_1_abc")
	_ = s.storage.Save(s.ctx, storage.KeyAdminToken, "tok")

	s.Equal(time.Duration(0), s.mini.TTL("minibeans:profile:alice:player_id"))
	s.Equal(time.Duration(0), s.mini.TTL("minibeans:profile:alice:admin_token"))

	s.mini.FastForward(48 * time.Hour)

	tok, err := s.storage.Load(s.ctx, storage.KeyAdminToken)
	s.Require().NoError(err)
	s.Equal("tok", tok)
}

func (s *StorageSuite) TestProfilesAreIsolated() {
	_ = s.storage.Save(s.ctx, storage.KeyPlayerID, "alice-id")

	bobCfg := DefaultConfig()
	bobCfg.Profile = "bob"
	bob := NewWithClient(s.client, bobCfg)

	_, err := bob.Load(s.ctx, storage.KeyPlayerID)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestClear() {
	_ = s.storage.Save(s.ctx, storage.KeyAdminToken, "tok")

	s.Require().NoError(s.storage.Clear(s.ctx, storage.KeyAdminToken))

	_, err := s.storage.Load(s.ctx, storage.KeyAdminToken)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not-a-url"})
	s.Error(err)
}

func (s *StorageSuite) TestNewConnectsToServer() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	st, err := New(cfg)
	s.Require().NoError(err)
	defer func() { _ = st.Close() }()

	s.Require().NoError(st.Save(s.ctx, storage.KeyPlayerID, "x"))
	s.True(s.mini.Exists("minibeans:profile:default:player_id"))
}
