package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "playlist:"
	indexKey  = "playlists:index"
)

// ErrNotFound is returned when a playlist id is not in the store.
var ErrNotFound = errors.New("playlist not found")

// Store keeps each playlist as a JSON value under playlist:<id>, with a set
// of known ids for listing.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Save(ctx context.Context, pl *Playlist) error {
	data, err := json.Marshal(pl)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyPrefix+pl.ID, data, 0)
	pipe.SAdd(ctx, indexKey, pl.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*Playlist, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var pl Playlist
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("decode playlist %s: %w", id, err)
	}
	return &pl, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	removed, err := s.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return s.rdb.SRem(ctx, indexKey, id).Err()
}

// List returns every stored playlist. Ids whose value vanished between the
// set read and the get are skipped.
func (s *Store) List(ctx context.Context) ([]*Playlist, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	playlists := make([]*Playlist, 0, len(ids))
	for _, id := range ids {
		pl, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, pl)
	}
	return playlists, nil
}
