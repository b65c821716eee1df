// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/gocql/gocql"
)

// CassandraConfig holds cluster connection settings.
type CassandraConfig struct {
	Hosts       []string
	Keyspace    string
	Consistency string // ONE, QUORUM, LOCAL_QUORUM, ...
	Timeout     time.Duration
	Username    string
	Password    string
}

// CassandraStore denormalises each record into a guild-partitioned table
// clustered by end time and a (guild, player)-partitioned table.
type CassandraStore struct {
	session  *gocql.Session
	keyspace string
}

// NewCassandraStore connects to the cluster and creates the keyspace and
// tables when missing.
func NewCassandraStore(cfg CassandraConfig) (*CassandraStore, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("cassandra: no hosts configured")
	}
	if cfg.Keyspace == "" {
		cfg.Keyspace = "avalon"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Consistency = parseConsistency(cfg.Consistency)
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	cluster.NumConns = 2
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Cassandra session: %w", err)
	}
	s := &CassandraStore{session: session, keyspace: cfg.Keyspace}
	if err := s.initializeSchema(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *CassandraStore) initializeSchema() error {
	stmts := []string{
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
			WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, s.keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.games_by_guild (
			guild_id text,
			ended_at timestamp,
			id text,
			payload text,
			PRIMARY KEY ((guild_id), ended_at, id)
		) WITH CLUSTERING ORDER BY (ended_at DESC, id DESC)`, s.keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.games_by_player (
			guild_id text,
			user_id text,
			id text,
			payload text,
			PRIMARY KEY ((guild_id, user_id), id)
		)`, s.keyspace),
	}
	for _, stmt := range stmts {
		if err := s.session.Query(stmt).Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *CassandraStore) SaveGame(ctx context.Context, rec GameRecord) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	payload := string(buf)

	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(fmt.Sprintf(`INSERT INTO %s.games_by_guild (guild_id, ended_at, id, payload) VALUES (?, ?, ?, ?)`, s.keyspace),
		rec.GuildID, rec.EndedAt, rec.ID, payload)
	for _, p := range rec.Players {
		batch.Query(fmt.Sprintf(`INSERT INTO %s.games_by_player (guild_id, user_id, id, payload) VALUES (?, ?, ?, ?)`, s.keyspace),
			rec.GuildID, string(p.UserID), rec.ID, payload)
	}
	if err := s.session.ExecuteBatch(batch); err != nil {
		return "", fmt.Errorf("cassandra save game: %w", err)
	}
	return rec.ID, nil
}

func (s *CassandraStore) History(ctx context.Context, guildID string, limit int) ([]GameRecord, error) {
	iter := s.session.Query(fmt.Sprintf(`SELECT payload FROM %s.games_by_guild WHERE guild_id = ? LIMIT ?`, s.keyspace),
		guildID, NormalizeLimit(limit)).WithContext(ctx).Iter()
	return collectPayloads(iter)
}

func (s *CassandraStore) PlayerStats(ctx context.Context, player model.PlayerID, guildID string) (PlayerStats, error) {
	iter := s.session.Query(fmt.Sprintf(`SELECT payload FROM %s.games_by_player WHERE guild_id = ? AND user_id = ?`, s.keyspace),
		guildID, string(player)).WithContext(ctx).Iter()
	records, err := collectPayloads(iter)
	if err != nil {
		return PlayerStats{}, err
	}
	return Tally(participationsFor(records, player)), nil
}

func collectPayloads(iter *gocql.Iter) ([]GameRecord, error) {
	out := []GameRecord{}
	var payload string
	for iter.Scan(&payload) {
		var rec GameRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			_ = iter.Close()
			return nil, fmt.Errorf("decode game payload: %w", err)
		}
		out = append(out, rec)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CassandraStore) Ping(ctx context.Context) error {
	return s.session.Query(`SELECT release_version FROM system.local`).WithContext(ctx).Exec()
}

func (s *CassandraStore) Close() error {
	s.session.Close()
	return nil
}

func parseConsistency(level string) gocql.Consistency {
	switch strings.ToUpper(level) {
	case "ONE":
		return gocql.One
	case "TWO":
		return gocql.Two
	case "THREE":
		return gocql.Three
	case "ALL":
		return gocql.All
	case "LOCAL_QUORUM":
		return gocql.LocalQuorum
	case "EACH_QUORUM":
		return gocql.EachQuorum
	case "LOCAL_ONE":
		return gocql.LocalOne
	default:
		return gocql.Quorum
	}
}
