package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/suite"
	tcClickhouse "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"github.com/xloem/vartex/internal/model"
)

const clickhouseImage = "clickhouse/clickhouse-server:25.11"

type fakeMetrics struct {
	observations int
}

func (m *fakeMetrics) Observe(operation string, err error, started time.Time) {
	m.observations++
}

type RepositorySuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	container *tcClickhouse.ClickHouseContainer
	dsn       string
	repo      *Repository
	metrics   *fakeMetrics
	testCtx   context.Context
	testStop  context.CancelFunc
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := tcClickhouse.Run(s.ctx,
		clickhouseImage,
		tcClickhouse.WithUsername("default"),
		tcClickhouse.WithDatabase("default"),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)
	s.dsn = dsn
}

func (s *RepositorySuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *RepositorySuite) SetupTest() {
	s.testCtx, s.testStop = context.WithTimeout(context.Background(), time.Minute)
	s.Require().NoError(applyMigrationsUp(s.dsn))

	s.metrics = &fakeMetrics{}
	repo, err := NewRepository(s.dsn, s.metrics)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositorySuite) TearDownTest() {
	if s.testStop != nil {
		s.testStop()
	}
	s.Require().NoError(applyMigrationsDown(s.dsn))
}

func (s *RepositorySuite) TestInsertAndReadBackBlock() {
	block := model.Block{
		IndepHash:      "HASH1",
		Height:         10,
		PreviousBlock:  "HASH0",
		Timestamp:      time.Unix(1700000000, 0).UTC(),
		Diff:           "123",
		LastRetarget:   1700000000,
		HashListMerkle: "MERKLE",
		WalletListHash: "WALLET",
		RewardPool:     1,
		RewardAddr:     "ADDR",
	}

	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, []model.Block{block}))

	height, err := s.repo.MaxBlockHeight(s.testCtx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(10), height)

	hash, err := s.repo.BlockHash(s.testCtx, 10)
	s.Require().NoError(err)
	s.Require().Equal("HASH1", hash)
	s.Require().Positive(s.metrics.observations)
}

func (s *RepositorySuite) TestDeleteBlocksFromRollsBackFork() {
	blocks := []model.Block{
		{IndepHash: "H9", Height: 9, PreviousBlock: "H8", Timestamp: time.Unix(1, 0).UTC()},
		{IndepHash: "H10", Height: 10, PreviousBlock: "H9", Timestamp: time.Unix(2, 0).UTC()},
	}
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, blocks))
	s.Require().NoError(s.repo.InsertBlockGQLRows(s.testCtx, []model.BlockGQLRow{
		{IndepHash: "H9", Height: 9, Timestamp: blocks[0].Timestamp},
		{IndepHash: "H10", Height: 10, Timestamp: blocks[1].Timestamp},
	}))
	s.Require().NoError(s.repo.InsertBlockHeightsByHash(s.testCtx, []model.BlockHeightByHash{
		{BlockHash: "H9", Height: 9},
		{BlockHash: "H10", Height: 10},
	}))
	s.Require().NoError(s.repo.InsertBlocksByTxID(s.testCtx, []model.BlockByTxID{
		{TxID: "TX9", IndepHash: "H9", Height: 9},
		{TxID: "TX10", IndepHash: "H10", Height: 10},
	}))
	s.Require().NoError(s.repo.InsertTransactions(s.testCtx, []model.TransactionRow{
		{TxID: "TX9", IndepHash: "H9", Height: 9, Timestamp: blocks[0].Timestamp, TagCount: 1},
		{TxID: "TX10", IndepHash: "H10", Height: 10, Timestamp: blocks[1].Timestamp, TagCount: 1},
	}))
	s.Require().NoError(s.repo.InsertTags(s.testCtx, []model.TagRow{
		{TxID: "TX9", TagIndex: 0, Name: "n9", Value: "v9"},
		{TxID: "TX10", TagIndex: 0, Name: "n10", Value: "v10"},
	}))
	s.Require().NoError(s.repo.InsertTxOffsets(s.testCtx, []model.TxOffsetRow{
		{TxID: "TX9", DataSize: 1},
		{TxID: "TX10", DataSize: 1},
	}))
	s.Require().NoError(s.repo.InsertPOAs(s.testCtx, []model.ProofOfAccessRow{
		{IndepHash: "H9", Option: "1", TXPath: "p9", DataPath: "d9", Chunk: "c9"},
		{IndepHash: "H10", Option: "1", TXPath: "p10", DataPath: "d10", Chunk: "c10"},
	}))

	s.Require().NoError(s.repo.DeleteBlocksFrom(s.testCtx, 10))

	height, err := s.repo.MaxBlockHeight(s.testCtx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(9), height)

	s.assertRowCount("block_gql_asc", "height = 10", 0)
	s.assertRowCount("block_gql_desc", "height = 10", 0)
	s.assertRowCount("block_height_by_block_hash", "block_hash = 'H10'", 0)
	s.assertRowCount("block_by_tx_id", "tx_id = 'TX10'", 0)
	s.assertRowCount("transaction", "tx_id = 'TX10'", 0)
	s.assertRowCount("tx_tag", "tx_id = 'TX10'", 0)
	s.assertRowCount("tx_offset", "tx_id = 'TX10'", 0)
	s.assertRowCount("poa", "indep_hash = 'H10'", 0)

	s.assertRowCount("transaction", "tx_id = 'TX9'", 1)
	s.assertRowCount("tx_tag", "tx_id = 'TX9'", 1)
	s.assertRowCount("tx_offset", "tx_id = 'TX9'", 1)
	s.assertRowCount("poa", "indep_hash = 'H9'", 1)
}

func (s *RepositorySuite) TestStreamBlockHashesVisitsEveryRow() {
	blocks := []model.Block{
		{IndepHash: "H1", Height: 1, Timestamp: time.Unix(1, 0).UTC()},
		{IndepHash: "H2", Height: 2, Timestamp: time.Unix(2, 0).UTC()},
	}
	s.Require().NoError(s.repo.InsertBlocks(s.testCtx, blocks))

	got := map[uint64]string{}
	s.Require().NoError(s.repo.StreamBlockHashes(s.testCtx, func(height uint64, hash string) {
		got[height] = hash
	}))

	s.Require().Equal(map[uint64]string{1: "H1", 2: "H2"}, got)
}

func (s *RepositorySuite) assertRowCount(table, where string, want int) {
	query := fmt.Sprintf(`SELECT count() FROM %s WHERE %s`, table, where)
	rows, err := s.repo.conn.Query(s.testCtx, query)
	s.Require().NoError(err)
	defer rows.Close()

	s.Require().True(rows.Next())
	var got uint64
	s.Require().NoError(rows.Scan(&got))
	s.Require().Equal(uint64(want), got, "table %s where %s", table, where)
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working dir: %w", err)
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", fmt.Errorf("go.mod not found from %s", dir)
		}
		dir = next
	}
}

func applyMigrationsUp(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = closeMigrator(m) }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func applyMigrationsDown(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = closeMigrator(m) }()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	root, err := moduleRoot()
	if err != nil {
		return nil, err
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.Join(root, "migrations", "clickhouse"))
	m, err := migrate.New(sourceURL, withMultiStatement(dsn))
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

func withMultiStatement(dsn string) string {
	if strings.Contains(dsn, "x-multi-statement=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + "x-multi-statement=true"
}

func closeMigrator(m *migrate.Migrate) error {
	if m == nil {
		return nil
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migrator: source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migrator: database: %w", dbErr)
	}
	return nil
}
