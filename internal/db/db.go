package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"riskbot/internal/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Document is one uploaded file.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string    `bun:"id,pk"`
	FileName      string    `bun:"file_name,notnull"`
	Path          string    `bun:"path"`
	ChunkCount    int       `bun:"chunk_count,notnull"`
	HasFindings   bool      `bun:"has_findings,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// ChunkRef maps a vector record back to its document and window position.
type ChunkRef struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`
	RecordID      string `bun:"record_id,pk"`
	DocID         string `bun:"doc_id,notnull"`
	ChunkIndex    int    `bun:"chunk_index,notnull"`
}

// Registry keeps track of which vector records belong to which document.
type Registry struct {
	db *bun.DB
}

func NewDB(sqldb *sql.DB, driver string, debug bool) *bun.DB {
	var db *bun.DB
	if driver == DriverPostgres {
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(dbConfig *config.DatabaseConfig) (*sql.DB, error) {
	switch dbConfig.Driver {
	case DriverPostgres:
		opts := []pgdriver.Option{pgdriver.WithDSN(dbConfig.DSN)}
		if dbConfig.Password != "" {
			opts = append(opts, pgdriver.WithPassword(dbConfig.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	case DriverSQLite, "":
		if dir := filepath.Dir(dbConfig.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create registry folder: %w", err)
			}
		}
		sqldb, err := sql.Open("sqlite", dbConfig.DSN+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite registry: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return sqldb, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", dbConfig.Driver)
	}
}

// OpenRegistry connects, pings and creates the schema.
func OpenRegistry(ctx context.Context, dbConfig *config.DatabaseConfig) (*Registry, error) {
	sqldb, err := ConnectDB(dbConfig)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, dbConfig.Driver, dbConfig.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s registry: %w", dbConfig.Driver, err)
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init registry schema: %w", err)
	}
	log.Debug().Str("driver", dbConfig.Driver).Msg("Registry ready")
	return &Registry{db: db}, nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{(*Document)(nil), (*ChunkRef)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := db.NewCreateIndex().
		Model((*ChunkRef)(nil)).
		Index("document_chunks_doc_id_idx").
		Column("doc_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *Registry) Close() error {
	return r.db.Close()
}

// ReplaceChunks swaps the chunk rows of docID for refs in one transaction.
func (r *Registry) ReplaceChunks(ctx context.Context, docID string, refs []ChunkRef) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ChunkRef)(nil)).Where("doc_id = ?", docID).Exec(ctx); err != nil {
			return fmt.Errorf("delete chunks of %s: %w", docID, err)
		}
		if len(refs) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&refs).Exec(ctx); err != nil {
			return fmt.Errorf("insert chunks of %s: %w", docID, err)
		}
		return nil
	})
}

// ChunkRecordIDs returns the vector record ids of docID ordered by chunk index.
func (r *Registry) ChunkRecordIDs(ctx context.Context, docID string) ([]string, error) {
	var refs []ChunkRef
	err := r.db.NewSelect().
		Model(&refs).
		Where("doc_id = ?", docID).
		Order("chunk_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.RecordID
	}
	return ids, nil
}

// UpsertDocument inserts doc or refreshes the row of an already known id.
func (r *Registry) UpsertDocument(ctx context.Context, doc *Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(doc).
		On("CONFLICT (id) DO UPDATE").
		Set("file_name = EXCLUDED.file_name").
		Set("path = EXCLUDED.path").
		Set("chunk_count = EXCLUDED.chunk_count").
		Set("has_findings = EXCLUDED.has_findings").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *Registry) MarkFindings(ctx context.Context, docID string) error {
	_, err := r.db.NewUpdate().
		Model((*Document)(nil)).
		Set("has_findings = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", docID).
		Exec(ctx)
	return err
}

// GetDocument returns nil when the id is unknown.
func (r *Registry) GetDocument(ctx context.Context, docID string) (*Document, error) {
	doc := new(Document)
	err := r.db.NewSelect().Model(doc).Where("id = ?", docID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// list documents, newest first
func (r *Registry) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := r.db.NewSelect().Model(&docs).Order("created_at DESC").Scan(ctx)
	return docs, err
}

func (r *Registry) DeleteDocument(ctx context.Context, docID string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ChunkRef)(nil)).Where("doc_id = ?", docID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*Document)(nil)).Where("id = ?", docID).Exec(ctx)
		return err
	})
}
