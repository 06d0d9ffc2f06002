package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adlio/schema"
	"github.com/eisenwinter/extrxx/config"
	"github.com/eisenwinter/extrxx/db/tables"
	"github.com/eisenwinter/extrxx/tokens"
	"github.com/jmoiron/sqlx"

	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
	fq "github.com/eisenwinter/fiql-sql-adapter"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrations embed.FS

var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = tokens.ErrNotFound
	// ErrNotUpdated indicates a conditional update matched no row
	ErrNotUpdated = tokens.ErrNotUpdated
	// ErrAlreadyExists indicates the entity already exists within the store
	ErrAlreadyExists = tokens.ErrAlreadyExists
)

var (
	_ tokens.RecordStore  = (*DataStore)(nil)
	_ tokens.UserRegistry = (*DataStore)(nil)
)

type DataStore struct {
	log      *zap.Logger
	db       *sqlx.DB
	sb       sq.StatementBuilderType
	adapters map[string]*fq.Adapter
	migrate  func() error
}

func (d *DataStore) Close() {
	d.db.Close()
}

// EnsureUsable applies all pending migrations
func (d *DataStore) EnsureUsable() error {
	if d.migrate != nil {
		return d.migrate()
	}
	return nil
}

// Ping checks the connection, used by the health endpoint
func (d *DataStore) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DataStore) exists(
	ctx context.Context,
	table string,
	pred interface{},
) (bool, error) {
	var result bool
	q := d.sb.Select("1").Prefix("SELECT EXISTS (").From(table).Where(pred).Suffix(")")
	err := d.getStatement(ctx, &result, q, nil)
	if err != nil {
		return false, err
	}
	return result, nil
}

func (d *DataStore) getStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
	tx *sqlx.Tx,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return err
	}
	if tx != nil {
		err = tx.GetContext(ctx, dest, q, a...)
	} else {
		err = d.db.GetContext(ctx, dest, q, a...)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (d *DataStore) selectStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
	tx *sqlx.Tx,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return err
	}
	if tx != nil {
		return tx.SelectContext(ctx, dest, q, a...)
	}
	return d.db.SelectContext(ctx, dest, q, a...)
}

func (d *DataStore) deleteStatement(
	ctx context.Context,
	statement sq.DeleteBuilder,
	tx *sqlx.Tx,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		return tx.ExecContext(ctx, q, a...)
	}
	return d.db.ExecContext(ctx, q, a...)
}

func (d *DataStore) insertStatement(
	ctx context.Context,
	statement sq.InsertBuilder,
	tx *sqlx.Tx,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		return tx.ExecContext(ctx, q, a...)
	}
	return d.db.ExecContext(ctx, q, a...)
}

func (d *DataStore) updateStatement(
	ctx context.Context,
	statement sq.UpdateBuilder,
	tx *sqlx.Tx,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		return tx.ExecContext(ctx, q, a...)
	}
	return d.db.ExecContext(ctx, q, a...)
}

// conditionalResult tells a missing row from one whose condition no longer
// holds after a conditional update matched nothing
func (d *DataStore) conditionalResult(ctx context.Context, table string, pred interface{}) error {
	found, err := d.exists(ctx, table, pred)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return ErrNotUpdated
}

// affected returns the number of rows touched by a statement
func affected(rs sql.Result, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	n, err := rs.RowsAffected()
	return int(n), err
}

func NewStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSqliteStore(logger.Named("database"), cfg)
	case "mysql":
		return NewMysqlStore(logger.Named("database"), cfg)
	case "pg":
		return NewPostgresStore(logger.Named("database"), cfg)
	default:
		return nil, errors.New("unknown datastore")
	}
}

func NewMysqlStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	adaptedDsn := cfg.DSN
	if strings.Contains(adaptedDsn, "?") {
		adaptedDsn += "&parseTime=true"
	} else {
		adaptedDsn += "?parseTime=true"
	}
	db, err := sqlx.Open("mysql", adaptedDsn)
	if err != nil {
		logger.Error("Could open database", zap.Error(err))
		return nil, err
	}

	migrate := func() error {
		migrationDsn := cfg.DSN
		if strings.Contains(migrationDsn, "?") {
			migrationDsn += "&multiStatements=true"
		} else {
			migrationDsn += "?multiStatements=true"
		}
		migdb, err := sqlx.Open("mysql", migrationDsn)
		if err != nil {
			logger.Error("Could open database", zap.Error(err))
			return err
		}
		defer migdb.Close()

		migrator := schema.NewMigrator(schema.WithDialect(schema.MySQL))
		mig, err := schema.FSMigrations(migrations, "migrations/mysql/*.sql")
		if err != nil {
			return err
		}
		return migrator.Apply(
			migdb,
			mig,
		)
	}

	return &DataStore{
		log:      logger,
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Question),
		migrate:  migrate,
		adapters: createMapping(fq.WithDialectMariaDB()),
	}, nil

}

func NewPostgresStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	db, err := sqlx.Open("pgx", cfg.DSN)
	if err != nil {
		logger.Error("Could open database", zap.Error(err))
		return nil, err
	}

	migrate := func() error {
		database := db.DB
		migrator := schema.NewMigrator(schema.WithDialect(schema.Postgres))
		mig, err := schema.FSMigrations(migrations, "migrations/pg/*.sql")
		if err != nil {
			return err
		}
		return migrator.Apply(
			database,
			mig,
		)
	}

	return &DataStore{
		log:      logger,
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		migrate:  migrate,
		adapters: createMapping(fq.WithDialectPostgres()),
	}, nil

}

func NewSqliteStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	db, err := sqlx.Open("sqlite3", cfg.DSN)
	if err != nil {
		logger.Error("Could open database", zap.Error(err))
		return nil, err
	}
	// sqlite serializes writers anyway, a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// check if dsn contains a directory which needs to be created
	split := strings.Split(cfg.DSN, "?")
	if len(split) >= 1 && strings.ContainsRune(split[0], os.PathSeparator) {
		striped := strings.TrimPrefix(split[0], "file:")
		dir := filepath.Dir(striped)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			logger.Warn("Trying to create directory", zap.String("directory", dir))
			err = os.MkdirAll(dir, 0750)
			if err != nil {
				logger.Error("Could open database", zap.Error(err))
				return nil, err
			}
		}

	}

	migrate := func() error {
		database := db.DB
		migrator := schema.NewMigrator(schema.WithDialect(schema.SQLite))
		mig, err := schema.FSMigrations(migrations, "migrations/sqlite/*.sql")
		if err != nil {
			return err
		}
		return migrator.Apply(
			database,
			mig,
		)
	}

	return &DataStore{
		log:      logger,
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Question),
		migrate:  migrate,
		adapters: createMapping(fq.WithDialectSQLite()),
	}, nil

}

func createMapping(options ...func(*fq.Adapter)) map[string]*fq.Adapter {
	adapters := make(map[string]*fq.Adapter)
	adapters["token_records"] = fq.NewAdapterFor(tables.TokenRecordQuery{}, options...)
	adapters["users"] = fq.NewAdapterFor(tables.UserQuery{}, options...)
	return adapters
}

func (d *DataStore) Auditor() Auditor {
	return &auditor{
		db: d.db,
		sb: d.sb,
	}
}
