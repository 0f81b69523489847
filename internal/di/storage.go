package di

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-formbridge/internal/runtimeconfig"
)

// OpenDatabase opens the bun database described by cfg.Database. SQLite
// treats the database name as a file path.
func OpenDatabase(cfg runtimeconfig.Config) (*bun.DB, error) {
	db := cfg.Database
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case "postgres":
		sqldb, err := sql.Open("postgres", PostgresDSN(db))
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case "sqlite", "":
		sqldb, err := sql.Open("sqlite3", "file:"+db.Name+"?cache=shared&_fk=1")
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
	return nil, fmt.Errorf("di: unsupported database driver %q", db.Driver)
}

// PostgresDSN builds a lib/pq connection URL. A host of the form
// "host:port" is kept as is.
func PostgresDSN(db runtimeconfig.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   strings.TrimSpace(db.Host),
		Path:   "/" + strings.TrimSpace(db.Name),
	}
	if db.User != "" {
		if db.Password != "" {
			u.User = url.UserPassword(db.User, db.Password)
		} else {
			u.User = url.User(db.User)
		}
	}
	query := url.Values{}
	query.Set("sslmode", "disable")
	u.RawQuery = query.Encode()
	return u.String()
}

// ConnectMongo connects to cfg.Storage.MongoURI and returns the configured
// database. Callers disconnect the client on shutdown.
func ConnectMongo(ctx context.Context, cfg runtimeconfig.Config) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Storage.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("di: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("di: ping mongo: %w", err)
	}
	name := strings.TrimSpace(cfg.Storage.MongoDatabase)
	if name == "" {
		name = "formbridge"
	}
	return client, client.Database(name), nil
}
