package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// DefaultOptionsTable is the options table name without prefix.
const DefaultOptionsTable = "options"

// BunRepository stores the record as a JSON value in the options table.
type BunRepository struct {
	db    *bun.DB
	table string
	now   func() time.Time
}

// NewBunRepository uses table as the options table name. An empty table
// falls back to DefaultOptionsTable.
func NewBunRepository(db *bun.DB, table string) *BunRepository {
	if table == "" {
		table = DefaultOptionsTable
	}
	return &BunRepository{db: db, table: table, now: time.Now}
}

type optionModel struct {
	bun.BaseModel `bun:"table:options"`

	Name      string    `bun:"option_name,pk"`
	Value     string    `bun:"option_value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// EnsureSchema creates the options table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("settings: bun repository requires a database")
	}
	_, err := r.db.NewCreateTable().
		Model((*optionModel)(nil)).
		ModelTableExpr("?", bun.Ident(r.table)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *BunRepository) Load(ctx context.Context) (Record, error) {
	if r.db == nil {
		return nil, errors.New("settings: bun repository requires a database")
	}
	var model optionModel
	err := r.db.NewSelect().
		Model(&model).
		ModelTableExpr("?", bun.Ident(r.table)).
		Where("option_name = ?", ProvidersOption).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: load providers option: %w", err)
	}

	record := Record{}
	if model.Value == "" {
		return record, nil
	}
	if err := json.Unmarshal([]byte(model.Value), &record); err != nil {
		return nil, fmt.Errorf("settings: decode providers option: %w", err)
	}
	return record.Clone(), nil
}

func (r *BunRepository) Save(ctx context.Context, record Record) error {
	if r.db == nil {
		return errors.New("settings: bun repository requires a database")
	}
	if record == nil {
		record = Record{}
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("settings: encode providers option: %w", err)
	}

	model := optionModel{
		Name:      ProvidersOption,
		Value:     string(payload),
		UpdatedAt: r.now().UTC(),
	}
	_, err = r.db.NewInsert().
		Model(&model).
		ModelTableExpr("?", bun.Ident(r.table)).
		On("CONFLICT (option_name) DO UPDATE").
		Set("option_value = EXCLUDED.option_value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("settings: save providers option: %w", err)
	}
	return nil
}
