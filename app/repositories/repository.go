// Package repositories persists the shop models with gorm.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

type txKey struct{}

// DB is the shared handle repositories read from. A transaction opened
// with Exec travels in the context, so every repository call made with
// that context joins it.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Exec runs fn inside one database transaction.
func (d *DB) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// crud implements the operations every model shares.
type crud[T any] struct {
	db    *DB
	table string
}

// FindByID loads one row. Ids start at 1, so 0 is reported as not found
// without a query.
func (c crud[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, c.wrap("find", ErrNotFound)
	}
	var m T
	if err := c.db.conn(ctx).First(&m, id).Error; err != nil {
		return nil, c.wrap("find", err)
	}
	return &m, nil
}

// All returns every row ordered by id.
func (c crud[T]) All(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := c.db.conn(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, c.wrap("list", err)
	}
	return out, nil
}

func (c crud[T]) Create(ctx context.Context, m *T) error {
	return c.wrap("create", c.db.conn(ctx).Create(m).Error)
}

// Save writes every column of m.
func (c crud[T]) Save(ctx context.Context, m *T) error {
	return c.wrap("save", c.db.conn(ctx).Save(m).Error)
}

// Replace overwrites every column of the row with id, including zero
// values. Unlike Save it never inserts: a missing row is ErrNotFound.
func (c crud[T]) Replace(ctx context.Context, id uint, m *T) error {
	if id == 0 {
		return c.wrap("replace", ErrNotFound)
	}
	res := c.db.conn(ctx).Model(new(T)).Where("id = ?", id).Select("*").Updates(m)
	if res.Error != nil {
		return c.wrap("replace", res.Error)
	}
	if res.RowsAffected == 0 {
		return c.wrap("replace", ErrNotFound)
	}
	return nil
}

// Delete removes the row with id, returning ErrNotFound if none matched.
func (c crud[T]) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return c.wrap("delete", ErrNotFound)
	}
	var m T
	res := c.db.conn(ctx).Delete(&m, id)
	if res.Error != nil {
		return c.wrap("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return c.wrap("delete", ErrNotFound)
	}
	return nil
}

// wrap maps gorm errors onto the package sentinels and adds context.
func (c crud[T]) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		err = ErrDuplicate
	}
	return fmt.Errorf("%s: %s: %w", c.table, op, err)
}
