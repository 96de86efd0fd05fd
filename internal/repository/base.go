package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crud holds the operations every entity repository shares.
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// createKeepingFlag inserts entity and writes flag back when it is false. gorm
// replaces false with the column default for bools tagged default:true.
func (r crud[T]) createKeepingFlag(ctx context.Context, entity *T, column string, flag *bool) error {
	want := *flag
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		if want {
			return nil
		}
		if err := tx.Model(entity).UpdateColumn(column, false).Error; err != nil {
			return err
		}
		*flag = false
		return nil
	})
}

func (r crud[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// UpdateColumns writes only the given columns of entity, zero values included.
func (r crud[T]) UpdateColumns(ctx context.Context, entity *T, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(entity).Select(columns).Omit(clause.Associations).Updates(entity).Error
}

func (r crud[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r crud[T]) first(ctx context.Context, id uint, preload ...string) (*T, error) {
	var entity T
	q := r.db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&entity, id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Period bounds a created_at or date filter. Zero ends are open.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) apply(q *gorm.DB, column string) *gorm.DB {
	if !p.From.IsZero() {
		q = q.Where(column+" >= ?", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where(column+" <= ?", p.To)
	}
	return q
}
