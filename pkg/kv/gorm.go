package kv

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(191)"`
	Value     Document  `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Document is a JSON column value. sqlite gives JSON columns numeric
// affinity, so a scalar document such as 7 comes back as an integer or a
// real and is turned into its JSON text here.
type Document datatypes.JSON

func (d *Document) Scan(value any) error {
	switch v := value.(type) {
	case int64:
		*d = Document(strconv.FormatInt(v, 10))
		return nil
	case float64:
		*d = Document(strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	case bool:
		*d = Document(strconv.FormatBool(v))
		return nil
	}
	return (*datatypes.JSON)(d).Scan(value)
}

func (d Document) Value() (driver.Value, error) {
	return datatypes.JSON(d).Value()
}

func (Document) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

func (Document) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON{}.GormDBDataType(db, field)
}

func (d Document) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return datatypes.JSON(d).GormValue(ctx, db)
}

func (Entry) TableName() string { return "kv_entries" }

// Gorm stores values as JSON rows. Every value written through it must be a
// JSON document.
type Gorm struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates the kv_entries table when missing.
func (g *Gorm) Migrate(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(&Entry{})
}

func (g *Gorm) Load(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := g.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (g *Gorm) Save(ctx context.Context, key string, value []byte) error {
	return upsert(g.db.WithContext(ctx), key, value, g.now())
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

func (g *Gorm) Batch(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	now := g.now()
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if op.Delete {
				if err := tx.Where("entry_key = ?", op.Key).Delete(&Entry{}).Error; err != nil {
					return fmt.Errorf("delete %s: %w", op.Key, err)
				}
				continue
			}
			if err := upsert(tx, op.Key, op.Value, now); err != nil {
				return fmt.Errorf("save %s: %w", op.Key, err)
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, key string, value []byte, now time.Time) error {
	entry := Entry{Key: key, Value: Document(value), UpdatedAt: now}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

var _ Backend = (*Gorm)(nil)
