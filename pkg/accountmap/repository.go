package accountmap

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"buktitf/models"
)

// Repository persists learned pairs across restarts.
type Repository interface {
	All(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, name, account string) error
}

// GormRepository stores pairs in the account_mappings table.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the account_mappings table.
func (r *GormRepository) Migrate() error {
	if err := r.db.AutoMigrate(&models.AccountMapping{}); err != nil {
		return fmt.Errorf("migrate account_mappings: %w", err)
	}
	return nil
}

func (r *GormRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []models.AccountMapping
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list account mappings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Account
	}
	return out, nil
}

func (r *GormRepository) Save(ctx context.Context, name, account string) error {
	row := models.AccountMapping{Name: name, Account: account}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"account", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save account mapping: %w", err)
	}
	return nil
}

const mappingBucket = "account_mappings"

// BoltRepository keeps pairs in a local bbolt file, for deployments without Postgres.
type BoltRepository struct {
	db *bbolt.DB
}

// OpenBoltRepository opens (or creates) the bbolt file at path.
func OpenBoltRepository(path string) (*BoltRepository, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(mappingBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltRepository{db: db}, nil
}

func (b *BoltRepository) All(_ context.Context) (map[string]string, error) {
	out := make(map[string]string)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(mappingBucket)).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list account mappings: %w", err)
	}
	return out, nil
}

func (b *BoltRepository) Save(_ context.Context, name, account string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(mappingBucket)).Put([]byte(name), []byte(account))
	})
}

func (b *BoltRepository) Close() error {
	return b.db.Close()
}
