package carts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/dbx"
	"github.com/gogamastore/storefront/internal/server/models"
)

const cartColumns = `id, user_id, items, total, version, created_at, updated_at`

// itemRecord is the JSONB shape of a cart line.
type itemRecord struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := r.upsert(ctx, r.db, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Mutate(ctx context.Context, userID string, create bool, fn MutateFunc) (*models.Cart, error) {
	var (
		out   *models.Cart
		fnErr error
	)

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var (
			c   *models.Cart
			err error
		)
		// The upsert's DO UPDATE locks the row just like FOR UPDATE.
		if create {
			c, err = r.upsert(ctx, tx, userID)
		} else {
			c, err = r.selectForUpdate(ctx, tx, userID)
		}
		if err != nil {
			return err
		}

		changed, err := fn(c)
		if err != nil {
			fnErr = err
			return err
		}
		if changed {
			if err := r.update(ctx, tx, c); err != nil {
				return err
			}
		}
		out = c
		return nil
	})
	switch {
	case err == nil:
		return out, nil
	case fnErr != nil:
		return nil, fnErr
	case errors.Is(err, common.ErrorNotFound):
		return nil, err
	case dbx.IsNumericOverflow(err):
		return nil, fmt.Errorf("%w: cart total out of range", common.ErrValidation)
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

// upsert creates the cart if absent and returns the stored row.
func (r *PostgresRepository) upsert(ctx context.Context, db dbx.DBTX, userID string) (*models.Cart, error) {
	query :=
		`INSERT INTO carts (id, user_id, items, total, version, created_at, updated_at)
		 VALUES ($1, $2, '[]'::jsonb, 0, 0, $3, $3)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING ` + cartColumns

	return scanCart(db.QueryRowContext(ctx, query, uuid.NewString(), userID, r.now().UTC()))
}

func (r *PostgresRepository) selectForUpdate(ctx context.Context, tx dbx.DBTX, userID string) (*models.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 FOR UPDATE`

	c, err := scanCart(tx.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return c, err
}

func (r *PostgresRepository) update(ctx context.Context, tx dbx.DBTX, c *models.Cart) error {
	items, err := encodeItems(c.Items)
	if err != nil {
		return err
	}

	query :=
		`UPDATE carts SET items = $2, total = $3, version = version + 1, updated_at = $4
		 WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, c.ID, items, c.Total, c.UpdatedAt); err != nil {
		return err
	}
	c.Version++
	return nil
}

func scanCart(row *sql.Row) (*models.Cart, error) {
	var (
		c     models.Cart
		items []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &items, &c.Total, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &c, nil
}

func encodeItems(items []models.CartItem) ([]byte, error) {
	recs := make([]itemRecord, 0, len(items))
	for _, it := range items {
		recs = append(recs, itemRecord(it))
	}
	return json.Marshal(recs)
}

func decodeItems(b []byte) ([]models.CartItem, error) {
	var recs []itemRecord
	if len(b) > 0 {
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
	}
	items := make([]models.CartItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, models.CartItem(r))
	}
	return items, nil
}
