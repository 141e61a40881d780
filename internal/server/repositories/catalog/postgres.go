package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/dbx"
	"github.com/gogamastore/storefront/internal/server/models"
)

const productColumns = `id, name, description, price, image, category, stock, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, name LIMIT $1`
	return r.queryProducts(ctx, query, MaxRows)
}

func (r *PostgresRepository) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at, name LIMIT $2`
	return r.queryProducts(ctx, query, category, MaxRows)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	// Ids are UUIDs; anything else cannot match and would only make
	// PostgreSQL reject the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p := models.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, image, created_at FROM categories ORDER BY created_at, name LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, MaxRows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) EnsureCategory(ctx context.Context, c *models.Category) (bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO categories (id, name, image)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Image)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) EnsureProduct(ctx context.Context, p *models.Product) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO products (id, name, description, price, image, category, stock)
		 SELECT $1::uuid, $2::text, $3::text, $4::numeric, $5::text, $6::text, $7::integer
		 WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $2::text)`

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.Stock)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner, p *models.Product) error {
	return s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.Stock, &p.CreatedAt)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
