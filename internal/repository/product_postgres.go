package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/db"
)

type postgresProductGateway struct {
	conn *db.Connector
}

// NewPostgresProductGateway stores products as JSONB documents in the products table.
func NewPostgresProductGateway(conn *db.Connector) ProductGateway {
	return &postgresProductGateway{conn: conn}
}

func (g *postgresProductGateway) Connect(ctx context.Context) (ProductRepository, error) {
	client, err := g.conn.Connect(ctx)
	if err != nil {
		return nil, connectionErr(err)
	}

	return NewPostgresProductRepository(client), nil
}

func (g *postgresProductGateway) Close(ctx context.Context) error {
	return g.conn.Close(ctx)
}

type postgresProductRepository struct {
	db db.DB
}

func NewPostgresProductRepository(db db.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

func (r postgresProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, doc FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, persistenceErr("query products", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, persistenceErr("scan product", err)
		}

		var fields model.ProductFields
		if err := json.Unmarshal(doc, &fields); err != nil {
			return nil, persistenceErr(fmt.Sprintf("decode product %s", id), err)
		}

		products = append(products, model.Product{ID: id, ProductFields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, persistenceErr("iterate products", err)
	}

	return products, nil
}

func (r postgresProductRepository) InsertProduct(ctx context.Context, fields model.ProductFields) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	doc, err := json.Marshal(fields)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal product: %w", err)
	}

	if _, err := r.db.Exec(ctx, `INSERT INTO products (id, doc) VALUES ($1, $2)`, id.String(), doc); err != nil {
		return model.Product{}, persistenceErr("insert product", err)
	}

	return model.Product{ID: id.String(), ProductFields: fields}, nil
}

func (r postgresProductRepository) UpdateProductByID(ctx context.Context, id string, fields model.ProductFields) error {
	doc, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	// Only the business keys are overwritten; the row id never changes.
	if _, err := r.db.Exec(ctx, `UPDATE products SET doc = doc || $2::jsonb WHERE id = $1`, id, doc); err != nil {
		return persistenceErr(fmt.Sprintf("update product %s", id), err)
	}

	return nil
}

func (r postgresProductRepository) DeleteProductByID(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return persistenceErr(fmt.Sprintf("delete product %s", id), err)
	}

	return nil
}
