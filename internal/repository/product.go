package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apperr"
	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/db"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mongodb"
)

// ProductRepository operates on the products collection through one connection handle.
//
// Update and delete of an identifier that does not exist (or cannot exist, such as a
// malformed one) succeed without doing anything.
type ProductRepository interface {
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	InsertProduct(ctx context.Context, fields model.ProductFields) (model.Product, error)
	UpdateProductByID(ctx context.Context, id string, fields model.ProductFields) error
	DeleteProductByID(ctx context.Context, id string) error
}

// ProductGateway hands out repositories bound to the process-wide store connection.
type ProductGateway interface {
	// Connect establishes the connection on first use and reuses it afterwards.
	// It fails with apperr.ConnectionErr when the store cannot be reached.
	Connect(ctx context.Context) (ProductRepository, error)
	Close(ctx context.Context) error
}

// NewProductGateway picks the backend from the scheme of cfg.URI. Unknown or empty
// URIs fall through to MongoDB, whose Connect reports the problem on first use.
func NewProductGateway(cfg config.Store) ProductGateway {
	switch scheme(cfg.URI) {
	case "postgres", "postgresql":
		return NewPostgresProductGateway(db.NewConnector(cfg))
	default:
		return NewMongoProductGateway(mongodb.NewConnector(cfg))
	}
}

func scheme(uri string) string {
	s, _, found := strings.Cut(uri, "://")
	if !found {
		return ""
	}
	return strings.ToLower(s)
}

func connectionErr(err error) error {
	return fmt.Errorf("connect: %w", apperr.ConnectionErr.WrapParent(err))
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, apperr.PersistenceErr.WrapParent(err))
}
