package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mongodb"
)

const productCollection = "products"

type productDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	model.ProductFields `bson:",inline"`
}

func (d productDocument) toModel() model.Product {
	return model.Product{
		ID:            d.ID.Hex(),
		ProductFields: d.ProductFields,
	}
}

type mongoProductGateway struct {
	conn *mongodb.Connector
}

func NewMongoProductGateway(conn *mongodb.Connector) ProductGateway {
	return &mongoProductGateway{conn: conn}
}

func (g *mongoProductGateway) Connect(ctx context.Context) (ProductRepository, error) {
	database, err := g.conn.Connect(ctx)
	if err != nil {
		return nil, connectionErr(err)
	}

	return NewMongoProductRepository(database), nil
}

func (g *mongoProductGateway) Close(ctx context.Context) error {
	return g.conn.Close(ctx)
}

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(database *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: database.Collection(productCollection),
	}
}

func (r mongoProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, persistenceErr("find products", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, persistenceErr("decode products", err)
	}

	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}

	return products, nil
}

func (r mongoProductRepository) InsertProduct(ctx context.Context, fields model.ProductFields) (model.Product, error) {
	doc := productDocument{
		ID:            primitive.NewObjectID(),
		ProductFields: fields,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return model.Product{}, persistenceErr("insert product", err)
	}

	return doc.toModel(), nil
}

func (r mongoProductRepository) UpdateProductByID(ctx context.Context, id string, fields model.ProductFields) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}

	update := bson.M{"$set": fields}
	if _, err := r.collection.UpdateByID(ctx, oid, update); err != nil {
		return persistenceErr(fmt.Sprintf("update product %s", id), err)
	}

	return nil
}

func (r mongoProductRepository) DeleteProductByID(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return persistenceErr(fmt.Sprintf("delete product %s", id), err)
	}

	return nil
}

// objectID reports false for identifiers that cannot name any stored document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
