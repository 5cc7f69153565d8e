package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/catalog-admin/internal/event"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/repository"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/eventheader"
)

type ProductService interface {
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, fields model.ProductFields) (model.Product, error)
	// UpdateProduct overwrites the fields of product id. Unknown ids are not an error.
	UpdateProduct(ctx context.Context, id string, fields model.ProductFields) error
	// DeleteProduct removes product id. Unknown ids are not an error.
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	logger     *slog.Logger
	gateway    repository.ProductGateway
	mqProducer mq.Producer
	topic      string
}

func NewProductService(
	logger *slog.Logger,
	gateway repository.ProductGateway,
	mqProducer mq.Producer,
	topic string,
) ProductService {
	return &productService{
		logger:     logger.With(slog.String("service", "product")),
		gateway:    gateway,
		mqProducer: mqProducer,
		topic:      topic,
	}
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	repo, err := s.gateway.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("product gateway connect: %w", err)
	}

	products, err := repo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, fields model.ProductFields) (model.Product, error) {
	repo, err := s.gateway.Connect(ctx)
	if err != nil {
		return model.Product{}, fmt.Errorf("product gateway connect: %w", err)
	}

	product, err := repo.InsertProduct(ctx, fields)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository insert product: %w", err)
	}

	s.publish(ctx, event.ProductChangedEvent{ProductID: product.ID, Action: event.ActionCreated})

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, fields model.ProductFields) error {
	repo, err := s.gateway.Connect(ctx)
	if err != nil {
		return fmt.Errorf("product gateway connect: %w", err)
	}

	if err := repo.UpdateProductByID(ctx, id, fields); err != nil {
		return fmt.Errorf("product repository update product by id: %w", err)
	}

	s.publish(ctx, event.ProductChangedEvent{ProductID: id, Action: event.ActionUpdated})

	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	repo, err := s.gateway.Connect(ctx)
	if err != nil {
		return fmt.Errorf("product gateway connect: %w", err)
	}

	if err := repo.DeleteProductByID(ctx, id); err != nil {
		return fmt.Errorf("product repository delete product by id: %w", err)
	}

	s.publish(ctx, event.ProductChangedEvent{ProductID: id, Action: event.ActionDeleted})

	return nil
}

// publish notifies other instances of a write. The write already happened, so failures
// are only logged.
func (s *productService) publish(ctx context.Context, ev event.ProductChangedEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.ErrorContext(ctx, "error marshaling product changed event", slog.Any("error", err))
		return
	}

	if err := s.mqProducer.Produce(ctx, mq.ProduceMsg{
		Topic:        s.topic,
		Headers:      eventheader.Build(ctx),
		Payload:      payload,
		PartitionKey: ev.ProductID,
	}); err != nil {
		s.logger.WarnContext(ctx, "error publishing product changed event",
			slog.String("product_id", ev.ProductID),
			slog.String("action", ev.Action),
			slog.Any("error", err),
		)
	}
}
