package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apperr"
	"github.com/tuanvumaihuynh/catalog-admin/internal/event"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/repository"
	"github.com/tuanvumaihuynh/catalog-admin/internal/service"
	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
)

type stubRepo struct {
	products  []model.Product
	insertErr error
	listErr   error
}

func (r *stubRepo) ListAllProducts(context.Context) ([]model.Product, error) {
	return r.products, r.listErr
}

func (r *stubRepo) InsertProduct(_ context.Context, fields model.ProductFields) (model.Product, error) {
	if r.insertErr != nil {
		return model.Product{}, r.insertErr
	}
	p := model.Product{ID: "new-id", ProductFields: fields}
	r.products = append(r.products, p)
	return p, nil
}

func (r *stubRepo) UpdateProductByID(_ context.Context, id string, fields model.ProductFields) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].ProductFields = fields
		}
	}
	return nil
}

func (r *stubRepo) DeleteProductByID(_ context.Context, id string) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return nil
}

type stubGateway struct {
	repo     *stubRepo
	err      error
	connects int
}

func (g *stubGateway) Connect(context.Context) (repository.ProductRepository, error) {
	g.connects++
	if g.err != nil {
		return nil, g.err
	}
	return g.repo, nil
}

func (g *stubGateway) Close(context.Context) error { return nil }

type recordingProducer struct {
	msgs []mq.ProduceMsg
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingProducer) Close() {}

func newTestService(gw repository.ProductGateway, producer mq.Producer) service.ProductService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewProductService(logger, gw, producer, "product.changed")
}

func decodeEvent(t *testing.T, msg mq.ProduceMsg) event.ProductChangedEvent {
	t.Helper()
	var ev event.ProductChangedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	return ev
}

func TestProductServiceWritesPublishEvents(t *testing.T) {
	gw := &stubGateway{repo: &stubRepo{}}
	producer := &recordingProducer{}
	svc := newTestService(gw, producer)
	ctx := context.Background()

	fields := model.ProductFields{Name: "Mug", Category: "Kitchen", Brand: "Acme", Description: "Blue", Price: 9.5}

	created, err := svc.CreateProduct(ctx, fields)
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)

	fields.Price = 11
	require.NoError(t, svc.UpdateProduct(ctx, created.ID, fields))
	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	require.Len(t, producer.msgs, 3)
	actions := make([]string, 0, len(producer.msgs))
	for _, msg := range producer.msgs {
		assert.Equal(t, "product.changed", msg.Topic)
		assert.Equal(t, created.ID, msg.PartitionKey)
		ev := decodeEvent(t, msg)
		assert.Equal(t, created.ID, ev.ProductID)
		actions = append(actions, ev.Action)
	}
	assert.Equal(t, []string{event.ActionCreated, event.ActionUpdated, event.ActionDeleted}, actions)
	assert.Equal(t, 3, gw.connects)

	products, err := svc.ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductServicePublishFailureIsNotReturned(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	svc := newTestService(&stubGateway{repo: &stubRepo{}}, producer)

	_, err := svc.CreateProduct(context.Background(), model.ProductFields{Name: "Mug", Price: 1})
	assert.NoError(t, err)
	assert.Len(t, producer.msgs, 1)
}

func TestProductServiceConnectFailure(t *testing.T) {
	gw := &stubGateway{err: apperr.ConnectionErr.WrapParent(errors.New("dial tcp: refused"))}
	producer := &recordingProducer{}
	svc := newTestService(gw, producer)
	ctx := context.Background()

	_, err := svc.ListAllProducts(ctx)
	assert.ErrorIs(t, err, apperr.ConnectionErr)

	_, err = svc.CreateProduct(ctx, model.ProductFields{})
	assert.ErrorIs(t, err, apperr.ConnectionErr)

	assert.ErrorIs(t, svc.UpdateProduct(ctx, "x", model.ProductFields{}), apperr.ConnectionErr)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, "x"), apperr.ConnectionErr)

	assert.Empty(t, producer.msgs)
}

func TestProductServiceInsertFailureSkipsEvent(t *testing.T) {
	repo := &stubRepo{insertErr: apperr.PersistenceErr}
	producer := &recordingProducer{}
	svc := newTestService(&stubGateway{repo: repo}, producer)

	_, err := svc.CreateProduct(context.Background(), model.ProductFields{Name: "Mug"})
	assert.ErrorIs(t, err, apperr.PersistenceErr)
	assert.Empty(t, producer.msgs)
}
