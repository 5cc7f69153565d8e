package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apiclient"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/querycache"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/validator"
)

func newTestController(t *testing.T, api ProductAPI) (*Controller, *querycache.Client) {
	t.Helper()
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)
	cache := querycache.NewClient()
	return NewController(api, cache, v), cache
}

func TestControllerCreate(t *testing.T) {
	api := newFakeAPI(lamp)
	c, _ := newTestController(t, api)
	ctx := context.Background()

	products, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, api.listCalls())

	require.NoError(t, c.OpenCreate())
	st := c.Snapshot()
	assert.Equal(t, ModeFormOpen, st.Mode)
	assert.Empty(t, st.EditingID)
	assert.Equal(t, FormValues{}, st.Form)

	err = c.Submit(ctx, FormValues{
		Name:        "Kettle",
		Category:    "Kitchen",
		Brand:       "Acme",
		Description: "1.7l",
		Price:       "25",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.creates)

	st = c.Snapshot()
	assert.Equal(t, ModeViewing, st.Mode)
	assert.Equal(t, FormValues{}, st.Form)
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeSuccess, st.Notice.Kind)
	assert.Equal(t, "Product created", st.Notice.Text)

	// notices are shown once
	assert.Nil(t, c.Snapshot().Notice)

	products, err = c.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 2, api.listCalls())
}

func TestControllerValidationBlocksNetwork(t *testing.T) {
	api := newFakeAPI(lamp)
	c, _ := newTestController(t, api)
	ctx := context.Background()

	require.NoError(t, c.OpenCreate())

	tests := []struct {
		name   string
		values FormValues
		field  string
		want   string
	}{
		{
			name:   "zero price",
			values: FormValues{Name: "a", Category: "b", Brand: "c", Description: "d", Price: "0"},
			field:  "price",
			want:   "Price must be a positive number",
		},
		{
			name:   "missing name",
			values: FormValues{Category: "b", Brand: "c", Description: "d", Price: "1"},
			field:  "name",
			want:   "Product name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Submit(ctx, tt.values)
			require.ErrorIs(t, err, ErrInvalidForm)

			st := c.Snapshot()
			assert.Equal(t, ModeFormOpen, st.Mode)
			assert.Equal(t, tt.values, st.Form)
			assert.Equal(t, tt.want, st.FieldErrors[tt.field])
		})
	}

	assert.Equal(t, 0, api.writes())
	assert.Equal(t, 0, api.listCalls())
}

func TestControllerEditPrefillsAndUpdates(t *testing.T) {
	api := newFakeAPI(lamp)
	c, _ := newTestController(t, api)
	ctx := context.Background()

	require.NoError(t, c.OpenEdit(ctx, lamp.ID))
	st := c.Snapshot()
	assert.Equal(t, ModeFormOpen, st.Mode)
	assert.Equal(t, lamp.ID, st.EditingID)
	assert.Equal(t, FormValues{
		Name:        "Desk Lamp",
		Category:    "Lighting",
		Brand:       "Lumo",
		Description: "Warm white",
		Price:       "39.99",
	}, st.Form)

	values := st.Form
	values.Price = "29.5"
	require.NoError(t, c.Submit(ctx, values))
	assert.Equal(t, 1, api.updates)
	assert.Equal(t, 0, api.creates)

	st = c.Snapshot()
	assert.Equal(t, ModeViewing, st.Mode)
	assert.Empty(t, st.EditingID)
	assert.Equal(t, "Product updated", st.Notice.Text)

	products, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, lamp.ID, products[0].ID)
	assert.Equal(t, 29.5, products[0].Price)
}

func TestControllerEditUnknownProduct(t *testing.T) {
	c, _ := newTestController(t, newFakeAPI(lamp))

	err := c.OpenEdit(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, ModeViewing, c.Snapshot().Mode)
}

func TestControllerReject(t *testing.T) {
	c, _ := newTestController(t, newFakeAPI(lamp))

	err := c.OpenEdit(context.Background(), "missing")
	c.Reject(err)
	st := c.Snapshot()
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeError, st.Notice.Kind)
	assert.Equal(t, "That product no longer exists", st.Notice.Text)
	assert.Nil(t, c.Snapshot().Notice)

	require.NoError(t, c.OpenCreate())
	c.Reject(c.OpenCreate())
	st = c.Snapshot()
	require.NotNil(t, st.Notice)
	assert.Equal(t, "Finish or cancel the current action first", st.Notice.Text)
	assert.Equal(t, ModeFormOpen, st.Mode)

	c.Reject(ErrInvalidForm)
	assert.Nil(t, c.Snapshot().Notice)
}

func TestControllerSaveFailureKeepsFormOpen(t *testing.T) {
	api := newFakeAPI(lamp)
	api.saveErr = &apiclient.Error{StatusCode: http.StatusServiceUnavailable, Message: "document store is unavailable"}
	c, cache := newTestController(t, api)
	ctx := context.Background()

	_, err := c.Products(ctx)
	require.NoError(t, err)

	require.NoError(t, c.OpenCreate())
	values := FormValues{Name: "Kettle", Category: "Kitchen", Brand: "Acme", Description: "1.7l", Price: "25"}
	err = c.Submit(ctx, values)
	require.Error(t, err)

	st := c.Snapshot()
	assert.Equal(t, ModeFormOpen, st.Mode)
	assert.Equal(t, values, st.Form)
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeError, st.Notice.Kind)
	assert.Equal(t, "Could not save product: document store is unavailable", st.Notice.Text)

	snap, ok := querycache.Peek[[]model.Product](cache, ProductsKey)
	require.True(t, ok)
	assert.False(t, snap.Stale)
}

func TestControllerDelete(t *testing.T) {
	api := newFakeAPI(lamp)
	c, _ := newTestController(t, api)
	ctx := context.Background()

	_, err := c.Products(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, lamp.ID))
	st := c.Snapshot()
	assert.Equal(t, ModeViewing, st.Mode)
	assert.Equal(t, "Product deleted", st.Notice.Text)

	products, err := c.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 2, api.listCalls())
}

func TestControllerDeleteFailure(t *testing.T) {
	api := newFakeAPI(lamp)
	api.deleteErr = &apiclient.Error{StatusCode: http.StatusInternalServerError, Message: "document store rejected the operation"}
	c, _ := newTestController(t, api)
	ctx := context.Background()

	require.Error(t, c.Delete(ctx, lamp.ID))

	st := c.Snapshot()
	assert.Equal(t, ModeViewing, st.Mode)
	assert.Empty(t, st.DeletingID)
	assert.Equal(t, NoticeError, st.Notice.Kind)
}

func TestControllerInvalidTransitions(t *testing.T) {
	c, _ := newTestController(t, newFakeAPI(lamp))
	ctx := context.Background()

	assert.ErrorIs(t, c.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, c.Submit(ctx, FormValues{}), ErrInvalidTransition)

	require.NoError(t, c.OpenCreate())
	assert.ErrorIs(t, c.OpenCreate(), ErrInvalidTransition)
	assert.ErrorIs(t, c.OpenEdit(ctx, lamp.ID), ErrInvalidTransition)
	assert.ErrorIs(t, c.Delete(ctx, lamp.ID), ErrInvalidTransition)

	require.NoError(t, c.Cancel())
	assert.Equal(t, ModeViewing, c.Snapshot().Mode)
}

func TestControllersShareCache(t *testing.T) {
	api := newFakeAPI(lamp)
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)
	cache := querycache.NewClient()

	a := NewController(api, cache, v)
	b := NewController(api, cache, v)
	ctx := context.Background()

	_, err = a.Products(ctx)
	require.NoError(t, err)
	_, err = b.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls())

	require.NoError(t, a.Delete(ctx, lamp.ID))

	products, err := b.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 2, api.listCalls())
}
