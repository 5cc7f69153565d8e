package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apiclient"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/querycache"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/validator"
)

// ProductsKey is the cache key of the product list.
const ProductsKey = "products"

var (
	ErrInvalidTransition = errors.New("action not allowed in the current mode")
	ErrInvalidForm       = errors.New("form has invalid fields")
	ErrProductNotFound   = errors.New("product not found")
)

// ProductAPI is the remote product endpoint used by the dashboard.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, fields model.ProductFields) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, fields model.ProductFields) error
	DeleteProduct(ctx context.Context, id string) error
}

type Mode int

const (
	ModeViewing Mode = iota
	ModeFormOpen
	ModeSaving
	ModeDeleting
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeFormOpen:
		return "form_open"
	case ModeSaving:
		return "saving"
	case ModeDeleting:
		return "deleting"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown on the next render.
type Notice struct {
	Kind NoticeKind
	Text string
}

type saveInput struct {
	id     string
	fields model.ProductFields
}

// Controller holds the dashboard state of one browser session. The product list lives
// in the shared cache; everything else is private to the session.
type Controller struct {
	api       ProductAPI
	cache     *querycache.Client
	validator validator.Validator

	save   *querycache.Mutation[saveInput]
	remove *querycache.Mutation[string]

	mu          sync.Mutex
	mode        Mode
	editingID   string
	deletingID  string
	form        FormValues
	fieldErrors map[string]string
	notice      *Notice
}

func NewController(api ProductAPI, cache *querycache.Client, v validator.Validator) *Controller {
	c := &Controller{
		api:       api,
		cache:     cache,
		validator: v,
	}

	c.save = querycache.NewMutation(func(ctx context.Context, in saveInput) error {
		if in.id == "" {
			_, err := c.api.CreateProduct(ctx, in.fields)
			return err
		}
		return c.api.UpdateProduct(ctx, in.id, in.fields)
	}, querycache.MutationHooks[saveInput]{
		OnSuccess: func(context.Context, saveInput) { c.cache.Invalidate(ProductsKey) },
	})

	c.remove = querycache.NewMutation(c.api.DeleteProduct, querycache.MutationHooks[string]{
		OnSuccess: func(context.Context, string) { c.cache.Invalidate(ProductsKey) },
	})

	return c
}

// Products returns the product list, fetching it when the cache holds no fresh copy.
func (c *Controller) Products(ctx context.Context) ([]model.Product, error) {
	products, err := querycache.Query(ctx, c.cache, ProductsKey, c.api.ListProducts)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return products, nil
}

// OpenCreate opens a blank form.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeViewing {
		return ErrInvalidTransition
	}

	c.openForm("", FormValues{})
	return nil
}

// OpenEdit opens the form pre-filled with product id from the current list.
func (c *Controller) OpenEdit(ctx context.Context, id string) error {
	products, err := c.Products(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("edit %s: %w", id, ErrProductNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeViewing {
		return ErrInvalidTransition
	}

	c.openForm(id, formValuesFromProduct(products[idx]))
	return nil
}

func (c *Controller) openForm(id string, values FormValues) {
	c.mode = ModeFormOpen
	c.editingID = id
	c.form = values
	c.fieldErrors = nil
	c.notice = nil
}

// Cancel closes the form without saving.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeFormOpen {
		return ErrInvalidTransition
	}

	c.closeForm()
	return nil
}

func (c *Controller) closeForm() {
	c.mode = ModeViewing
	c.editingID = ""
	c.form = FormValues{}
	c.fieldErrors = nil
}

// Submit validates the form and saves it. Invalid input keeps the form open with field
// messages and never reaches the API. A failed save keeps the form open too.
func (c *Controller) Submit(ctx context.Context, values FormValues) error {
	c.mu.Lock()
	if c.mode != ModeFormOpen {
		c.mu.Unlock()
		return ErrInvalidTransition
	}

	c.form = values
	fields, fieldErrs, err := validateProduct(c.validator, values)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(fieldErrs) > 0 {
		c.fieldErrors = fieldErrs
		c.mu.Unlock()
		return ErrInvalidForm
	}

	c.fieldErrors = nil
	c.mode = ModeSaving
	in := saveInput{id: c.editingID, fields: fields}
	c.mu.Unlock()

	err = c.save.Do(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.mode = ModeFormOpen
		c.notice = &Notice{Kind: NoticeError, Text: "Could not save product: " + errorText(err)}
		return fmt.Errorf("save product: %w", err)
	}

	text := "Product created"
	if in.id != "" {
		text = "Product updated"
	}
	c.closeForm()
	c.notice = &Notice{Kind: NoticeSuccess, Text: text}
	return nil
}

// Delete removes product id. The controller returns to viewing whatever the outcome.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.mode != ModeViewing {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.mode = ModeDeleting
	c.deletingID = id
	c.notice = nil
	c.mu.Unlock()

	err := c.remove.Do(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeViewing
	c.deletingID = ""

	if err != nil {
		c.notice = &Notice{Kind: NoticeError, Text: "Could not delete product: " + errorText(err)}
		return fmt.Errorf("delete product: %w", err)
	}

	c.notice = &Notice{Kind: NoticeSuccess, Text: "Product deleted"}
	return nil
}

// State is a point-in-time copy of the session state.
type State struct {
	Mode        Mode
	EditingID   string
	DeletingID  string
	Form        FormValues
	FieldErrors map[string]string
	Notice      *Notice
	Saving      bool
	Deleting    bool
}

// Snapshot returns the current state. The notice is handed out once.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Mode:        c.mode,
		EditingID:   c.editingID,
		DeletingID:  c.deletingID,
		Form:        c.form,
		FieldErrors: c.fieldErrors,
		Notice:      c.notice,
		Saving:      c.save.Pending(),
		Deleting:    c.remove.Pending(),
	}
	c.notice = nil
	return st
}

// Reject shows why an action could not run on the next render. Errors other than a
// missing product or a disallowed transition are ignored.
func (c *Controller) Reject(err error) {
	var text string
	switch {
	case errors.Is(err, ErrProductNotFound):
		text = "That product no longer exists"
	case errors.Is(err, ErrInvalidTransition):
		text = "Finish or cancel the current action first"
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = &Notice{Kind: NoticeError, Text: text}
}

func errorText(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "the catalog API is unreachable"
}
