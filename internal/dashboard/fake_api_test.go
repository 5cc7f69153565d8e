package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
)

type fakeAPI struct {
	mu       sync.Mutex
	products []model.Product
	seq      int

	lists, creates, updates, deletes int

	listErr, saveErr, deleteErr error

	users map[string]string
}

func newFakeAPI(products ...model.Product) *fakeAPI {
	return &fakeAPI{
		products: products,
		users:    map[string]string{"john.doe@example.com": "password123"},
	}
}

func (f *fakeAPI) ListProducts(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Product{}, f.products...), nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, fields model.ProductFields) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.saveErr != nil {
		return model.Product{}, f.saveErr
	}
	f.seq++
	p := model.Product{ID: fmt.Sprintf("new-%d", f.seq), ProductFields: fields}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id string, fields model.ProductFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].ProductFields = fields
		}
	}
	return nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (bool, string, error) {
	if pw, ok := f.users[email]; ok && pw == password {
		return true, "Logged in successfully", nil
	}
	return false, "Invalid email or password", nil
}

func (f *fakeAPI) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates + f.updates + f.deletes
}

func (f *fakeAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

var lamp = model.Product{
	ID: "64b7f0c2a1b2c3d4e5f60718",
	ProductFields: model.ProductFields{
		Name:        "Desk Lamp",
		Category:    "Lighting",
		Brand:       "Lumo",
		Description: "Warm white",
		Price:       39.99,
	},
}
