package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/service"
)

type productHandler struct {
	s          *Service
	productSvc service.ProductService
}

func newProductHandler(s *Service, productSvc service.ProductService) *productHandler {
	return &productHandler{
		s:          s,
		productSvc: productSvc,
	}
}

type listProductsResponse struct {
	Products []model.Product `json:"products"`
}

type createProductResponse struct {
	Product model.Product `json:"product"`
}

type emptyResponse struct{}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListAllProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list all products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	h.s.writeJSON(w, r, http.StatusOK, listProductsResponse{Products: products})
	return nil
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var fields model.ProductFields
	if err := decodeJSON(r, &fields); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), fields)
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	h.s.writeJSON(w, r, http.StatusOK, createProductResponse{Product: product})
	return nil
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	var fields model.ProductFields
	if err := decodeJSON(r, &fields); err != nil {
		return err
	}

	if id := r.URL.Query().Get("id"); id != "" {
		if err := h.productSvc.UpdateProduct(r.Context(), id, fields); err != nil {
			return fmt.Errorf("product service update product: %w", err)
		}
	}

	h.s.writeJSON(w, r, http.StatusOK, emptyResponse{})
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	if id := r.URL.Query().Get("id"); id != "" {
		if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
			return fmt.Errorf("product service delete product: %w", err)
		}
	}

	h.s.writeJSON(w, r, http.StatusOK, emptyResponse{})
	return nil
}
