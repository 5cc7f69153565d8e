package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/validator"
)

// FormValues are the raw product form inputs, keyed the same way as field errors.
type FormValues struct {
	Name        string
	Category    string
	Brand       string
	Description string
	Price       string
}

func formValuesFromProduct(p model.Product) FormValues {
	return FormValues{
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
}

type productForm struct {
	Name        string `validate:"notblank" label:"Product name"`
	Category    string `validate:"notblank" label:"Category"`
	Brand       string `validate:"notblank" label:"Brand"`
	Description string `validate:"notblank" label:"Description"`
	Price       string `validate:"notblank" label:"Price"`
}

type productPrice struct {
	Price float64 `validate:"gt=0" label:"Price"`
}

// validateProduct turns form values into product fields. It returns the per-field
// messages instead when any input is invalid.
func validateProduct(v validator.Validator, values FormValues) (model.ProductFields, map[string]string, error) {
	form := productForm{
		Name:        values.Name,
		Category:    values.Category,
		Brand:       values.Brand,
		Description: values.Description,
		Price:       strings.TrimSpace(values.Price),
	}

	fieldErrs, err := fieldErrors(v, form)
	if err != nil {
		return model.ProductFields{}, nil, err
	}

	var price float64
	if _, bad := fieldErrs["price"]; !bad {
		price, err = strconv.ParseFloat(form.Price, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			fieldErrs["price"] = "Price must be a number"
		} else {
			priceErrs, err := fieldErrors(v, productPrice{Price: price})
			if err != nil {
				return model.ProductFields{}, nil, err
			}
			for k, msg := range priceErrs {
				fieldErrs[k] = msg
			}
		}
	}

	if len(fieldErrs) > 0 {
		return model.ProductFields{}, fieldErrs, nil
	}

	return model.ProductFields{
		Name:        form.Name,
		Category:    form.Category,
		Brand:       form.Brand,
		Description: form.Description,
		Price:       price,
	}, nil, nil
}

// LoginValues are the raw login form inputs.
type LoginValues struct {
	Email    string
	Password string
}

type loginForm struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required,min=8" label:"Password"`
}

func validateLogin(v validator.Validator, values LoginValues) (map[string]string, error) {
	fieldErrs, err := fieldErrors(v, loginForm{
		Email:    strings.TrimSpace(values.Email),
		Password: values.Password,
	})
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) == 0 {
		return nil, nil
	}
	return fieldErrs, nil
}

func fieldErrors(v validator.Validator, s any) (map[string]string, error) {
	err := v.Validate(s)
	if err == nil {
		return map[string]string{}, nil
	}
	if !validator.IsValidationError(err) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}
	return validator.FieldErrors(err), nil
}
