// Package apicontract embeds the OpenAPI document of the catalog API.
package apicontract

import _ "embed"

//go:embed openapi.yml
var openAPI []byte

// OpenAPI returns the contract as YAML. Callers must not modify the slice.
func OpenAPI() []byte {
	return openAPI
}
