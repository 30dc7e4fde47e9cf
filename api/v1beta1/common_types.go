// Package v1beta1 contains the wire types of the Compute Ops Management REST API.
package v1beta1

// Collection is a page of items returned by a list endpoint.
type Collection[T any] struct {
	// Count is the number of items in this page
	Count int `json:"count"`

	// Offset of the first item in this page
	Offset int `json:"offset"`

	// Total number of items available
	Total int `json:"total"`

	Items []T `json:"items"`
}

// ResourceReference identifies a resource by handle.
type ResourceReference struct {
	// ID of the referenced resource
	ID string `json:"id,omitempty"`

	// Type of the referenced resource (e.g., "compute-ops/group")
	Type string `json:"type,omitempty"`

	// ResourceURI is the handle used to address the resource in follow-up calls
	ResourceURI string `json:"resourceUri,omitempty"`
}

// ListOptions are the paging and filtering parameters accepted by list endpoints.
type ListOptions struct {
	// Limit caps the number of returned items (0 means server default)
	Limit int

	// Offset skips the first N items
	Offset int

	// Filter is an OData-style filter expression, e.g. "source/type eq 'Server'"
	Filter string
}
