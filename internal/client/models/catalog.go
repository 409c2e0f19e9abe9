package models

import (
	"errors"
	"strconv"
	"strings"
)

// ResourceKind names a catalog collection; it is also the path segment
// under /admin.
type ResourceKind string

const (
	KindCategories ResourceKind = "categories"
	KindProducts   ResourceKind = "products"
)

// Resource is a flat catalog entity managed by a list screen.
type Resource interface {
	GetID() int64
	GetName() string
	GetDescription() string
}

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (c Category) GetID() int64    { return c.ID }
func (c Category) GetName() string { return c.Name }
func (c Category) GetDescription() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        Decimal   `json:"price"`
	Stock        int       `json:"stock"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Category     *Category `json:"category,omitempty"`
}

func (p Product) GetID() int64    { return p.ID }
func (p Product) GetName() string { return p.Name }
func (p Product) GetDescription() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// EmbeddedCategoryName is the category name the backend sent along with the
// product, if any.
func (p Product) EmbeddedCategoryName() string {
	if p.CategoryName != "" {
		return p.CategoryName
	}
	if p.Category != nil {
		return p.Category.Name
	}
	return ""
}

// CategoryFields is the editable part of a category.
type CategoryFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductFields is the editable part of a product.
type ProductFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       Decimal `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  int64   `json:"category_id"`
}

func (c Category) Fields() CategoryFields {
	return CategoryFields{Name: c.Name, Description: c.GetDescription()}
}

func (p Product) Fields() ProductFields {
	return ProductFields{
		Name:        p.Name,
		Description: p.GetDescription(),
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

var ErrIncorrectField = errors.New("field must be name=value")

// ParseFieldPairs turns "name=value" lines into a map. Only the first '='
// separates; names are trimmed, values are kept verbatim.
func ParseFieldPairs(lines []string) (map[string]string, error) {
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectField
		}
		out[name] = value
	}
	return out, nil
}

// Apply overlays the named fields onto f. Unknown names are rejected.
func (f *CategoryFields) Apply(values map[string]string) error {
	for name, v := range values {
		switch name {
		case "name":
			f.Name = strings.TrimSpace(v)
		case "description":
			f.Description = v
		default:
			return &FieldError{Field: name, Err: ErrUnknownField}
		}
	}
	return nil
}

// Apply overlays the named fields onto f, parsing numbers as needed.
func (f *ProductFields) Apply(values map[string]string) error {
	for name, v := range values {
		switch name {
		case "name":
			f.Name = strings.TrimSpace(v)
		case "description":
			f.Description = v
		case "price":
			d, err := ParseDecimal(v)
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			f.Price = d
		case "stock":
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			f.Stock = n
		case "category_id":
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return &FieldError{Field: name, Err: err}
			}
			f.CategoryID = n
		default:
			return &FieldError{Field: name, Err: ErrUnknownField}
		}
	}
	return nil
}

var ErrUnknownField = errors.New("unknown field")

type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }
