// internal/domain/product/listing.go
package product

import (
	"strings"

	"gorm.io/gorm"
)

// priceBucket bounds in cents, lower inclusive, upper exclusive (0 = open)
type priceBucket struct {
	min int64
	max int64
}

var priceBuckets = map[string]priceBucket{
	"0-20":    {0, 2000},
	"20-50":   {2000, 5000},
	"50-100":  {5000, 10000},
	"100-200": {10000, 20000},
	"200+":    {20000, 0},
}

var productSorts = map[string]string{
	"name":       "products.name ASC",
	"price_asc":  "products.price ASC",
	"price_desc": "products.price DESC",
	"newest":     "products.created_at DESC",
	"featured":   "products.is_featured DESC, products.name ASC",
}

func productOrderClause(sort string) string {
	clause, ok := productSorts[sort]
	if !ok {
		clause = productSorts["name"]
	}
	return clause + ", products.id ASC"
}

func applyProductFilters(query *gorm.DB, req *ProductListRequest) *gorm.DB {
	if req.OnlyAvailable {
		query = query.Where("products.is_available = ?", true)
	}

	if req.CategoryID > 0 {
		query = query.Where("products.category_id = ?", req.CategoryID)
	}

	if req.DepartmentID > 0 {
		query = query.Where("categories.department_id = ?", req.DepartmentID)
	}

	if len(req.BrandIDs) > 0 {
		query = query.Where("products.brand_id IN ?", req.BrandIDs)
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		search := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(brands.name) LIKE ? OR LOWER(categories.name) LIKE ?",
			search, search, search, search,
		)
	}

	if bucket, ok := priceBuckets[req.PriceRange]; ok {
		if bucket.min > 0 {
			query = query.Where("products.price >= ?", bucket.min)
		}
		if bucket.max > 0 {
			query = query.Where("products.price < ?", bucket.max)
		}
	}

	if req.MinPrice > 0 {
		query = query.Where("products.price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("products.price <= ?", req.MaxPrice)
	}

	inStock, outOfStock := false, false
	for _, a := range req.Availability {
		switch a {
		case "in_stock":
			inStock = true
		case "out_of_stock":
			outOfStock = true
		}
	}
	if inStock && !outOfStock {
		query = query.Where("products.stock > 0")
	} else if outOfStock && !inStock {
		query = query.Where("products.stock = 0")
	}

	if genders := nonEmpty(req.Genders); len(genders) > 0 {
		query = query.Where("products.gender IN ?", genders)
	}

	if colors := nonEmpty(req.Colors); len(colors) > 0 {
		query = query.Where("products.color IN ?", colors)
	}

	return query
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
