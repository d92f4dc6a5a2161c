package product

import (
	"errors"
	"testing"

	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestProductCreateRequest_Validate(t *testing.T) {
	valid := ProductCreateRequest{Name: "Labial mate", Price: 1250, Stock: 4}
	assert.NoError(t, valid.Validate())

	req := ProductCreateRequest{Name: "   ", Price: 0, Stock: -1, OfferPrice: price(-5)}
	assert.ElementsMatch(t, []string{"name", "price", "stock", "offer_price"}, fieldNames(t, req.Validate()))
}

func TestProductCreateRequest_ValidateImagesAndSizes(t *testing.T) {
	req := ProductCreateRequest{
		Name:  "Crema hidratante",
		Price: 2000,
		Images: []ImageInput{
			{URL: "a.jpg", IsMain: true},
			{URL: "b.jpg", IsMain: true},
		},
		Sizes: []SizeInput{{Size: "50ml"}, {Size: "50ML"}},
	}
	assert.ElementsMatch(t, []string{"images", "sizes"}, fieldNames(t, req.Validate()))

	// Blank sizes collapse to Standard
	req = ProductCreateRequest{Name: "Serum", Price: 2000, Sizes: []SizeInput{{Size: ""}, {Size: "standard"}}}
	assert.Equal(t, []string{"sizes"}, fieldNames(t, req.Validate()))
}

func TestProductUpdateRequest_Validate(t *testing.T) {
	current := &Product{Name: "Base", Price: 1500}

	assert.NoError(t, (&ProductUpdateRequest{}).Validate(current))

	zero := int64(0)
	assert.Equal(t, []string{"price"}, fieldNames(t, (&ProductUpdateRequest{Price: &zero}).Validate(current)))

	empty := ""
	assert.Equal(t, []string{"name"}, fieldNames(t, (&ProductUpdateRequest{Name: &empty}).Validate(current)))

	// Clearing the offer ignores a bad offer value
	req := &ProductUpdateRequest{OfferPrice: price(-1), ClearOffer: true}
	assert.NoError(t, req.Validate(current))
}

func TestCategoryRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CategoryRequest{Name: "Maquillaje"}).Validate())
	assert.Equal(t, []string{"name"}, fieldNames(t, (&CategoryRequest{Name: " "}).Validate()))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}
	assert.Equal(t, []string{"image"}, fieldNames(t, (&BrandRequest{Name: "Charm", Image: string(long)}).Validate()))
	assert.Equal(t, []string{"name"}, fieldNames(t, (&DepartmentRequest{}).Validate()))
}

func TestBuildImages_FirstBecomesMain(t *testing.T) {
	images := buildImages([]ImageInput{{URL: " a.jpg "}, {URL: "b.jpg"}})
	require.Len(t, images, 2)
	assert.True(t, images[0].IsMain)
	assert.False(t, images[1].IsMain)
	assert.Equal(t, "a.jpg", images[0].URL)
	assert.Equal(t, 1, images[1].OrderPosition)
}

func TestProductOrderClause(t *testing.T) {
	assert.Equal(t, "products.price ASC, products.id ASC", productOrderClause("price_asc"))
	assert.Equal(t, "products.name ASC, products.id ASC", productOrderClause("bogus"))
}
