package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func price(v int64) *int64 { return &v }

func TestProduct_Pricing(t *testing.T) {
	tests := []struct {
		name      string
		price     int64
		offer     *int64
		hasOffer  bool
		effective int64
		discount  int
	}{
		{"no offer", 1000, nil, false, 1000, 0},
		{"lower offer", 2599, price(1999), true, 1999, 23},
		{"offer equal to price", 1500, price(1500), false, 1500, 0},
		{"offer above price", 1500, price(1800), false, 1500, 0},
		{"half price", 4000, price(2000), true, 2000, 50},
		{"rounds to nearest", 300, price(199), true, 199, 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price, OfferPrice: tt.offer}
			assert.Equal(t, tt.hasOffer, p.HasOffer())
			assert.Equal(t, tt.effective, p.EffectivePrice())
			assert.Equal(t, tt.discount, p.Discount())

			pr := Pricing{Price: tt.price, OfferPrice: tt.offer}
			assert.Equal(t, tt.effective, pr.EffectivePrice())
			assert.Equal(t, tt.discount, pr.Discount())
		})
	}
}

func TestProduct_AfterFindFillsComputedFields(t *testing.T) {
	p := &Product{Price: 2599, OfferPrice: price(1999)}
	assert.NoError(t, p.AfterFind(nil))
	assert.Equal(t, int64(1999), p.FinalPrice)
	assert.Equal(t, 23, p.DiscountPercentage)
}

func TestProduct_MainImage(t *testing.T) {
	p := &Product{}
	assert.Nil(t, p.MainImage())

	p.Images = []ProductImage{{URL: "a.jpg"}, {URL: "b.jpg", IsMain: true}}
	assert.Equal(t, "b.jpg", p.MainImage().URL)

	p.Images = []ProductImage{{URL: "a.jpg"}, {URL: "b.jpg"}}
	assert.Equal(t, "a.jpg", p.MainImage().URL)
}

func TestProduct_IsInStock(t *testing.T) {
	assert.False(t, (&Product{Stock: 0}).IsInStock())
	assert.True(t, (&Product{Stock: 1}).IsInStock())
}
