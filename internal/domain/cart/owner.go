// internal/domain/cart/owner.go
package cart

import (
	"fmt"
	"strconv"

	"github.com/charmaway/storefront/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Owner identifies whose cart an operation acts on. A signed-in customer
// takes precedence over the guest session key.
type Owner struct {
	UserID     *uint
	SessionKey string
}

// CustomerOwner builds an owner for a signed-in customer
func CustomerOwner(userID uint) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner builds an owner for a guest session
func GuestOwner(sessionKey string) Owner {
	return Owner{SessionKey: sessionKey}
}

func (o Owner) Validate() error {
	if o.UserID == nil && o.SessionKey == "" {
		return apperror.Invalid("owner", "customer or session is required")
	}
	return nil
}

func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// Key is a stable string for the owner, used to namespace session state
func (o Owner) Key() string {
	if o.UserID != nil {
		return "user:" + strconv.FormatUint(uint64(*o.UserID), 10)
	}
	return "session:" + o.SessionKey
}

// Scope restricts a cart_items query to the owner's lines
func (o Owner) Scope(db *gorm.DB) *gorm.DB {
	if o.UserID != nil {
		return db.Where("cart_items.user_id = ?", *o.UserID)
	}
	return db.Where("cart_items.session_key = ?", o.SessionKey)
}

func (o Owner) assign(item *CartItem) {
	if o.UserID != nil {
		id := *o.UserID
		item.UserID = &id
		item.SessionKey = nil
		return
	}
	key := o.SessionKey
	item.SessionKey = &key
	item.UserID = nil
}

// ItemKind tells products and treatments apart
type ItemKind string

const (
	KindProduct   ItemKind = "product"
	KindTreatment ItemKind = "treatment"
)

// ItemRef points at a product or a treatment
type ItemRef struct {
	Kind ItemKind
	ID   uint
}

func ProductRef(id uint) ItemRef   { return ItemRef{Kind: KindProduct, ID: id} }
func TreatmentRef(id uint) ItemRef { return ItemRef{Kind: KindTreatment, ID: id} }

func (r ItemRef) String() string {
	return fmt.Sprintf("%s %d", r.Kind, r.ID)
}

// Scope restricts a cart_items query to lines of the referenced item
func (r ItemRef) Scope(db *gorm.DB) *gorm.DB {
	if r.Kind == KindTreatment {
		return db.Where("cart_items.treatment_id = ? AND cart_items.product_id IS NULL", r.ID)
	}
	return db.Where("cart_items.product_id = ? AND cart_items.treatment_id IS NULL", r.ID)
}

func (r ItemRef) validate() error {
	if r.ID == 0 || (r.Kind != KindProduct && r.Kind != KindTreatment) {
		return apperror.Invalid("item", "unknown item")
	}
	return nil
}
