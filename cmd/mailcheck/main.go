// cmd/mailcheck/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/pkg/email"
	"github.com/charmaway/storefront/internal/pkg/logger"
)

func main() {
	to := flag.String("to", "", "recipient of the sample confirmation (required)")
	flag.Parse()

	if *to == "" {
		log.Fatal("Usage: mailcheck -to <email>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mailer, err := email.NewService(cfg, nil, logger.New(cfg.Logging))
	if err != nil {
		log.Fatalf("Failed to initialize email: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mailer.OrderPlaced(ctx, sampleOrder(*to)); err != nil {
		log.Fatalf("Send failed: %v", err)
	}

	log.Printf("Sample order confirmation sent to %s through %q", *to, cfg.External.Email.Provider)
}

// sampleOrder is a home delivery with one product and one treatment
func sampleOrder(to string) *order.Order {
	items := []order.OrderItem{
		{Name: "Labial Superstay Matte Ink", Quantity: 2, UnitPrice: 999, Subtotal: 1998},
		{Name: "Manicura semipermanente", Quantity: 1, UnitPrice: 2500, Subtotal: 2500},
	}
	subtotal, final := order.Totals(items, 0)

	return &order.Order{
		PublicID:       order.NewPublicID(),
		Email:          to,
		Status:         order.StatusProcessing,
		DeliveryOption: checkout.DeliveryHome,
		Address:        "Calle Mayor 1",
		City:           "Madrid",
		ZipCode:        "28013",
		PaymentMethod:  checkout.PaymentCashOnDelivery,
		PaymentStatus:  order.PaymentStatusNotRequired,
		Subtotal:       subtotal,
		FinalPrice:     final,
		Items:          items,
		CreatedAt:      time.Now().UTC(),
	}
}
