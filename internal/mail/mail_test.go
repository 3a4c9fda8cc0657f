package mail

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

func testShop() config.Shop {
	return config.Shop{
		Name:     "Test Shop",
		BaseURL:  "https://shop.test",
		Currency: "EUR",
		Language: "en",
	}
}

func testOrder() model.Order {
	return model.Order{
		ID:                uuid.New(),
		Number:            "LFS-00042",
		CustomerEmail:     "jane@example.com",
		CustomerFirstName: "Jane",
		CustomerLastName:  "Doe",
		Price:             decimal.RequireFromString("119.00"),
		Tax:               decimal.RequireFromString("19.00"),
		InvoiceAddress:    model.Address{FirstName: "Jane", LastName: "Doe"},
		ShippingAddress:   model.Address{FirstName: "Jane", LastName: "Doe", Line1: "Main St 1", City: "Berlin", ZipCode: "10115", Country: "DE"},
		Items: []model.OrderItem{
			{ProductName: "Tea <Green>", ProductAmount: 2, PriceGross: decimal.RequireFromString("119.00")},
		},
	}
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer(testShop())
	require.NoError(t, err)

	t.Run("Should render the order received mail", func(t *testing.T) {
		msg, err := r.Render(KindOrderReceived, []string{"jane@example.com"}, Data{Order: testOrder()})
		require.NoError(t, err)

		assert.Equal(t, []string{"jane@example.com"}, msg.To)
		assert.Equal(t, "Your order LFS-00042 at Test Shop", msg.Subject)
		assert.Contains(t, msg.Text, "2 x Tea <Green>")
		assert.Contains(t, msg.HTML, "Tea &lt;Green&gt;")
		assert.Contains(t, msg.Text, "119")
	})

	t.Run("Should link rated products", func(t *testing.T) {
		msg, err := r.Render(KindRating, []string{"jane@example.com"}, Data{
			Order:    testOrder(),
			Products: []model.Product{{Name: "Green Tea", Slug: "green-tea"}},
		})
		require.NoError(t, err)

		assert.Contains(t, msg.Text, "https://shop.test/products/green-tea")
		assert.Contains(t, msg.HTML, `href="https://shop.test/products/green-tea"`)
	})

	t.Run("Should reject unknown kinds", func(t *testing.T) {
		_, err := r.Render(Kind("newsletter"), nil, Data{})
		assert.Error(t, err)
	})

	t.Run("Should format money in the shop currency", func(t *testing.T) {
		assert.Contains(t, r.Money(decimal.RequireFromString("12.5")), "12.5")
	})
}

func TestNewRendererRejectsUnknownCurrency(t *testing.T) {
	shop := testShop()
	shop.Currency = "XXXX"

	_, err := NewRenderer(shop)
	assert.Error(t, err)
}

func TestSMTPSender(t *testing.T) {
	cfg := config.Mail{Host: "smtp.test", Port: 25, From: "shop@shop.test", FromName: "Shop"}

	var (
		gotAddr string
		gotRcpt []string
		gotBody string
	)
	s := NewSMTPSender(cfg)
	s.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotRcpt, gotBody = addr, to, string(msg)
		return nil
	}

	err := s.Send(context.Background(), Message{
		To:      []string{"jane@example.com"},
		Bcc:     []string{"audit@shop.test"},
		Subject: "Hello",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:25", gotAddr)
	assert.Equal(t, []string{"jane@example.com", "audit@shop.test"}, gotRcpt)
	assert.Contains(t, gotBody, "To: jane@example.com\r\n")
	assert.NotContains(t, gotBody, "audit@shop.test")
	assert.Contains(t, gotBody, "plain")
	assert.Contains(t, gotBody, "<p>html</p>")

	assert.Error(t, s.Send(context.Background(), Message{Subject: "no one"}))
}
