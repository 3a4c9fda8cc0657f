package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

//go:embed templates
var templateFS embed.FS

type Kind string

const (
	KindOrderReceived     Kind = "order_received"
	KindOrderNotification Kind = "order_notification"
	KindOrderSent         Kind = "order_sent"
	KindOrderPaid         Kind = "order_paid"
	KindRating            Kind = "rating"
)

var subjects = map[Kind]string{
	KindOrderReceived:     "Your order %s at %s",
	KindOrderNotification: "New order %s at %s",
	KindOrderSent:         "Your order %s at %s has been sent",
	KindOrderPaid:         "Payment for order %s at %s received",
	KindRating:            "How did you like your order %s at %s?",
}

// Data is passed to every mail template.
type Data struct {
	Shop  string
	URL   string
	Order model.Order
	// Products are the ordered products, variants replaced by their parent.
	Products []model.Product
}

type Renderer struct {
	shop    config.Shop
	printer *message.Printer
	unit    currency.Unit
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func NewRenderer(shop config.Shop) (*Renderer, error) {
	unit, err := currency.ParseISO(shop.Currency)
	if err != nil {
		return nil, fmt.Errorf("parse currency %s: %w", shop.Currency, err)
	}

	r := &Renderer{
		shop:    shop,
		printer: message.NewPrinter(language.Make(shop.Language)),
		unit:    unit,
	}

	r.html, err = htmltemplate.New("html").
		Funcs(htmltemplate.FuncMap{"money": r.Money}).
		ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}

	r.text, err = texttemplate.New("text").
		Funcs(texttemplate.FuncMap{"money": r.Money}).
		ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	return r, nil
}

// Money formats an amount in the shop currency and language.
func (r *Renderer) Money(d decimal.Decimal) string {
	return r.printer.Sprint(currency.Symbol(r.unit.Amount(d.InexactFloat64())))
}

// Render builds the mail of the given kind for to.
func (r *Renderer) Render(kind Kind, to []string, data Data) (Message, error) {
	subject, ok := subjects[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail kind: %s", kind)
	}

	data.Shop = r.shop.Name
	data.URL = r.shop.BaseURL

	var text bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, string(kind)+".txt.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", kind, err)
	}

	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, string(kind)+".html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", kind, err)
	}

	return Message{
		To:      to,
		Subject: r.printer.Sprintf(subject, data.Order.Number, r.shop.Name),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
