package config

type PayPal struct {
	URL           string `env:"PAYPAL_URL" envDefault:"https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"`
	PayURL        string `env:"PAYPAL_PAY_URL" envDefault:"https://www.sandbox.paypal.com/cgi-bin/webscr"`
	ReceiverEmail string `env:"PAYPAL_RECEIVER_EMAIL"`
	// SendOrderMail triggers the order received mail once a payment is confirmed.
	SendOrderMail bool `env:"PAYPAL_SEND_ORDER_MAIL" envDefault:"true"`
}
