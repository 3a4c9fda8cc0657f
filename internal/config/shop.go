package config

import (
	"errors"
	"fmt"
)

type Shop struct {
	Name               string   `env:"SHOP_NAME" envDefault:"LFS"`
	BaseURL            string   `env:"SHOP_BASE_URL" envDefault:"http://localhost:8000"`
	Currency           string   `env:"SHOP_CURRENCY" envDefault:"EUR"`
	Language           string   `env:"SHOP_LANGUAGE" envDefault:"en"`
	DefaultCountry     string   `env:"SHOP_DEFAULT_COUNTRY" envDefault:"DE"`
	OrderNumberPrefix  string   `env:"SHOP_ORDER_NUMBER_PREFIX" envDefault:"LFS-"`
	NotificationEmails []string `env:"SHOP_NOTIFICATION_EMAILS" envSeparator:","`
	// DeliveryTime is used when neither product nor shipping method defines one.
	DeliveryTimeMin int `env:"SHOP_DELIVERY_TIME_MIN" envDefault:"1"`
	DeliveryTimeMax int `env:"SHOP_DELIVERY_TIME_MAX" envDefault:"2"`
}

func (s *Shop) Validate() error {
	var errs []error
	if len(s.DefaultCountry) != 2 {
		errs = append(errs, fmt.Errorf("SHOP_DEFAULT_COUNTRY %q is not an ISO 3166 alpha-2 code", s.DefaultCountry))
	}
	if len(s.Currency) != 3 {
		errs = append(errs, fmt.Errorf("SHOP_CURRENCY %q is not an ISO 4217 code", s.Currency))
	}
	if s.DeliveryTimeMin > s.DeliveryTimeMax {
		errs = append(errs, errors.New("SHOP_DELIVERY_TIME_MIN is greater than SHOP_DELIVERY_TIME_MAX"))
	}
	return errors.Join(errs...)
}
