package config

import "time"

type Marketing struct {
	TopsellerLimit int `env:"MARKETING_TOPSELLER_LIMIT" envDefault:"5"`

	SalesInterval time.Duration `env:"MARKETING_SALES_INTERVAL" envDefault:"1h"`

	RatingMailEnabled  bool          `env:"MARKETING_RATING_MAIL_ENABLED" envDefault:"false"`
	RatingMailDays     int           `env:"MARKETING_RATING_MAIL_DAYS" envDefault:"14"`
	RatingMailInterval time.Duration `env:"MARKETING_RATING_MAIL_INTERVAL" envDefault:"24h"`
	RatingMailBCC      []string      `env:"MARKETING_RATING_MAIL_BCC" envSeparator:","`
}
