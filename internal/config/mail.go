package config

type Mail struct {
	Host     string `env:"MAIL_HOST"`
	Port     int    `env:"MAIL_PORT" envDefault:"587"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"shop@example.com"`
	FromName string `env:"MAIL_FROM_NAME" envDefault:"LFS"`
}

// Enabled reports whether an SMTP host is configured. Without one mails are
// only logged.
func (m Mail) Enabled() bool {
	return m.Host != ""
}
