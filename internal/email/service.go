package email

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Service interface {
	// SendExport mails a CSV export as an attachment.
	SendExport(ctx context.Context, to, title, filename string, csv []byte) error
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Dialer sends messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer Dialer
	from   string
}

func NewService(cfg Config) Service {
	return NewServiceWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewServiceWithDialer(dialer Dialer, from string) Service {
	return &smtpService{dialer: dialer, from: from}
}

func (s *smtpService) SendExport(ctx context.Context, to, title, filename string, csv []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s export", title))
	m.SetBody("text/plain", fmt.Sprintf("Attached is the %s export (%s).", title, filename))
	m.Attach(filename,
		gomail.SetHeader(map[string][]string{"Content-Type": {"text/csv; charset=utf-8"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(csv)
			return err
		}),
	)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send export email: %w", err)
	}
	log.Info().Str("to", to).Str("file", filename).Msg("Export email sent")
	return nil
}
