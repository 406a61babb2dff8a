package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/reservly/booking-api/internal/model"
)

// Sender delivers booking lifecycle notifications. Delivery is best effort:
// callers log failures and never fail the booking because of one.
type Sender interface {
	SendBookingConfirmation(ctx context.Context, booking *model.Booking, clinicName string) error
	SendBookingCancellation(ctx context.Context, booking *model.Booking, clinicName string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) SendBookingConfirmation(ctx context.Context, booking *model.Booking, clinicName string) error {
	if booking.GuestEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Your booking at %s is confirmed", clinicName)
	body := fmt.Sprintf(
		"Your appointment at %s on %s has been confirmed.",
		clinicName,
		booking.StartTime.Format(time.RFC1123),
	)
	return s.send(booking.GuestEmail, subject, body)
}

func (s *smtpSender) SendBookingCancellation(ctx context.Context, booking *model.Booking, clinicName string) error {
	if booking.GuestEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Your booking at %s was cancelled", clinicName)
	body := fmt.Sprintf(
		"Your appointment at %s on %s has been cancelled.",
		clinicName,
		booking.StartTime.Format(time.RFC1123),
	)
	return s.send(booking.GuestEmail, subject, body)
}

func (s *smtpSender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NoopSender is used when SMTP is not configured
type NoopSender struct{}

func (NoopSender) SendBookingConfirmation(context.Context, *model.Booking, string) error { return nil }
func (NoopSender) SendBookingCancellation(context.Context, *model.Booking, string) error { return nil }
