package mail

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type fakeSMTPClient struct {
	mailFrom string
	rcpts    []string
	body     strings.Builder
	quit     bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.mailFrom = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcpts = append(f.rcpts, to); return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.body}, nil
}
func (f *fakeSMTPClient) Quit() error                       { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                      { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error        { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error              { return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string)   { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newTestMailer(client *fakeSMTPClient) *smtpMailer {
	return &smtpMailer{
		cfg: SMTPSettings{
			Enabled: true,
			Host:    "smtp.example.com",
			Port:    587,
			From:    "noreply@example.com",
			Timeout: time.Second,
		},
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			server, conn := net.Pipe()
			_ = server.Close()
			return conn, client, nil
		},
		authFn: func(smtpClient, SMTPSettings) error { return nil },
	}
}

func TestSendDisabled(t *testing.T) {
	mailer := &smtpMailer{cfg: SMTPSettings{Enabled: false}}
	err := mailer.Send(context.Background(), Message{To: []string{"a@b.com"}})
	if err != ErrSMTPDisabled {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestSendDeliversMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(client)

	msg := OTPMessage("shopper@example.com", "123456", "Grocery")
	if err := mailer.Send(context.Background(), msg); err != nil {
		t.Fatalf("send error: %v", err)
	}

	if client.mailFrom != "noreply@example.com" {
		t.Fatalf("unexpected sender: %s", client.mailFrom)
	}
	if len(client.rcpts) != 1 || client.rcpts[0] != "shopper@example.com" {
		t.Fatalf("unexpected recipients: %v", client.rcpts)
	}
	if !strings.Contains(client.body.String(), "123456") {
		t.Fatal("expected body to contain the one time password")
	}
	if !client.quit {
		t.Fatal("expected QUIT after delivery")
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(client)

	err := mailer.Send(context.Background(), Message{To: []string{"not-an-address"}})
	if err == nil {
		t.Fatal("expected invalid address error")
	}
}
