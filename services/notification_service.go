// services/notification_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/salus-app/salus_backend/config"
)

const (
	otpEmailSubject = "Your OTP Code for Verification"
	twilioBaseURL   = "https://api.twilio.com/2010-04-01"
)

func otpEmailBody(code string) string {
	return fmt.Sprintf("Hello,\n\nYour OTP for verification is: %s\n\n"+
		"It is valid for 5 minutes. This is an auto-generated email, please do not reply.\n\nRegards,\nSalus", code)
}

func otpSMSBody(code string) string {
	return fmt.Sprintf("Your Salus verification code is %s. It expires in 5 minutes.", code)
}

// Mailer is satisfied by *gomail.Dialer.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NotificationService delivers OTP codes by email (SMTP) or SMS (Twilio).
type NotificationService struct {
	mailer Mailer
	from   string
	sms    *TwilioClient
	logger *zap.Logger
}

func NewNotificationService(cfg config.Config, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		mailer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
		sms:    NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber),
		logger: logger,
	}
}

// SendEmail mails the code to address. gomail has no context support, so
// ctx is only checked before dialing.
func (n *NotificationService) SendEmail(ctx context.Context, address, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", address)
	m.SetHeader("Subject", otpEmailSubject)
	m.SetBody("text/plain", otpEmailBody(code))

	if err := n.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.logger.Debug("otp email sent", zap.String("to", maskContact(address)))
	return nil
}

func (n *NotificationService) SendSMS(ctx context.Context, number, code string) error {
	sid, err := n.sms.Send(ctx, number, otpSMSBody(code))
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	n.logger.Debug("otp sms sent", zap.String("to", maskContact(number)), zap.String("sid", sid))
	return nil
}

// TwilioClient talks to the Twilio Messages REST endpoint.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func NewTwilioClient(accountSID, authToken, from string) *TwilioClient {
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type twilioMessage struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts body to the number and returns the message SID.
func (t *TwilioClient) Send(ctx context.Context, to, body string) (string, error) {
	if t.accountSID == "" || t.authToken == "" {
		return "", fmt.Errorf("twilio credentials are not configured")
	}
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}
	var msg twilioMessage
	_ = json.Unmarshal(raw, &msg)

	if resp.StatusCode >= http.StatusBadRequest {
		if msg.Message != "" {
			return "", fmt.Errorf("twilio %d (code %d): %s", resp.StatusCode, msg.Code, msg.Message)
		}
		return "", fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return msg.SID, nil
}

// maskContact keeps logs free of full addresses and numbers.
func maskContact(v string) string {
	if at := strings.Index(v, "@"); at > 0 {
		if at <= 2 {
			return strings.Repeat("*", at) + v[at:]
		}
		return v[:2] + strings.Repeat("*", at-2) + v[at:]
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
