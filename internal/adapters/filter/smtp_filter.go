package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/core"
)

// SmtpFilter is an SMTP content filter: it accepts messages from the
// MTA, classifies the text, stamps X-Phishing headers, and hands the
// message back to the relay port. With block_phishing enabled, high-risk
// mail is rejected at DATA time instead.
type SmtpFilter struct {
	service       *core.ClassifierService
	logger        *zap.Logger
	listenAddr    string
	server        *smtp.Server
	blockPhishing bool
	verdictHeader string
	scoreHeader   string
	reasonHeader  string
	relayAddr     string
	relayPort     int
	relayEnabled  bool
	subjectPrefix string
	modifySubject bool
}

// NewSmtpFilter creates a new SMTP content filter
func NewSmtpFilter(
	service *core.ClassifierService,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	verdictHeader string,
	scoreHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *SmtpFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}
	return &SmtpFilter{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		blockPhishing: blockPhishing,
		verdictHeader: verdictHeader,
		scoreHeader:   scoreHeader,
		reasonHeader:  reasonHeader,
		relayAddr:     relayAddr,
		relayPort:     relayPort,
		relayEnabled:  relayEnabled,
		subjectPrefix: subjectPrefix,
		modifySubject: modifySubject,
	}
}

// Start starts the SMTP filter service
func (f *SmtpFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Stop stops the SMTP filter service
func (f *SmtpFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an email directly, bypassing the SMTP session.
func (f *SmtpFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.service.ClassifyEmail(ctx, email)
}

// relay sends the stamped message on to the relay port.
func (f *SmtpFilter) relay(sender string, recipients []string, emailData []byte) error {
	addr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SmtpFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SmtpFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and forwards the stamped copy.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		From:    s.sender,
		To:      s.recipients,
		Body:    textContent,
		Headers: msg.Header,
	}
	if subject, err := decodeEncodedHeader(msg.Header.Get("Subject")); err == nil {
		email.Subject = subject
	} else {
		email.Subject = msg.Header.Get("Subject")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, classifyErr := s.filter.service.ClassifyEmail(ctx, email)
	if classifyErr != nil {
		// Model-integrity failures must not eat mail: the message passes
		// through unstamped with an error header instead.
		s.filter.logger.Error("Failed to classify email",
			zap.Error(classifyErr),
			zap.String("sender", email.From))
		result = &core.ClassificationResult{
			Label:      core.LabelLegitimate,
			RiskLevel:  core.RiskLow,
			AnalyzedAt: time.Now(),
		}
	}

	if result.IsPhishing() && s.filter.blockPhishing && classifyErr == nil {
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", email.From),
			zap.Float64("probability", result.Probability))
		return fmt.Errorf("550 Rejected as phishing (probability: %.2f)", result.Probability)
	}

	stamped := s.stamp(msg, rawData, result, classifyErr)

	if s.filter.relayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, stamped); err != nil {
			s.filter.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay disabled, message accepted but not forwarded")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("label", string(result.Label)),
		zap.Float64("probability", result.Probability),
		zap.String("risk_level", string(result.RiskLevel)))

	return nil
}

// stamp rebuilds the message with verdict headers prepended, preserving
// the original body bytes so MIME parts and attachments pass through
// untouched.
func (s *smtpSession) stamp(msg *mail.Message, rawData []byte, result *core.ClassificationResult, classifyErr error) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %s\r\n", s.filter.verdictHeader, result.Label)
	fmt.Fprintf(&out, "%s: %.4f\r\n", s.filter.scoreHeader, result.Probability)
	if len(result.Indicators) > 0 {
		reasons := make([]string, len(result.Indicators))
		for i, ind := range result.Indicators {
			reasons[i] = ind.Description
		}
		fmt.Fprintf(&out, "%s: %s\r\n", s.filter.reasonHeader, strings.Join(reasons, "; "))
	}
	if classifyErr != nil {
		fmt.Fprintf(&out, "X-Phishing-Analysis-Error: %s\r\n", classifyErr.Error())
	}

	prefixSubject := result.IsPhishing() && s.filter.modifySubject && s.filter.subjectPrefix != ""
	for key, values := range msg.Header {
		if prefixSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	if prefixSubject {
		subject := msg.Header.Get("Subject")
		if decoded, err := decodeEncodedHeader(subject); err == nil {
			subject = decoded
		}
		if !strings.HasPrefix(subject, s.filter.subjectPrefix) {
			subject = s.filter.subjectPrefix + subject
		}
		fmt.Fprintf(&out, "Subject: %s\r\n", subject)
	}
	fmt.Fprintf(&out, "\r\n")

	bodyStart := bytes.Index(rawData, []byte("\r\n\r\n"))
	offset := 4
	if bodyStart == -1 {
		bodyStart = bytes.Index(rawData, []byte("\n\n"))
		offset = 2
	}
	if bodyStart != -1 {
		out.Write(rawData[bodyStart+offset:])
	}
	return out.Bytes()
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
