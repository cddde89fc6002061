package filter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ingest"
)

// DefaultSubjectPrefix is used when subject modification is on and no prefix is set
const DefaultSubjectPrefix = "[PHISHING] "

// PostfixFilter implements a Postfix content filter. Mail received over SMTP is
// analyzed, annotated with headers and re-injected into Postfix.
type PostfixFilter struct {
	service *core.DetectionService
	logger  *zap.Logger
	cfg     config.ServerConfig
	server  *smtp.Server

	// relay delivers the annotated message; sendToPostfix unless overridden
	relay func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(service *core.DetectionService, logger *zap.Logger, cfg config.ServerConfig) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 30 * time.Second
	}

	f := &PostfixFilter{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
	f.relay = f.sendToPostfix
	return f
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	// Create a new SMTP server
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	// Configure the server
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	// Start the server in a goroutine
	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email without any SMTP handling
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.EmailRecord) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// handleMessage analyzes one raw message, then rejects it or relays it annotated
func (f *PostfixFilter) handleMessage(ctx context.Context, sender string, recipients []string, raw []byte) error {
	// Parse the email
	record, err := ingest.ParseMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}
	if record.Sender == "" {
		record.Sender = sender
		record.SenderDomain = core.SenderDomain(sender)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.AnalysisTimeout)
	defer cancel()

	// Analyze the email
	result, analysisErr := f.service.AnalyzeEmail(ctx, record)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", record.Sender),
			zap.String("sender_domain", record.SenderDomain))
	}

	if result != nil && f.shouldBlock(result) {
		f.logger.Info("Rejecting phishing email",
			zap.String("from", record.Sender),
			zap.String("sender_domain", record.SenderDomain),
			zap.Stringer("threat_level", result.Prediction.ThreatLevel),
			zap.Int("risk_score", result.Prediction.RiskScore),
			zap.String("model", result.AnalysisMetadata.ModelUsed))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message: fmt.Sprintf("Rejected as phishing (threat level: %s, risk score: %d)",
				result.Prediction.ThreatLevel, result.Prediction.RiskScore),
		}
	}

	// Add the analysis headers
	annotated, err := f.annotate(raw, result, analysisErr)
	if err != nil {
		f.logger.Error("Failed to annotate message", zap.Error(err))
		return err
	}

	// Send the email back to Postfix
	if f.cfg.Postfix.Enabled {
		if err := f.relay(sender, recipients, annotated); err != nil {
			f.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", record.Sender))
			return err
		}
	} else {
		f.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	if result != nil {
		f.logger.Info("Processed email",
			zap.String("from", record.Sender),
			zap.String("sender_domain", record.SenderDomain),
			zap.Bool("is_phishing", result.Prediction.IsPhishing),
			zap.Stringer("threat_level", result.Prediction.ThreatLevel),
			zap.Int("risk_score", result.Prediction.RiskScore),
			zap.String("model", result.AnalysisMetadata.ModelUsed))
	}

	return nil
}

func (f *PostfixFilter) shouldBlock(result *core.AnalysisResult) bool {
	return f.cfg.BlockEnabled &&
		result.Prediction.IsPhishing &&
		result.Prediction.ThreatLevel >= f.cfg.BlockLevel
}

// annotate adds the analysis headers to raw and, for phishing mail, prefixes the
// subject. The body is copied through untouched.
func (f *PostfixFilter) annotate(raw []byte, result *core.AnalysisResult, analysisErr error) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	th, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	h := mail.Header{Header: message.Header{Header: th}}

	for _, field := range f.analysisHeaders(result, analysisErr) {
		h.Set(field[0], field[1])
	}

	if result != nil && result.Prediction.IsPhishing && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		subject, err := h.Subject()
		if err != nil {
			subject = h.Get("Subject")
		}
		if !strings.HasPrefix(subject, f.cfg.SubjectPrefix) {
			h.SetSubject(f.cfg.SubjectPrefix + subject)
		}
	}

	var buf bytes.Buffer
	if err := textproto.WriteHeader(&buf, h.Header.Header); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	if _, err := io.Copy(&buf, br); err != nil {
		return nil, fmt.Errorf("failed to copy message body: %w", err)
	}
	return buf.Bytes(), nil
}

// analysisHeaders lists the header fields describing an analysis outcome
func (f *PostfixFilter) analysisHeaders(result *core.AnalysisResult, analysisErr error) [][2]string {
	names := f.cfg.Headers
	if result == nil {
		fields := [][2]string{{names.Verdict, "UNKNOWN"}}
		if analysisErr != nil {
			fields = append(fields, [2]string{names.Error, analysisErr.Error()})
		}
		return fields
	}

	flags := make([]string, 0, len(result.SecurityIndicators.RedFlags))
	for _, flag := range result.SecurityIndicators.RedFlags {
		flags = append(flags, flag.Flag)
	}
	redFlags := strings.Join(flags, ", ")
	if redFlags == "" {
		redFlags = "none"
	}

	return [][2]string{
		{names.Verdict, result.Prediction.Verdict},
		{names.ThreatLevel, result.Prediction.ThreatLevel.String()},
		{names.RiskScore, strconv.Itoa(result.Prediction.RiskScore)},
		{names.RedFlags, redFlags},
	}
}

// sendToPostfix sends the processed email back to Postfix on the configured port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.cfg.Postfix.Address, strconv.Itoa(f.cfg.Postfix.Port))

	// Get hostname for EHLO
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	// Connect to the server with a timeout
	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	// Set a deadline for the connection
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	// Create a client
	c := smtp.NewClient(conn)
	defer c.Close()

	// Send EHLO
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	// Set the sender
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	// Set the recipients, continuing past individual rejections
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

	// Send the email data
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

	// Quit the connection. The message is already accepted at this point
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	return s.filter.handleMessage(context.Background(), s.sender, s.recipients, raw)
}

func (s *smtpSession) Logout() error {
	return nil
}
