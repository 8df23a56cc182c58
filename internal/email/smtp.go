package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"stockquote_backend/platform/config"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendQuoteLink(ctx context.Context, toEmail string, data QuoteLinkData) error {
	content, err := renderEmailTemplate("quote_link.html", quoteLinkEmailData{
		baseEmailData: baseEmailData{
			Title:    fmt.Sprintf(subjectQuoteLinkFmt, data.QuoteNumber, data.OrganizationName),
			Heading:  fmt.Sprintf("Quote %s", data.QuoteNumber),
			CTALabel: "View quote",
			CTAURL:   data.PublicURL,
		},
		ClientName:       data.ClientName,
		OrganizationName: data.OrganizationName,
		Total:            data.Total,
		ValidUntil:       data.ValidUntil,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectQuoteLinkFmt, data.QuoteNumber, data.OrganizationName), content)
}

func (s *SMTPSender) SendQuoteDecision(ctx context.Context, toEmail string, data QuoteDecisionData) error {
	subject := fmt.Sprintf(subjectQuoteApprovedFmt, data.QuoteNumber)
	template := "quote_approved.html"
	if !data.Approved {
		subject = fmt.Sprintf(subjectQuoteDeclinedFmt, data.QuoteNumber)
		template = "quote_declined.html"
	}

	content, err := renderEmailTemplate(template, quoteDecisionEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  subject,
			CTALabel: "Open quote",
			CTAURL:   data.QuoteURL,
		},
		ClientName: data.ClientName,
		Total:      data.Total,
		Reason:     data.Reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuoteComment(ctx context.Context, toEmail string, data QuoteCommentData) error {
	subject := fmt.Sprintf(subjectQuoteCommentFmt, data.QuoteNumber)
	content, err := renderEmailTemplate("quote_comment.html", quoteCommentEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  subject,
			CTALabel: "Reply on the quote",
			CTAURL:   data.QuoteURL,
		},
		AuthorName: data.AuthorName,
		Body:       data.Body,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

var _ Sender = (*SMTPSender)(nil)
var _ Sender = (*NoopSender)(nil)
