package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/mikey/phishing-detector/internal/core"
)

// DateLayout is the layout of EmailRecord.DateReceived for parsed messages
const DateLayout = time.RFC3339

// ParseMessage parses a raw RFC 5322 message into an email record.
// text/plain parts make up the body; an HTML-only message is converted to text.
// URLs are the ordered union of the body URLs and the HTML anchor targets.
func ParseMessage(r io.Reader) (*core.EmailRecord, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	record := &core.EmailRecord{}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		record.Sender = from[0].Address
		record.SenderName = from[0].Name
	} else {
		record.Sender = strings.TrimSpace(mr.Header.Get("From"))
	}
	record.SenderDomain = core.SenderDomain(record.Sender)

	if subject, err := mr.Header.Subject(); err == nil {
		record.Subject = subject
	} else {
		record.Subject = mr.Header.Get("Subject")
	}

	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		record.DateReceived = date.UTC().Format(DateLayout)
	}

	if id, err := mr.Header.MessageID(); err == nil && id != "" {
		record.ID = id
	} else {
		record.ID = uuid.NewString()
	}

	var plain, html []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			// keep what was read so far
			if len(plain) > 0 || len(html) > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case ct == "" || strings.HasPrefix(ct, "text/plain"):
			plain = append(plain, string(body))
		case strings.HasPrefix(ct, "text/html"):
			html = append(html, string(body))
		}
	}

	var links []string
	for _, h := range html {
		doc, err := parseHTML(h)
		if err != nil {
			continue
		}
		if len(plain) == 0 && doc.Text != "" {
			record.Body = joinNonEmpty(record.Body, doc.Text)
		}
		links = append(links, doc.Links...)
	}
	if len(plain) > 0 {
		record.Body = strings.Join(plain, "\n")
	}

	record.URLs = mergeURLs(core.FindURLs(record.Body), links)
	record.URLCount = len(record.URLs)

	return record, nil
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

func mergeURLs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, list := range lists {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}
	return merged
}
