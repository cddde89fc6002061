package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestParseMessagePlain(t *testing.T) {
	raw := crlf(`From: PayPal Support <support@paypal-verify.tk>
To: victim@example.com
Subject: Verify your account
Date: Fri, 14 Mar 2025 09:26:53 +0000
Message-ID: <abc123@paypal-verify.tk>
Content-Type: text/plain; charset=utf-8

Dear customer, verify now: http://paypal-verify.tk/secure/login.php
Thanks
`)

	record, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "abc123@paypal-verify.tk", record.ID)
	assert.Equal(t, "support@paypal-verify.tk", record.Sender)
	assert.Equal(t, "PayPal Support", record.SenderName)
	assert.Equal(t, "paypal-verify.tk", record.SenderDomain)
	assert.Equal(t, "Verify your account", record.Subject)
	assert.Equal(t, "2025-03-14T09:26:53Z", record.DateReceived)
	assert.Contains(t, record.Body, "verify now")
	assert.Equal(t, []string{"http://paypal-verify.tk/secure/login.php"}, record.URLs)
	assert.Equal(t, 1, record.URLCount)
}

func TestParseMessageMultipart(t *testing.T) {
	raw := crlf(`From: billing@example.com
Subject: =?utf-8?q?Facture_impay=C3=A9e?=
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="XYZ"

--XYZ
Content-Type: text/plain; charset=utf-8

Pay at https://example.com/pay
--XYZ
Content-Type: text/html; charset=utf-8

<html><body><p>Pay <a href="https://example.com/pay">here</a> or <a href="http://198.51.100.7/invoice.exe">there</a></p><a href="mailto:x@example.com">mail</a></body></html>
--XYZ--
`)

	record, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Facture impayée", record.Subject)
	assert.Equal(t, "example.com", record.SenderDomain)
	assert.Contains(t, record.Body, "Pay at https://example.com/pay")
	assert.NotContains(t, record.Body, "<a")
	assert.Equal(t, []string{"https://example.com/pay", "http://198.51.100.7/invoice.exe"}, record.URLs)
	assert.Equal(t, 2, record.URLCount)
	assert.NotEmpty(t, record.ID)
}

func TestParseMessageHTMLOnly(t *testing.T) {
	raw := crlf(`From: "Security Team" <security@bank-alert.xyz>
Subject: Account suspended
Content-Type: text/html; charset=utf-8

<html><head><style>p{color:red}</style></head><body><div>Your account is suspended.</div><p>Click <a href="https://bit.ly/reset">here</a></p></body></html>
`)

	record, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Security Team", record.SenderName)
	assert.Contains(t, record.Body, "Your account is suspended.")
	assert.Contains(t, record.Body, "Click here")
	assert.NotContains(t, record.Body, "color:red")
	assert.Equal(t, []string{"https://bit.ly/reset"}, record.URLs)
}

func TestMergeURLs(t *testing.T) {
	merged := mergeURLs([]string{"a", "b", "a"}, []string{"c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, merged)
	assert.Empty(t, mergeURLs())
}
