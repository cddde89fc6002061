package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLFeatures(t *testing.T) {
	t.Run("no urls", func(t *testing.T) {
		features := ExtractURLFeatures("Hello, see you tomorrow at the office.")

		assert.Equal(t, 0, features.NumURLs)
		assert.Equal(t, 0, features.NumUniqueDomains)
		assert.Zero(t, features.AvgURLLength)
		assert.Zero(t, features.NumDotsInURL)
		assert.Zero(t, features.NumDigitsInURL)
		assert.False(t, features.HasIP)
	})

	t.Run("phishing url", func(t *testing.T) {
		features := ExtractURLFeatures("Dear customer, verify now: http://paypal-verify.tk/secure/login.php")

		assert.Equal(t, 1, features.NumURLs)
		assert.Equal(t, 1, features.NumUniqueDomains)
		assert.Equal(t, 40.0, features.AvgURLLength)
		assert.Equal(t, 2.0, features.NumDotsInURL)
		assert.True(t, features.HasPhishingKeywordsInURL)
		assert.False(t, features.HasIP)
	})

	t.Run("ip literal and averages", func(t *testing.T) {
		features := ExtractURLFeatures("http://10.0.0.1/a and https://www.example.com/b")

		assert.Equal(t, 2, features.NumURLs)
		assert.Equal(t, 2, features.NumUniqueDomains)
		assert.True(t, features.HasIP)
		assert.Equal(t, 2.5, features.NumDotsInURL)
		assert.Equal(t, 2.5, features.NumDigitsInURL)
	})

	t.Run("duplicate domains counted once", func(t *testing.T) {
		features := ExtractURLFeatures("https://a.example.com/x https://b.example.com/y")

		assert.Equal(t, 2, features.NumURLs)
		assert.Equal(t, 1, features.NumUniqueDomains)
	})
}

func TestExtractTextFeatures(t *testing.T) {
	features := ExtractTextFeatures("URGENT", "Pay $100 now!!")

	assert.Equal(t, 6, features.SubjectLen)
	assert.Equal(t, 14, features.BodyLen)
	assert.Equal(t, 7, features.NumUppercase)
	assert.Equal(t, 3, features.NumDigits)
	assert.Equal(t, 3, features.NumSpecialChars)
	assert.True(t, features.HasMoneySymbol)
	assert.Equal(t, 2, features.NumExclamation)
	assert.Equal(t, 0, features.NumQuestion)
	assert.True(t, features.HasPhishingKeywords)
	assert.InDelta(t, 7.0/21.0, features.RatioUppercase, 1e-9)
	assert.InDelta(t, 3.0/21.0, features.RatioDigits, 1e-9)
}

func TestExtractTextFeaturesEmpty(t *testing.T) {
	features := ExtractTextFeatures("", "")

	assert.Equal(t, 0, features.SubjectLen)
	assert.Equal(t, 0, features.BodyLen)
	assert.Zero(t, features.RatioUppercase)
	assert.Zero(t, features.RatioDigits)
	assert.False(t, features.HasPhishingKeywords)
}

func TestExtractTextFeaturesCountsRunes(t *testing.T) {
	features := ExtractTextFeatures("Prix", "Réglez 50€ aujourd'hui")

	assert.Equal(t, 4, features.SubjectLen)
	assert.Equal(t, 22, features.BodyLen)
	assert.True(t, features.HasMoneySymbol)
	assert.Equal(t, 2, features.NumUppercase)
}

func TestExtractSenderFeatures(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		body     string
		mismatch bool
		numbers  bool
	}{
		{"matching domain", "support@paypal-verify.tk", "visit http://paypal-verify.tk/secure", false, false},
		{"different domain", "alerts@bank.com", "visit http://bank-login.tk/verify", true, false},
		{"case insensitive", "Support@Example.COM", "see https://www.example.com/help", false, false},
		{"digits in sender", "user123@mail.com", "no links", false, true},
		{"no at sign", "postmaster", "visit http://example.com", false, false},
		{"empty sender", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := ExtractSenderFeatures(tt.sender, tt.body)

			assert.Equal(t, tt.mismatch, features.SenderDomainMismatch)
			assert.Equal(t, tt.numbers, features.SenderHasNumbers)
			assert.Equal(t, len([]rune(tt.sender)), features.SenderLength)
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"http://paypal-verify.tk/secure/login.php", "paypal-verify.tk"},
		{"https://www.bbc.co.uk/news", "bbc.co.uk"},
		{"https://user:pw@Sub.Example.com:8080/x?y=1", "example.com"},
		{"http://192.168.1.1/login", "192.168.1.1"},
		{"http://192.168.1.1:8080", "192.168.1.1"},
		{"http://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, RegistrableDomain(tt.url))
		})
	}
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "example.com", SenderDomain("John@Example.com"))
	assert.Equal(t, "b.org", SenderDomain("weird@a@b.org"))
	assert.Equal(t, "", SenderDomain("nobody"))
}
