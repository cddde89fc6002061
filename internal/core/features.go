package core

import (
	"net"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// ExtractFeatures derives the full feature set of an email. It never fails;
// empty input yields zero values.
func ExtractFeatures(subject, body, sender string) FeatureSet {
	return FeatureSet{
		URL:    ExtractURLFeatures(body),
		Text:   ExtractTextFeatures(subject, body),
		Sender: ExtractSenderFeatures(sender, body),
	}
}

// FindURLs returns every URL-pattern match in text, in order of appearance
func FindURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// ExtractURLFeatures derives URL features from the URLs found in text
func ExtractURLFeatures(text string) URLFeatures {
	urls := FindURLs(text)

	var features URLFeatures
	features.NumURLs = len(urls)
	if len(urls) == 0 {
		return features
	}

	domains := make(map[string]struct{})
	totalLength, totalDots, totalDigits := 0, 0, 0

	for _, u := range urls {
		if domain := RegistrableDomain(u); domain != "" {
			domains[domain] = struct{}{}
		}
		totalLength += utf8.RuneCountInString(u)
		totalDots += strings.Count(u, ".")
		totalDigits += countRunes(u, unicode.IsDigit)

		if ipPattern.MatchString(u) {
			features.HasIP = true
		}
		if containsAny(strings.ToLower(u), phishingKeywords) {
			features.HasPhishingKeywordsInURL = true
		}
	}

	n := float64(len(urls))
	features.NumUniqueDomains = len(domains)
	features.AvgURLLength = float64(totalLength) / n
	features.NumDotsInURL = float64(totalDots) / n
	features.NumDigitsInURL = float64(totalDigits) / n

	return features
}

// ExtractTextFeatures derives text features from the subject and body
func ExtractTextFeatures(subject, body string) TextFeatures {
	fullText := subject + " " + body

	features := TextFeatures{
		SubjectLen:      utf8.RuneCountInString(subject),
		BodyLen:         utf8.RuneCountInString(body),
		NumUppercase:    countRunes(fullText, unicode.IsUpper),
		NumDigits:       countRunes(fullText, unicode.IsDigit),
		NumSpecialChars: countRunes(fullText, isSpecial),
		HasMoneySymbol:  containsAny(fullText, moneySymbols),
		NumExclamation:  strings.Count(fullText, "!"),
		NumQuestion:     strings.Count(fullText, "?"),
	}
	features.HasPhishingKeywords = containsAny(strings.ToLower(fullText), phishingKeywords)

	if total := utf8.RuneCountInString(fullText); total > 0 {
		features.RatioUppercase = float64(features.NumUppercase) / float64(total)
		features.RatioDigits = float64(features.NumDigits) / float64(total)
	}

	return features
}

// ExtractSenderFeatures derives sender features. The domain mismatch compares the
// sender's domain against the registrable domain of every URL in the body.
func ExtractSenderFeatures(sender, body string) SenderFeatures {
	features := SenderFeatures{
		SenderHasNumbers: strings.IndexFunc(sender, unicode.IsDigit) >= 0,
		SenderLength:     utf8.RuneCountInString(sender),
	}

	senderDomain := SenderDomain(sender)
	if senderDomain == "" {
		return features
	}

	for _, u := range FindURLs(body) {
		urlDomain := RegistrableDomain(u)
		if urlDomain != "" && urlDomain != senderDomain {
			features.SenderDomainMismatch = true
			break
		}
	}

	return features
}

// SenderDomain returns the lower-cased part of an address after the last '@'
func SenderDomain(sender string) string {
	at := strings.LastIndex(sender, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(sender[at+1:])
}

// RegistrableDomain returns the public-suffix-aware domain of a URL, e.g.
// "paypal-verify.tk" for "http://secure.paypal-verify.tk/login". IP literals and
// hosts the suffix list cannot split are returned as-is. Unparseable input yields "".
func RegistrableDomain(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// hostOf extracts the lower-cased host of a URL without failing on malformed input
func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.LastIndex(rest, ":"); i >= 0 && !strings.Contains(rest, "]") {
		rest = rest[:i]
	}
	rest = strings.Trim(rest, "[].")
	return strings.ToLower(rest)
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r)
}

func countRunes(s string, pred func(rune) bool) int {
	n := 0
	for _, r := range s {
		if pred(r) {
			n++
		}
	}
	return n
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
