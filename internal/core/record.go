package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNotAnObject = errors.New("email record is not a JSON object")

// UnmarshalJSON decodes a record leniently. Numbers are accepted where strings are
// expected, numeric strings where url_count is expected, and any other mismatched
// field decodes to its zero value. Only a value that is not an object is an error.
func (e *EmailRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return errNotAnObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = EmailRecord{
		ID:           lenientString(fields["email_id"]),
		Sender:       lenientString(fields["sender"]),
		SenderName:   lenientString(fields["sender_name"]),
		SenderDomain: lenientString(fields["sender_domain"]),
		Subject:      lenientString(fields["subject"]),
		Body:         lenientString(fields["body_full"]),
		URLs:         lenientStrings(fields["urls_found"]),
		URLCount:     lenientInt(fields["url_count"]),
		DateReceived: lenientString(fields["date_received"]),
	}
	return nil
}

func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func lenientStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if s := lenientString(item); s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}

func lenientInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
		return int(f)
	}
	return 0
}
