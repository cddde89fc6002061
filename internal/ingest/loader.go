package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mikey/phishing-detector/internal/core"
)

// UnknownRecordID identifies an array element that could not be decoded as a record
const UnknownRecordID = "unknown"

// LoadRecords decodes a JSON array of email records. A leading UTF-8 byte order
// mark is ignored. Missing or mistyped fields decode to zero values, and an element
// that is not an object comes back with LoadErr set so the batch reports it as failed.
func LoadRecords(r io.Reader) ([]core.EmailRecord, error) {
	decoder := json.NewDecoder(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	var raws []json.RawMessage
	if err := decoder.Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode email records: %w", err)
	}

	// Each element decodes on its own so one bad record cannot sink the array
	records := make([]core.EmailRecord, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &records[i]); err != nil {
			records[i] = core.EmailRecord{
				ID:      UnknownRecordID,
				LoadErr: fmt.Errorf("record %d: %w", i, err),
			}
		}
	}
	return records, nil
}

func LoadFile(path string) ([]core.EmailRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return LoadRecords(f)
}
