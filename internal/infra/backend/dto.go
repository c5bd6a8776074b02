package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"storefront-gateway/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// flexString accepts a JSON string or number; gateway order codes arrive as either.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errs.Wrap(err, "order code")
	}
	*s = flexString(n.String())
	return nil
}

// flexDecimal accepts amounts as JSON numbers or numeric strings.
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := strings.Trim(string(b), `"`)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return errs.Wrapf(err, "amount %q", raw)
	}
	d.Decimal = v
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// timestamp parses RFC 3339 and the zone-less ISO forms the backend emits.
// Zone-less values are taken as UTC.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw, err := strconv.Unquote(string(b))
	if err != nil {
		return errs.Wrap(err, "timestamp must be a string")
	}
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, raw); err == nil {
			t.Time = v
			return nil
		}
	}
	return errs.Newf("unsupported timestamp %q", raw)
}
