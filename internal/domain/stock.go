package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Stock is the normalised quantity-on-hand of a product. Legacy rows store
// the quantity as free text; anything that does not parse as a number is
// Unbounded and the order engine does not enforce a limit for it.
type Stock struct {
	Available int64
	Unbounded bool
}

var UnboundedStock = Stock{Unbounded: true}

func BoundedStock(n int64) Stock { return Stock{Available: n} }

func ParseStock(raw string) Stock {
	s := strings.TrimSpace(raw)
	if s == "" {
		return UnboundedStock
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return UnboundedStock
	}
	return Stock{Available: d.Floor().IntPart()}
}

// Covers reports whether requested units can be taken from this stock.
func (s Stock) Covers(requested int64) bool {
	if s.Unbounded {
		return true
	}
	return s.Available > 0 && s.Available >= requested
}

// Take returns the stock left after removing n units. Unbounded stock is unchanged.
func (s Stock) Take(n int64) Stock {
	if s.Unbounded {
		return s
	}
	return Stock{Available: s.Available - n}
}

func (s Stock) Put(n int64) Stock {
	if s.Unbounded {
		return s
	}
	return Stock{Available: s.Available + n}
}

// Raw renders the value for the quantity column.
func (s Stock) Raw() string {
	if s.Unbounded {
		return ""
	}
	return strconv.FormatInt(s.Available, 10)
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if s.Unbounded {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(s.Available, 10)), nil
}

func (s *Stock) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = UnboundedStock
		return nil
	}
	*s = ParseStock(strings.Trim(string(b), `"`))
	return nil
}
