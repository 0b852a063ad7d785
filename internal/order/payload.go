package order

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Payload is the JSON body the order endpoint accepts.
type Payload struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Comment      string  `json:"comment"`
	Material     string  `json:"material"`
	Size         string  `json:"size"`
	Area         string  `json:"area"`
	Quantity     int     `json:"quantity"`
	Eyelets      bool    `json:"eyelets"`
	EyeletsCount int     `json:"eyelets_count"`
	TotalPrice   float64 `json:"total_price"`
}

func (s Submission) Payload() Payload {
	b := s.Breakdown

	var eyeletsCount int
	if b.Params.Grommets {
		eyeletsCount = b.GrommetCount
	}

	return Payload{
		Name:         s.Contact.Name,
		Phone:        s.Contact.Phone,
		Email:        s.Contact.Email,
		Comment:      s.Contact.Comment,
		Material:     b.MaterialName(),
		Size:         FormatSize(b.Params.Width, b.Params.Height),
		Area:         FormatArea(b.Area),
		Quantity:     b.Params.Quantity,
		Eyelets:      b.Params.Grommets,
		EyeletsCount: eyeletsCount,
		TotalPrice:   RoundMoney(b.Total),
	}
}

// toDecimal reads NaN as zero and ±Inf as ±MaxFloat64, which NewFromFloat
// would panic on.
func toDecimal(v float64) decimal.Decimal {
	switch {
	case math.IsNaN(v):
		return decimal.Zero
	case math.IsInf(v, 1):
		v = math.MaxFloat64
	case math.IsInf(v, -1):
		v = -math.MaxFloat64
	}
	return decimal.NewFromFloat(v)
}

// FormatSize renders "3×2 м", trailing zeros dropped.
func FormatSize(width, height float64) string {
	return toDecimal(width).String() + "×" + toDecimal(height).String() + " м"
}

// FormatArea renders square meters with two decimals.
func FormatArea(area float64) string {
	return toDecimal(area).StringFixed(2)
}

func RoundMoney(v float64) float64 {
	return toDecimal(v).Round(2).InexactFloat64()
}

// FormatRub groups thousands with a no-break space and uses a decimal comma,
// the way ru-RU locale prints prices: 12 345,5.
func FormatRub(v float64) string {
	d := toDecimal(v).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.String()
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune('\u00a0')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if fracPart != "" {
		out += "," + fracPart
	}
	return out
}
