package order

import (
	"fmt"
	"net/url"
	"strings"
)

// Message renders the submission as plain text for a messenger chat.
func Message(s Submission) string {
	p := s.Payload()

	var b strings.Builder
	b.WriteString("Здравствуйте! Хочу заказать баннер.\n\n")
	fmt.Fprintf(&b, "Имя: %s\n", p.Name)
	fmt.Fprintf(&b, "Телефон: %s\n", FormatPhone(p.Phone))
	if p.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Материал: %s\n", p.Material)
	fmt.Fprintf(&b, "Размер: %s (%s м²)\n", p.Size, p.Area)
	fmt.Fprintf(&b, "Количество: %d шт\n", p.Quantity)
	if p.Eyelets {
		fmt.Fprintf(&b, "Люверсы: да (~%d шт)\n", p.EyeletsCount)
	}
	fmt.Fprintf(&b, "Стоимость: %s ₽", FormatRub(p.TotalPrice))
	if p.Comment != "" {
		fmt.Fprintf(&b, "\n\nКомментарий: %s", p.Comment)
	}
	return b.String()
}

// DeepLink appends the message as the text parameter of a messenger link
// such as https://t.me/printcalc or https://wa.me/79990000000.
func DeepLink(base string, s Submission) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("order.DeepLink: parse %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("order.DeepLink: %q is not an absolute url", base)
	}

	text := "text=" + encodeURIComponent(Message(s))
	if u.RawQuery == "" {
		u.RawQuery = text
	} else {
		u.RawQuery += "&" + text
	}
	return u.String(), nil
}

func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
