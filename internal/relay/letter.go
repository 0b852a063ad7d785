package relay

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"printcalc/internal/order"
)

// Letter is the order email in both renditions.
type Letter struct {
	Subject string
	Text    string
	HTML    string
}

func NewLetter(p order.Payload) Letter {
	return Letter{
		Subject: "Новый заказ на баннер от " + p.Name,
		Text:    letterText(p),
		HTML:    letterHTML(p),
	}
}

func letterText(p order.Payload) string {
	var b strings.Builder
	b.WriteString("Новый заказ на баннер!\n\n")
	b.WriteString("Контактные данные:\n")
	fmt.Fprintf(&b, "Имя: %s\n", p.Name)
	fmt.Fprintf(&b, "Телефон: %s", order.FormatPhone(p.Phone))
	if p.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", p.Email)
	}
	b.WriteString("\n\nДетали заказа:\n")
	fmt.Fprintf(&b, "Материал: %s\n", p.Material)
	fmt.Fprintf(&b, "Размер: %s (%s м²)\n", p.Size, p.Area)
	fmt.Fprintf(&b, "Количество: %d шт", p.Quantity)
	if p.Eyelets {
		fmt.Fprintf(&b, "\nЛюверсы: Да (~%d шт)", p.EyeletsCount)
	}
	fmt.Fprintf(&b, "\n\nСтоимость: %s руб", order.FormatRub(p.TotalPrice))
	if p.Comment != "" {
		fmt.Fprintf(&b, "\n\nКомментарий: %s", p.Comment)
	}
	b.WriteString("\n")
	return b.String()
}

const (
	cardStyle  = `background: white; padding: 20px; border-radius: 8px; margin-bottom: 15px;`
	titleStyle = `color: #9333ea; margin-top: 0;`
)

func letterHTML(p order.Payload) string {
	esc := html.EscapeString

	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px; background: linear-gradient(135deg, #f5f3ff 0%, #fce7f3 100%); border-radius: 10px;">`)
	b.WriteString(`<h2 style="color: #9333ea; margin-bottom: 20px;">Новый заказ на баннер!</h2>`)

	fmt.Fprintf(&b, `<div style="%s"><h3 style="%s">Контактные данные:</h3>`, cardStyle, titleStyle)
	fmt.Fprintf(&b, `<p><strong>Имя:</strong> %s</p>`, esc(p.Name))
	fmt.Fprintf(&b, `<p><strong>Телефон:</strong> %s</p>`, esc(order.FormatPhone(p.Phone)))
	if p.Email != "" {
		fmt.Fprintf(&b, `<p><strong>Email:</strong> %s</p>`, esc(p.Email))
	}
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<div style="%s"><h3 style="%s">Детали заказа:</h3>`, cardStyle, titleStyle)
	fmt.Fprintf(&b, `<p><strong>Материал:</strong> %s</p>`, esc(p.Material))
	fmt.Fprintf(&b, `<p><strong>Размер:</strong> %s (%s м²)</p>`, esc(p.Size), esc(p.Area))
	fmt.Fprintf(&b, `<p><strong>Количество:</strong> %d шт</p>`, p.Quantity)
	if p.Eyelets {
		fmt.Fprintf(&b, `<p><strong>Люверсы:</strong> Да (~%d шт)</p>`, p.EyeletsCount)
	}
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<div style="%s"><h3 style="%s">Стоимость:</h3>`, cardStyle, titleStyle)
	fmt.Fprintf(&b, `<p style="font-size: 24px; font-weight: bold; color: #9333ea; margin: 0;">%s руб</p>`, order.FormatRub(p.TotalPrice))
	b.WriteString(`</div>`)

	if p.Comment != "" {
		fmt.Fprintf(&b, `<div style="background: white; padding: 20px; border-radius: 8px;"><h3 style="%s">Комментарий:</h3>`, titleStyle)
		fmt.Fprintf(&b, `<p>%s</p></div>`, esc(p.Comment))
	}

	b.WriteString(`</div></body></html>`)
	return b.String()
}

// Message renders the letter as a multipart/alternative RFC 5322 message.
func (l Letter) Message(from, to string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", l.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
	}

	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")

	if err := writePart(mw, "text/plain", l.Text); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html", l.HTML); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=utf-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	pw, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}

	qw := quotedprintable.NewWriter(pw)
	if _, err := qw.Write([]byte(body)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return qw.Close()
}
