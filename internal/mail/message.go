package mail

import (
	"bytes"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"dayplan/internal/service"
)

// NewMessage builds a multipart/alternative message with the plain-text
// part first and the HTML part second.
func NewMessage(from, to string, email service.Email) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient %q: %w", to, err)
	}
	m.Subject(email.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, email.Plain)
	m.AddAlternativeString(gomail.TypeTextHTML, email.HTML)
	return m, nil
}

// Raw renders the message in RFC 5322 form.
func Raw(m *gomail.Msg) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail: write message: %w", err)
	}
	return buf.Bytes(), nil
}
