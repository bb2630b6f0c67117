package mail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment is one file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email with a text part, an HTML part and optional attachments.
type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
	Date        time.Time
}

// Validate checks the addresses parse.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient kosong")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("recipient tidak valid: %w", err)
	}
	if m.From != "" {
		if _, err := mail.ParseAddress(m.From); err != nil {
			return fmt.Errorf("sender tidak valid: %w", err)
		}
	}
	return nil
}

// Bytes renders the RFC 822 message:
// multipart/mixed { multipart/alternative { text/plain, text/html }, attachments... }.
func (m Message) Bytes() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	header := []struct{ k, v string }{
		{"MIME-Version", "1.0"},
		{"Date", date.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@railticket>", uuid.NewString())},
	}
	if m.From != "" {
		header = append(header, struct{ k, v string }{"From", m.From})
	}
	header = append(header,
		struct{ k, v string }{"To", m.To},
		struct{ k, v string }{"Subject", mime.QEncoding.Encode("utf-8", m.Subject)},
		struct{ k, v string }{"Content-Type", "multipart/mixed; boundary=" + mixed.Boundary()},
	)
	var head bytes.Buffer
	for _, h := range header {
		fmt.Fprintf(&head, "%s: %s\r\n", h.k, h.v)
	}
	head.WriteString("\r\n")

	altHeader := textproto.MIMEHeader{}
	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)
	altHeader.Set("Content-Type", "multipart/alternative; boundary="+alt.Boundary())
	if err := writeQuotedPart(alt, "text/plain; charset=utf-8", m.Text); err != nil {
		return nil, err
	}
	if err := writeQuotedPart(alt, "text/html; charset=utf-8", m.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	altPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	return append(head.Bytes(), buf.Bytes()...), nil
}

func writeQuotedPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, a Attachment) error {
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	name := a.Filename
	if name == "" {
		name = "attachment"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mime.FormatMediaType(ct, map[string]string{"name": name}))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Transfer-Encoding", "base64")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = part.Write([]byte(encoded + "\r\n"))
	return err
}
