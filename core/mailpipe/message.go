// Package mailpipe turns inbound email into grade-book operations. A message
// is parsed, classified by the bracketed tag in its subject, matched against
// the course roster, and dispatched; the pipeline can answer each message
// with a signed response from the course robot.
package mailpipe

import (
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// InboundMessage is the parsed view of one piece of incoming mail.
type InboundMessage struct {
	Sender   string // envelope sender address, lowercased
	Subject  string
	Body     string // first text/plain part, decoded
	Raw      []byte // the full message as received, for archival
	Received time.Time
}

// ParseMessage reads one RFC 5322 message. The sender is taken from
// Return-Path when present, falling back to From; the received time from the
// Date header, falling back to now.
func ParseMessage(r io.Reader) (*InboundMessage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading message")
	}
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "parsing message")
	}

	sender, err := senderAddress(msg.Header)
	if err != nil {
		return nil, err
	}

	subject := msg.Header.Get("Subject")
	if dec, err := (&mime.WordDecoder{}).DecodeHeader(subject); err == nil {
		subject = dec
	}

	body, err := textBody(msg.Header.Get("Content-Type"), msg.Body)
	if err != nil {
		return nil, err
	}

	received := time.Now()
	if date, err := msg.Header.Date(); err == nil {
		received = date
	}

	return &InboundMessage{
		Sender:   strings.ToLower(sender),
		Subject:  subject,
		Body:     body,
		Raw:      raw,
		Received: received,
	}, nil
}

func senderAddress(h mail.Header) (string, error) {
	for _, key := range []string{"Return-Path", "From"} {
		v := h.Get(key)
		if v == "" || v == "<>" {
			continue
		}
		addr, err := mail.ParseAddress(v)
		if err != nil {
			continue
		}
		return addr.Address, nil
	}
	return "", errors.New("message has no usable sender address")
}

// textBody returns the first text/plain part, descending into multipart
// containers. A non-multipart message is taken as plain text whatever its
// declared type.
func textBody(contentType string, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", errors.Wrap(err, "reading body")
		}
		return string(b), nil
	}

	mr := multipart.NewReader(r, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", errors.Wrap(err, "walking multipart body")
		}
		partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil || partType == "text/plain" {
			b, err := io.ReadAll(part)
			if err != nil {
				return "", errors.Wrap(err, "reading body part")
			}
			return string(b), nil
		}
		if strings.HasPrefix(partType, "multipart/") {
			if body, err := textBody(part.Header.Get("Content-Type"), part); err == nil && body != "" {
				return body, nil
			}
		}
	}
}
