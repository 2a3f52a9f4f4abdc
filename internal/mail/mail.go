package mail

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"
)

type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	verifyText = texttmpl.Must(texttmpl.New("verify.txt").Parse(
		`Hello {{.Name}},

Please confirm your email address to activate your mentor account:

{{.Link}}

The link expires in {{.ExpiresIn}}.
`))

	verifyHTML = htmltmpl.Must(htmltmpl.New("verify.gohtml").Parse(
		`<p>Hello {{.Name}},</p>
<p>Please confirm your email address to activate your mentor account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in {{.ExpiresIn}}.</p>
`))
)

type verifyData struct {
	Name      string
	Link      string
	ExpiresIn string
}

// VerificationMessage renders the account confirmation email.
func VerificationMessage(to mail.Address, link, expiresIn string) (Message, error) {
	data := verifyData{Name: to.Name, Link: link, ExpiresIn: expiresIn}

	var text, html bytes.Buffer
	if err := verifyText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := verifyHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Verify your email",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
