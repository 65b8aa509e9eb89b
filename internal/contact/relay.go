// Package contact forwards website inquiries to the dealership by email.
package contact

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/mail"
	"strings"

	"github.com/petermazzocco/car-dealership/models"
)

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer hands a message to the mail provider and returns its message ID.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Result reports whether an inquiry was accepted by the mail provider.
// Detail explains a failure in words safe to show the visitor. Local is set
// when the inquiry was rejected without contacting the provider.
type Result struct {
	Sent   bool   `json:"sent"`
	ID     string `json:"id,omitempty"`
	Detail string `json:"detail,omitempty"`
	Local  bool   `json:"-"`
}

// Relay sends inquiries to a fixed dealership address. There is no retry and
// no deduplication: submitting twice sends two emails.
type Relay struct {
	mailer Mailer
	from   string
	to     string
}

func NewRelay(m Mailer, from, to string) *Relay {
	return &Relay{mailer: m, from: from, to: to}
}

func (r *Relay) Send(ctx context.Context, inq models.Inquiry) Result {
	inq = trim(inq)
	if detail := validate(inq); detail != "" {
		return Result{Detail: detail, Local: true}
	}

	msg, err := r.compose(inq)
	if err != nil {
		log.Println("Failed to compose inquiry email:", err)
		return Result{Detail: "We couldn't send your message. Please try again."}
	}
	id, err := r.mailer.Send(ctx, msg)
	if err != nil {
		log.Println("Failed to send inquiry email:", err)
		return Result{Detail: "We couldn't send your message. Please try again or call us."}
	}
	log.Printf("Inquiry from %s relayed as %s", inq.Email, id)
	return Result{Sent: true, ID: id}
}

func trim(inq models.Inquiry) models.Inquiry {
	inq.Name = strings.TrimSpace(inq.Name)
	inq.Email = strings.TrimSpace(inq.Email)
	inq.Phone = strings.TrimSpace(inq.Phone)
	inq.Subject = strings.TrimSpace(inq.Subject)
	inq.Message = strings.TrimSpace(inq.Message)
	inq.CarID = strings.TrimSpace(inq.CarID)
	inq.CarTitle = strings.TrimSpace(inq.CarTitle)
	return inq
}

func validate(inq models.Inquiry) string {
	switch {
	case inq.Name == "":
		return "Please enter your name."
	case inq.Email == "":
		return "Please enter your email address."
	case inq.Subject == "":
		return "Please enter a subject."
	case inq.Message == "":
		return "Please enter a message."
	}
	if _, err := mail.ParseAddress(inq.Email); err != nil {
		return "Please enter a valid email address."
	}
	return ""
}

var htmlBody = template.Must(template.New("inquiry").Parse(`<h2>New website inquiry</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>
{{end}}{{if .CarTitle}}<p><strong>Vehicle:</strong> {{.CarTitle}}{{if .CarID}} ({{.CarID}}){{end}}</p>
{{end}}<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>
`))

func (r *Relay) compose(inq models.Inquiry) (Message, error) {
	subject := inq.Subject
	if inq.CarTitle != "" {
		subject = fmt.Sprintf("[%s] %s", inq.CarTitle, inq.Subject)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Name: %s\nEmail: %s\n", inq.Name, inq.Email)
	if inq.Phone != "" {
		fmt.Fprintf(&text, "Phone: %s\n", inq.Phone)
	}
	if inq.CarTitle != "" {
		fmt.Fprintf(&text, "Vehicle: %s\n", inq.CarTitle)
	}
	fmt.Fprintf(&text, "Subject: %s\n\n%s\n", inq.Subject, inq.Message)

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, inq); err != nil {
		return Message{}, err
	}

	return Message{
		From:    r.from,
		To:      r.to,
		ReplyTo: inq.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
