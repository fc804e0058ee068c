package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Inlined so the binary does not depend on a templates directory being
// shipped next to it.
const welcomeTemplate = `
<p>Hi {{.Name}},</p>
<p>Your club has added you to its roster. Set your password to activate your
account:</p>
<p><a href="{{.RecoveryLink}}">Set my password</a></p>
<p>If you were not expecting this, you can ignore this email.</p>
`

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// renderWelcomeBody fills in the welcome template with html/template, so a
// member name or link containing markup characters is escaped, not injected.
func renderWelcomeBody(data WelcomeEmailData) (string, error) {
	t, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse welcome template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render welcome template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) SendWelcome(to, name, recoveryLink string) error {
	body, err := renderWelcomeBody(WelcomeEmailData{
		Name:         name,
		RecoveryLink: recoveryLink,
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to the club, %s!", name))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}
