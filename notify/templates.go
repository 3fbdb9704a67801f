package notify

import (
	"fmt"
	"html"
	"strings"
)

// Templates builds the transactional mails. Links point at PublicURL.
type Templates struct {
	From      string
	PublicURL string
}

func (t Templates) link(format string, args ...interface{}) string {
	return strings.TrimRight(t.PublicURL, "/") + fmt.Sprintf(format, args...)
}

func (t Templates) UserVerificationMail(to, name, token string) Mail {
	url := t.link("/v1/auth/verification/%s", token)
	return Mail{
		From:    t.From,
		To:      to,
		Subject: "Verify your Tomato account",
		Text:    fmt.Sprintf("Hi %s, confirm your email address by opening %s", name, url),
		HTML:    fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Confirm your email address</a></p>`, html.EscapeString(name), url),
	}
}

func (t Templates) RestaurantVerificationMail(to, restaurant, token string) Mail {
	url := t.link("/v1/restaurant/verification/%s", token)
	return Mail{
		From:    t.From,
		To:      to,
		Subject: "Verify your restaurant email",
		Text:    fmt.Sprintf("Confirm the email address of %s by opening %s", restaurant, url),
		HTML:    fmt.Sprintf(`<p><a href="%s">Confirm the email address of %s</a></p>`, url, html.EscapeString(restaurant)),
	}
}

func (t Templates) PasswordResetMail(to, token string) Mail {
	url := t.link("/v1/auth/reset/%s", token)
	return Mail{
		From:    t.From,
		To:      to,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Reset your password within one hour by opening %s", url),
		HTML:    fmt.Sprintf(`<p><a href="%s">Reset your password</a>. The link expires in one hour.</p>`, url),
	}
}

func (t Templates) PasswordChangedMail(to string) Mail {
	return Mail{
		From:    t.From,
		To:      to,
		Subject: "Your password was changed",
		Text:    "The password of your Tomato account was just changed.",
		HTML:    "<p>The password of your Tomato account was just changed.</p>",
	}
}
