package domain

import (
	"net/url"
	"strings"
	"unicode"
)

// WhatsAppLink builds the click-to-chat link for a contact number. Non-digits are dropped.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
