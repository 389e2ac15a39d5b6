package validation

import (
	"regexp"
	"strings"
)

var spamWords = []string{
	"viagra", "casino", "lottery", "winner", "congratulations",
	"nigerian prince", "inheritance", "millions", "urgent",
	"click here", "free money", "no obligation",
}

var (
	linkRe    = regexp.MustCompile(`(?i)(http|https|www\.)`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+=\[\]{}|;:",.<>?]`)
)

// LooksLikeSpam applies the contact form heuristics to the subject and
// message: blocked keywords, more than three links, or special characters
// above 20% of the content.
func LooksLikeSpam(assunto, mensagem string) bool {
	content := strings.ToLower(mensagem + " " + assunto)
	for _, w := range spamWords {
		if strings.Contains(content, w) {
			return true
		}
	}
	if len(linkRe.FindAllStringIndex(content, -1)) > 3 {
		return true
	}
	specials := len(specialRe.FindAllStringIndex(content, -1))
	return float64(specials) > float64(len(content))*0.2
}
