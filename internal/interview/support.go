package interview

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed faq.yaml
var faqYAML []byte

type FAQ struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

var faqs = sync.OnceValues(func() ([]FAQ, error) {
	var out []FAQ
	if err := yaml.Unmarshal(faqYAML, &out); err != nil {
		return nil, fmt.Errorf("parsing faq: %w", err)
	}
	return out, nil
})

// FAQs returns the support page entries.
func FAQs() []FAQ {
	out, err := faqs()
	if err != nil {
		panic("interview: embedded faq: " + err.Error())
	}
	return out
}

// ContactMessage is a support inquiry.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}
