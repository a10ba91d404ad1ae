package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andriansp/gocommerce/pkg/mailer"
)

func TestRenderJobUsesRecipientName(t *testing.T) {
	subject, text := renderJob(&mailer.EmailJob{
		Type: mailer.JobWelcome,
		Data: map[string]any{"name": "Jane Doe"},
	})
	assert.Equal(t, "Welcome to GoCommerce", subject)
	assert.Contains(t, text, "Hi Jane Doe,")

	subject, text = renderJob(&mailer.EmailJob{
		Type: mailer.JobPasswordChanged,
		Data: map[string]any{"name": "Jane Doe"},
	})
	assert.Equal(t, "Your password was changed", subject)
	assert.Contains(t, text, "Hi Jane Doe,")
}

func TestRenderJobFallsBackWithoutName(t *testing.T) {
	_, text := renderJob(&mailer.EmailJob{Type: mailer.JobWelcome})
	assert.Contains(t, text, "Hi there,")
}

func TestRenderJobKeepsExplicitSubjectAndBody(t *testing.T) {
	subject, text := renderJob(&mailer.EmailJob{
		Type:    mailer.JobWelcome,
		Subject: "Custom subject",
		Text:    "Custom body",
	})
	assert.Equal(t, "Custom subject", subject)
	assert.Equal(t, "Custom body", text)
}
