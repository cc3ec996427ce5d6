package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "The **tower** card appears", "The tower card appears"},
		{"italic", "a *gentle* warning", "a gentle warning"},
		{"underscore", "an _old_ flame", "an old flame"},
		{"heading", "## Your reading\nThe cards speak", "Your reading\nThe cards speak"},
		{"link", "see [the moon](https://example.com) rise", "see the moon rise"},
		{"inline code", "the `empress` reversed", "the empress reversed"},
		{"bullets", "- first card\n- second card", "first card\nsecond card"},
		{"dash rule", "The cards are clear.\n---\nTrust your path.", "The cards are clear.\n\nTrust your path."},
		{"star rule", "First half.\n***\nSecond half.", "First half.\n\nSecond half."},
		{"underscore rule", "First half.\n___\nSecond half.", "First half.\n\nSecond half."},
		{"spaced rule", "Above.\n- - -\nBelow.", "Above.\n\nBelow."},
		{"plain text untouched", "The cards show a long road ahead.", "The cards show a long road ahead."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdown(tt.in))
		})
	}
}

func TestStripMarkdown_Idempotent(t *testing.T) {
	in := "## Reading\nThe **tower** and the *moon* guide you to [clarity](x)."
	once := StripMarkdown(in)
	assert.Equal(t, once, StripMarkdown(once))
}
