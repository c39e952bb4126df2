package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_NoMentions(t *testing.T) {
	for _, text := range []string{"", "plain note", "@", "@ alone", "100% sure!"} {
		assert.Empty(t, Parse(text), text)
	}
}

func TestParse_Cases(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"single", "@Alice", []string{"Alice"}},
		{"punctuation terminates", "ping @Jane, @Bob!", []string{"Jane", "Bob"}},
		{"question mark", "did @Carol see this?", []string{"Carol see this"}},
		{"multi word name", "thanks @Jane Smith.", []string{"Jane Smith"}},
		{"continues across spaces", "Great work @John on this candidate", []string{"John on this candidate"}},
		{"newline terminates", "first @Bob\nsecond line", []string{"Bob"}},
		{"double space stops extension", "@Bob  twice", []string{"Bob"}},
		{"abutting mentions", "@Jane Smith@Bob", []string{"Jane", "Bob"}},
		{"duplicates preserved", "@Alice, then @Alice.", []string{"Alice", "Alice"}},
		{"shortened to acceptable prefix", "ask @Dana about it's scope", []string{"Dana about"}},
		{"email domain", "mail bob@example.com", []string{"example"}},
		{"underscore and digits", "cc @dev_ops2.", []string{"dev_ops2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.text))
		})
	}
}

func TestParse_NoAcceptablePrefix(t *testing.T) {
	assert.Empty(t, Parse("@Jane's resume"))
	assert.Empty(t, Parse("@Jane-Doe"))
}

func TestParse_Restartable(t *testing.T) {
	text := "@Alice and @Bob, see @Carol."
	first := Parse(text)
	assert.Equal(t, first, Parse(text))
	assert.Equal(t, []string{"Alice and", "Bob", "Carol"}, first)
}
