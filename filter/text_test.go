package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/mailscrub/filter"
	"github.com/zostay/mailscrub/rules"
)

func TestTextFilter_Apply(t *testing.T) {
	t.Parallel()

	ps, err := rules.CompilePatterns(rules.List{
		`Disclaimer:.*?\n\n`,
		`Sent from my \w+\.`,
	})
	require.NoError(t, err)

	f := filter.NewTextFilter(ps)
	assert.True(t, f.Active())

	const text = "Hi!\n\nDisclaimer: this message is\nconfidential.\n\nSee you.\nSent from my tablet.\n"
	const want = "Hi!\n\nSee you.\n\n"
	assert.Equal(t, want, f.Apply(text))
}

func TestTextFilter_PatternOrder(t *testing.T) {
	t.Parallel()

	// the second rule matches text only present once the first has run
	ps, err := rules.CompilePatterns(rules.List{`-cut-`, `ab`})
	require.NoError(t, err)

	f := filter.NewTextFilter(ps)
	assert.Equal(t, "", f.Apply("a-cut-b"))
}

func TestTextFilter_Inactive(t *testing.T) {
	t.Parallel()

	f := filter.NewTextFilter(nil)
	assert.False(t, f.Active())
	assert.Equal(t, "anything", f.Apply("anything"))
}
