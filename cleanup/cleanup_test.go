package cleanup_test

import (
	"testing"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/cleanup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Pipeline implements coinscrape.Cleaner at compile time.
var _ coinscrape.Cleaner = (*cleanup.Pipeline)(nil)

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("accepts empty rules", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{})

		require.NoError(t, err)
		assert.Equal(t, "unchanged", p.Clean("unchanged"))
	})

	t.Run("rejects invalid strip pattern", func(t *testing.T) {
		t.Parallel()

		_, err := cleanup.Compile(coinscrape.CleanupRules{Strip: []string{"("}})

		require.Error(t, err)
		assert.Equal(t, coinscrape.ECONFIG, coinscrape.ErrorCode(err))
	})

	t.Run("rejects invalid replace pattern", func(t *testing.T) {
		t.Parallel()

		_, err := cleanup.Compile(coinscrape.CleanupRules{
			Replace: []coinscrape.Replacement{{From: "[", To: ""}},
		})

		require.Error(t, err)
		assert.Equal(t, coinscrape.ECONFIG, coinscrape.ErrorCode(err))
	})

	t.Run("rejects invalid title pattern", func(t *testing.T) {
		t.Parallel()

		_, err := cleanup.Compile(coinscrape.CleanupRules{Title: "(?P<"})

		require.Error(t, err)
		assert.Equal(t, coinscrape.ECONFIG, coinscrape.ErrorCode(err))
	})
}

func TestPipeline_Clean(t *testing.T) {
	t.Parallel()

	t.Run("strips every strip pattern", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{
			Strip: []string{`<a[^>]*>`, `</a>`},
		})
		require.NoError(t, err)

		got := p.Clean(`see <a href="/x">the docs</a> now`)

		assert.Equal(t, "see the docs now", got)
	})

	t.Run("applies replacements in rule order", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{
			Replace: []coinscrape.Replacement{
				{From: "a", To: "b"},
				{From: "b", To: "c"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "ccc", p.Clean("abc"))
	})

	t.Run("expands capture groups in replacements", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{
			Replace: []coinscrape.Replacement{{From: `<b>(\w+)</b>`, To: "*$1*"}},
		})
		require.NoError(t, err)

		assert.Equal(t, "a *bold* word", p.Clean("a <b>bold</b> word"))
	})

	t.Run("normalises escaped newlines", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{
			Replace: []coinscrape.Replacement{{From: `</p>`, To: `\n`}},
		})
		require.NoError(t, err)

		assert.Equal(t, "one\ntwo\n", p.Clean("one</p>two</p>"))
	})

	t.Run("removes literal substrings after replacement", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{
			Replace: []coinscrape.Replacement{{From: "x", To: "&nbsp;"}},
			Remove:  []string{"&nbsp;"},
		})
		require.NoError(t, err)

		assert.Equal(t, "ab", p.Clean("axb"))
	})

	t.Run("reformats titles as delimited headings", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{Title: `##(.*?)##`})
		require.NoError(t, err)

		got := p.Clean("##What Is Bitcoin?##Bitcoin is a currency.")

		assert.Equal(t, "\n------------What Is Bitcoin?------------\nBitcoin is a currency.", got)
	})

	t.Run("treats remove rules literally", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.CleanupRules{Remove: []string{"a.c"}})
		require.NoError(t, err)

		assert.Equal(t, "abc-", p.Clean("abc-a.c"))
	})

	t.Run("is idempotent for default rules", func(t *testing.T) {
		t.Parallel()

		p, err := cleanup.Compile(coinscrape.DefaultConfig().Cleanup)
		require.NoError(t, err)

		input := `<h2 id="what-is-bitcoin">What Is Bitcoin (BTC)?</h2><div><p>Bitcoin is a <a href="/x">decentralized</a> currency.</p><p>It was created in 2009.&nbsp;</p></div>`

		once := p.Clean(input)
		twice := p.Clean(once)

		assert.Equal(t, once, twice)
		assert.Contains(t, once, "------------What Is Bitcoin (BTC)?------------")
		assert.Contains(t, once, "Bitcoin is a decentralized currency.\n")
		assert.NotContains(t, once, "<")
	})
}
