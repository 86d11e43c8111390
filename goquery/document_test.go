package goquery_test

import (
	"testing"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricePage = `<!DOCTYPE html><html lang="en"><head><title>Bitcoin</title></head><body>` +
	`<div class="sc-16r8icm-0 priceTitle__AbC12"><div class="priceValue ">$1.21</div>` +
	`<span class="sc-15yy2pl-0 feeyND"><span class="icon-Caret-up"></span>1.32<!-- -->%</span></div>` +
	`</body></html>`

const listPage = `<!DOCTYPE html><html lang="en"><body>
<ul class="list">
	<li>first</li>
	<!-- comment -->
	<li>second</li>
	text between
	<li>third</li>
</ul>
<p class="empty"></p>
</body></html>`

func pattern(t *testing.T, s string) *coinscrape.LocatorPattern {
	t.Helper()
	p, err := coinscrape.ParseLocatorPattern(s)
	require.NoError(t, err)
	return p
}

func TestDocument_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts price and percentage block from one anchor", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(pricePage)
		require.NoError(t, err)

		got, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, coinscrape.DefaultConfig().Patterns.Price),
			Paths: []coinscrape.RelationPath{
				{coinscrape.Child(0)},
				{coinscrape.Child(0), coinscrape.Sibling(0)},
			},
			Mode: coinscrape.ContentHTML,
		})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "$1.21", got[0])
		assert.Equal(t, `<span class="icon-Caret-up"></span>1.32<!-- -->%`, got[1])
	})

	t.Run("returns one result per path in path order", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(listPage)
		require.NoError(t, err)

		got, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(ul) (class="list")>`),
			Paths: []coinscrape.RelationPath{
				{coinscrape.Child(-1)},
				{coinscrape.Child(0)},
				{coinscrape.Child(1)},
			},
			Mode: coinscrape.ContentText,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"third", "first", "second"}, got)
	})

	t.Run("empty path returns the anchor itself", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(listPage)
		require.NoError(t, err)

		got, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(ul) (class="list")>`),
			Paths:   []coinscrape.RelationPath{{}},
			Mode:    coinscrape.ContentHTML,
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "<li>first</li>")
		assert.Contains(t, got[0], "<li>third</li>")
	})

	t.Run("fails as a whole when any path fails", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(listPage)
		require.NoError(t, err)

		got, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(ul) (class="list")>`),
			Paths: []coinscrape.RelationPath{
				{coinscrape.Child(0)},
				{coinscrape.Child(5)},
			},
			Mode: coinscrape.ContentText,
		})

		assert.Nil(t, got)
		assert.Equal(t, coinscrape.ETRAVERSAL, coinscrape.ErrorCode(err))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(listPage)
		require.NoError(t, err)
		req := &coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(ul) (class="list")>`),
			Paths:   []coinscrape.RelationPath{{coinscrape.Child(0), coinscrape.Sibling(0)}},
			Mode:    coinscrape.ContentText,
		}

		first, err := doc.Extract(req)
		require.NoError(t, err)
		second, err := doc.Extract(req)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("rejects a request without paths", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDocument(listPage)
		require.NoError(t, err)

		_, err = doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(ul) (class="list")>`),
		})

		assert.Equal(t, coinscrape.EINVALID, coinscrape.ErrorCode(err))
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("parses raw content and runs the query", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.NewExtractor().Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, coinscrape.DefaultConfig().Patterns.Price),
			Paths:   []coinscrape.RelationPath{{coinscrape.Child(0)}},
			Mode:    coinscrape.ContentText,
		}, pricePage)

		require.NoError(t, err)
		assert.Equal(t, []string{"$1.21"}, got)
	})

	t.Run("propagates locator errors", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.Extract(&coinscrape.ExtractionRequest{
			Pattern: pattern(t, `<(table) (class="missing")>`),
			Paths:   []coinscrape.RelationPath{{}},
		}, pricePage)

		assert.Equal(t, coinscrape.EPATTERN, coinscrape.ErrorCode(err))
	})
}
