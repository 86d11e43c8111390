package coinscrape_test

import (
	"testing"

	"github.com/fwojciec/coinscrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want coinscrape.RelationPath
	}{
		{"empty", "", coinscrape.RelationPath{}},
		{"parent", "parent", coinscrape.RelationPath{coinscrape.Parent()}},
		{"last child", "child:-1", coinscrape.RelationPath{coinscrape.Child(-1)}},
		{
			"mixed with spaces",
			" child:0 , sibling:2,parent ",
			coinscrape.RelationPath{coinscrape.Child(0), coinscrape.Sibling(2), coinscrape.Parent()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := coinscrape.ParseRelationPath(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"cousin:1", "child", "child:x", "parent:1", "child:0,"} {
		t.Run("rejects "+in, func(t *testing.T) {
			t.Parallel()

			_, err := coinscrape.ParseRelationPath(in)

			assert.Equal(t, coinscrape.ECONFIG, coinscrape.ErrorCode(err))
		})
	}
}

func TestRelationPath_String(t *testing.T) {
	t.Parallel()

	p := coinscrape.RelationPath{coinscrape.Child(0), coinscrape.Sibling(0), coinscrape.Parent()}

	assert.Equal(t, "child:0,sibling:0,parent", p.String())

	back, err := coinscrape.ParseRelationPath(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestRelationPath_Append(t *testing.T) {
	t.Parallel()

	base := make(coinscrape.RelationPath, 1, 4)
	base[0] = coinscrape.Child(-1)

	a := base.Append(coinscrape.Child(0))
	b := base.Append(coinscrape.Sibling(1))

	assert.Equal(t, coinscrape.RelationPath{coinscrape.Child(-1)}, base)
	assert.Equal(t, coinscrape.RelationPath{coinscrape.Child(-1), coinscrape.Child(0)}, a)
	assert.Equal(t, coinscrape.RelationPath{coinscrape.Child(-1), coinscrape.Sibling(1)}, b)
}
