package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikeNeutralizesWildcards(t *testing.T) {
	cases := map[string]string{
		"plain":       "plain",
		"100%":        `100\%`,
		"under_score": `under\_score`,
		`back\slash`:  `back\\slash`,
		`%_\`:         `\%\_\\`,
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), "input %q", in)
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "p.price ASC", orderClause("price"))
	assert.Equal(t, "p.price DESC", orderClause("-price"))
	assert.Equal(t, "p.name ASC", orderClause("name"))
	assert.Equal(t, "p.created_at DESC", orderClause(""))
	assert.Equal(t, "p.created_at DESC", orderClause("id; DROP TABLE products"))
}
