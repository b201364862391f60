package methodology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	list := c.List()
	require.NotEmpty(t, list)

	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].SortOrder, list[i].SortOrder, "catalog sorted by sort order")
	}

	emom, ok := c.Get("emom")
	require.True(t, ok)
	assert.Equal(t, "metcon", emom.Category)
	assert.NotEmpty(t, emom.Fields)

	ft, ok := c.Get("For Time")
	require.True(t, ok)
	assert.Equal(t, "FOR_TIME", ft.Code)

	_, ok = c.Get("unknown")
	assert.False(t, ok)
}

func TestDefaultsAreCopies(t *testing.T) {
	c := Default()
	d := c.Defaults("AMRAP")
	assert.Equal(t, 12, d["minutes"])
	assert.Equal(t, []any{}, d["movements"])

	d["minutes"] = 99
	assert.Equal(t, 12, c.Defaults("AMRAP")["minutes"])

	assert.Empty(t, c.Defaults("nope"))
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"  not for time ": "NOT_FOR_TIME",
		"not-for-time":    "NOT_FOR_TIME",
		"drop set":        "DROP_SET",
		"E2MOM":           "E2MOM",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCode(in), in)
	}
}

func TestLoadDedupKeepsLowestSortOrder(t *testing.T) {
	data := []byte(`
- {code: amrap, name: Late, sort_order: 5}
- {code: AMRAP, name: Early, sort_order: 1}
- {code: EMOM, name: E, sort_order: 3}
`)
	c, err := Load(data)
	require.NoError(t, err)
	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Early", list[0].Name)
	assert.Equal(t, "EMOM", list[1].Code)

	_, err = Load([]byte("- {name: nocode}"))
	assert.Error(t, err)
}
