package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() Grid {
	g := make(Grid, 2)
	for r := range g {
		g[r] = make([]Cell, 3)
		for c := range g[r] {
			g[r][c] = Cell{ID: CellID(r, c), Role: RoleEmpty}
		}
	}
	g[0][0].Value = "8"
	g[0][2].Value = "5"
	return g
}

func TestGridCloneIsDeep(t *testing.T) {
	g := sampleGrid()
	clone := g.Clone()
	clone[0][0].Value = "9"

	assert.Equal(t, "8", g[0][0].Value)
	assert.Equal(t, "9", clone[0][0].Value)
}

func TestGridFindAndBounds(t *testing.T) {
	g := sampleGrid()

	p, ok := g.Find("r1-c2")
	require.True(t, ok)
	assert.Equal(t, Pos(1, 2), p)

	_, ok = g.Find("missing")
	assert.False(t, ok)

	assert.True(t, g.InBounds(Pos(1, 2)))
	assert.False(t, g.InBounds(Pos(2, 0)))
	assert.False(t, g.InBounds(Pos(0, -1)))
}

func TestRowStringRendersBlanksAsSpaces(t *testing.T) {
	g := sampleGrid()
	assert.Equal(t, "8 5", g.RowString(0))
	assert.Equal(t, "", g.RowString(1))
	assert.Equal(t, "", g.RowString(7))
}

func TestApiClientPermissions(t *testing.T) {
	c := &ApiClient{IsActive: true, Permissions: []string{"sessions:*"}}
	assert.True(t, c.HasPermission(PermSessionsWrite))
	assert.False(t, c.HasPermission(PermCatalogRead))

	c.IsActive = false
	assert.False(t, c.HasPermission(PermSessionsRead))

	var nilClient *ApiClient
	assert.False(t, nilClient.HasPermission(PermSessionsRead))
}
