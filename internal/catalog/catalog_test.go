package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

func TestDescribe_ReportsValuesAndRequiredFlags(t *testing.T) {
	props := fdbsql.Properties{
		fdbsql.PropUser:     "alice",
		fdbsql.PropDatabase: "app",
		"unrecognized":      "kept elsewhere",
	}

	infos := Default().Describe(props)
	require.Len(t, infos, Default().Len())

	byName := make(map[string]fdbsql.PropertyInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	assert.Equal(t, "alice", byName[fdbsql.PropUser].Value)
	assert.True(t, byName[fdbsql.PropUser].Present)
	assert.True(t, byName[fdbsql.PropUser].Required)

	assert.Equal(t, "app", byName[fdbsql.PropDatabase].Value)
	assert.True(t, byName[fdbsql.PropDatabase].Required)

	assert.False(t, byName[fdbsql.PropPassword].Present)
	assert.False(t, byName[fdbsql.PropPassword].Required)

	assert.Equal(t, []string{"0", "1", "2"}, byName[fdbsql.PropLogLevel].Choices)
	assert.Equal(t, []string{"varchar", "unspecified"}, byName[fdbsql.PropStringType].Choices)

	_, listed := byName["unrecognized"]
	assert.False(t, listed)
}

func TestDescribe_TableOrderIsStable(t *testing.T) {
	infos := Default().Describe(nil)
	assert.Equal(t, fdbsql.PropDatabase, infos[0].Name)
	assert.Equal(t, fdbsql.PropUser, infos[1].Name)
}

func TestDescribe_ChoicesAreCopies(t *testing.T) {
	c := Default()
	infos := c.Describe(nil)
	for i := range infos {
		if infos[i].Name == fdbsql.PropLogLevel {
			infos[i].Choices[0] = "9"
		}
	}
	e, ok := c.Lookup(fdbsql.PropLogLevel)
	require.True(t, ok)
	assert.Equal(t, "0", e.Choices[0])
}

func TestWith_AppendsAndReplaces(t *testing.T) {
	base := Default()
	ext := base.With(
		Entry{Name: "authMethod", Description: "auth"},
		Entry{Name: fdbsql.PropPassword, Description: "replaced"},
	)

	assert.Equal(t, base.Len()+1, ext.Len())

	e, ok := ext.Lookup(fdbsql.PropPassword)
	require.True(t, ok)
	assert.Equal(t, "replaced", e.Description)

	orig, _ := base.Lookup(fdbsql.PropPassword)
	assert.Equal(t, "Password to use when authenticating.", orig.Description)

	_, ok = base.Lookup("authMethod")
	assert.False(t, ok)
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Default().Lookup("nope")
	assert.False(t, ok)
}
