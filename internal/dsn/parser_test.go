package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

var testParser = Parser{Scheme: "jdbc:fdbsql:", DefaultPort: 15432}

func TestParse_NotMine(t *testing.T) {
	for _, s := range []string{
		"jdbc:postgresql://h/db",
		"postgres://h/db",
		"",
		"jdbc:fdbsq://h/db",
		"x?jdbc:fdbsql://h/db",
	} {
		t.Run(s, func(t *testing.T) {
			res, ok, err := testParser.Parse(s, nil, map[string]any{"k": nil})
			assert.False(t, ok)
			assert.NoError(t, err, "NotMine never validates the overlay")
			assert.Nil(t, res)
		})
	}
}

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		name     string
		connStr  string
		wantHost []fdbsql.HostSpec
		wantDB   string
		wantKeys map[string]string
	}{
		{
			name:     "single host with port",
			connStr:  "jdbc:fdbsql://db1:5000/app",
			wantHost: []fdbsql.HostSpec{{Host: "db1", Port: 5000}},
			wantDB:   "app",
			wantKeys: map[string]string{fdbsql.PropHost: "db1", fdbsql.PropPort: "5000", fdbsql.PropDatabase: "app"},
		},
		{
			name:     "default port applied per entry",
			connStr:  "jdbc:fdbsql://host:5432,host2/db",
			wantHost: []fdbsql.HostSpec{{Host: "host", Port: 5432}, {Host: "host2", Port: 15432}},
			wantDB:   "db",
			wantKeys: map[string]string{fdbsql.PropHost: "host,host2", fdbsql.PropPort: "5432,15432"},
		},
		{
			name:     "short form",
			connStr:  "jdbc:fdbsql:mydb",
			wantHost: []fdbsql.HostSpec{{Host: "localhost", Port: 15432}},
			wantDB:   "mydb",
			wantKeys: map[string]string{fdbsql.PropHost: "localhost", fdbsql.PropPort: "15432", fdbsql.PropDatabase: "mydb"},
		},
		{
			name:     "bracketed ipv6 without port",
			connStr:  "jdbc:fdbsql://[::1]/db",
			wantHost: []fdbsql.HostSpec{{Host: "[::1]", Port: 15432}},
			wantDB:   "db",
		},
		{
			name:     "bracketed ipv6 with port",
			connStr:  "jdbc:fdbsql://[fe80::1]:7000/db",
			wantHost: []fdbsql.HostSpec{{Host: "[fe80::1]", Port: 7000}},
			wantDB:   "db",
		},
		{
			name:     "empty database",
			connStr:  "jdbc:fdbsql://h/",
			wantHost: []fdbsql.HostSpec{{Host: "h", Port: 15432}},
			wantDB:   "",
		},
		{
			name:     "database keeps later slashes",
			connStr:  "jdbc:fdbsql://h/a/b",
			wantHost: []fdbsql.HostSpec{{Host: "h", Port: 15432}},
			wantDB:   "a/b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok, err := testParser.Parse(tt.connStr, nil, nil)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.wantHost, res.Hosts())
			assert.Equal(t, tt.wantDB, res.Database())
			for k, want := range tt.wantKeys {
				got, present := res.Get(k)
				assert.True(t, present, k)
				assert.Equal(t, want, got, k)
			}
		})
	}
}

func TestParse_HostCountMatchesEntries(t *testing.T) {
	res, ok, err := testParser.Parse("jdbc:fdbsql://a,b:1,c,d:2/db", nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []fdbsql.HostSpec{
		{Host: "a", Port: 15432},
		{Host: "b", Port: 1},
		{Host: "c", Port: 15432},
		{Host: "d", Port: 2},
	}, res.Hosts())
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{
		"jdbc:fdbsql://hostonly",
		"jdbc:fdbsql://h:abc/db",
		"jdbc:fdbsql://h:-1/db",
		"jdbc:fdbsql://h:/db",
		"jdbc:fdbsql://a,,b/db",
		"jdbc:fdbsql:///db",
		"jdbc:fdbsql://:5000/db",
	} {
		t.Run(s, func(t *testing.T) {
			res, ok, err := testParser.Parse(s, nil, nil)
			assert.True(t, ok)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, fdbsql.ErrMalformedConnectionString)
			assert.False(t, testParser.Accepts(s))
		})
	}
}

func TestParse_Query(t *testing.T) {
	res, _, err := testParser.Parse("jdbc:fdbsql://h/db?ssl&a=1&&b=x=y&a=2", nil, nil)
	require.NoError(t, err)

	props := res.Properties()
	assert.Equal(t, "", props["ssl"])
	assert.Equal(t, "2", props["a"], "later duplicates win")
	assert.Equal(t, "x=y", props["b"], "split on first '=' only")
	_, hasEmpty := props[""]
	assert.False(t, hasEmpty)
}

func TestParse_Precedence(t *testing.T) {
	base := fdbsql.Properties{"user": "os-user", "ssl": "base", "charSet": "utf8", "a": "base", fdbsql.PropHost: "spoofed"}
	overlay := map[string]any{"a": "overlay", "password": "pw", fdbsql.PropDatabase: "spoofed"}

	res, ok, err := testParser.Parse("jdbc:fdbsql://h/db?ssl=query&a=query", base, overlay)
	require.NoError(t, err)
	require.True(t, ok)

	props := res.Properties()
	assert.Equal(t, "os-user", props["user"], "base survives when nothing overrides it")
	assert.Equal(t, "utf8", props["charSet"])
	assert.Equal(t, "query", props["ssl"], "query beats discovered default")
	assert.Equal(t, "overlay", props["a"], "overlay beats query")
	assert.Equal(t, "pw", props["password"])
	assert.Equal(t, "h", props[fdbsql.PropHost], "reserved keys always win")
	assert.Equal(t, "db", props[fdbsql.PropDatabase])
	assert.Equal(t, "os-user", res.User())

	assert.Equal(t, "base", base["ssl"], "inputs untouched")
	assert.Equal(t, "spoofed", base[fdbsql.PropHost])
}

func TestParse_InvalidOverlay(t *testing.T) {
	tests := []struct {
		name    string
		overlay map[string]any
	}{
		{"nil value", map[string]any{"user": nil}},
		{"integer value", map[string]any{"loginTimeout": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := testParser.Parse("jdbc:fdbsql://h/db", nil, tt.overlay)
			assert.True(t, ok)
			assert.ErrorIs(t, err, fdbsql.ErrInvalidOverlayProperty)
		})
	}
}

func TestAcceptsAndOwns(t *testing.T) {
	assert.True(t, testParser.Accepts("jdbc:fdbsql://h/db"))
	assert.True(t, testParser.Accepts("jdbc:fdbsql:db"))
	assert.False(t, testParser.Accepts("jdbc:postgresql://h/db"))

	assert.True(t, testParser.Owns("jdbc:fdbsql://broken"))
	assert.False(t, testParser.Owns("jdbc:mysql://h/db"))
}

func TestMerge(t *testing.T) {
	a := fdbsql.Properties{"x": "1", "y": "1"}
	b := fdbsql.Properties{"y": "2"}
	c := fdbsql.Properties{"z": "3"}

	got := Merge(a, nil, b, c)
	assert.Equal(t, fdbsql.Properties{"x": "1", "y": "2", "z": "3"}, got)
	assert.Equal(t, "1", a["y"])
	assert.Empty(t, Merge())
}
