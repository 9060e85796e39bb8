package query_test

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/query"
)

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "titanic", want: "titanic"},
		{in: "big boat", want: "big%20boat"},
		{in: "a+b", want: "a%2Bb"},
		{in: "filters[storeLocation]", want: "filters%5BstoreLocation%5D"},
		{in: "x&y=z", want: "x%26y%3Dz"},
		{in: "café", want: "caf%C3%A9"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, query.EncodeComponent(tt.in))
		})
	}
}

func TestParams_AppendsRepeatedKeys(t *testing.T) {
	var p query.Params
	p.Add("us", "mobile")
	p.Add("us", "returning visitor")
	p.AddAll("ids", []string{"1", "2"})

	got, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, "us=mobile&us=returning%20visitor&ids=1&ids=2", got)
	assert.Equal(t, []string{"mobile", "returning visitor"}, p.Values("us"))
	assert.Equal(t, "1", p.Get("ids"))
	assert.Empty(t, p.Get("missing"))
}

func TestParams_AddFiltersCountAndOrder(t *testing.T) {
	facets := []query.Facet{
		{Name: "Color", Values: []string{"red", "blue", "green"}},
		{Name: "Brand", Values: []string{"Acme"}},
		{Name: "size range", Values: []string{"S", "M"}},
	}

	var p query.Params
	p.AddFilters(facets)

	want := 0
	for _, f := range facets {
		want += len(f.Values)
	}
	require.Equal(t, want, p.Len())

	got, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t,
		"filters%5BColor%5D=red&filters%5BColor%5D=blue&filters%5BColor%5D=green"+
			"&filters%5BBrand%5D=Acme"+
			"&filters%5Bsize%20range%5D=S&filters%5Bsize%20range%5D=M",
		got)
	assert.Equal(t, []string{"red", "blue", "green"}, p.Values("filters[Color]"))
}

func TestParams_AddFiltersManyFacets(t *testing.T) {
	var facets []query.Facet
	for i := range 12 {
		values := make([]string, i%4+1)
		for j := range values {
			values[j] = fmt.Sprintf("v%d-%d", i, j)
		}
		facets = append(facets, query.Facet{Name: fmt.Sprintf("facet%d", i), Values: values})
	}

	var p query.Params
	p.AddFilters(facets)

	idx := 0
	all := p.All()
	for _, f := range facets {
		for _, v := range f.Values {
			require.Less(t, idx, len(all))
			assert.Equal(t, query.FilterKey(f.Name), all[idx].Key)
			assert.Equal(t, v, all[idx].Value)
			idx++
		}
	}
	assert.Equal(t, idx, len(all))
}

func TestParams_EncodedPassThrough(t *testing.T) {
	var p query.Params
	p.AddEncoded("fmt_options%5Bhidden_fields%5D", "price%20US")
	p.Add("term", "50% off")

	got, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, "fmt_options%5Bhidden_fields%5D=price%20US&term=50%25%20off", got)
}

func TestParams_EncodedValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "raw space", key: "term", value: "big boat"},
		{name: "ampersand", key: "term", value: "a&b"},
		{name: "equals in key", key: "a=b", value: "c"},
		{name: "fragment", key: "term", value: "a#b"},
		{name: "truncated escape", key: "term", value: "abc%2"},
		{name: "non hex escape", key: "term", value: "%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p query.Params
			p.AddEncoded(tt.key, tt.value)
			_, err := p.Encode()
			require.Error(t, err)
			assert.Equal(t, cioerrors.KindBuild, cioerrors.KindOf(err))
		})
	}
}

func TestParams_ZeroValue(t *testing.T) {
	var p query.Params
	got, err := p.Encode()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, p.Len())
}

func TestParams_Extend(t *testing.T) {
	var a, b query.Params
	a.Add("key", "golden-key")
	b.Add("i", "guido-the-guid")
	a.Extend(b)

	got, err := a.Encode()
	require.NoError(t, err)
	assert.Equal(t, "key=golden-key&i=guido-the-guid", got)
	assert.Equal(t, 1, b.Len())
}

func TestParseQuery_PreservesOrder(t *testing.T) {
	raw := "z=1&filters%5BstoreLocation%5D=CA&a=two%20words&z=2&plus=a+b&flag"
	p, err := query.ParseQuery(raw)
	require.NoError(t, err)

	var keys []string
	for _, item := range p.All() {
		keys = append(keys, item.Key)
	}
	assert.Equal(t, []string{"z", "filters[storeLocation]", "a", "z", "plus", "flag"}, keys)
	assert.Equal(t, "two words", p.Get("a"))
	assert.Equal(t, "a b", p.Get("plus"))
	assert.Equal(t, []string{"1", "2"}, p.Values("z"))

	encoded, err := p.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "z=1&filters%5BstoreLocation%5D=CA&a=two%20words"))
}

func TestParseQuery_Malformed(t *testing.T) {
	_, err := query.ParseQuery("a=%zz")
	require.Error(t, err)

	p, err := query.ParseQuery("")
	require.NoError(t, err)
	assert.Zero(t, p.Len())
}

func TestBuildURL(t *testing.T) {
	base := &url.URL{Scheme: "https", Host: "ac.cnstrc.com:8443", Path: "/"}

	var p query.Params
	p.Add("term", "big boat")
	got, err := query.BuildURL(base, "/search/big%20boat", p)
	require.NoError(t, err)
	assert.Equal(t, "https://ac.cnstrc.com:8443/search/big%20boat?term=big%20boat", got)

	got, err = query.BuildURL(base, "/browse/items", query.Params{})
	require.NoError(t, err)
	assert.Equal(t, "https://ac.cnstrc.com:8443/browse/items", got)
}
