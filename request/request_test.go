package request_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/query"
	"github.com/jonesrussell/north-cloud/constructorio/request"
)

var defaults = request.Defaults{
	Section:            "Products",
	AutocompleteCounts: map[string]int{"Search Suggestions": 10, "Products": 0},
}

func encode(t *testing.T, r request.Request, d request.Defaults) string {
	t.Helper()
	p, err := r.Params(d)
	require.NoError(t, err)
	s, err := p.Encode()
	require.NoError(t, err)
	return s
}

func variations() *request.VariationsMap {
	return &request.VariationsMap{
		Dtype: "array",
		Values: map[string]request.Aggregation{
			"size":  {Aggregation: "all", Field: "data.facets.size"},
			"color": {Aggregation: "first", Field: "data.facets.color"},
		},
		GroupBy: []request.GroupBy{{Name: "variation", Field: "data.variation_id"}},
	}
}

func TestSearch_BuilderAndDeclarativeAreEquivalent(t *testing.T) {
	built := request.NewSearchBuilder("jacket").
		Facet("Color", "red", "blue").
		Facet("Brand", "Acme").
		GroupID("outerwear").
		Page(2).
		PerPage(24).
		SortBy("price").
		SortOrder(request.SortAscending).
		Section("Products").
		HiddenFields("cost", "margin").
		HiddenFacets("internal").
		VariationsMap(variations()).
		PreFilterExpression(`{"name":"in_stock","value":"true"}`).
		Build()

	declared := request.BuildSearch("jacket", func(r *request.SearchRequest) {
		r.Filters = []query.Facet{
			{Name: "Color", Values: []string{"red", "blue"}},
			{Name: "Brand", Values: []string{"Acme"}},
		}
		r.GroupID = "outerwear"
		r.Page = 2
		r.PerPage = 24
		r.SortBy = "price"
		r.SortOrder = request.SortAscending
		r.Section = "Products"
		r.HiddenFields = []string{"cost", "margin"}
		r.HiddenFacets = []string{"internal"}
		r.VariationsMap = variations()
		r.PreFilterExpression = `{"name":"in_stock","value":"true"}`
	})

	assert.Equal(t, built, declared)
	assert.Equal(t, encode(t, built, defaults), encode(t, declared, defaults))
}

func TestSearch_BuilderStepsDoNotShareState(t *testing.T) {
	base := request.NewSearchBuilder("jacket").Facet("Color", "red")
	withBlue := base.Facet("Color", "blue")
	withPage := base.Page(3)

	assert.Len(t, base.Build().Filters, 1)
	assert.Len(t, withBlue.Build().Filters, 2)
	assert.Len(t, withPage.Build().Filters, 1)
	assert.Zero(t, base.Build().Page)

	got := base.Build()
	got.Filters[0].Values[0] = "mutated"
	assert.Equal(t, "red", base.Build().Filters[0].Values[0])
}

func TestSearch_DeclarativeCopiesInputs(t *testing.T) {
	fields := []string{"cost"}
	r := request.BuildSearch("jacket", func(r *request.SearchRequest) {
		r.HiddenFields = fields
	})
	fields[0] = "mutated"
	assert.Equal(t, []string{"cost"}, r.HiddenFields)
}

func TestSearch_ParamOrder(t *testing.T) {
	r := request.BuildSearch("big jacket", func(r *request.SearchRequest) {
		r.Filters = []query.Facet{{Name: "Color", Values: []string{"red"}}}
		r.GroupID = "outer wear"
		r.Page = 2
		r.PerPage = 24
		r.SortBy = "price"
		r.SortOrder = request.SortDescending
		r.HiddenFields = []string{"cost"}
		r.HiddenFacets = []string{"internal"}
		r.GroupsSortBy = "value"
		r.GroupsSortOrder = request.SortAscending
		r.PreFilterExpression = "x"
	})

	assert.Equal(t, "/search/big%20jacket", r.Path())
	assert.Equal(t,
		"filters%5BColor%5D=red"+
			"&filters%5Bgroup_id%5D=outer%20wear"+
			"&page=2&num_results_per_page=24&sort_by=price&sort_order=descending"+
			"&section=Products"+
			"&fmt_options%5Bhidden_fields%5D=cost"+
			"&fmt_options%5Bhidden_facets%5D=internal"+
			"&fmt_options%5Bgroups_sort_by%5D=value"+
			"&fmt_options%5Bgroups_sort_order%5D=ascending"+
			"&pre_filter_expression=x",
		encode(t, r, defaults))
}

func TestSearch_UnsetFieldsAreOmitted(t *testing.T) {
	r := request.NewSearchBuilder("jacket").Build()
	assert.Empty(t, encode(t, r, request.Defaults{}))
	assert.Equal(t, "section=Products", encode(t, r, defaults))
}

func TestSearch_MissingTermIsBuildError(t *testing.T) {
	_, err := request.NewSearchBuilder("").Build().Params(defaults)
	require.Error(t, err)
	assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
}

func TestVariationsMap_RoundTrip(t *testing.T) {
	v := variations()
	v.FilterBy = json.RawMessage(`{"and":[{"field":"data.brand","value":"Acme"}]}`)

	r := request.NewSearchBuilder("jacket").VariationsMap(v).Build()
	p, err := r.Params(request.Defaults{})
	require.NoError(t, err)

	raw := p.Get(request.ParamVariationsMap)
	require.NotEmpty(t, raw)

	var decoded request.VariationsMap
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, v.Dtype, decoded.Dtype)
	assert.Equal(t, v.Values, decoded.Values)
	assert.Equal(t, v.GroupBy, decoded.GroupBy)
	assert.JSONEq(t, string(v.FilterBy), string(decoded.FilterBy))

	encoded, err := p.Encode()
	require.NoError(t, err)
	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, values.Get(request.ParamVariationsMap))
}

func TestVariationsMap_InvalidFilterByIsBuildError(t *testing.T) {
	v := variations()
	v.FilterBy = json.RawMessage(`{not json`)
	_, err := request.NewSearchBuilder("jacket").VariationsMap(v).Build().Params(defaults)
	require.Error(t, err)
	assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
}

func TestAutocomplete(t *testing.T) {
	built := request.NewAutocompleteBuilder("titanic").
		Facet("storeLocation", "CA").
		ResultCount("Products", 5).
		HiddenFields("cost").
		Build()
	declared := request.BuildAutocomplete("titanic", func(r *request.AutocompleteRequest) {
		r.Filters = []query.Facet{{Name: "storeLocation", Values: []string{"CA"}}}
		r.ResultCounts = map[string]int{"Products": 5}
		r.HiddenFields = []string{"cost"}
	})
	assert.Equal(t, built, declared)

	assert.Equal(t, "/autocomplete/titanic", built.Path())
	assert.Equal(t,
		"filters%5BstoreLocation%5D=CA&num_results_Products=5&fmt_options%5Bhidden_fields%5D=cost",
		encode(t, built, defaults))
}

func TestAutocomplete_DefaultCountsSorted(t *testing.T) {
	r := request.NewAutocompleteBuilder("titanic").Build()
	assert.Equal(t,
		"num_results_Products=0&num_results_Search%20Suggestions=10",
		encode(t, r, defaults))
	assert.Empty(t, encode(t, r, request.Defaults{}))
}

func TestAutocomplete_PathEscapesTerm(t *testing.T) {
	r := request.NewAutocompleteBuilder("a/b c").Build()
	assert.Equal(t, "/autocomplete/a%2Fb%20c", r.Path())
}

func TestBrowse(t *testing.T) {
	built := request.NewBrowseBuilder("group_id", "Beverages").Page(1).PerPage(10).Build()
	declared := request.BuildBrowse("group_id", "Beverages", func(r *request.BrowseRequest) {
		r.Page = 1
		r.PerPage = 10
	})
	assert.Equal(t, built, declared)
	assert.Equal(t, "/browse/group_id/Beverages", built.Path())
	assert.Equal(t, "page=1&num_results_per_page=10&section=Products", encode(t, built, defaults))

	_, err := request.NewBrowseBuilder("group_id", "").Build().Params(defaults)
	assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
}

func TestBrowseItems(t *testing.T) {
	built := request.NewBrowseItemsBuilder("10001", "10002").Facet("Brand", "Acme").Build()
	declared := request.BuildBrowseItems([]string{"10001", "10002"}, func(r *request.BrowseItemsRequest) {
		r.Filters = []query.Facet{{Name: "Brand", Values: []string{"Acme"}}}
	})
	assert.Equal(t, built, declared)
	assert.Equal(t, "/browse/items", built.Path())
	assert.Equal(t, "ids=10001&ids=10002&filters%5BBrand%5D=Acme", encode(t, built, request.Defaults{}))

	_, err := request.NewBrowseItemsBuilder().Build().Params(defaults)
	assert.True(t, cioerrors.IsKind(err, cioerrors.KindBuild))
}

func TestBrowseFacetsAndOptions(t *testing.T) {
	facets := request.NewBrowseFacetsBuilder().Page(2).PerPage(5).ShowHiddenFacets(true).Build()
	assert.Equal(t, request.BuildBrowseFacets(func(r *request.BrowseFacetsRequest) {
		r.Page = 2
		r.PerPage = 5
		r.ShowHiddenFacets = true
	}), facets)
	assert.Equal(t, "/browse/facets", facets.Path())
	assert.Equal(t,
		"page=2&num_results_per_page=5&section=Products&fmt_options%5Bshow_hidden_facets%5D=true",
		encode(t, facets, defaults))

	options := request.NewBrowseFacetOptionsBuilder("Color").Build()
	assert.Equal(t, request.BuildBrowseFacetOptions("Color", nil), options)
	assert.Equal(t, "/browse/facet_options", options.Path())
	assert.Equal(t, "facet_name=Color&section=Products", encode(t, options, defaults))
}

func TestBrowseGroups(t *testing.T) {
	built := request.NewBrowseGroupsBuilder().GroupID("Beverages").MaxDepth(2).Build()
	declared := request.BuildBrowseGroups(func(r *request.BrowseGroupsRequest) {
		r.GroupID = "Beverages"
		r.MaxDepth = 2
	})
	assert.Equal(t, built, declared)
	assert.Equal(t, "/browse/groups", built.Path())
	assert.Equal(t,
		"filters%5Bgroup_id%5D=Beverages&fmt_options%5Bgroups_max_depth%5D=2",
		encode(t, built, request.Defaults{}))
}

func TestRecommendations(t *testing.T) {
	built := request.NewRecommendationsBuilder("item_page_1").
		ItemIDs("10001").
		NumResults(4).
		Facet("Brand", "Acme").
		Build()
	declared := request.BuildRecommendations("item_page_1", func(r *request.RecommendationsRequest) {
		r.ItemIDs = []string{"10001"}
		r.NumResults = 4
		r.Filters = []query.Facet{{Name: "Brand", Values: []string{"Acme"}}}
	})
	assert.Equal(t, built, declared)
	assert.Equal(t, "/recommendations/v1/pods/item_page_1", built.Path())
	assert.Equal(t,
		"item_id=10001&num_results=4&section=Products&filters%5BBrand%5D=Acme",
		encode(t, built, defaults))
}

func TestQuiz(t *testing.T) {
	built := request.NewQuizBuilder("test-quiz").
		Answer("1", "2").
		Answer("true").
		VersionID("v-1").
		SessionID("s-1").
		Build()
	declared := request.BuildQuiz("test-quiz", func(r *request.QuizRequest) {
		r.Answers = [][]string{{"1", "2"}, {"true"}}
		r.VersionID = "v-1"
		r.SessionID = "s-1"
	})
	assert.Equal(t, built, declared)

	assert.Equal(t, "/v1/quizzes/test-quiz/next", built.Path())
	assert.Equal(t, "/v1/quizzes/test-quiz/results", built.Results().Path())
	assert.Equal(t,
		"a=1%2C2&a=true&quiz_version_id=v-1&quiz_session_id=s-1",
		encode(t, built, request.Defaults{}))
	assert.Equal(t, encode(t, built, defaults), encode(t, built.Results(), defaults))
}

func TestBuilders_SettersMatchDeclarativeFields(t *testing.T) {
	browse := request.NewBrowseBuilder("group_id", "Beverages").
		GroupID("drinks").
		SortBy("price").
		SortOrder(request.SortDescending).
		Section("Search Suggestions").
		GroupsSortBy("value").
		GroupsSortOrder(request.SortAscending).
		Build()
	assert.Equal(t, request.BuildBrowse("group_id", "Beverages", func(r *request.BrowseRequest) {
		r.GroupID = "drinks"
		r.SortBy = "price"
		r.SortOrder = request.SortDescending
		r.Section = "Search Suggestions"
		r.GroupsSortBy = "value"
		r.GroupsSortOrder = request.SortAscending
	}), browse)

	items := request.NewBrowseItemsBuilder("10001").Page(3).PerPage(5).SortBy("name").Build()
	assert.Equal(t, request.BuildBrowseItems([]string{"10001"}, func(r *request.BrowseItemsRequest) {
		r.Page = 3
		r.PerPage = 5
		r.SortBy = "name"
	}), items)

	groups := request.NewBrowseGroupsBuilder().Section("Content").Build()
	assert.Equal(t, "Content", groups.Section)

	options := request.NewBrowseFacetOptionsBuilder("Color").Section("Content").ShowHiddenFacets(true).Build()
	assert.Equal(t, "facet_name=Color&section=Content&fmt_options%5Bshow_hidden_facets%5D=true",
		encode(t, options, defaults))

	quiz := request.NewQuizBuilder("test-quiz").Section("Content").Page(2).PerPage(8).Build()
	assert.Equal(t, request.BuildQuiz("test-quiz", func(r *request.QuizRequest) {
		r.Section = "Content"
		r.Page = 2
		r.PerPage = 8
	}), quiz)

	recs := request.NewRecommendationsBuilder("home_page_1").Term("shoes").Section("Content").Build()
	assert.Equal(t, request.BuildRecommendations("home_page_1", func(r *request.RecommendationsRequest) {
		r.Term = "shoes"
		r.Section = "Content"
	}), recs)
	assert.Equal(t, "term=shoes&section=Content", encode(t, recs, defaults))
}
