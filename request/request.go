// Package request defines one immutable request value per API operation.
//
// Every request can be produced either by a fluent builder, where each step
// returns a new builder, or by a Build function that applies a configuration
// block. Both forms deep-copy their inputs and yield equal values for equal
// inputs. Unset optional fields are omitted from the query entirely.
package request

import (
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"strconv"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// Parameter names shared across operations.
const (
	ParamPage                = "page"
	ParamPerPage             = "num_results_per_page"
	ParamSortBy              = "sort_by"
	ParamSortOrder           = "sort_order"
	ParamSection             = "section"
	ParamHiddenFields        = "fmt_options[hidden_fields]"
	ParamHiddenFacets        = "fmt_options[hidden_facets]"
	ParamGroupsSortBy        = "fmt_options[groups_sort_by]"
	ParamGroupsSortOrder     = "fmt_options[groups_sort_order]"
	ParamShowHiddenFacets    = "fmt_options[show_hidden_facets]"
	ParamGroupsMaxDepth      = "fmt_options[groups_max_depth]"
	ParamVariationsMap       = "variations_map"
	ParamPreFilterExpression = "pre_filter_expression"
	ParamNumResults          = "num_results"
	ParamNumResultsPrefix    = "num_results_"
	ParamIDs                 = "ids"
	ParamItemID              = "item_id"
	ParamTerm                = "term"
	ParamFacetName           = "facet_name"
	ParamAnswers             = "a"
	ParamQuizVersionID       = "quiz_version_id"
	ParamQuizSessionID       = "quiz_session_id"

	groupIDFilter = "group_id"
)

// Sort orders.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Defaults carries the configuration values a request falls back to.
type Defaults struct {
	Section            string
	AutocompleteCounts map[string]int
}

// Request is implemented by every request value.
type Request interface {
	Path() string
	Params(d Defaults) (query.Params, error)
}

// VariationsMap tells the service how to group and aggregate item variations.
type VariationsMap struct {
	Dtype    string                 `json:"dtype"`
	Values   map[string]Aggregation `json:"values"`
	GroupBy  []GroupBy              `json:"group_by,omitempty"`
	FilterBy json.RawMessage        `json:"filter_by,omitempty"`
}

// Aggregation reduces one variation field.
type Aggregation struct {
	Aggregation string `json:"aggregation"`
	Field       string `json:"field"`
}

// GroupBy groups variations by field.
type GroupBy struct {
	Name  string `json:"name"`
	Field string `json:"field"`
}

// Clone returns a deep copy of v. A nil map clones to nil.
func (v *VariationsMap) Clone() *VariationsMap {
	if v == nil {
		return nil
	}
	out := &VariationsMap{
		Dtype:   v.Dtype,
		Values:  maps.Clone(v.Values),
		GroupBy: cloneSlice(v.GroupBy),
	}
	if len(v.FilterBy) > 0 {
		out.FilterBy = slices.Clone(v.FilterBy)
	}
	return out
}

func (v *VariationsMap) addTo(p *query.Params) error {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return cioerrors.NewBuild("encode variations map", err)
	}
	p.Add(ParamVariationsMap, string(raw))
	return nil
}

// Listing holds the fields shared by search, browse and item lookups.
type Listing struct {
	Filters             []query.Facet
	GroupID             string
	Page                int
	PerPage             int
	SortBy              string
	SortOrder           string
	Section             string
	HiddenFields        []string
	HiddenFacets        []string
	GroupsSortBy        string
	GroupsSortOrder     string
	VariationsMap       *VariationsMap
	PreFilterExpression string
}

func (l Listing) clone() Listing {
	l.Filters = cloneFacets(l.Filters)
	l.HiddenFields = cloneSlice(l.HiddenFields)
	l.HiddenFacets = cloneSlice(l.HiddenFacets)
	l.VariationsMap = l.VariationsMap.Clone()
	return l
}

func (l Listing) addTo(p *query.Params, d Defaults) error {
	p.AddFilters(l.Filters)
	if l.GroupID != "" {
		p.AddEncoded(query.FilterKey(groupIDFilter), query.EncodeComponent(l.GroupID))
	}
	addInt(p, ParamPage, l.Page)
	addInt(p, ParamPerPage, l.PerPage)
	addString(p, ParamSortBy, l.SortBy)
	addString(p, ParamSortOrder, l.SortOrder)
	addString(p, ParamSection, section(l.Section, d))
	p.AddAll(ParamHiddenFields, l.HiddenFields)
	p.AddAll(ParamHiddenFacets, l.HiddenFacets)
	addString(p, ParamGroupsSortBy, l.GroupsSortBy)
	addString(p, ParamGroupsSortOrder, l.GroupsSortOrder)
	if err := l.VariationsMap.addTo(p); err != nil {
		return err
	}
	addString(p, ParamPreFilterExpression, l.PreFilterExpression)
	return nil
}

func section(override string, d Defaults) string {
	if override != "" {
		return override
	}
	return d.Section
}

func addString(p *query.Params, key, value string) {
	if value != "" {
		p.Add(key, value)
	}
}

func addInt(p *query.Params, key string, value int) {
	if value > 0 {
		p.Add(key, strconv.Itoa(value))
	}
}

func requireField(name, value string) error {
	if value == "" {
		return cioerrors.Buildf("%s is required", name)
	}
	return nil
}

func segment(s string) string {
	return url.PathEscape(s)
}

// cloneSlice copies s; an empty slice clones to nil so both construction
// forms compare equal.
func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

func cloneFacets(facets []query.Facet) []query.Facet {
	if len(facets) == 0 {
		return nil
	}
	out := make([]query.Facet, len(facets))
	for i, f := range facets {
		out[i] = query.Facet{Name: f.Name, Values: cloneSlice(f.Values)}
	}
	return out
}

func appendFacet(facets []query.Facet, name string, values []string) []query.Facet {
	out := cloneFacets(facets)
	return append(out, query.Facet{Name: name, Values: cloneSlice(values)})
}

func appendStrings(dst []string, values []string) []string {
	out := make([]string, 0, len(dst)+len(values))
	out = append(out, dst...)
	return cloneSlice(append(out, values...))
}
