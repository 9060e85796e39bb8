package request

import (
	"maps"
	"slices"
	"strconv"

	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// AutocompleteRequest asks for suggestions and products matching Term.
type AutocompleteRequest struct {
	Term    string
	Filters []query.Facet
	// ResultCounts maps section name to the number of results wanted. Nil
	// falls back to the configured counts.
	ResultCounts  map[string]int
	HiddenFields  []string
	VariationsMap *VariationsMap
}

// BuildAutocomplete applies configure to a new request for term.
func BuildAutocomplete(term string, configure func(r *AutocompleteRequest)) AutocompleteRequest {
	r := AutocompleteRequest{Term: term}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r AutocompleteRequest) clone() AutocompleteRequest {
	r.Filters = cloneFacets(r.Filters)
	r.ResultCounts = maps.Clone(r.ResultCounts)
	r.HiddenFields = cloneSlice(r.HiddenFields)
	r.VariationsMap = r.VariationsMap.Clone()
	return r
}

// Path implements Request.
func (r AutocompleteRequest) Path() string {
	return "/autocomplete/" + segment(r.Term)
}

// Params implements Request. Section counts are emitted in sorted section order.
func (r AutocompleteRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("autocomplete term", r.Term); err != nil {
		return p, err
	}

	p.AddFilters(r.Filters)

	counts := r.ResultCounts
	if counts == nil {
		counts = d.AutocompleteCounts
	}
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		p.Add(ParamNumResultsPrefix+name, strconv.Itoa(counts[name]))
	}

	p.AddAll(ParamHiddenFields, r.HiddenFields)
	err := r.VariationsMap.addTo(&p)
	return p, err
}

// AutocompleteBuilder builds an AutocompleteRequest. Every method returns a new builder.
type AutocompleteBuilder struct {
	r AutocompleteRequest
}

// NewAutocompleteBuilder starts a request for term.
func NewAutocompleteBuilder(term string) AutocompleteBuilder {
	return AutocompleteBuilder{r: AutocompleteRequest{Term: term}}
}

// Facet adds a filter on name matching any of values.
func (b AutocompleteBuilder) Facet(name string, values ...string) AutocompleteBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// ResultCount sets the number of results for one section.
func (b AutocompleteBuilder) ResultCount(section string, n int) AutocompleteBuilder {
	counts := maps.Clone(b.r.ResultCounts)
	if counts == nil {
		counts = make(map[string]int)
	}
	counts[section] = n
	b.r.ResultCounts = counts
	return b
}

// HiddenFields asks for fields that are hidden by default.
func (b AutocompleteBuilder) HiddenFields(fields ...string) AutocompleteBuilder {
	b.r.HiddenFields = appendStrings(b.r.HiddenFields, fields)
	return b
}

// VariationsMap sets how variations are grouped in results. v is copied.
func (b AutocompleteBuilder) VariationsMap(v *VariationsMap) AutocompleteBuilder {
	b.r.VariationsMap = v.Clone()
	return b
}

// Build returns the request.
func (b AutocompleteBuilder) Build() AutocompleteRequest {
	return b.r.clone()
}
