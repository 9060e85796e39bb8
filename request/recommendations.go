package request

import (
	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// RecommendationsRequest asks a recommendation pod for results.
type RecommendationsRequest struct {
	PodID      string
	ItemIDs    []string
	Term       string
	NumResults int
	Section    string
	Filters    []query.Facet
}

// BuildRecommendations applies configure to a new request for podID.
func BuildRecommendations(podID string, configure func(r *RecommendationsRequest)) RecommendationsRequest {
	r := RecommendationsRequest{PodID: podID}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r RecommendationsRequest) clone() RecommendationsRequest {
	r.ItemIDs = cloneSlice(r.ItemIDs)
	r.Filters = cloneFacets(r.Filters)
	return r
}

// Path implements Request.
func (r RecommendationsRequest) Path() string {
	return "/recommendations/v1/pods/" + segment(r.PodID)
}

// Params implements Request.
func (r RecommendationsRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("pod id", r.PodID); err != nil {
		return p, err
	}
	p.AddAll(ParamItemID, r.ItemIDs)
	addString(&p, ParamTerm, r.Term)
	addInt(&p, ParamNumResults, r.NumResults)
	addString(&p, ParamSection, section(r.Section, d))
	p.AddFilters(r.Filters)
	return p, nil
}

// RecommendationsBuilder builds a RecommendationsRequest. Every method returns a new builder.
type RecommendationsBuilder struct {
	r RecommendationsRequest
}

// NewRecommendationsBuilder starts a request against podID.
func NewRecommendationsBuilder(podID string) RecommendationsBuilder {
	return RecommendationsBuilder{r: RecommendationsRequest{PodID: podID}}
}

// ItemIDs adds the items recommendations are based on.
func (b RecommendationsBuilder) ItemIDs(ids ...string) RecommendationsBuilder {
	b.r.ItemIDs = appendStrings(b.r.ItemIDs, ids)
	return b
}

// Term sets the search term recommendations are based on.
func (b RecommendationsBuilder) Term(term string) RecommendationsBuilder {
	b.r.Term = term
	return b
}

// NumResults sets how many recommendations are returned.
func (b RecommendationsBuilder) NumResults(n int) RecommendationsBuilder {
	b.r.NumResults = n
	return b
}

// Section overrides the default section.
func (b RecommendationsBuilder) Section(s string) RecommendationsBuilder {
	b.r.Section = s
	return b
}

// Facet adds a filter on name matching any of values.
func (b RecommendationsBuilder) Facet(name string, values ...string) RecommendationsBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// Build returns the request.
func (b RecommendationsBuilder) Build() RecommendationsRequest {
	return b.r.clone()
}
