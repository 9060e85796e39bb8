package request

import (
	"strconv"

	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// BrowseFacetsRequest lists the facets available for browsing.
type BrowseFacetsRequest struct {
	Page             int
	PerPage          int
	Section          string
	ShowHiddenFacets bool
}

// BuildBrowseFacets applies configure to a new request.
func BuildBrowseFacets(configure func(r *BrowseFacetsRequest)) BrowseFacetsRequest {
	var r BrowseFacetsRequest
	if configure != nil {
		configure(&r)
	}
	return r
}

// Path implements Request.
func (r BrowseFacetsRequest) Path() string {
	return "/browse/facets"
}

// Params implements Request.
func (r BrowseFacetsRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	addInt(&p, ParamPage, r.Page)
	addInt(&p, ParamPerPage, r.PerPage)
	addString(&p, ParamSection, section(r.Section, d))
	if r.ShowHiddenFacets {
		p.Add(ParamShowHiddenFacets, "true")
	}
	return p, nil
}

// BrowseFacetsBuilder builds a BrowseFacetsRequest.
type BrowseFacetsBuilder struct {
	r BrowseFacetsRequest
}

// NewBrowseFacetsBuilder starts a facet listing.
func NewBrowseFacetsBuilder() BrowseFacetsBuilder {
	return BrowseFacetsBuilder{}
}

// Page sets the 1-based page number.
func (b BrowseFacetsBuilder) Page(page int) BrowseFacetsBuilder {
	b.r.Page = page
	return b
}

// PerPage sets the number of results per page.
func (b BrowseFacetsBuilder) PerPage(n int) BrowseFacetsBuilder {
	b.r.PerPage = n
	return b
}

// Section overrides the default section.
func (b BrowseFacetsBuilder) Section(s string) BrowseFacetsBuilder {
	b.r.Section = s
	return b
}

// ShowHiddenFacets includes hidden facets when show is true.
func (b BrowseFacetsBuilder) ShowHiddenFacets(show bool) BrowseFacetsBuilder {
	b.r.ShowHiddenFacets = show
	return b
}

// Build returns the request.
func (b BrowseFacetsBuilder) Build() BrowseFacetsRequest {
	return b.r
}

// BrowseFacetOptionsRequest lists the options of one facet.
type BrowseFacetOptionsRequest struct {
	FacetName        string
	Section          string
	ShowHiddenFacets bool
}

// BuildBrowseFacetOptions applies configure to a new request for facetName.
func BuildBrowseFacetOptions(facetName string, configure func(r *BrowseFacetOptionsRequest)) BrowseFacetOptionsRequest {
	r := BrowseFacetOptionsRequest{FacetName: facetName}
	if configure != nil {
		configure(&r)
	}
	return r
}

// Path implements Request.
func (r BrowseFacetOptionsRequest) Path() string {
	return "/browse/facet_options"
}

// Params implements Request.
func (r BrowseFacetOptionsRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("facet name", r.FacetName); err != nil {
		return p, err
	}
	p.Add(ParamFacetName, r.FacetName)
	addString(&p, ParamSection, section(r.Section, d))
	if r.ShowHiddenFacets {
		p.Add(ParamShowHiddenFacets, "true")
	}
	return p, nil
}

// BrowseFacetOptionsBuilder builds a BrowseFacetOptionsRequest.
type BrowseFacetOptionsBuilder struct {
	r BrowseFacetOptionsRequest
}

// NewBrowseFacetOptionsBuilder starts an option listing for facetName.
func NewBrowseFacetOptionsBuilder(facetName string) BrowseFacetOptionsBuilder {
	return BrowseFacetOptionsBuilder{r: BrowseFacetOptionsRequest{FacetName: facetName}}
}

// Section overrides the default section.
func (b BrowseFacetOptionsBuilder) Section(s string) BrowseFacetOptionsBuilder {
	b.r.Section = s
	return b
}

// ShowHiddenFacets includes hidden facets when show is true.
func (b BrowseFacetOptionsBuilder) ShowHiddenFacets(show bool) BrowseFacetOptionsBuilder {
	b.r.ShowHiddenFacets = show
	return b
}

// Build returns the request.
func (b BrowseFacetOptionsBuilder) Build() BrowseFacetOptionsRequest {
	return b.r
}

// BrowseGroupsRequest lists the group hierarchy, optionally rooted at GroupID.
type BrowseGroupsRequest struct {
	GroupID  string
	MaxDepth int
	Section  string
	Filters  []query.Facet
}

// BuildBrowseGroups applies configure to a new request.
func BuildBrowseGroups(configure func(r *BrowseGroupsRequest)) BrowseGroupsRequest {
	var r BrowseGroupsRequest
	if configure != nil {
		configure(&r)
	}
	r.Filters = cloneFacets(r.Filters)
	return r
}

// Path implements Request.
func (r BrowseGroupsRequest) Path() string {
	return "/browse/groups"
}

// Params implements Request.
func (r BrowseGroupsRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	p.AddFilters(r.Filters)
	if r.GroupID != "" {
		p.AddEncoded(query.FilterKey(groupIDFilter), query.EncodeComponent(r.GroupID))
	}
	if r.MaxDepth > 0 {
		p.Add(ParamGroupsMaxDepth, strconv.Itoa(r.MaxDepth))
	}
	addString(&p, ParamSection, section(r.Section, d))
	return p, nil
}

// BrowseGroupsBuilder builds a BrowseGroupsRequest.
type BrowseGroupsBuilder struct {
	r BrowseGroupsRequest
}

// NewBrowseGroupsBuilder starts a group listing.
func NewBrowseGroupsBuilder() BrowseGroupsBuilder {
	return BrowseGroupsBuilder{}
}

// GroupID restricts results to one item group.
func (b BrowseGroupsBuilder) GroupID(id string) BrowseGroupsBuilder {
	b.r.GroupID = id
	return b
}

// MaxDepth limits how many levels of the hierarchy are returned.
func (b BrowseGroupsBuilder) MaxDepth(n int) BrowseGroupsBuilder {
	b.r.MaxDepth = n
	return b
}

// Section overrides the default section.
func (b BrowseGroupsBuilder) Section(s string) BrowseGroupsBuilder {
	b.r.Section = s
	return b
}

// Facet adds a filter on name matching any of values.
func (b BrowseGroupsBuilder) Facet(name string, values ...string) BrowseGroupsBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// Build returns the request.
func (b BrowseGroupsBuilder) Build() BrowseGroupsRequest {
	b.r.Filters = cloneFacets(b.r.Filters)
	return b.r
}
