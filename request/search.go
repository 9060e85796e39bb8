package request

import (
	"github.com/jonesrussell/north-cloud/constructorio/query"
)

// SearchRequest is a search for Term.
type SearchRequest struct {
	Term string
	Listing
}

// BuildSearch applies configure to a new request for term.
func BuildSearch(term string, configure func(r *SearchRequest)) SearchRequest {
	r := SearchRequest{Term: term}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r SearchRequest) clone() SearchRequest {
	r.Listing = r.Listing.clone()
	return r
}

// Path implements Request.
func (r SearchRequest) Path() string {
	return "/search/" + segment(r.Term)
}

// Params implements Request.
func (r SearchRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("search term", r.Term); err != nil {
		return p, err
	}
	err := r.Listing.addTo(&p, d)
	return p, err
}

// SearchBuilder builds a SearchRequest. Every method returns a new builder.
type SearchBuilder struct {
	r SearchRequest
}

// NewSearchBuilder starts a search for term.
func NewSearchBuilder(term string) SearchBuilder {
	return SearchBuilder{r: SearchRequest{Term: term}}
}

// Facet adds a filter on name matching any of values.
func (b SearchBuilder) Facet(name string, values ...string) SearchBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// GroupID restricts results to one item group.
func (b SearchBuilder) GroupID(id string) SearchBuilder {
	b.r.GroupID = id
	return b
}

// Page sets the 1-based page number.
func (b SearchBuilder) Page(page int) SearchBuilder {
	b.r.Page = page
	return b
}

// PerPage sets the number of results per page.
func (b SearchBuilder) PerPage(n int) SearchBuilder {
	b.r.PerPage = n
	return b
}

// SortBy sets the field results are sorted on.
func (b SearchBuilder) SortBy(field string) SearchBuilder {
	b.r.SortBy = field
	return b
}

// SortOrder sets ascending or descending order.
func (b SearchBuilder) SortOrder(order string) SearchBuilder {
	b.r.SortOrder = order
	return b
}

// Section overrides the default section.
func (b SearchBuilder) Section(section string) SearchBuilder {
	b.r.Section = section
	return b
}

// GroupsSortBy sets how groups in the response are sorted.
func (b SearchBuilder) GroupsSortBy(field string) SearchBuilder {
	b.r.GroupsSortBy = field
	return b
}

// GroupsSortOrder sets the order groups are sorted in.
func (b SearchBuilder) GroupsSortOrder(order string) SearchBuilder {
	b.r.GroupsSortOrder = order
	return b
}

// PreFilterExpression sets a JSON filter applied before ranking.
func (b SearchBuilder) PreFilterExpression(expr string) SearchBuilder {
	b.r.PreFilterExpression = expr
	return b
}

// HiddenFields asks for fields that are hidden by default.
func (b SearchBuilder) HiddenFields(fields ...string) SearchBuilder {
	b.r.HiddenFields = appendStrings(b.r.HiddenFields, fields)
	return b
}

// HiddenFacets asks for facets that are hidden by default.
func (b SearchBuilder) HiddenFacets(facets ...string) SearchBuilder {
	b.r.HiddenFacets = appendStrings(b.r.HiddenFacets, facets)
	return b
}

// VariationsMap sets how variations are grouped in results. v is copied.
func (b SearchBuilder) VariationsMap(v *VariationsMap) SearchBuilder {
	b.r.VariationsMap = v.Clone()
	return b
}

// Build returns the request.
func (b SearchBuilder) Build() SearchRequest {
	return b.r.clone()
}

// BrowseRequest lists the items where FilterName has FilterValue.
type BrowseRequest struct {
	FilterName  string
	FilterValue string
	Listing
}

// BuildBrowse applies configure to a new browse request.
func BuildBrowse(filterName, filterValue string, configure func(r *BrowseRequest)) BrowseRequest {
	r := BrowseRequest{FilterName: filterName, FilterValue: filterValue}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r BrowseRequest) clone() BrowseRequest {
	r.Listing = r.Listing.clone()
	return r
}

// Path implements Request.
func (r BrowseRequest) Path() string {
	return "/browse/" + segment(r.FilterName) + "/" + segment(r.FilterValue)
}

// Params implements Request.
func (r BrowseRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if err := requireField("browse filter name", r.FilterName); err != nil {
		return p, err
	}
	if err := requireField("browse filter value", r.FilterValue); err != nil {
		return p, err
	}
	err := r.Listing.addTo(&p, d)
	return p, err
}

// BrowseBuilder builds a BrowseRequest. Every method returns a new builder.
type BrowseBuilder struct {
	r BrowseRequest
}

// NewBrowseBuilder starts a browse over filterName=filterValue.
func NewBrowseBuilder(filterName, filterValue string) BrowseBuilder {
	return BrowseBuilder{r: BrowseRequest{FilterName: filterName, FilterValue: filterValue}}
}

// Facet adds a filter on name matching any of values.
func (b BrowseBuilder) Facet(name string, values ...string) BrowseBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// GroupID restricts results to one item group.
func (b BrowseBuilder) GroupID(id string) BrowseBuilder {
	b.r.GroupID = id
	return b
}

// Page sets the 1-based page number.
func (b BrowseBuilder) Page(page int) BrowseBuilder {
	b.r.Page = page
	return b
}

// PerPage sets the number of results per page.
func (b BrowseBuilder) PerPage(n int) BrowseBuilder {
	b.r.PerPage = n
	return b
}

// SortBy sets the field results are sorted on.
func (b BrowseBuilder) SortBy(field string) BrowseBuilder {
	b.r.SortBy = field
	return b
}

// SortOrder sets ascending or descending order.
func (b BrowseBuilder) SortOrder(order string) BrowseBuilder {
	b.r.SortOrder = order
	return b
}

// Section overrides the default section.
func (b BrowseBuilder) Section(section string) BrowseBuilder {
	b.r.Section = section
	return b
}

// GroupsSortBy sets how groups in the response are sorted.
func (b BrowseBuilder) GroupsSortBy(field string) BrowseBuilder {
	b.r.GroupsSortBy = field
	return b
}

// GroupsSortOrder sets the order groups are sorted in.
func (b BrowseBuilder) GroupsSortOrder(order string) BrowseBuilder {
	b.r.GroupsSortOrder = order
	return b
}

// PreFilterExpression sets a JSON filter applied before ranking.
func (b BrowseBuilder) PreFilterExpression(expr string) BrowseBuilder {
	b.r.PreFilterExpression = expr
	return b
}

// HiddenFields asks for fields that are hidden by default.
func (b BrowseBuilder) HiddenFields(fields ...string) BrowseBuilder {
	b.r.HiddenFields = appendStrings(b.r.HiddenFields, fields)
	return b
}

// HiddenFacets asks for facets that are hidden by default.
func (b BrowseBuilder) HiddenFacets(facets ...string) BrowseBuilder {
	b.r.HiddenFacets = appendStrings(b.r.HiddenFacets, facets)
	return b
}

// VariationsMap sets how variations are grouped in results. v is copied.
func (b BrowseBuilder) VariationsMap(v *VariationsMap) BrowseBuilder {
	b.r.VariationsMap = v.Clone()
	return b
}

// Build returns the request.
func (b BrowseBuilder) Build() BrowseRequest {
	return b.r.clone()
}

// BrowseItemsRequest looks up items by id.
type BrowseItemsRequest struct {
	IDs []string
	Listing
}

// BuildBrowseItems applies configure to a new item lookup.
func BuildBrowseItems(ids []string, configure func(r *BrowseItemsRequest)) BrowseItemsRequest {
	r := BrowseItemsRequest{IDs: ids}
	if configure != nil {
		configure(&r)
	}
	return r.clone()
}

func (r BrowseItemsRequest) clone() BrowseItemsRequest {
	r.IDs = cloneSlice(r.IDs)
	r.Listing = r.Listing.clone()
	return r
}

// Path implements Request.
func (r BrowseItemsRequest) Path() string {
	return "/browse/items"
}

// Params implements Request. Item ids come first.
func (r BrowseItemsRequest) Params(d Defaults) (query.Params, error) {
	var p query.Params
	if len(r.IDs) == 0 {
		return p, requireField("item ids", "")
	}
	p.AddAll(ParamIDs, r.IDs)
	err := r.Listing.addTo(&p, d)
	return p, err
}

// BrowseItemsBuilder builds a BrowseItemsRequest. Every method returns a new builder.
type BrowseItemsBuilder struct {
	r BrowseItemsRequest
}

// NewBrowseItemsBuilder starts a lookup of ids.
func NewBrowseItemsBuilder(ids ...string) BrowseItemsBuilder {
	return BrowseItemsBuilder{r: BrowseItemsRequest{IDs: cloneSlice(ids)}}
}

// Facet adds a filter on name matching any of values.
func (b BrowseItemsBuilder) Facet(name string, values ...string) BrowseItemsBuilder {
	b.r.Filters = appendFacet(b.r.Filters, name, values)
	return b
}

// GroupID restricts results to one item group.
func (b BrowseItemsBuilder) GroupID(id string) BrowseItemsBuilder {
	b.r.GroupID = id
	return b
}

// Page sets the 1-based page number.
func (b BrowseItemsBuilder) Page(page int) BrowseItemsBuilder {
	b.r.Page = page
	return b
}

// PerPage sets the number of results per page.
func (b BrowseItemsBuilder) PerPage(n int) BrowseItemsBuilder {
	b.r.PerPage = n
	return b
}

// SortBy sets the field results are sorted on.
func (b BrowseItemsBuilder) SortBy(field string) BrowseItemsBuilder {
	b.r.SortBy = field
	return b
}

// SortOrder sets ascending or descending order.
func (b BrowseItemsBuilder) SortOrder(order string) BrowseItemsBuilder {
	b.r.SortOrder = order
	return b
}

// Section overrides the default section.
func (b BrowseItemsBuilder) Section(section string) BrowseItemsBuilder {
	b.r.Section = section
	return b
}

// HiddenFields asks for fields that are hidden by default.
func (b BrowseItemsBuilder) HiddenFields(fields ...string) BrowseItemsBuilder {
	b.r.HiddenFields = appendStrings(b.r.HiddenFields, fields)
	return b
}

// HiddenFacets asks for facets that are hidden by default.
func (b BrowseItemsBuilder) HiddenFacets(facets ...string) BrowseItemsBuilder {
	b.r.HiddenFacets = appendStrings(b.r.HiddenFacets, facets)
	return b
}

// VariationsMap sets how variations are grouped in results. v is copied.
func (b BrowseItemsBuilder) VariationsMap(v *VariationsMap) BrowseItemsBuilder {
	b.r.VariationsMap = v.Clone()
	return b
}

// Build returns the request.
func (b BrowseItemsBuilder) Build() BrowseItemsRequest {
	return b.r.clone()
}
