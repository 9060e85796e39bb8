package response

import (
	"encoding/json"
)

// Payload is implemented by every response model.
type Payload interface {
	// HasContent reports whether the response carries any results.
	HasContent() bool
	setRawData(raw string)
}

// raw keeps the undecoded body for diagnostics.
type raw struct {
	RawData string `json:"-"`
}

func (r *raw) setRawData(s string) { r.RawData = s }

// AutocompleteResponse maps section names to suggestions.
type AutocompleteResponse struct {
	Sections map[string][]Result `json:"sections"`
	ResultID string              `json:"result_id"`
	Request  json.RawMessage     `json:"request,omitempty"`
	raw
}

// HasContent implements Payload.
func (r *AutocompleteResponse) HasContent() bool {
	for _, results := range r.Sections {
		if len(results) > 0 {
			return true
		}
	}
	return false
}

// Facet is a facet with its options.
type Facet struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Type        string         `json:"type"`
	Hidden      bool           `json:"hidden,omitempty"`
	Min         *json.Number   `json:"min,omitempty"`
	Max         *json.Number   `json:"max,omitempty"`
	Status      map[string]any `json:"status,omitempty"`
	Options     []FacetOption  `json:"options,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// FacetOption is one value of a facet.
type FacetOption struct {
	Value       string         `json:"value"`
	DisplayName string         `json:"display_name"`
	Count       int            `json:"count"`
	Status      string         `json:"status,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// Group is a node of the group hierarchy.
type Group struct {
	GroupID     string         `json:"group_id"`
	DisplayName string         `json:"display_name"`
	Count       int            `json:"count,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Children    []Group        `json:"children,omitempty"`
	Parents     []GroupRef     `json:"parents,omitempty"`
}

// GroupRef identifies a parent group.
type GroupRef struct {
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
}

// SortOption is a sort the service offers for a result set.
type SortOption struct {
	SortBy      string `json:"sort_by"`
	SortOrder   string `json:"sort_order"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status,omitempty"`
}

// Redirect is returned instead of results when a term maps to a page.
type Redirect struct {
	Data         RedirectData `json:"data"`
	MatchedTerms []string     `json:"matched_terms,omitempty"`
	MatchedUser  []string     `json:"matched_user_segments,omitempty"`
}

// RedirectData is the redirect target.
type RedirectData struct {
	URL string `json:"url"`
}

// ListingResult is the inner response of search, browse and item lookups.
type ListingResult struct {
	Results         []Result     `json:"results"`
	Facets          []Facet      `json:"facets,omitempty"`
	Groups          []Group      `json:"groups,omitempty"`
	SortOptions     []SortOption `json:"sort_options,omitempty"`
	TotalNumResults int          `json:"total_num_results"`
	Redirect        *Redirect    `json:"redirect,omitempty"`
}

func (l ListingResult) hasContent() bool {
	return len(l.Results) > 0 || l.Redirect != nil
}

// SearchResponse is the response to a search.
type SearchResponse struct {
	Response ListingResult   `json:"response"`
	ResultID string          `json:"result_id"`
	Request  json.RawMessage `json:"request,omitempty"`
	raw
}

// HasContent implements Payload.
func (r *SearchResponse) HasContent() bool { return r.Response.hasContent() }

// BrowseResponse is the response to a browse or an item lookup.
type BrowseResponse struct {
	Response ListingResult   `json:"response"`
	ResultID string          `json:"result_id"`
	Request  json.RawMessage `json:"request,omitempty"`
	raw
}

// HasContent implements Payload.
func (r *BrowseResponse) HasContent() bool { return r.Response.hasContent() }

// BrowseFacetsResponse lists facets.
type BrowseFacetsResponse struct {
	Response struct {
		Facets         []Facet `json:"facets"`
		TotalNumFacets int     `json:"total_num_facets,omitempty"`
	} `json:"response"`
	ResultID string `json:"result_id"`
	raw
}

// HasContent implements Payload.
func (r *BrowseFacetsResponse) HasContent() bool { return len(r.Response.Facets) > 0 }

// BrowseFacetOptionsResponse lists the options of one facet.
type BrowseFacetOptionsResponse struct {
	Response struct {
		Facets []Facet `json:"facets"`
	} `json:"response"`
	ResultID string `json:"result_id"`
	raw
}

// HasContent implements Payload.
func (r *BrowseFacetOptionsResponse) HasContent() bool {
	for _, f := range r.Response.Facets {
		if len(f.Options) > 0 {
			return true
		}
	}
	return false
}

// BrowseGroupsResponse lists the group hierarchy.
type BrowseGroupsResponse struct {
	Response struct {
		Groups []Group `json:"groups"`
	} `json:"response"`
	ResultID string `json:"result_id"`
	raw
}

// HasContent implements Payload.
func (r *BrowseGroupsResponse) HasContent() bool { return len(r.Response.Groups) > 0 }

// Pod describes the recommendation pod that answered.
type Pod struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// RecommendationsResponse is the response of a recommendation pod.
type RecommendationsResponse struct {
	Response struct {
		Results         []Result `json:"results"`
		TotalNumResults int      `json:"total_num_results"`
		Pod             Pod      `json:"pod"`
	} `json:"response"`
	ResultID string          `json:"result_id"`
	Request  json.RawMessage `json:"request,omitempty"`
	raw
}

// HasContent implements Payload.
func (r *RecommendationsResponse) HasContent() bool { return len(r.Response.Results) > 0 }

// QuizQuestion is one question of a quiz.
type QuizQuestion struct {
	ID               int          `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Type             string       `json:"type"`
	CTAText          string       `json:"cta_text,omitempty"`
	Images           *QuizImages  `json:"images,omitempty"`
	Options          []QuizOption `json:"options,omitempty"`
	InputPlaceholder string       `json:"input_placeholder,omitempty"`
}

// QuizOption is an answer choice.
type QuizOption struct {
	ID        int            `json:"id"`
	Value     string         `json:"value"`
	Attribute *QuizAttribute `json:"attribute,omitempty"`
	Images    *QuizImages    `json:"images,omitempty"`
}

// QuizAttribute is the item attribute an option filters on.
type QuizAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QuizImages holds the image urls of a question or option.
type QuizImages struct {
	PrimaryURL   string `json:"primary_url,omitempty"`
	PrimaryAlt   string `json:"primary_alt,omitempty"`
	SecondaryURL string `json:"secondary_url,omitempty"`
	SecondaryAlt string `json:"secondary_alt,omitempty"`
}

// QuizQuestionResponse carries the next question of a quiz.
type QuizQuestionResponse struct {
	NextQuestion   *QuizQuestion `json:"next_question"`
	IsLastQuestion bool          `json:"is_last_question"`
	QuizVersionID  string        `json:"quiz_version_id"`
	QuizSessionID  string        `json:"quiz_session_id"`
	QuizID         string        `json:"quiz_id"`
	raw
}

// HasContent implements Payload.
func (r *QuizQuestionResponse) HasContent() bool { return r.NextQuestion != nil }

// QuizResultsResponse carries the items matching a completed quiz.
type QuizResultsResponse struct {
	Response struct {
		Results         []Result `json:"results"`
		TotalNumResults int      `json:"total_num_results"`
	} `json:"response"`
	ResultID      string `json:"result_id"`
	QuizVersionID string `json:"quiz_version_id"`
	QuizSessionID string `json:"quiz_session_id"`
	QuizID        string `json:"quiz_id"`
	raw
}

// HasContent implements Payload.
func (r *QuizResultsResponse) HasContent() bool { return len(r.Response.Results) > 0 }
