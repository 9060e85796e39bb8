package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/constructorio/client"
	"github.com/jonesrussell/north-cloud/constructorio/query"
	"github.com/jonesrussell/north-cloud/constructorio/request"
)

// parseFacets turns name=value flags into facets, merging repeated names in
// first-seen order.
func parseFacets(raw []string) ([]query.Facet, error) {
	var facets []query.Facet
	index := make(map[string]int)
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid filter %q, want name=value", kv)
		}
		if i, seen := index[name]; seen {
			facets[i].Values = append(facets[i].Values, value)
			continue
		}
		index[name] = len(facets)
		facets = append(facets, query.Facet{Name: name, Values: []string{value}})
	}
	return facets, nil
}

func parseCounts(raw []string) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	counts := make(map[string]int, len(raw))
	for _, kv := range raw {
		section, value, ok := strings.Cut(kv, "=")
		if !ok || section == "" {
			return nil, fmt.Errorf("invalid count %q, want section=n", kv)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid count %q: %w", kv, err)
		}
		counts[section] = n
	}
	return counts, nil
}

type listingFlags struct {
	filters      []string
	groupID      string
	page         int
	perPage      int
	sortBy       string
	sortOrder    string
	section      string
	hiddenFields []string
	preFilter    string
}

func (f *listingFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.filters, "filter", nil, "facet filter as name=value, repeatable")
	flags.StringVar(&f.groupID, "group-id", "", "restrict to a group")
	flags.IntVar(&f.page, "page", 0, "result page")
	flags.IntVar(&f.perPage, "per-page", 0, "results per page")
	flags.StringVar(&f.sortBy, "sort-by", "", "sort field")
	flags.StringVar(&f.sortOrder, "sort-order", "", "ascending or descending")
	flags.StringVar(&f.section, "section", "", "index section")
	flags.StringSliceVar(&f.hiddenFields, "hidden-field", nil, "hidden field to return")
	flags.StringVar(&f.preFilter, "pre-filter", "", "pre-filter expression (JSON)")
}

func (f *listingFlags) listing() (request.Listing, error) {
	filters, err := parseFacets(f.filters)
	if err != nil {
		return request.Listing{}, err
	}
	return request.Listing{
		Filters:             filters,
		GroupID:             f.groupID,
		Page:                f.page,
		PerPage:             f.perPage,
		SortBy:              f.sortBy,
		SortOrder:           f.sortOrder,
		Section:             f.section,
		HiddenFields:        f.hiddenFields,
		PreFilterExpression: f.preFilter,
	}, nil
}

func (a *app) autocompleteCommand() *cobra.Command {
	var filters, counts, hidden []string
	cmd := &cobra.Command{
		Use:   "autocomplete TERM",
		Short: "Suggestions and products for a partial term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facets, err := parseFacets(filters)
			if err != nil {
				return err
			}
			resultCounts, err := parseCounts(counts)
			if err != nil {
				return err
			}
			r := request.BuildAutocomplete(args[0], func(r *request.AutocompleteRequest) {
				r.Filters = facets
				r.ResultCounts = resultCounts
				r.HiddenFields = hidden
			})
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.Autocomplete(ctx, r))
			})
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "facet filter as name=value, repeatable")
	cmd.Flags().StringArrayVar(&counts, "count", nil, "results per section as section=n, repeatable")
	cmd.Flags().StringSliceVar(&hidden, "hidden-field", nil, "hidden field to return")
	return cmd
}

func (a *app) searchCommand() *cobra.Command {
	var lf listingFlags
	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Items matching a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := lf.listing()
			if err != nil {
				return err
			}
			r := request.BuildSearch(args[0], func(r *request.SearchRequest) { r.Listing = listing })
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.Search(ctx, r))
			})
		},
	}
	lf.bind(cmd)
	return cmd
}

func (a *app) browseCommand() *cobra.Command {
	var lf listingFlags
	cmd := &cobra.Command{
		Use:   "browse FILTER_NAME FILTER_VALUE",
		Short: "Items matching a filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := lf.listing()
			if err != nil {
				return err
			}
			r := request.BuildBrowse(args[0], args[1], func(r *request.BrowseRequest) { r.Listing = listing })
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.Browse(ctx, r))
			})
		},
	}
	lf.bind(cmd)
	return cmd
}

func (a *app) browseItemsCommand() *cobra.Command {
	var lf listingFlags
	cmd := &cobra.Command{
		Use:   "browse-items ID...",
		Short: "Items by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := lf.listing()
			if err != nil {
				return err
			}
			r := request.BuildBrowseItems(args, func(r *request.BrowseItemsRequest) { r.Listing = listing })
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.BrowseItems(ctx, r))
			})
		},
	}
	lf.bind(cmd)
	return cmd
}

func (a *app) browseFacetsCommand() *cobra.Command {
	var r request.BrowseFacetsRequest
	cmd := &cobra.Command{
		Use:   "browse-facets",
		Short: "Facets available for browsing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := request.BuildBrowseFacets(func(b *request.BrowseFacetsRequest) { *b = r })
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.BrowseFacets(ctx, req))
			})
		},
	}
	cmd.Flags().IntVar(&r.Page, "page", 0, "result page")
	cmd.Flags().IntVar(&r.PerPage, "per-page", 0, "facets per page")
	cmd.Flags().StringVar(&r.Section, "section", "", "index section")
	cmd.Flags().BoolVar(&r.ShowHiddenFacets, "show-hidden", false, "include hidden facets")
	return cmd
}

func (a *app) browseFacetOptionsCommand() *cobra.Command {
	var (
		section    string
		showHidden bool
	)
	cmd := &cobra.Command{
		Use:   "browse-facet-options FACET",
		Short: "Options of one facet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := request.NewBrowseFacetOptionsBuilder(args[0]).Section(section).ShowHiddenFacets(showHidden).Build()
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.BrowseFacetOptions(ctx, r))
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "index section")
	cmd.Flags().BoolVar(&showHidden, "show-hidden", false, "include hidden facets")
	return cmd
}

func (a *app) browseGroupsCommand() *cobra.Command {
	var (
		filters  []string
		groupID  string
		maxDepth int
		section  string
	)
	cmd := &cobra.Command{
		Use:   "browse-groups",
		Short: "The group hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			facets, err := parseFacets(filters)
			if err != nil {
				return err
			}
			r := request.BuildBrowseGroups(func(r *request.BrowseGroupsRequest) {
				r.GroupID = groupID
				r.MaxDepth = maxDepth
				r.Section = section
				r.Filters = facets
			})
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.BrowseGroups(ctx, r))
			})
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "facet filter as name=value, repeatable")
	cmd.Flags().StringVar(&groupID, "group-id", "", "root group")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "levels of children to return")
	cmd.Flags().StringVar(&section, "section", "", "index section")
	return cmd
}

func (a *app) recommendationsCommand() *cobra.Command {
	var (
		filters []string
		r       request.RecommendationsRequest
	)
	cmd := &cobra.Command{
		Use:   "recommendations POD_ID",
		Short: "Items of a recommendation pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facets, err := parseFacets(filters)
			if err != nil {
				return err
			}
			req := request.BuildRecommendations(args[0], func(b *request.RecommendationsRequest) {
				b.ItemIDs = r.ItemIDs
				b.Term = r.Term
				b.NumResults = r.NumResults
				b.Section = r.Section
				b.Filters = facets
			})
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return emit(a, c.Recommendations(ctx, req))
			})
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "facet filter as name=value, repeatable")
	cmd.Flags().StringSliceVar(&r.ItemIDs, "item-id", nil, "seed item id")
	cmd.Flags().StringVar(&r.Term, "term", "", "seed term")
	cmd.Flags().IntVar(&r.NumResults, "num-results", 0, "number of results")
	cmd.Flags().StringVar(&r.Section, "section", "", "index section")
	return cmd
}

func (a *app) quizCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz questions and results",
	}
	cmd.AddCommand(
		a.quizSubcommand("next", "The next question for the given answers", func(ctx context.Context, c *client.Client, r request.QuizRequest) error {
			return emit(a, c.QuizNextQuestion(ctx, r))
		}),
		a.quizSubcommand("results", "Items matching the given answers", func(ctx context.Context, c *client.Client, r request.QuizRequest) error {
			return emit(a, c.QuizResults(ctx, r))
		}),
	)
	return cmd
}

func (a *app) quizSubcommand(use, short string, call func(context.Context, *client.Client, request.QuizRequest) error) *cobra.Command {
	var (
		answers   []string
		versionID string
		sessionID string
		section   string
	)
	cmd := &cobra.Command{
		Use:   use + " QUIZ_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := request.NewQuizBuilder(args[0]).VersionID(versionID).SessionID(sessionID).Section(section)
			for _, answer := range answers {
				b = b.Answer(strings.Split(answer, ",")...)
			}
			r := b.Build()
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				return call(ctx, c, r)
			})
		},
	}
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "comma-separated option ids for one question, repeatable")
	cmd.Flags().StringVar(&versionID, "version-id", "", "quiz version")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "quiz session")
	cmd.Flags().StringVar(&section, "section", "", "index section")
	return cmd
}
