package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/wardroberec/internal/preferences"
	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/session"
	"github.com/pratik-mahalle/wardroberec/internal/workflow"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// queryRecommender fetches through the query-string form of the endpoint
type queryRecommender struct {
	svc *client.RecommendationService
}

func (q queryRecommender) Get(ctx context.Context, req client.RecommendationRequest) (*client.RecommendationResponse, error) {
	return q.svc.Query(ctx, req)
}

func newRecommendCmd() *cobra.Command {
	var (
		form     preferences.Form
		keywords string
		stars    int
		useQuery bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get an outfit recommendation",
		Long: `Get an outfit recommendation for an occasion. Category, color and
material narrow the choice. Up to 3 comma separated keywords may be given.
Pass --rate to rate the outfit straight away.`,
		Example: `  wardrobe recommend --occasion casual
  wardrobe recommend --occasion formal --color black --keywords "slim, classic"
  wardrobe recommend --occasion work --rate 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keywords != "" && !form.SetKeywords(keywords) {
				return apperrors.ValidationError(
					fmt.Sprintf("at most %d keywords are allowed", preferences.MaxKeywords), keywords)
			}
			if err := form.Normalize(); err != nil {
				return err
			}
			prefs, err := form.Preferences()
			if err != nil {
				return apperrors.FromClient(err)
			}
			store.SetPreferences(prefs)

			var recommender workflow.Recommender = apiClient.Recommendations()
			if useQuery {
				recommender = queryRecommender{svc: apiClient.Recommendations()}
			}

			ctx := cmd.Context()
			flow := workflow.NewRecommendationFlow(store, recommender, log)
			outcome, err := flow.Enter(ctx)
			if err != nil {
				return err
			}
			if err := renderRecommendation(cmd, outcome, store.Snapshot()); err != nil {
				return err
			}

			if !cmd.Flags().Changed("rate") {
				return nil
			}
			rating := workflow.NewRatingFlow(store, apiClient.Ratings(), log)
			rating.UserID = appConfig.Backend.UserID
			selected := rating.SelectStars(stars)
			if err := rating.Submit(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat() == "table" {
				fmt.Fprintf(out, "\n%s %s\n", formatStatus(out, "rated"), formatStars(selected))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Occasion, "occasion", "", "occasion to dress for (required)")
	cmd.Flags().StringVar(&form.Category, "category", "", "preferred category")
	cmd.Flags().StringVar(&form.Color, "color", "", "preferred color")
	cmd.Flags().StringVar(&form.Material, "material", "", "preferred material")
	cmd.Flags().StringVar(&keywords, "keywords", "", "up to 3 comma separated style keywords")
	cmd.Flags().IntVar(&stars, "rate", session.DefaultStars, "rate the outfit with 1-5 stars")
	cmd.Flags().BoolVar(&useQuery, "query", false, "send preferences as query parameters")

	return cmd
}

func renderRecommendation(cmd *cobra.Command, outcome workflow.Outcome, st session.State) error {
	out := cmd.OutOrStdout()
	if getOutputFormat() != "table" {
		return printOutput(out, st.Recommendation)
	}

	rec := st.Recommendation
	if outcome == workflow.OutcomeNoItems {
		fmt.Fprintf(out, "%s No matching items for %s\n", formatStatus(out, "no_items"), st.Preferences.Occasion)
		return nil
	}

	fmt.Fprintf(out, "Outfit %s for %s", rec.OutfitID, rec.Occasion)
	if rec.Weather != "" {
		fmt.Fprintf(out, " (%s)", rec.Weather)
	}
	fmt.Fprint(out, "\n\n")

	t := NewTable(out, "SLOT", "ID", "COLOR", "MATERIAL", "LABELS", "IMAGE")
	for _, si := range rec.Ordered() {
		t.AddRow(
			string(si.Slot),
			strconv.Itoa(si.Item.ID),
			si.Item.Color,
			si.Item.Material,
			truncate(strings.Join(si.Item.Labels, ", "), 30),
			truncate(si.Item.ImageURL, 48),
		)
	}
	t.Render()
	return nil
}
