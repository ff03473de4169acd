package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

const dateLayout = "2006-01-02"

func newScanCmd(deps Dependencies) *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "scan <user-id>",
		Short: "List upcoming gift opportunities for a user",
		Long: "Scan walks the user's connections and reports every birthday,\n" +
			"anniversary and holiday inside the scan window.  With --async the scan\n" +
			"is queued for a worker instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, deps, func(ctx context.Context, svc intelligence.Service) error {
				if async {
					req, err := svc.RequestScan(ctx, args[0])
					if err != nil {
						return err
					}
					return PrintResult(cmd, scanRequestView{req})
				}
				ops, err := svc.ScanOpportunities(ctx, args[0])
				if err != nil {
					return err
				}
				if ops == nil {
					ops = []*gifting.GiftOpportunity{}
				}
				return PrintResult(cmd, opportunityTable(ops))
			})
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "queue the scan for a worker")
	return cmd
}

func newContextCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "context <user-id> <recipient-id>",
		Short: "Show the relationship context between two users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, deps, func(ctx context.Context, svc intelligence.Service) error {
				rc, err := svc.GetRelationshipContext(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return PrintResult(cmd, contextView{rc})
			})
		},
	}
}

func newBudgetCmd(deps Dependencies) *cobra.Command {
	var occasion string
	cmd := &cobra.Command{
		Use:   "budget <user-id> <recipient-id>",
		Short: "Recommend a gift budget for an occasion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOccasion(occasion); err != nil {
				return err
			}
			return runWithService(cmd, deps, func(ctx context.Context, svc intelligence.Service) error {
				rec, err := svc.RecommendBudget(ctx, args[0], args[1], occasion)
				if err != nil {
					return err
				}
				return PrintResult(cmd, budgetView{rec})
			})
		},
	}
	cmd.Flags().StringVar(&occasion, "occasion", "", "occasion, e.g. birthday or anniversary (required)")
	return cmd
}

func newCategoriesCmd(deps Dependencies) *cobra.Command {
	var occasion string
	cmd := &cobra.Command{
		Use:   "categories <user-id> <recipient-id>",
		Short: "Predict gift categories for a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOccasion(occasion); err != nil {
				return err
			}
			return runWithService(cmd, deps, func(ctx context.Context, svc intelligence.Service) error {
				cats, err := svc.PredictCategories(ctx, args[0], args[1], occasion)
				if err != nil {
					return err
				}
				return PrintResult(cmd, categoryList(cats))
			})
		},
	}
	cmd.Flags().StringVar(&occasion, "occasion", "", "occasion, e.g. birthday or anniversary (required)")
	return cmd
}

func newRuleCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage auto-gift rules",
	}

	var occasion string
	create := &cobra.Command{
		Use:   "create <user-id> <recipient-id>",
		Short: "Snapshot the current intelligence into a new auto-gift rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOccasion(occasion); err != nil {
				return err
			}
			return runWithService(cmd, deps, func(ctx context.Context, svc intelligence.Service) error {
				rule, err := svc.CreateRuleSnapshot(ctx, &intelligence.CreateRuleRequest{
					RequesterID: args[0],
					RecipientID: args[1],
					Occasion:    occasion,
				})
				if err != nil {
					return err
				}
				return PrintResult(cmd, ruleView{rule})
			})
		},
	}
	create.Flags().StringVar(&occasion, "occasion", "", "occasion the rule fires on (required)")
	cmd.AddCommand(create)
	return cmd
}

func requireOccasion(occasion string) error {
	if strings.TrimSpace(occasion) == "" {
		return errors.New(errors.CodeInvalidOccasion, "--occasion is required")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output views
// ---------------------------------------------------------------------------

type opportunityTable []*gifting.GiftOpportunity

func (t opportunityTable) TableHeaders() []string {
	return []string{"RECIPIENT", "RELATIONSHIP", "EVENT", "DATE", "CONFIDENCE", "BUDGET", "BUY BY", "CATEGORIES"}
}

func (t opportunityTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, o := range t {
		rows = append(rows, []string{
			o.RecipientID,
			string(o.RelationshipType),
			o.EventType,
			o.EventDate.Format(dateLayout),
			fmt.Sprintf("%.2f", o.ConfidenceScore),
			fmt.Sprintf("%d-%d", o.SuggestedBudget.Min, o.SuggestedBudget.Max),
			o.OptimalPurchaseTiming.Format(dateLayout),
			strings.Join(o.RecommendedCategories, ", "),
		})
	}
	return rows
}

func (t opportunityTable) String() string {
	if len(t) == 0 {
		return "No upcoming opportunities.\n"
	}
	var sb strings.Builder
	for _, o := range t {
		fmt.Fprintf(&sb, "%s  %-12s %-10s budget %d-%d, buy by %s\n",
			o.EventDate.Format(dateLayout), o.EventType, o.RecipientID,
			o.SuggestedBudget.Min, o.SuggestedBudget.Max, o.OptimalPurchaseTiming.Format(dateLayout))
	}
	return sb.String()
}

type scanRequestView struct {
	*intelligence.ScanRequest
}

func (v scanRequestView) String() string {
	return fmt.Sprintf("Scan %s queued for %s at %s\n", v.RequestID, v.RequesterID, v.RequestedAt.Format(time.RFC3339))
}

type contextView struct {
	*gifting.RelationshipContext
}

func (v contextView) TableHeaders() []string {
	return []string{"FIELD", "VALUE"}
}

func (v contextView) TableRows() [][]string {
	return [][]string{
		{"relationship", string(v.RelationshipType)},
		{"closeness", fmt.Sprintf("%d", v.ClosenessLevel)},
		{"duration_months", fmt.Sprintf("%d", v.RelationshipDurationMonths)},
		{"interaction", string(v.InteractionFrequency)},
		{"considerations", joinTags(v.SpecialConsiderations)},
	}
}

func (v contextView) String() string {
	return FormatTable(v.TableHeaders(), v.TableRows())
}

func joinTags(tags []gifting.ConsiderationTag) string {
	if len(tags) == 0 {
		return "-"
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

type budgetView struct {
	*gifting.BudgetRecommendation
}

func (v budgetView) String() string {
	s := fmt.Sprintf("Budget %d-%d (confidence %.2f, relationship x%.2f, seasonal x%.2f)\n",
		v.Min, v.Max, v.Confidence, v.Reasoning.RelationshipFactor, v.Reasoning.SeasonalFactor)
	if v.Fallback {
		s += "Profile unavailable; default range used.\n"
	}
	return s
}

type categoryList []string

func (c categoryList) TableHeaders() []string { return []string{"#", "CATEGORY"} }

func (c categoryList) TableRows() [][]string {
	rows := make([][]string, len(c))
	for i, cat := range c {
		rows[i] = []string{fmt.Sprintf("%d", i+1), cat}
	}
	return rows
}

func (c categoryList) String() string {
	return strings.Join(c, "\n") + "\n"
}

type ruleView struct {
	*gifting.AutoGiftRule
}

func (v ruleView) String() string {
	return fmt.Sprintf("Rule %s created: %s -> %s on %s\n", v.ID, v.RequesterID, v.RecipientID, v.Occasion)
}

//Personal.AI order the ending
