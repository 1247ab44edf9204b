package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/review"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/store"

	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("refusing to clear without --yes")

func newResponsesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses",
		Short: "Inspect or clear stored survey responses",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored response, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			responses, err := store.Open(cmd.Context(), a.log, a.conf.Store)
			if err != nil {
				return err
			}
			defer responses.Close()

			catalogue, err := models.LoadCatalogue(a.conf.Survey.Catalogue)
			if err != nil {
				return err
			}
			report, err := review.Build(responses.ListAll(cmd.Context()), catalogue.Options(models.FieldClass))
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			responses, err := store.Open(cmd.Context(), a.log, a.conf.Store)
			if err != nil {
				return err
			}
			defer responses.Close()

			if err := responses.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All responses cleared.")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every stored response")

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func printReport(w io.Writer, report review.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tCLASS\tGENDER\tLIFESTYLE\tTRUST\tREACTION")
	for _, r := range report.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.Date, r.Time, r.Class, r.Gender, r.Lifestyle, review.MaxLifestyleScore, r.TrustPerson, r.Reaction)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, report.Summary())
	return err
}
