package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/metrics"
	"github.com/Dosada05/bracket-console/middleware"
	"github.com/Dosada05/bracket-console/models"
	"github.com/Dosada05/bracket-console/services"
)

// --------------------------------------------------------------------------
// show command
// --------------------------------------------------------------------------

func showCmd() *cobra.Command {
	var tournamentIDs []int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch and print tournament brackets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(tournamentIDs) == 0 {
				return errors.New("at least one --tournament is required")
			}
			cfg, logger, err := setup(os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			client := newBackendClient(cfg, logger)
			bracketService := services.NewBracketService(client, nil, nil, cfg.Layout, metrics.New(), logger)

			result, err := bracketService.LoadMany(ctx, tournamentIDs)
			if err != nil {
				return err
			}
			for i, b := range result {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := brackets.WriteText(cmd.OutOrStdout(), b); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&tournamentIDs, "tournament", nil, "Tournament ID (repeatable)")
	return cmd
}

// --------------------------------------------------------------------------
// score command
// --------------------------------------------------------------------------

func scoreCmd() *cobra.Command {
	var (
		tournamentID   int
		matchID        string
		score1, score2 string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Submit a final score and print the rebuilt bracket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			m := metrics.New()
			client := newBackendClient(cfg, logger)
			bracketService := services.NewBracketService(client, nil, nil, cfg.Layout, m, logger)
			scoreService := services.NewScoreService(client, bracketService, m, logger)

			result, err := scoreService.SubmitScore(ctx, tournamentID, models.MatchID(matchID), score1, score2)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "score %d:%d recorded for match %s", result.Score1, result.Score2, result.MatchID)
			if result.AutoProgressed {
				fmt.Fprint(out, " (auto progressed)")
			}
			fmt.Fprintln(out)

			if result.RefreshError != nil {
				fmt.Fprintln(out, "bracket unavailable:", result.RefreshError)
				return nil
			}
			if result.Bracket != nil {
				fmt.Fprintln(out)
				return brackets.WriteText(out, result.Bracket)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&tournamentID, "tournament", 0, "Tournament ID")
	cmd.Flags().StringVar(&matchID, "match", "", "Match ID")
	cmd.Flags().StringVar(&score1, "score1", "", "Score of the first participant")
	cmd.Flags().StringVar(&score2, "score2", "", "Score of the second participant")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("match")
	_ = cmd.MarkFlagRequired("score1")
	_ = cmd.MarkFlagRequired("score2")
	return cmd
}

// --------------------------------------------------------------------------
// token command
// --------------------------------------------------------------------------

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the mutating endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}
			token, err := middleware.IssueToken([]byte(cfg.JWTSecretKey), subject, middleware.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
