// Package dashboard computes the summary figures shown on the landing view.
package dashboard

import (
	"context"
	"fmt"

	"screener/internal/types"

	"golang.org/x/sync/errgroup"
)

// Source lists the data the dashboard summarises
type Source interface {
	ListResumes(ctx context.Context) ([]types.Resume, error)
	ListJobs(ctx context.Context) ([]types.JobDescription, error)
	ListMatches(ctx context.Context, jobID int) ([]types.MatchResult, error)
}

// Fetch loads resumes, jobs and matches concurrently and summarises them.
// If any fetch fails the error is returned and no stats are produced.
func Fetch(ctx context.Context, src Source) (types.DashboardStats, error) {
	var (
		resumes []types.Resume
		jobs    []types.JobDescription
		matches []types.MatchResult
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resumes, err = src.ListResumes(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = src.ListJobs(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = src.ListMatches(gCtx, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		return types.DashboardStats{}, fmt.Errorf("fetching dashboard data: %w", err)
	}
	return Compute(resumes, jobs, matches), nil
}

// Compute derives totals and the mean match score (0 with no matches)
func Compute(resumes []types.Resume, jobs []types.JobDescription, matches []types.MatchResult) types.DashboardStats {
	stats := types.DashboardStats{
		TotalResumes: len(resumes),
		TotalJobs:    len(jobs),
		TotalMatches: len(matches),
	}
	if len(matches) == 0 {
		return stats
	}

	var sum float64
	for _, m := range matches {
		sum += m.MatchScore
	}
	stats.AverageScore = sum / float64(len(matches))
	return stats
}

// FormatAverage renders the mean score with one decimal
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.1f", avg)
}
