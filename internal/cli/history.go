package cli

import (
	"fmt"

	"github.com/studiowebux/docportal/internal/analytics"
	"github.com/studiowebux/docportal/internal/executor"
	"github.com/studiowebux/docportal/internal/types"
)

// HistoryOptions control the history command
type HistoryOptions struct {
	Limit      int
	EndpointID string
	Format     string
}

// PrintHistory lists recent try-it-out executions, newest first
func (a *App) PrintHistory(opts HistoryOptions) error {
	if a.History == nil {
		return fmt.Errorf("history is disabled (history_enabled: false)")
	}

	var entries []types.HistoryEntry
	var err error
	if opts.EndpointID != "" {
		entries, err = a.History.LoadForEndpoint(opts.EndpointID, opts.Limit)
	} else {
		entries, err = a.History.Load(opts.Limit)
	}
	if err != nil {
		return err
	}

	if opts.Format != "" && opts.Format != "text" {
		return a.encode(opts.Format, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.Out, "No history yet")
		return nil
	}
	for _, e := range entries {
		status := fmt.Sprintf("%s%d%s", statusColor(e.ResponseStatus), e.ResponseStatus, colorReset)
		if e.ResponseStatus == 0 {
			status = colorRed + "ERR" + colorReset
		}
		retried := ""
		if e.Retried {
			retried = " (retried)"
		}
		fmt.Fprintf(a.Out, "%4d  %s  %s  %-6s %s  %s%s\n", e.ID, e.Timestamp, status, e.Method, e.URL,
			executor.FormatDuration(e.Duration), retried)
	}
	return nil
}

// ClearHistory deletes every history entry
func (a *App) ClearHistory() error {
	if a.History == nil {
		return fmt.Errorf("history is disabled (history_enabled: false)")
	}
	if err := a.History.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "History cleared")
	return nil
}

// StatsOptions control the history stats command
type StatsOptions struct {
	Environment string
	Format      string
}

// PrintStats summarizes the history per endpoint
func (a *App) PrintStats(opts StatsOptions) error {
	if a.History == nil {
		return fmt.Errorf("history is disabled (history_enabled: false)")
	}

	stats, err := analytics.NewManager(a.History.DB()).StatsPerEndpoint(opts.Environment)
	if err != nil {
		return err
	}

	if opts.Format != "" && opts.Format != "text" {
		return a.encode(opts.Format, stats)
	}

	if len(stats) == 0 {
		fmt.Fprintln(a.Out, "No history yet")
		return nil
	}
	for _, s := range stats {
		fmt.Fprintf(a.Out, "%-6s %s\n", s.Method, s.EndpointID)
		fmt.Fprintf(a.Out, "       %d calls, %.0f%% ok, %d errors, %d network errors, %d retried\n",
			s.TotalCalls, s.SuccessRate()*100, s.ErrorCount, s.NetworkErrors, s.RetriedCount)
		fmt.Fprintf(a.Out, "       %savg %s  min %s  max %s%s\n", colorGray,
			executor.FormatDuration(int64(s.AvgDurationMs)), executor.FormatDuration(s.MinDurationMs),
			executor.FormatDuration(s.MaxDurationMs), colorReset)
	}
	return nil
}
