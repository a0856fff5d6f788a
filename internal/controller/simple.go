package controller

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

var (
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// SimpleUI implements UI by printing plain progress lines through the
// cobra command. A mutex keeps lines whole when jobs run concurrently.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayBatchInfo announces the batch before the first job starts.
func (s *SimpleUI) DisplayBatchInfo(total, threads int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if threads > 1 {
		s.cmd.Printf("Processing %d file(s) with %d workers\n", total, threads)
		return
	}

	s.cmd.Printf("Processing %d file(s)\n", total)
}

// DisplayJobResult prints one progress line per processed archive.
func (s *SimpleUI) DisplayJobResult(result m.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch result.Status {
	case m.StatusDone:
		s.cmd.Printf("  %s %s: harvested %d file(s), report %s\n",
			doneStyle.Render("+"), result.Entry.Name, len(result.Merged), result.Report)
	case m.StatusSkipped:
		s.cmd.Printf("  %s %s: skipped\n", skipStyle.Render("-"), result.Entry.Name)
	case m.StatusFailed:
		s.cmd.Printf("  %s %s: failed (%s): %v\n",
			failStyle.Render("x"), result.Entry.Name, result.Stage, result.Err)
	}
}

// DisplaySummary renders the final batch summary table.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Outcome", "Packages"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	table.Append([]string{"done", fmt.Sprintf("%d", summary.Done)})
	table.Append([]string{"skipped", fmt.Sprintf("%d", summary.Skipped)})
	table.Append([]string{"failed", fmt.Sprintf("%d", summary.Failed)})

	stages := make([]string, 0, len(summary.FailedBy))
	for stage := range summary.FailedBy {
		stages = append(stages, string(stage))
	}

	sort.Strings(stages)

	for _, stage := range stages {
		table.Append([]string{"  failed " + stage, fmt.Sprintf("%d", summary.FailedBy[m.Stage(stage)])})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", summary.Total),
		fmt.Sprintf("%d harvested", summary.Harvested),
	})
	table.Render()

	s.cmd.Printf("\n%s", buf.String())
	s.cmd.Printf("Elapsed: %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(10*time.Millisecond))
}

// DisplayEntries renders the source directory listing with detected kinds.
func (s *SimpleUI) DisplayEntries(entries []m.SourceEntry, ignored int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Kind"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	supported := 0

	for _, entry := range entries {
		if entry.Kind != m.KindUnsupported {
			supported++
		}

		table.Append([]string{entry.Name, string(entry.Kind)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Eligible %d/%d", supported, len(entries)),
		fmt.Sprintf("%d ignored", ignored),
	})
	table.Render()

	s.cmd.Printf("%s", buf.String())
}
