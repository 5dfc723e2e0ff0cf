package telemetry

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/polymini/sim"
)

// ReporterOptions configures a Reporter.
type ReporterOptions struct {
	Output         *OutputManager // nil disables file output
	Perf           *PerfCollector // nil disables perf rows
	LogEvery       int            // log stats every N epochs, 0 disables
	HallSize       int
	StagnantEpochs int
}

// Reporter is a sim.Recorder that logs, writes CSV rows, tracks the hall of
// fame and saves snapshots for bookmarked epochs.
type Reporter struct {
	out       *OutputManager
	perf      *PerfCollector
	logEvery  int
	hof       *HallOfFame
	bookmarks *BookmarkDetector
	history   []EpochStats
}

// NewReporter creates a reporter.
func NewReporter(opts ReporterOptions) *Reporter {
	if opts.HallSize == 0 {
		opts.HallSize = 10
	}
	if opts.StagnantEpochs == 0 {
		opts.StagnantEpochs = 10
	}
	return &Reporter{
		out:       opts.Output,
		perf:      opts.Perf,
		logEvery:  opts.LogEvery,
		hof:       NewHallOfFame(opts.HallSize),
		bookmarks: NewBookmarkDetector(opts.StagnantEpochs),
	}
}

// HallOfFame returns the reporter's hall of fame.
func (r *Reporter) HallOfFame() *HallOfFame {
	return r.hof
}

// History returns every EpochStats row recorded so far.
func (r *Reporter) History() []EpochStats {
	return r.history
}

// RecordEpoch implements sim.Recorder. File errors are logged, not returned,
// so a full disk never stops a run.
func (r *Reporter) RecordEpoch(_ context.Context, rep sim.EpochReport) error {
	stats := ComputeEpochStats(rep)
	r.history = append(r.history, stats...)

	if r.logEvery > 0 && rep.Epoch%r.logEvery == 0 {
		for _, s := range stats {
			s.LogStats()
		}
		if r.perf != nil {
			slog.Info("perf", "epoch", rep.Epoch, "stats", r.perf.Stats())
		}
	}

	if err := r.out.WriteEpochStats(stats); err != nil {
		slog.Error("failed to write epoch stats", "error", err)
	}
	if r.out != nil && r.out.individuals != nil {
		if err := r.out.WriteIndividuals(IndividualRecords(rep)); err != nil {
			slog.Error("failed to write individuals", "error", err)
		}
	}
	if r.perf != nil {
		if err := r.out.WritePerf(r.perf.Stats(), rep.Epoch); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if r.hof.Consider(rep) > 0 {
		if err := r.out.WriteHallOfFame(r.hof); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
	}

	for _, s := range stats {
		for _, bm := range r.bookmarks.Check(s) {
			bm.LogBookmark()
			if err := r.out.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			r.saveSnapshot(rep, &bm)
		}
	}
	return nil
}

func (r *Reporter) saveSnapshot(rep sim.EpochReport, bm *Bookmark) {
	if r.out == nil {
		return
	}
	path, err := r.out.WriteSnapshot(&EpochSnapshot{
		Version:  SnapshotVersion,
		Epoch:    rep.Epoch,
		State:    rep.Snapshot,
		Bookmark: bm,
	})
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "epoch", rep.Epoch)
}
