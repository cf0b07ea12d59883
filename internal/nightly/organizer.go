package nightly

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nikdata/oura-hrv/internal"
)

type Move struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

type OrganizeReport struct {
	Moves            []Move   `json:"moves"`
	AlreadyOrganized []string `json:"already_organized"`
	Skipped          []string `json:"skipped"`
	Failed           []string `json:"failed"`
	DryRun           bool     `json:"dry_run"`
}

type Organizer struct {
	logger internal.Logger
}

func NewOrganizer(logger internal.Logger) *Organizer {
	return &Organizer{logger: logger}
}

// Organize moves every flat night file under root into
// {metric}/{year}/{month}/. Files whose destination already exists are left
// where they are. Each move stands alone: a file that cannot be moved is
// logged and listed in Failed, and the scan goes on.
func (o *Organizer) Organize(root string, dryRun bool) (OrganizeReport, error) {
	report := OrganizeReport{Moves: []Move{}, AlreadyOrganized: []string{}, Skipped: []string{}, Failed: []string{}, DryRun: dryRun}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return report, nil
		}
		return report, fmt.Errorf("organize: read %s: %w", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		o.logger.Infof("No files to organize - everything is already in folders")
		return report, nil
	}
	if dryRun {
		o.logger.Infof("DRY RUN MODE - no files will be moved")
	}

	for _, name := range names {
		parsed, ok := ParseFileName(name)
		if !ok {
			o.logger.Infof("Skipping %s - doesn't match expected pattern", name)
			report.Skipped = append(report.Skipped, name)
			continue
		}

		src := filepath.Join(root, name)
		dst, err := OrganizedPath(root, parsed.Kind, parsed.Date)
		if err != nil {
			return report, err
		}
		rel := filepath.Join(string(parsed.Kind), parsed.Year, parsed.Month)

		exists, err := fileExists(dst)
		if err != nil {
			o.fail(&report, name, fmt.Errorf("stat %s: %w", dst, err))
			continue
		}
		if exists {
			o.logger.Infof("Already exists: %s in %s/", name, rel)
			report.AlreadyOrganized = append(report.AlreadyOrganized, name)
			continue
		}

		if dryRun {
			o.logger.Infof("[DRY RUN] Would move: %s -> %s/", name, rel)
			report.Moves = append(report.Moves, Move{Source: src, Dest: dst})
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			o.fail(&report, name, fmt.Errorf("create %s: %w", filepath.Dir(dst), err))
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			o.fail(&report, name, err)
			continue
		}
		o.logger.Infof("Moved: %s -> %s/", name, rel)
		report.Moves = append(report.Moves, Move{Source: src, Dest: dst})
	}

	o.logger.Infof("Files moved: %d, already organized: %d, skipped (wrong name): %d, failed: %d",
		len(report.Moves), len(report.AlreadyOrganized), len(report.Skipped), len(report.Failed))
	return report, nil
}

func (o *Organizer) fail(report *OrganizeReport, name string, err error) {
	o.logger.Errorf("Failed to move %s: %v", name, err)
	report.Failed = append(report.Failed, name)
}
