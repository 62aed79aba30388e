package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/modules/intake/domain/finding"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/modules/intake/infrastructure/workbook"
	"github.com/hrtools/rolecall/pkg/excel"
)

// outputTimeLayout names output files; it sorts lexicographically.
const outputTimeLayout = "20060102_150405"

// ProcessResult is the outcome of one per-file pipeline run. An empty
// OutputPath with findings present means the file was rejected before
// processing (read or structure failure).
type ProcessResult struct {
	OutputPath string
	Findings   []finding.Finding
}

// FileProcessService is the per-file entry point: structural vetting,
// validation, metadata stamping, enrichment and output assembly.
type FileProcessService struct {
	opts        workbook.Options
	submittedBy string
	validator   *ValidationService
	enricher    *EnrichmentService
	logger      *logrus.Logger
	now         func() time.Time
}

func NewFileProcessService(opts workbook.Options, submittedBy string, logger *logrus.Logger) *FileProcessService {
	return &FileProcessService{
		opts:        opts,
		submittedBy: submittedBy,
		validator:   NewValidationService(logger),
		enricher:    NewEnrichmentService(logger),
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessFile runs the single-file pipeline on path and writes the annotated
// output into outputDir. Findings never halt processing once the structure
// stage passes; a non-nil error is a fatal pipeline failure. Cancellation is
// polled between stages.
func (s *FileProcessService) ProcessFile(ctx context.Context, path, outputDir string, progress ProgressFunc) (*ProcessResult, error) {
	base := filepath.Base(path)
	log := s.logger.WithFields(logrus.Fields{"job_id": uuid.NewString(), "file": base})

	notify(progress, 5, "validating file structure")
	sub, structural := workbook.OpenSubmission(path, s.opts)
	if finding.AnyTerminal(structural) {
		log.WithField("findings", len(structural)).Warn("submission rejected")
		return &ProcessResult{Findings: structural}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(progress, 30, "validating submission data")
	findings := s.validator.Validate(base, sub.Table, sub.Roster)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(progress, 55, "stamping submission metadata")
	table := s.stampSubmissionColumns(sub.Table)

	notify(progress, 70, "enriching role holders from roster")
	table = s.enricher.Enrich(table, sub.Roster)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notify(progress, 85, "writing output workbook")
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s_%s.xlsx", stem, s.submittedBy, s.now().Format(outputTimeLayout)))
	if err := workbook.WriteProcessed(outputPath, table, findings, s.opts); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outputPath, err)
	}

	log.WithFields(logrus.Fields{"output": outputPath, "findings": len(findings)}).Info("submission processed")
	notify(progress, 100, "done")
	return &ProcessResult{OutputPath: outputPath, Findings: findings}, nil
}

// stampSubmissionColumns attaches the Submitted by and Submitted time
// columns on a copy of t. Rows without any proposal data stay blank.
func (s *FileProcessService) stampSubmissionColumns(t *excel.Table) *excel.Table {
	out := t.Clone()
	byKey, timeKey := submission.SubmittedByKey(), submission.SubmittedTimeKey()
	if !out.HasColumn(byKey) {
		_ = out.AppendColumn(byKey, nil)
	}
	if !out.HasColumn(timeKey) {
		_ = out.AppendColumn(timeKey, nil)
	}
	stamp := s.now().Format(submission.TimeLayout)
	for i := 0; i < out.NumRows(); i++ {
		if !submission.HasProposalData(out, i) {
			continue
		}
		_ = out.SetCell(i, byKey, s.submittedBy)
		_ = out.SetCell(i, timeKey, stamp)
	}
	return out
}
