package services

import (
	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/modules/intake/infrastructure/workbook"
)

// ReviewService produces the _REVIEW copy of an original input file. A pure
// file-copy side effect, not a pipeline transform.
type ReviewService struct {
	logger *logrus.Logger
}

func NewReviewService(logger *logrus.Logger) *ReviewService {
	return &ReviewService{logger: logger}
}

func (s *ReviewService) CopyForReview(path, destDir string) (string, error) {
	dest, err := workbook.CopyForReview(path, destDir)
	if err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{"source": path, "review": dest}).Info("review copy written")
	return dest, nil
}
