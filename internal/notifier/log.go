package notifier

import (
	"log/slog"

	"github.com/amishk599/jobsearch/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new matches to the given logger as structured records.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one record per job. It never fails.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"company", j.Company, "title", j.Title, "location", j.Location, "source", j.Source, "url", j.URL}
		if j.MatchScore != nil {
			args = append(args, "match_score", *j.MatchScore)
		}
		if s := salaryText(j); s != "" {
			args = append(args, "salary", s)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
