package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsearch/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

// messageInterval spaces consecutive webhook posts to stay under Slack's
// one-message-per-second webhook limit.
const messageInterval = 500 * time.Millisecond

// SlackNotifier sends job alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	sleep      func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts each job to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Notify sends each job as a separate Block Kit message. It returns an error
// only if every message fails; individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 {
			s.sleep(messageInterval)
		}
		if err := s.sendMessage(j); err != nil {
			s.logger.Error("slack notification failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}

	if failures == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(jobs)-failures, "failed", failures)
	return nil
}

// sendMessage posts one job, retrying once after a 429.
func (s *SlackNotifier) sendMessage(j model.Job) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		s.sleep(retryAfter)
		if status, _, err = s.post(body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Debug("slack message sent", "company", j.Company, "title", j.Title)
	return nil
}

func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a sample notification to verify the integration.
func SendTestMessage(n model.Notifier) error {
	score := 87
	lo, hi := 90000.0, 120000.0
	testJob := model.Job{
		ID:             "test-test-001",
		Company:        "jobsearch",
		Title:          "Test Notification: Integration Verified",
		Location:       model.DefaultLocation,
		Description:    "If you can read this, notifications are wired correctly.",
		URL:            "https://remotive.com/remote-jobs",
		Source:         "test",
		SalaryMin:      &lo,
		SalaryMax:      &hi,
		SalaryCurrency: "USD",
		JobType:        model.JobTypeFullTime,
		MatchScore:     &score,
	}
	return n.Notify([]model.Job{testJob})
}

func buildPayload(j model.Job) slackPayload {
	salary := salaryText(j)
	if salary == "" {
		salary = "Not listed"
	}
	jobType := j.JobType
	if jobType == "" {
		jobType = "Unspecified"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: j.Company + ": " + j.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Location:*\n" + j.Location},
				{Type: "mrkdwn", Text: "*Source:*\n" + j.Source},
				{Type: "mrkdwn", Text: "*Salary:*\n" + salary},
				{Type: "mrkdwn", Text: "*Type:*\n" + jobType},
			},
		},
	}

	if j.MatchScore != nil {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Match score:* %d/100", *j.MatchScore)},
		})
	}
	if len(j.Skills) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Skills:* " + strings.Join(j.Skills, ", ")},
		})
	}

	if model.ValidURL(j.URL) != model.NoURL {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Apply Now"},
					URL:   j.URL,
					Style: "primary",
				},
			},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{Blocks: blocks}
}

// salaryText renders the salary range, e.g. "USD 90,000 - 120,000".
func salaryText(j model.Job) string {
	var parts []string
	if j.SalaryMin != nil {
		parts = append(parts, formatAmount(*j.SalaryMin))
	}
	if j.SalaryMax != nil && (j.SalaryMin == nil || *j.SalaryMax != *j.SalaryMin) {
		parts = append(parts, formatAmount(*j.SalaryMax))
	}
	if len(parts) == 0 {
		return ""
	}
	out := strings.Join(parts, " - ")
	if j.SalaryCurrency != "" {
		out = j.SalaryCurrency + " " + out
	}
	return out
}

func formatAmount(v float64) string {
	s := strconv.FormatInt(int64(v+0.5), 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
