package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

const summarySystemPrompt = "You are a police report summarization assistant. Generate concise, professional, one-line summaries of crime reports. Focus on facts: what, where, when. Keep summaries under 80 characters and appropriate for public viewing."

// SummarizeReport produces a short single-line factual summary of a
// persisted report. Failures are reported as errors; the caller treats
// summarization as best-effort enrichment and never rolls back the report.
func (c *Client) SummarizeReport(ctx context.Context, report *models.Report) (string, error) {
	if report == nil {
		return "", errors.New("no report data provided")
	}

	location := report.LocationHint
	if location == "" {
		location = report.Postcode
	}

	yesNo := func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	}

	prompt := fmt.Sprintf(`Generate a concise, one-line summary of this crime report. Focus on the key facts: what happened, where, and when. Keep it under 80 characters and professional.

Report Details:
- Type: %s
- Location: %s
- Time: %s
- Description: %s
- People involved: %s
- Vehicle involved: %s
- Weapon involved: %s

Generate a brief, factual summary suitable for a crime report dashboard:`,
		report.CrimeType, location, report.TimeDescription, report.RawText,
		report.PeopleDescription, yesNo(report.HasVehicle), yesNo(report.HasWeapon))

	text, err := c.chatCompletion(ctx, summarySystemPrompt, prompt, 0.3, 100)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", errors.New("failed to generate summary")
	}
	return summary, nil
}
