package ingestion

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/forms/v1"
)

// Puller fetches form responses through the Forms API, the polling
// counterpart to webhook delivery.
type Puller struct {
	svc    *forms.Service
	formID string
}

// NewPuller binds a Forms service to one form.
func NewPuller(svc *forms.Service, formID string) *Puller {
	return &Puller{svc: svc, formID: formID}
}

// Pull lists responses submitted after since and converts each to a FormEvent
// keyed by question title. Pass a zero since to fetch everything.
func (p *Puller) Pull(ctx context.Context, since time.Time) ([]FormEvent, error) {
	form, err := p.svc.Forms.Get(p.formID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading form %s: %w", p.formID, err)
	}

	titles := map[string]string{}
	for _, item := range form.Items {
		if item.QuestionItem != nil && item.QuestionItem.Question != nil {
			titles[item.QuestionItem.Question.QuestionId] = item.Title
		}
	}

	call := p.svc.Forms.Responses.List(p.formID)
	if !since.IsZero() {
		call = call.Filter(fmt.Sprintf("timestamp > %s", since.UTC().Format(time.RFC3339)))
	}

	var events []FormEvent
	err = call.Pages(ctx, func(page *forms.ListFormResponsesResponse) error {
		for _, resp := range page.Responses {
			event := FormEvent{
				Answers:         map[string]string{},
				RespondentEmail: resp.RespondentEmail,
			}
			for qid, answer := range resp.Answers {
				title, ok := titles[qid]
				if !ok {
					log.Printf("ingestion: response %s answers unknown question %s", resp.ResponseId, qid)
					continue
				}
				if answer.TextAnswers != nil && len(answer.TextAnswers.Answers) > 0 {
					event.Answers[title] = answer.TextAnswers.Answers[0].Value
				}
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing responses of form %s: %w", p.formID, err)
	}
	return events, nil
}
