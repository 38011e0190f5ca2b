package workspace

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/forms/v1"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

// Clients bundles the Google API services the pipeline talks to. All services
// share the same credentials and HTTP transport.
type Clients struct {
	Sheets *sheets.Service
	Drive  *drive.Service
	Slides *slides.Service
	Gmail  *gmail.Service
	Forms  *forms.Service
}

// NewClients constructs every Workspace service with the given client options
// (typically option.WithCredentialsFile or ambient default credentials).
func NewClients(ctx context.Context, opts ...option.ClientOption) (*Clients, error) {
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	slidesSvc, err := slides.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating slides service: %w", err)
	}
	gmailSvc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	formsSvc, err := forms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating forms service: %w", err)
	}

	return &Clients{
		Sheets: sheetsSvc,
		Drive:  driveSvc,
		Slides: slidesSvc,
		Gmail:  gmailSvc,
		Forms:  formsSvc,
	}, nil
}
