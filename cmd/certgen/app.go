package main

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"

	"github.com/rafael/certificate-automator/internal/config"
	"github.com/rafael/certificate-automator/internal/errorlog"
	"github.com/rafael/certificate-automator/internal/notification"
	"github.com/rafael/certificate-automator/internal/pipeline"
	"github.com/rafael/certificate-automator/internal/rendering"
	"github.com/rafael/certificate-automator/internal/tracking"
	"github.com/rafael/certificate-automator/internal/workspace"
)

// defaultPropertiesPath is where settings persist when CERTGEN_PROPERTIES is
// unset.
const defaultPropertiesPath = "certgen.properties.json"

func propertiesPath() string {
	if path := os.Getenv("CERTGEN_PROPERTIES"); path != "" {
		return path
	}
	return defaultPropertiesPath
}

// loadStore opens the settings store and loads the current snapshot.
func loadStore() (*config.Store, error) {
	store := config.NewStore(config.NewFileProperties(propertiesPath()))
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// buildClients constructs the Workspace API services. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or ambient default credentials.
func buildClients(ctx context.Context) (*workspace.Clients, error) {
	var opts []option.ClientOption
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	return workspace.NewClients(ctx, opts...)
}

// buildPipeline assembles one invocation's pipeline from a settings snapshot.
// CERTGEN_RENDERER=local swaps the Slides renderer for the headless-Chrome
// one, which needs no Workspace credentials for the render step itself.
func buildPipeline(ctx context.Context, clients *workspace.Clients, settings config.Settings) (*pipeline.Pipeline, error) {
	var renderer pipeline.Renderer
	if os.Getenv("CERTGEN_RENDERER") == "local" {
		outputDir := os.Getenv("CERTGEN_OUTPUT_DIR")
		if outputDir == "" {
			outputDir = "certificates"
		}
		renderer = rendering.NewLocalRenderer(outputDir, os.Getenv("CERTGEN_TEMPLATE_HTML"))
	} else {
		var err error
		renderer, err = rendering.NewSlidesRenderer(clients.Drive, clients.Slides, settings.TemplateSlideURL, settings.OutputFolderURL)
		if err != nil {
			return nil, fmt.Errorf("building slides renderer: %w", err)
		}
	}

	var tracker *tracking.Log
	if settings.ControlSheetID != "" {
		sheet := workspace.NewSpreadsheetClient(clients.Sheets, settings.ControlSheetID)
		tracker = tracking.NewLog(sheet, settings.SheetName)
	} else {
		tracker = tracking.NewLog(nil, settings.SheetName)
	}

	var errLog *errorlog.Logger
	if settings.ErrorLogSheetURL != "" {
		if id, err := workspace.ExtractResourceID(settings.ErrorLogSheetURL, ""); err == nil {
			errLog = errorlog.New(workspace.NewSpreadsheetClient(clients.Sheets, id), "")
		}
	}
	if errLog == nil {
		errLog = errorlog.New(nil, "")
	}

	transport := notification.NewGmailTransport(clients.Gmail)
	accountEmail, err := transport.AccountEmail(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving gmail account: %w", err)
	}
	org := notification.Organization{ID: settings.OrganizationID, Name: settings.OrganizationName}
	mailer := notification.NewSender(transport, org, settings.InstructorEmail, accountEmail)

	return &pipeline.Pipeline{
		Renderer:     renderer,
		Tracker:      tracker,
		Mailer:       mailer,
		ErrorLog:     errLog,
		Organization: org,
	}, nil
}
