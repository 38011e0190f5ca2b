package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/certificate-automator/internal/config"
	"github.com/rafael/certificate-automator/internal/pipeline"
	"github.com/rafael/certificate-automator/internal/types"
)

type fakeRunner struct {
	lastSubmission types.Submission
	lastBatch      pipeline.BatchOptions
	outcome        pipeline.Outcome
	batchResult    types.BatchResult
}

func (f *fakeRunner) ProcessSubmission(ctx context.Context, sub types.Submission) pipeline.Outcome {
	f.lastSubmission = sub
	return f.outcome
}

func (f *fakeRunner) RunBatch(ctx context.Context, opts pipeline.BatchOptions) types.BatchResult {
	f.lastBatch = opts
	return f.batchResult
}

type memoryProperties struct {
	values map[string]string
}

func (m *memoryProperties) GetAll() (map[string]string, error) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	return m.values, nil
}

func (m *memoryProperties) ReplaceAll(values map[string]string) error {
	m.values = values
	return nil
}

func newTestServer(t *testing.T, runner *fakeRunner) *Server {
	t.Helper()
	store := config.NewStore(&memoryProperties{})
	require.NoError(t, store.Load())
	return New(Config{
		Port:  0,
		Store: store,
		NewRunner: func(settings config.Settings) (Runner, error) {
			return runner, nil
		},
	})
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleSubmission(t *testing.T) {
	t.Run("valid payload is normalized and processed", func(t *testing.T) {
		runner := &fakeRunner{outcome: pipeline.Outcome{Status: types.StatusGenerated, CertificateID: "20240315-093045-ab12cd34"}}
		srv := newTestServer(t, runner)

		rec := doRequest(srv, http.MethodPost, "/submissions", `{
			"answers": {
				"Full Name": "Maria Silva",
				"Email Address": "maria@example.com",
				"Course Name": "Go Avançado",
				"Course Duration": "40"
			}
		}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Maria Silva", runner.lastSubmission.FullName)
		assert.Equal(t, "maria@example.com", runner.lastSubmission.Email)
		assert.Equal(t, "40 horas", runner.lastSubmission.CourseDuration)

		var outcome pipeline.Outcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
		assert.Equal(t, types.StatusGenerated, outcome.Status)
	})

	t.Run("schema rejects malformed payload", func(t *testing.T) {
		srv := newTestServer(t, &fakeRunner{})
		rec := doRequest(srv, http.MethodPost, "/submissions", `{"respondent_email": "x@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failed outcome maps to 422", func(t *testing.T) {
		runner := &fakeRunner{outcome: pipeline.Outcome{Status: types.StatusFailed, ErrorMessage: pipeline.GenerationFailedMessage}}
		srv := newTestServer(t, runner)

		rec := doRequest(srv, http.MethodPost, "/submissions", `{"answers": {"Full Name": "x"}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleBatch(t *testing.T) {
	t.Run("runs selected rows", func(t *testing.T) {
		runner := &fakeRunner{batchResult: types.BatchResult{Total: 2, Successful: 2}}
		srv := newTestServer(t, runner)

		rec := doRequest(srv, http.MethodPost, "/batch", `{"rows": [2, 3], "send_emails": true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []int64{2, 3}, runner.lastBatch.Rows)
		assert.True(t, runner.lastBatch.SendEmails)

		var result types.BatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Successful)
	})

	t.Run("empty selection rejected", func(t *testing.T) {
		srv := newTestServer(t, &fakeRunner{})
		rec := doRequest(srv, http.MethodPost, "/batch", `{"rows": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleConfig(t *testing.T) {
	t.Run("save then read back", func(t *testing.T) {
		srv := newTestServer(t, &fakeRunner{})

		candidate := map[string]string{
			config.KeyControlSheetID:   "1AbCdEfGhIjKlMnOpQrStUvWxYz012345",
			config.KeyTemplateSlideURL: "https://docs.google.com/presentation/d/1TemplateSlideAbCdEfGh012345/edit",
			config.KeyOutputFolderURL:  "https://drive.google.com/drive/folders/1OutputFolderAbCdEfGh012345",
			config.KeyFormURL:          "https://docs.google.com/forms/d/1FormAbCdEfGhIjKlMnOp012345/edit",
			config.KeyOrganizationName: "Escola Exemplo",
			config.KeyInstructorEmail:  "instrutor@example.com",
		}
		body, err := json.Marshal(candidate)
		require.NoError(t, err)

		rec := doRequest(srv, http.MethodPut, "/config", string(body))
		assert.Equal(t, http.StatusOK, rec.Code)

		var result config.SaveResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, "Configuração salva com sucesso.", result.Message)

		rec = doRequest(srv, http.MethodGet, "/config", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		var snapshot map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, "Escola Exemplo", snapshot[config.KeyOrganizationName])
	})

	t.Run("invalid candidate returns 400 with localized message", func(t *testing.T) {
		srv := newTestServer(t, &fakeRunner{})
		rec := doRequest(srv, http.MethodPut, "/config", `{"ORGANIZATION_NAME": "Escola"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var result config.SaveResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Erro:")
	})
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})
	rec := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
