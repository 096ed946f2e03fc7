package certificate_controller_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	certificate_controller "github.com/sunthewhat/easy-cert-batch/api/controllers/certificate"
	runmodel "github.com/sunthewhat/easy-cert-batch/api/model/runModel"
	"github.com/sunthewhat/easy-cert-batch/internal/batch"
	"github.com/sunthewhat/easy-cert-batch/internal/layout"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

type generatorFunc func(ctx context.Context, req batch.Request) (*batch.Result, error)

func (f generatorFunc) Run(ctx context.Context, req batch.Request) (*batch.Result, error) {
	return f(ctx, req)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var response map[string]any
	if err := json.Unmarshal(body, &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (%s)", err, body)
	}
	return response
}

func newOrchestrator(t *testing.T, archives storage.Store, ledger *runmodel.MockRunRepository) *batch.Orchestrator {
	t.Helper()
	engine, err := layout.NewEngine()
	require.NoError(t, err)
	return batch.New(renderer.NewRenderer(engine, nil), archives, ledger, runmodel.NewMockReportRepository(), batch.Config{Workers: 2})
}

func TestCertificateController_UploadTemplate(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		data           []byte
		wantStatusCode int
		wantKey        string
	}{
		{"valid png", "background.png", pngBytes(t, 300, 200), fiber.StatusOK, "template/current.png"},
		{"wrong aspect ratio", "square.png", pngBytes(t, 200, 200), fiber.StatusBadRequest, ""},
		{"not an image", "roster.csv", []byte("name,course,date\n"), fiber.StatusBadRequest, ""},
		{"missing file", "", nil, fiber.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resources := storage.NewMemoryStore()
			ctrl := certificate_controller.NewCertificateController(nil, nil, resources, 5*1024*1024)

			app := fiber.New()
			app.Post("/template", ctrl.UploadTemplate)

			resp, err := app.Test(multipartRequest(t, "/template", tt.filename, tt.data))
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			assert.Equal(t, tt.wantStatusCode, resp.StatusCode)

			response := decode(t, resp)
			if tt.wantKey == "" {
				assert.Equal(t, false, response["success"])
				assert.Equal(t, 0, resources.Len())
				return
			}

			data := response["data"].(map[string]any)
			assert.Equal(t, tt.wantKey, data["key"])
			assert.Equal(t, float64(300), data["width"])
			stored, err := storage.ReadAll(context.Background(), resources, tt.wantKey)
			require.NoError(t, err)
			assert.Equal(t, tt.data, stored)
		})
	}
}

func TestCertificateController_UploadTemplateReplacesOtherFormat(t *testing.T) {
	resources := storage.NewMemoryStore()
	resources.PutAt(certificate_controller.TemplateKey(".jpg"), []byte("old"), "image/jpeg", time.Now())
	ctrl := certificate_controller.NewCertificateController(nil, nil, resources, 0)

	app := fiber.New()
	app.Post("/template", ctrl.UploadTemplate)

	resp, err := app.Test(multipartRequest(t, "/template", "bg.png", pngBytes(t, 600, 400)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	keys, err := resources.List(context.Background(), "template/")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "template/current.png", keys[0].Key)
}

func TestCertificateController_Generate(t *testing.T) {
	resources := storage.NewMemoryStore()
	require.NoError(t, resources.Put(context.Background(), certificate_controller.TemplateKey(".png"), pngBytes(t, 300, 200), "image/png"))

	archives := storage.NewMemoryStore()
	var recorded []*model.Run
	ledger := runmodel.NewMockRunRepository()
	ledger.RecordFunc = func(run *model.Run) error {
		recorded = append(recorded, run)
		return nil
	}

	ctrl := certificate_controller.NewCertificateController(newOrchestrator(t, archives, ledger), nil, resources, 0)
	app := fiber.New()
	app.Post("/generate", ctrl.Generate)

	rosterCSV := []byte("name,course,date\nAna,Python 101,2024-01-10\nBudi,Python 101,32/13/2024\n")
	resp, err := app.Test(multipartRequest(t, "/generate", "roster.csv", rosterCSV), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, "partial", resp.Header.Get(certificate_controller.HeaderRunStatus))
	assert.Equal(t, "1", resp.Header.Get(certificate_controller.HeaderFailedRows))

	runID := resp.Header.Get(certificate_controller.HeaderRunID)
	require.Len(t, recorded, 1)
	assert.Equal(t, runID, recorded[0].ID)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "001_ana.png", zr.File[0].Name)
	assert.Equal(t, 1, archives.Len())
}

func TestCertificateController_GenerateFailures(t *testing.T) {
	withTemplate := func(t *testing.T) storage.Store {
		resources := storage.NewMemoryStore()
		require.NoError(t, resources.Put(context.Background(), certificate_controller.TemplateKey(".png"), pngBytes(t, 300, 200), "image/png"))
		return resources
	}

	failedResult := &batch.Result{
		RunID:  "20240501120000-1a2b3c4d",
		Status: model.RunStatusFailed,
		Errors: []roster.RowError{},
		Record: &model.Run{ID: "20240501120000-1a2b3c4d", Status: model.RunStatusFailed},
	}

	tests := []struct {
		name           string
		resources      func(t *testing.T) storage.Store
		generator      generatorFunc
		filename       string
		wantStatusCode int
		wantMessage    string
		wantKind       string
	}{
		{
			name:           "no template uploaded",
			resources:      func(*testing.T) storage.Store { return storage.NewMemoryStore() },
			filename:       "roster.csv",
			wantStatusCode: fiber.StatusBadRequest,
			wantMessage:    "No template uploaded",
		},
		{
			name:           "missing roster",
			resources:      withTemplate,
			wantStatusCode: fiber.StatusBadRequest,
			wantMessage:    "No roster file provided",
		},
		{
			name:      "schema error",
			resources: withTemplate,
			generator: func(context.Context, batch.Request) (*batch.Result, error) {
				return failedResult, &batch.BatchError{Kind: batch.KindSchema, Reason: "roster is missing required column(s): course", Err: roster.ErrSchema}
			},
			filename:       "roster.csv",
			wantStatusCode: fiber.StatusBadRequest,
			wantMessage:    "roster is missing required column(s): course",
			wantKind:       "schema",
		},
		{
			name:      "packaging error",
			resources: withTemplate,
			generator: func(context.Context, batch.Request) (*batch.Result, error) {
				return failedResult, &batch.BatchError{Kind: batch.KindPackaging, Reason: "bucket unavailable", Err: batch.ErrPackaging}
			},
			filename:       "roster.csv",
			wantStatusCode: fiber.StatusInternalServerError,
			wantMessage:    "bucket unavailable",
			wantKind:       "packaging",
		},
		{
			name:      "unexpected error",
			resources: withTemplate,
			generator: func(context.Context, batch.Request) (*batch.Result, error) {
				return nil, errors.New("boom")
			},
			filename:       "roster.csv",
			wantStatusCode: fiber.StatusInternalServerError,
			wantMessage:    "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var generator certificate_controller.Generator
			if tt.generator != nil {
				generator = tt.generator
			}
			ctrl := certificate_controller.NewCertificateController(generator, nil, tt.resources(t), 0)

			app := fiber.New()
			app.Post("/generate", ctrl.Generate)

			resp, err := app.Test(multipartRequest(t, "/generate", tt.filename, []byte("name,course,date\n")))
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			assert.Equal(t, tt.wantStatusCode, resp.StatusCode)

			response := decode(t, resp)
			assert.Equal(t, false, response["success"])
			assert.Equal(t, tt.wantMessage, response["message"])
			if tt.wantKind != "" {
				data := response["data"].(map[string]any)
				assert.Equal(t, tt.wantKind, data["kind"])
				assert.Equal(t, failedResult.RunID, data["run"].(map[string]any)["id"])
			}
		})
	}
}

func TestCertificateController_GenerateUnreadableTemplate(t *testing.T) {
	resources := storage.NewMemoryStore()
	require.NoError(t, resources.Put(context.Background(), certificate_controller.TemplateKey(".png"), []byte("not an image"), "image/png"))

	archives := storage.NewMemoryStore()
	var recorded []*model.Run
	ledger := runmodel.NewMockRunRepository()
	ledger.RecordFunc = func(run *model.Run) error {
		recorded = append(recorded, run)
		return nil
	}

	ctrl := certificate_controller.NewCertificateController(newOrchestrator(t, archives, ledger), nil, resources, 0)
	app := fiber.New()
	app.Post("/generate", ctrl.Generate)

	resp, err := app.Test(multipartRequest(t, "/generate", "roster.csv", []byte("name,course,date\nAna,Go,2024-01-10\n")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	response := decode(t, resp)
	assert.Equal(t, false, response["success"])
	data := response["data"].(map[string]any)
	assert.Equal(t, "template", data["kind"])

	require.Len(t, recorded, 1)
	assert.Equal(t, model.RunStatusFailed, recorded[0].Status)
	assert.Contains(t, recorded[0].Reason, renderer.ErrTemplate.Error())
	assert.Equal(t, recorded[0].ID, data["run"].(map[string]any)["id"])
	assert.Equal(t, 0, archives.Len())
}

func TestCertificateController_Sample(t *testing.T) {
	ctrl := certificate_controller.NewCertificateController(nil, nil, storage.NewMemoryStore(), 0)
	app := fiber.New()
	app.Get("/sample", ctrl.Sample)

	resp, err := app.Test(httptest.NewRequest("GET", "/sample", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, roster.SampleContentType, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, roster.Sample(), body)
}

func TestCertificateController_Preview(t *testing.T) {
	engine, err := layout.NewEngine()
	require.NoError(t, err)
	previewer := renderer.NewRenderer(engine, nil)

	tests := []struct {
		name           string
		template       []byte
		target         string
		wantStatusCode int
		wantWidth      int
	}{
		{"default width", pngBytes(t, 1200, 800), "/template/preview", fiber.StatusOK, 600},
		{"custom width", pngBytes(t, 1200, 800), "/template/preview?width=300", fiber.StatusOK, 300},
		{"width out of range", pngBytes(t, 1200, 800), "/template/preview?width=5000", fiber.StatusBadRequest, 0},
		{"no template", nil, "/template/preview", fiber.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resources := storage.NewMemoryStore()
			if tt.template != nil {
				require.NoError(t, resources.Put(context.Background(), certificate_controller.TemplateKey(".png"), tt.template, "image/png"))
			}
			ctrl := certificate_controller.NewCertificateController(nil, previewer, resources, 0)
			app := fiber.New()
			app.Get("/template/preview", ctrl.Preview)

			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusCode, resp.StatusCode)

			if tt.wantWidth == 0 {
				assert.Equal(t, false, decode(t, resp)["success"])
				return
			}
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			img, err := imaging.Decode(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
			assert.Equal(t, tt.wantWidth*2/3, img.Bounds().Dy())
		})
	}
}
