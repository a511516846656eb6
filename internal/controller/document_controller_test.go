package controller

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/JoshuaPangaribuan/DocIx-sub000/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadService struct {
	lastCmd *dto.UploadDocumentCommand
}

func (f *fakeUploadService) Upload(_ context.Context, cmd *dto.UploadDocumentCommand) (*dto.UploadDocumentResponse, error) {
	f.lastCmd = cmd
	return &dto.UploadDocumentResponse{Id: uuid.New()}, nil
}

func newUploadApp(svc *fakeUploadService) *fiber.App {
	ctrl := NewDocumentController(svc, nil).(*documentController)
	app := fiber.New()
	app.Post("/upload", func(c *fiber.Ctx) error {
		c.Locals("uploader", "tester@example.com")
		return ctrl.Upload(c)
	})
	return app
}

func multipartPdf(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadHandlerReadsFullFileContent(t *testing.T) {
	svc := &fakeUploadService{}
	app := newUploadApp(svc)

	// Large enough to be served from disk-backed multipart storage, where a
	// single Read call is not guaranteed to return the whole file.
	content := bytes.Repeat([]byte("pdf-bytes "), 120_000)
	body, contentType := multipartPdf(t, "report.pdf", content)

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	require.NotNil(t, svc.lastCmd)
	assert.Equal(t, "report.pdf", svc.lastCmd.Filename)
	assert.Equal(t, "tester@example.com", svc.lastCmd.Uploader)
	assert.Equal(t, int64(len(content)), svc.lastCmd.Size)
	assert.True(t, bytes.Equal(content, svc.lastCmd.Content), "handler must pass the complete file content through")
}

func TestUploadHandlerRequiresFileField(t *testing.T) {
	svc := &fakeUploadService{}
	app := newUploadApp(svc)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Nil(t, svc.lastCmd)
}
