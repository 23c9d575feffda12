package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/config"
	"jobportal_backend/internal/imageprocessor"
	"jobportal_backend/internal/storage"
	"jobportal_backend/pkg/apperrors"
)

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"

func formFile(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUploads(t *testing.T, policies map[string]config.UploadPolicy, processor *imageprocessor.Processor) (UploadService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/uploads"})
	require.NoError(t, err)
	if policies == nil {
		policies = config.Defaults().Policies()
	}
	return NewUploadService(store, policies, processor), store
}

func TestUpload_ExtensionComesFromContent(t *testing.T) {
	uploads, store := newUploads(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		file    string
		wantExt string
	}{
		{"html name with pdf body", "cv.html", ".pdf"},
		{"svg name with pdf body", "cv.svg", ".pdf"},
		{"no extension", "cv", ".pdf"},
		{"upper case pdf", "CV.PDF", ".pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := uploads.Upload(ctx, UploadResume, formFile(t, tt.file, []byte(pdfBody)))
			require.NoError(t, err)

			assert.Equal(t, tt.wantExt, path.Ext(res.Key))
			assert.True(t, strings.HasSuffix(res.URL, tt.wantExt), res.URL)
			assert.Equal(t, "application/pdf", res.ContentType)
			assert.True(t, strings.HasPrefix(res.Key, "resumes/"))

			ok, err := store.Exists(ctx, res.Key)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestUpload_WordDocumentsKeepTheirType(t *testing.T) {
	uploads, _ := newUploads(t, nil, nil)
	ctx := context.Background()
	zipBody := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)

	res, err := uploads.Upload(ctx, UploadResume, formFile(t, "cv.docx", zipBody))
	require.NoError(t, err)
	assert.Equal(t, ".docx", path.Ext(res.Key))
	assert.Equal(t, documentExtensions[".docx"], res.ContentType)

	// тот же zip под другим именем остается архивом
	_, err = uploads.Upload(ctx, UploadResume, formFile(t, "cv.zip", zipBody))
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestUpload_ContentTypePolicy(t *testing.T) {
	uploads, _ := newUploads(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		purpose string
		file    string
		data    []byte
	}{
		{"html as resume", UploadResume, "cv.pdf", []byte("<html><script>alert(1)</script></html>")},
		{"image as resume", UploadResume, "cv.pdf", pngData(t, 4, 4)},
		{"pdf as avatar", UploadAvatar, "me.png", []byte(pdfBody)},
		{"plain text attachment", UploadAttachment, "notes.txt", []byte("just some text")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uploads.Upload(ctx, tt.purpose, formFile(t, tt.file, tt.data))
			appErr := requireCode(t, err, apperrors.CodeValidationFailed)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
		})
	}

	_, err := uploads.Upload(ctx, "passport", formFile(t, "cv.pdf", []byte(pdfBody)))
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = uploads.Upload(ctx, UploadResume, formFile(t, "empty.pdf", nil))
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestUpload_SizeLimit(t *testing.T) {
	policies := map[string]config.UploadPolicy{
		UploadResume: {Folder: "resumes", MaxSize: int64(len(pdfBody)), AllowedTypes: []string{"application/pdf"}},
	}
	uploads, _ := newUploads(t, policies, nil)
	ctx := context.Background()

	_, err := uploads.Upload(ctx, UploadResume, formFile(t, "cv.pdf", []byte(pdfBody)))
	require.NoError(t, err, "exactly at the limit")

	_, err = uploads.Upload(ctx, UploadResume, formFile(t, "cv.pdf", []byte(pdfBody+"x")))
	requireCode(t, err, apperrors.CodeLimitExceeded)

	// Size из заголовка занижен: лимит проверяется по прочитанным байтам
	file := formFile(t, "cv.pdf", []byte(pdfBody+"xxxx"))
	file.Size = 1
	_, err = uploads.Upload(ctx, UploadResume, file)
	requireCode(t, err, apperrors.CodeLimitExceeded)
}

func TestUpload_ImageThumbnail(t *testing.T) {
	uploads, store := newUploads(t, nil, imageprocessor.NewProcessor(80, 32))
	ctx := context.Background()

	res, err := uploads.Upload(ctx, UploadAvatar, formFile(t, "me.gif", pngData(t, 128, 64)))
	require.NoError(t, err)
	assert.Equal(t, ".png", path.Ext(res.Key))
	require.NotEmpty(t, res.ThumbnailURL)

	thumbKey, ok := store.Key(res.ThumbnailURL)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(thumbKey, "avatars/thumbs/"))
	exists, err := store.Exists(ctx, thumbKey)
	require.NoError(t, err)
	assert.True(t, exists)

	// у документов миниатюры нет
	doc, err := uploads.Upload(ctx, UploadAttachment, formFile(t, "a.pdf", []byte(pdfBody)))
	require.NoError(t, err)
	assert.Empty(t, doc.ThumbnailURL)
}

func TestUpload_BrokenImageIsRemoved(t *testing.T) {
	uploads, store := newUploads(t, nil, imageprocessor.NewProcessor(80, 32))
	ctx := context.Background()

	// сигнатура PNG, но декодировать нечего
	broken := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 32)...)
	_, err := uploads.Upload(ctx, UploadAvatar, formFile(t, "me.png", broken))
	requireCode(t, err, apperrors.CodeValidationFailed)

	entries, err := os.ReadDir(filepath.Join(store.BasePath(), "avatars"))
	if err == nil {
		for _, e := range entries {
			assert.True(t, e.IsDir(), "leftover file %s", e.Name())
		}
	}
}

func TestUpload_Remove(t *testing.T) {
	uploads, store := newUploads(t, nil, nil)
	ctx := context.Background()

	res, err := uploads.Upload(ctx, UploadResume, formFile(t, "cv.pdf", []byte(pdfBody)))
	require.NoError(t, err)

	uploads.Remove(ctx, "https://elsewhere.test/uploads/"+res.Key)
	exists, err := store.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.True(t, exists, "foreign URL is ignored")

	uploads.Remove(ctx, res.URL)
	exists, err = store.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.False(t, exists)
}
