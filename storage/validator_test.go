package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/princinho/eventsbackend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("banner", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["banner"][0]
}

func testValidator() *FileValidator {
	return NewImageValidator(config.UploadConfig{
		MaxUploadSizeMB:   1,
		AllowedExtensions: []string{".png", ".jpg"},
		AllowedMimeTypes:  []string{"image/png", "image/jpeg"},
	})
}

func TestValidateFile_AcceptsPNG(t *testing.T) {
	mimeType, err := testValidator().ValidateFile(fileHeader(t, "banner.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestValidateFile_RejectsExtension(t *testing.T) {
	_, err := testValidator().ValidateFile(fileHeader(t, "banner.exe", pngHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")
}

func TestValidateFile_RejectsSpoofedContent(t *testing.T) {
	_, err := testValidator().ValidateFile(fileHeader(t, "banner.png", []byte("%PDF-1.4 not an image")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestValidateFile_RejectsLargeFile(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), make([]byte, 2<<20)...)
	_, err := testValidator().ValidateFile(fileHeader(t, "banner.png", big))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestBannerObjectName(t *testing.T) {
	name := bannerObjectName("go-meetup", "Poster.PNG")
	assert.Regexp(t, `^banners/go-meetup/\d+-[0-9a-f-]{36}\.png$`, name)
	assert.Regexp(t, `^banners/event/\d+-[0-9a-f-]{36}\.bin$`, bannerObjectName("", "noext"))
}
