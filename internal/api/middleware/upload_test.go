package middleware

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func multipartRequest(t *testing.T, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("firstName", "Ada"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+ImageField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func runUpload(t *testing.T, req *http.Request, next echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	return ImageUpload()(next)(c)
}

func TestImageUpload_AcceptsPNG(t *testing.T) {
	req := multipartRequest(t, "avatar.PNG", "image/png", pngHeader)

	err := runUpload(t, req, func(c echo.Context) error {
		img := ImageFrom(c)
		if img == nil {
			t.Fatalf("image missing from context")
		}
		if img.ContentType != "image/png" || img.Name != "avatar.PNG" {
			t.Fatalf("unexpected image: %+v", img)
		}
		data, err := io.ReadAll(img.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !bytes.Equal(data, pngHeader) {
			t.Fatalf("body was not rewound")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImageUpload_AcceptsJPEG(t *testing.T) {
	req := multipartRequest(t, "me.jpg", "image/jpeg", jpegHeader)
	if err := runUpload(t, req, func(c echo.Context) error {
		if ImageFrom(c) == nil {
			t.Fatalf("image missing from context")
		}
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImageUpload_NoFilePassesThrough(t *testing.T) {
	req := multipartRequest(t, "", "", nil)
	called := false
	if err := runUpload(t, req, func(c echo.Context) error {
		called = true
		if ImageFrom(c) != nil || UploadError(c) != nil {
			t.Fatalf("expected no image and no upload error")
		}
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestImageUpload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		untyped  bool
		body     []byte
		want     error
	}{
		{name: "bad extension", filename: "doc.gif", body: pngHeader, want: domain.ErrInvalidImage},
		{name: "content mismatch", filename: "fake.png", body: []byte("plain text, not an image"), want: domain.ErrInvalidImage},
		{name: "jpeg named png", filename: "photo.png", body: jpegHeader, want: domain.ErrInvalidImage},
		{name: "declared type mismatch", filename: "a.png", declared: "application/pdf", body: pngHeader, want: domain.ErrInvalidImage},
		{name: "declared jpeg for png", filename: "a.png", declared: "image/jpeg", body: pngHeader, want: domain.ErrInvalidImage},
		{name: "no declared type", filename: "a.png", untyped: true, body: pngHeader, want: domain.ErrInvalidImage},
		{name: "too large", filename: "big.png", body: append(bytes.Clone(pngHeader), make([]byte, MaxImageSize)...), want: domain.ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared := tt.declared
			if declared == "" && !tt.untyped {
				declared = "image/png"
			}
			req := multipartRequest(t, tt.filename, declared, tt.body)
			err := runUpload(t, req, func(c echo.Context) error {
				if ImageFrom(c) != nil {
					t.Fatalf("rejected image must not reach the handler")
				}
				return UploadError(c)
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation kind, got %v", domain.KindOf(err))
			}
		})
	}
}
