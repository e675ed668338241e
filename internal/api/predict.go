package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Upload is an image to classify.
type Upload struct {
	Filename    string
	ContentType string // must be image/*; the backend rejects anything else
	Body        io.Reader
}

// Predict uploads an image as the multipart field "file". When a session is
// present the backend also records the result in the user's history.
func (c *Client) Predict(ctx context.Context, up Upload) (*Prediction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(up.Filename)))
	ct := up.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("predict: create form part: %w", err)
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, fmt.Errorf("predict: read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("predict: finish form: %w", err)
	}

	var out Prediction
	err = c.do(ctx, request{
		op:          "predict",
		method:      http.MethodPost,
		path:        "/api/predict",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		timeout:     c.predictTimeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
