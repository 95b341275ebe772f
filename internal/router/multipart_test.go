package router_test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMultipart(t *testing.T, body *bytes.Buffer, field, fileName string, content []byte) string {
	t.Helper()
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}
