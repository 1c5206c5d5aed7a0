package s3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/s3"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  s3.Config
		want string
	}{
		{"missing endpoint", s3.Config{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "endpoint"},
		{"missing keys", s3.Config{Endpoint: "localhost:9000", Bucket: "c"}, "access key"},
		{"missing bucket", s3.Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s3.New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestObjectKey(t *testing.T) {
	store, err := s3.New(s3.Config{
		Endpoint:  "localhost:9000",
		AccessKey: "arbor",
		SecretKey: "arbor123",
		Bucket:    "dialogs",
		Prefix:    "/prod/",
	})
	require.NoError(t, err)

	assert.Equal(t, "dialogs", store.Bucket())
	assert.Equal(t, "prod/dialog.json", store.ObjectKey("/dialog.json"))
}

func TestObjectKey_NoPrefix(t *testing.T) {
	store, err := s3.New(s3.Config{
		Endpoint:  "localhost:9000",
		AccessKey: "arbor",
		SecretKey: "arbor123",
		Bucket:    "dialogs",
	})
	require.NoError(t, err)
	assert.Equal(t, "dialog.json", store.ObjectKey("dialog.json"))
}
