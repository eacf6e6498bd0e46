package upload

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amithcabraal/pt-dashboard-28/pkg/config"
)

func TestResolveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		base   string
		want   string
	}{
		{
			name: "default prefix",
			base: "performance-tests-2024-03-15T10-30-00.json",
			want: "exports/performance-tests-2024-03-15T10-30-00.json",
		},
		{
			name:   "custom prefix",
			prefix: "backups/ptdash",
			base:   "snap.json",
			want:   "backups/ptdash/snap.json",
		},
		{
			name:   "trailing slash trimmed",
			prefix: "backups/",
			base:   "snap.json",
			want:   "backups/snap.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := &s3Uploader{cfg: &config.S3UploadConfig{Prefix: tt.prefix}}

			assert.Equal(t, tt.want, u.resolveKey(tt.base))
		})
	}
}

func TestNewS3Uploader(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	u, err := NewS3Uploader(log, &config.S3UploadConfig{
		Bucket:         "snapshots",
		EndpointURL:    "http://127.0.0.1:9000",
		ForcePathStyle: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, u)
}
