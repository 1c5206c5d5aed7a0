package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/adapters/s3"
	"github.com/aretw0/arbor/pkg/ports"
)

// NewSink builds the artifact sink selected by the settings. Without an
// explicit sink type, an outputs directory selects the file sink and
// anything else means stdout.
func NewSink(s config.Settings, stdout io.Writer) (ports.ArtifactSink, error) {
	kind := s.Sink
	if kind == "" {
		kind = SinkStdout
		if s.OutputsDir != "" {
			kind = SinkFile
		}
	}

	switch kind {
	case SinkStdout:
		return file.WriterSink{W: stdout}, nil
	case SinkFile:
		if s.OutputsDir == "" {
			return nil, fmt.Errorf("file sink requires an outputs directory")
		}
		return file.New(s.OutputsDir), nil
	case SinkRedis:
		if s.RedisAddr == "" {
			return nil, fmt.Errorf("redis sink requires an address")
		}
		ttl, err := parseTTL(s.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis ttl: %w", err)
		}
		return redis.New(s.RedisAddr, s.RedisPassword, s.RedisDB, redis.WithTTL(ttl)), nil
	case SinkS3:
		return s3.New(s3.Config{
			Endpoint:  s.S3Endpoint,
			Region:    s.S3Region,
			AccessKey: s.S3AccessKey,
			SecretKey: s.S3SecretKey,
			Bucket:    s.S3Bucket,
			Prefix:    s.S3Prefix,
			UseSSL:    s.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown sink %q (supported: file, redis, s3, stdout)", kind)
	}
}

// OutputsName returns the artifact name to publish under.
func OutputsName(s config.Settings) string {
	if s.OutputsDialogs != "" {
		return s.OutputsDialogs
	}
	return DefaultOutputsName
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
