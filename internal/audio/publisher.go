package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Publisher turns an assembled file into the reference returned to clients.
type Publisher interface {
	Publish(ctx context.Context, filePath string) (string, error)
}

// LocalPublisher leaves the file in the static audio directory and returns
// its URL path, e.g. "/static/audio/<id>.mp3".
type LocalPublisher struct {
	urlPrefix string
}

// NewLocalPublisher creates a LocalPublisher for the given URL prefix.
func NewLocalPublisher(urlPrefix string) *LocalPublisher {
	return &LocalPublisher{urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Publish implements Publisher.
func (p *LocalPublisher) Publish(_ context.Context, filePath string) (string, error) {
	return p.urlPrefix + "/" + filepath.Base(filePath), nil
}

// S3Config configures the S3 publisher.
type S3Config struct {
	Bucket string
	Region string
	Prefix string
}

// S3Publisher uploads the final file to S3, removes the local copy and returns
// the object's HTTPS URL.
type S3Publisher struct {
	svc    s3iface.S3API
	config S3Config
	logger *slog.Logger
}

// NewS3Publisher creates an S3Publisher with a session for cfg.Region.
func NewS3Publisher(cfg S3Config, logger *slog.Logger) (*S3Publisher, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3PublisherWithClient(s3.New(sess), cfg, logger)
}

// NewS3PublisherWithClient creates an S3Publisher around an existing client.
func NewS3PublisherWithClient(svc s3iface.S3API, cfg S3Config, logger *slog.Logger) (*S3Publisher, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Publisher{
		svc:    svc,
		config: cfg,
		logger: logger.With("component", "s3_publisher"),
	}, nil
}

// Publish implements Publisher.
func (p *S3Publisher) Publish(ctx context.Context, filePath string) (string, error) {
	key := path.Join(p.config.Prefix, filepath.Base(filePath))

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer func() {
		file.Close()
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove local audio file", "error", err)
		}
	}()

	_, err = p.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.config.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(filePath)),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	p.logger.Info("published audio", "key", key)
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.config.Bucket, p.config.Region, key), nil
}

func contentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

var (
	_ Publisher = (*LocalPublisher)(nil)
	_ Publisher = (*S3Publisher)(nil)
)
