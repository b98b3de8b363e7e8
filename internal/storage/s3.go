package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/config"
)

// Location is a bucket and key prefix parsed from an s3:// URI.
type Location struct {
	Bucket string
	Prefix string
}

// ParseURI splits s3://bucket/prefix. The prefix never starts with a slash
// and, when non-empty, always ends with one.
func ParseURI(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("s3 uri without bucket: %q", uri)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return Location{Bucket: bucket, Prefix: prefix}, nil
}

// IsURI reports whether s names an S3 location.
func IsURI(s string) bool { return strings.HasPrefix(s, "s3://") }

// Key joins name under the location prefix.
func (l Location) Key(name string) string { return l.Prefix + name }

func (l Location) String() string { return "s3://" + l.Bucket + "/" + l.Prefix }

// S3Client moves batch inputs and outputs between S3 and the local disk.
type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// NewS3Client builds a client from the default AWS chain, overridden by
// static keys and a custom endpoint (MinIO, LocalStack) when configured.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*S3Client, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsConf, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Client{
		client:     cli,
		downloader: manager.NewDownloader(cli),
		uploader:   manager.NewUploader(cli),
	}, nil
}

// ListPDFs returns the keys directly under loc whose name ends in .pdf,
// case-insensitively. Deeper keys are not listed.
func (s *S3Client) ListPDFs(ctx context.Context, loc Location) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(loc.Bucket),
		Prefix:    aws.String(loc.Prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", loc, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if strings.EqualFold(path.Ext(*obj.Key), ".pdf") {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

// Download writes the object to dir under its base name and returns the
// local path.
func (s *S3Client) Download(ctx context.Context, bucket, key, dir string) (string, error) {
	local := filepath.Join(dir, path.Base(key))
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	defer f.Close()

	n, err := s.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = os.Remove(local)
		return "", fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	log.Debug().Str("bucket", bucket).Str("key", key).Int64("bytes", n).Msg("downloaded object")
	return local, nil
}

// Fetch downloads every PDF under loc into dir.
func (s *S3Client) Fetch(ctx context.Context, loc Location, dir string) ([]string, error) {
	keys, err := s.ListPDFs(ctx, loc)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		p, err := s.Download(ctx, loc.Bucket, key, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	log.Info().Str("source", loc.String()).Int("files", len(paths)).Msg("fetched pdfs from S3")
	return paths, nil
}

// Publisher uploads result documents under a fixed location.
type Publisher struct {
	client *S3Client
	loc    Location
}

func (s *S3Client) Publisher(loc Location) *Publisher {
	return &Publisher{client: s, loc: loc}
}

// Publish uploads data as loc.Prefix+name.
func (p *Publisher) Publish(ctx context.Context, name string, data []byte) error {
	key := p.loc.Key(name)
	_, err := p.client.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.loc.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	log.Debug().Str("bucket", p.loc.Bucket).Str("key", key).Int("bytes", len(data)).Msg("uploaded result")
	return nil
}
