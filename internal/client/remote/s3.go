package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/google/uuid"
)

// DefaultPresignTTL is how long the URL of an uploaded object stays valid.
const DefaultPresignTTL = 15 * time.Minute

// S3Config holds the settings of an S3-compatible backend.
type S3Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store writes each file as one object and returns a presigned GET URL as
// the attachment URL.
type S3Store struct {
	bucket    string
	ttl       time.Duration
	putter    objectPutter
	presigner objectPresigner

	now   func() time.Time
	newID func() string
}

// NewS3Store builds a client with path-style addressing, which MinIO and
// most S3-compatible servers expect. Static credentials are used when
// AccessKey is set, otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Store(c.Bucket, c.PresignTTL, client, s3.NewPresignClient(client)), nil
}

func newS3Store(bucket string, ttl time.Duration, putter objectPutter, presigner objectPresigner) *S3Store {
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &S3Store{
		bucket:    bucket,
		ttl:       ttl,
		putter:    putter,
		presigner: presigner,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ObjectKey returns the key a file is stored under.
func ObjectKey(kind models.ResourceKind, parentID, id, name string) string {
	return path.Join(string(kind), parentID, id, path.Base(name))
}

func (s *S3Store) Upload(ctx context.Context, kind models.ResourceKind, parentID string, file models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
	if file.Open == nil {
		return nil, fmt.Errorf("file %s has no content", file.Name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	// The body must be seekable for payload signing over plain HTTP.
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}

	id := s.newID()
	key := ObjectKey(kind, parentID, id, file.Name)
	contentType := file.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta := make(map[string]string, len(md)+1)
	for _, f := range md {
		meta[f.Name] = f.Value
	}
	meta["original-filename"] = file.Name

	_, err = s.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      meta,
	})
	if err != nil {
		return nil, s3Error(err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	return &models.RemoteAttachment{
		ID:               id,
		URL:              req.URL,
		OriginalFilename: file.Name,
		FileSizeBytes:    int64(len(data)),
		FileType:         contentType,
		CreatedAt:        s.now().UTC(),
	}, nil
}

func s3Error(err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorMessage() != "" {
		return &Error{Message: ae.ErrorMessage()}
	}
	return fmt.Errorf("put object: %w", err)
}
