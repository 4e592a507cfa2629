package s3infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/glam-looks-api/internal/domain"
)

// MaxSelfieBytes is the largest object Rekognition accepts as inline image bytes.
const MaxSelfieBytes = 5 << 20

// ObjectAPI is the subset of the S3 client the Store reads objects with.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Presigner is the subset of s3.PresignClient used to issue upload URLs.
type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignedPut is a signed PUT request the client replays verbatim.
type PresignedPut struct {
	URL     string
	Method  string
	Headers map[string]string
}

// Store wraps the selfie bucket.
type Store struct {
	objects   ObjectAPI
	presigner Presigner
	bucket    string
}

// NewClient creates an S3 client. When endpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, endpointURL string) *s3.Client {
	clientOpts := []func(*s3.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...)
}

// NewStore creates a Store backed by client for bucket.
func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{objects: client, presigner: s3.NewPresignClient(client), bucket: bucket}
}

// NewStoreWith creates a Store from explicit collaborators.
func NewStoreWith(objects ObjectAPI, presigner Presigner, bucket string) *Store {
	return &Store{objects: objects, presigner: presigner, bucket: bucket}
}

// PresignPut signs a PUT of key valid for ttl. The content type and metadata
// are part of the signature, so the uploader must send them unchanged.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, metadata map[string]string, ttl time.Duration) (*PresignedPut, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return &PresignedPut{URL: req.URL, Method: req.Method, Headers: flattenHeaders(req.SignedHeader)}, nil
}

// Download reads the object at key. A missing object means the upload never
// happened within its credential window and maps to ErrCredentialExpired.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapReadError("get object", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxSelfieBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w: %w", key, domain.ErrAnalysisUnavailable, err)
	}
	if len(data) > MaxSelfieBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes: %w", key, MaxSelfieBytes, domain.ErrBadRequest)
	}
	return data, nil
}

// Metadata returns the user metadata of the object at key, with S3's
// x-amz-meta- prefix stripped and keys lower-cased.
func (s *Store) Metadata(ctx context.Context, key string) (map[string]string, error) {
	out, err := s.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapReadError("head object", key, err)
	}
	if out.Metadata == nil {
		return map[string]string{}, nil
	}
	return out.Metadata, nil
}

func mapReadError(op, key string, err error) error {
	if isMissing(err) {
		return fmt.Errorf("%s %s: %w", op, key, domain.ErrCredentialExpired)
	}
	return fmt.Errorf("%s %s: %w: %w", op, key, domain.ErrAnalysisUnavailable, err)
}

func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 && k != "Host" {
			out[k] = v[0]
		}
	}
	return out
}
