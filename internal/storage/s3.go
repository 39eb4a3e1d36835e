package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const stagingPrefix = "staging"

// DefaultURLTTL is how long a presigned image URL stays valid.
const DefaultURLTTL = 15 * time.Minute

// S3Options conveys the destination bucket and key layout.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
}

// S3Service stores listing images in Amazon S3 (or compatible APIs). Staged
// objects live under <prefix>/staging/ and are copied to <prefix>/ on promotion.
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	opts     S3Options
}

func NewS3Service(client *s3.Client, opts S3Options) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	if opts.URLTTL <= 0 {
		opts.URLTTL = DefaultURLTTL
	}
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		opts:     opts,
	}, nil
}

func (s *S3Service) publicKey(name string) string {
	return joinKey(s.opts.KeyPrefix, name)
}

func (s *S3Service) stagedKey(name string) string {
	return joinKey(s.opts.KeyPrefix, stagingPrefix, name)
}

func joinKey(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

func (s *S3Service) Stage(ctx context.Context, name string, body io.Reader, contentType string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.stagedKey(name)),
		Body:   body,
		ACL:    types.ObjectCannedACLPrivate,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *S3Service) Promote(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		src := s.stagedKey(name)
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.opts.Bucket),
			CopySource: aws.String(s.opts.Bucket + "/" + src),
			Key:        aws.String(s.publicKey(name)),
			ACL:        types.ObjectCannedACLPrivate,
		})
		if err != nil {
			return fmt.Errorf("promote %s: %w", name, err)
		}
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.opts.Bucket),
			Key:    aws.String(src),
		}); err != nil {
			return fmt.Errorf("remove staged %s: %w", name, err)
		}
	}
	return nil
}

func (s *S3Service) Discard(ctx context.Context, names []string) error {
	return s.deleteKeys(ctx, names, s.stagedKey)
}

func (s *S3Service) Delete(ctx context.Context, names []string) error {
	return s.deleteKeys(ctx, names, s.publicKey)
}

func (s *S3Service) deleteKeys(ctx context.Context, names []string, key func(string) string) error {
	identifiers := make([]types.ObjectIdentifier, 0, len(names))
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key(name))})
	}
	return s.deleteObjects(ctx, identifiers)
}

func (s *S3Service) deleteObjects(ctx context.Context, identifiers []types.ObjectIdentifier) error {
	if len(identifiers) == 0 {
		return nil
	}
	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.opts.Bucket),
		Delete: &types.Delete{
			Objects: identifiers,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	return nil
}

func (s *S3Service) Resolve(ctx context.Context, name string) (Object, error) {
	if err := ValidateName(name); err != nil {
		return Object{}, err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.publicKey(name)),
	}, s3.WithPresignExpires(s.opts.URLTTL))
	if err != nil {
		return Object{}, fmt.Errorf("presign %s: %w", name, err)
	}
	return Object{RedirectURL: req.URL}, nil
}

// PurgeStaging removes staged objects left behind by interrupted uploads.
func (s *S3Service) PurgeStaging(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.opts.Bucket),
		Prefix: aws.String(s.stagedKey("") + "/"),
	}

	for {
		output, err := s.client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return fmt.Errorf("list staged objects: %w", err)
		}

		identifiers := make([]types.ObjectIdentifier, 0, len(output.Contents))
		for _, obj := range output.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			identifiers = append(identifiers, types.ObjectIdentifier{Key: obj.Key})
		}
		if err := s.deleteObjects(ctx, identifiers); err != nil {
			return err
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		listInput.ContinuationToken = output.NextContinuationToken
	}
	return nil
}

var _ Service = (*S3Service)(nil)
