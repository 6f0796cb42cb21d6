package blob_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func newS3Storage(t *testing.T, client *MockS3Client) *blob.S3Storage {
	t.Helper()
	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "payloads",
		Region: "us-east-1",
	}, blob.WithS3Client(client))
	require.NoError(t, err)
	return storage
}

func TestNewS3Storage(t *testing.T) {
	t.Parallel()

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		_, err := blob.NewS3Storage(context.Background(), blob.S3Config{Region: "us-east-1"})
		assert.ErrorIs(t, err, blob.ErrInvalidConfig)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		_, err := blob.NewS3Storage(context.Background(), blob.S3Config{Bucket: "b"})
		assert.ErrorIs(t, err, blob.ErrInvalidConfig)
	})

	t.Run("with static credentials", func(t *testing.T) {
		t.Parallel()
		storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
			Bucket:         "b",
			Region:         "us-east-1",
			AccessKeyID:    "key",
			SecretKey:      "secret",
			Endpoint:       "http://localhost:9000",
			ForcePathStyle: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, storage)
	})
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "payloads" &&
			aws.ToString(in.Key) == "attachments/root/msg-1" &&
			aws.ToString(in.ContentEncoding) == "gzip"
	})).Return(&s3.PutObjectOutput{}, nil)

	storage := newS3Storage(t, client)
	err := storage.Put(context.Background(), "attachments", "root/msg-1", []byte("data"), blob.WithContentEncoding("gzip"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestS3Storage_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns body", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return aws.ToString(in.Key) == "attachments/root/msg-1"
		})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("payload")))}, nil)

		data, err := newS3Storage(t, client).Get(context.Background(), "attachments", "root/msg-1")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("missing key maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

		_, err := newS3Storage(t, client).Get(context.Background(), "attachments", "root/missing")
		assert.ErrorIs(t, err, blob.ErrNotFound)
	})

	t.Run("throttling maps to ErrServiceUnavailable", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "SlowDown"})

		_, err := newS3Storage(t, client).Get(context.Background(), "attachments", "root/x")
		assert.ErrorIs(t, err, blob.ErrServiceUnavailable)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

		_, err := newS3Storage(t, client).Get(context.Background(), "attachments", "root/x")
		assert.ErrorIs(t, err, blob.ErrAccessDenied)
	})
}

func TestS3Storage_List(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("attachments/root/a")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil)
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "next"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("attachments/root/b")}},
	}, nil)

	keys, err := newS3Storage(t, client).List(context.Background(), "attachments", "root/")
	require.NoError(t, err)
	assert.Equal(t, []string{"root/a", "root/b"}, keys)
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	client := &MockS3Client{}
	client.On("DeleteObject", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil)

	err := newS3Storage(t, client).Delete(context.Background(), "attachments", "root/msg-1")
	require.NoError(t, err)

	err = newS3Storage(t, client).Delete(context.Background(), "attachments", "../etc")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)
}
