package storage_test

import (
	"context"
	"errors"
	"testing"

	"horror-tracker/core/storage"
	"horror-tracker/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "horror-snapshots",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snaps", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(false, nil)
		client.On("MakeBucket", ctx, "snaps", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snaps", "eu"))
		client.AssertExpectations(t)
	})

	t.Run("Check Fails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "snaps").Return(false, errors.New("denied"))

		assert.Error(t, storage.EnsureBucket(ctx, client, "snaps", ""))
	})
}
