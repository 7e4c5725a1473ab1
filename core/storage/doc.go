// Package storage is the object store behind the run snapshot archive.
//
// Client is the slice of the MinIO API the archive needs plus ReadObject,
// which reads an object in full and reports a missing key as ErrNotFound
// instead of minio's lazy read-time error. Tests use the testify mock in
// core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
