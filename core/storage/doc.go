// Package storage provides the pluggable object-storage client used to persist
// sensor nodes and their images.
//
// A Client has exactly two operations, SaveNode and UploadImage. Two adapters
// implement it: MinioClient (minio-go) and S3Client (aws-sdk-go-v2). They share the
// same write path, so they behave identically apart from transport and auth:
//
//  1. Ensure the bucket exists, creating it if it is absent.
//  2. Put the payload under a deterministic key.
//
// # Object Keys
//
//   - Node records: <prefix>/<uuid>.json (application/json)
//   - Images: <prefix>/images/<uuid>.<imageType> (always image/png)
//
// # Factory
//
// NewClient maps a provider name ("aws" or "minio") and a key/value map to an
// adapter. Required keys are checked before anything is constructed:
//
//   - aws: accessKey, secretKey, region
//   - minio: endpoint, username, password
//
// The typed form is New(ProviderConfig), with S3Config and MinioConfig as the only
// variants.
//
// # Errors
//
// Configuration problems match ErrUnknownProvider, ErrMissingField or ErrInvalidField.
// Adapter failures are *OperationError values matching ErrOperationFailed. Adapters
// never retry.
//
// # Usage
//
//	client, err := storage.NewClient("minio", map[string]string{
//	    "endpoint": "http://localhost:9000",
//	    "username": "minioadmin",
//	    "password": "minioadmin",
//	}, logger)
//	err = client.SaveNode(ctx, "nodes", node)
package storage
