// Package s3 archives the public half of issued certificates to Amazon S3 or
// an S3-compatible service.
//
// Private keys never reach this package. For each domain the archiver writes
// three objects under <prefix>/<domain>/:
//
//	cert.pem       leaf certificate
//	chain.pem      issuer chain (skipped when empty)
//	fullchain.pem  leaf followed by the chain
//
// Usage:
//
//	archiver, err := s3.New(ctx, s3.Config{
//		Bucket: "certs-archive",
//		Region: "eu-west-1",
//		Prefix: "certificates",
//	})
//	if err != nil {
//		return err
//	}
//	err = archiver.Archive(ctx, "example.com", certPEM, chainPEM)
//
// Static credentials are optional; without them the default AWS credential
// chain (env, shared config, IAM role) is used. Endpoint and ForcePathStyle
// support MinIO and similar services.
//
// Errors are classified into ErrAccessDenied, ErrBucketNotFound,
// ErrServiceUnavailable, ErrOperationTimeout and ErrOperationCanceled.
package s3
