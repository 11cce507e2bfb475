// Package awssm implements secretstore.Store on top of AWS Secrets Manager.
//
//	store, err := awssm.New(ctx, awssm.Config{Region: "eu-west-1"})
//	if err != nil {
//		return err
//	}
//
//	meta, err := store.GetMetadata(ctx, "example.com/certificate")
//
// Credentials follow the default AWS chain (environment, shared config, IAM
// role) unless static keys are set in Config.
//
// GetMetadata reports two timestamps: CreatedAt from DescribeSecret and
// VersionCreatedAt from the AWSCURRENT version returned by GetSecretValue.
// Update writes a new version, so VersionCreatedAt moves forward on every
// renewal while CreatedAt stays put.
//
// AWS errors are mapped onto the secretstore sentinels: ResourceNotFound
// becomes ErrNotFound, ResourceExists becomes ErrAlreadyExists, throttling and
// internal errors become ErrTransient.
package awssm
