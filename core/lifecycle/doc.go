// Package lifecycle keeps one domain's certificate valid in the secret store.
//
// A Coordinator performs a single run:
//
//	START -> EVALUATING -> CREATING | RENEWING | IDLE -> DONE
//
// EVALUATING asks the renewal evaluator about the certificate secret. IDLE
// ends the run without writes. CREATING and RENEWING take the per-domain
// lease (when a locker is configured), re-check the secret under the lease,
// obtain a fresh certificate from the provisioner and write the private key
// followed by the certificate. If the certificate write fails the key secret
// is restored to its previous value, so readers never see a key that does
// not match the certificate.
//
//	coord, err := lifecycle.New(cfg, store, provisioner,
//		lifecycle.WithLogger(log),
//		lifecycle.WithLocker(lease.NewSecretLocker(store)),
//	)
//	outcome, err := coord.Run(ctx)
//
// Errors are typed (ErrLookupFailed, ErrProvisioning, ErrSecretWrite,
// ErrLockHeld, ErrInvalidConfig). IsRecoverable reports whether retrying on
// the next trigger can help.
//
// A Runner repeats the coordinator on a fixed interval for long-lived
// deployments. Failed runs are logged and retried on the next tick.
package lifecycle
