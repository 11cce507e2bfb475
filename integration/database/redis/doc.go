// Package redis connects to Redis and provides a Redis-backed lease.Locker.
//
// Connect parses the connection URL, creates a go-redis client and pings it
// with exponential backoff until it responds or the retry budget runs out:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// NewLocker turns a client into a lease.Locker. A lease is a key set with
// SET NX PX holding a random owner token. Release deletes the key only when
// the token still matches, so a lease that expired and was taken over by
// another run is never released by the old owner:
//
//	locker, err := redis.NewLocker(client, redis.WithKeyPrefix("certkeeper:lock"))
//	release, err := locker.Acquire(ctx, "example.com")
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Errors
//
//   - ErrEmptyConnectionURL: no connection URL was configured
//   - ErrFailedToParseRedisConnString: the URL is malformed
//   - ErrRedisNotReady: ping did not succeed within the retry budget
package redis
