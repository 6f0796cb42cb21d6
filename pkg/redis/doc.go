// Package redis connects to the Redis instance that holds push and web-push
// registrations.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	ready := redis.Healthcheck(client)
package redis
