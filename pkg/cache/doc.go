// Package cache provides a generic, thread-safe LRU cache whose entries
// also expire after a fixed TTL.
//
//	templates := cache.NewLRU[string, []devicetemplate.Template](256, 5*time.Minute)
//	if v, ok := templates.Get("Toast"); ok {
//		return v
//	}
//	templates.Put("Toast", loaded)
//
// A zero TTL keeps entries until they are evicted by capacity or removed.
package cache
