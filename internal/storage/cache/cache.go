// Package cache содержит read-through кэш товаров поверх Redis.
package cache

import "errors"

// ErrCacheMiss возвращается, когда ключа нет в кэше.
var ErrCacheMiss = errors.New("cache miss")
