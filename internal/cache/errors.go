package cache

import "errors"

// errUnavailable marks simulated outages in the memory store.
var errUnavailable = errors.New("cache: store unavailable")
