package cache

import "strconv"

const productKeyPrefix = "product:"

// ProductKey returns the cache key of the product snapshot with the given id.
func ProductKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}
